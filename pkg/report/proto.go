package report

import (
	"github.com/robotalks/imu.go/pkg/imu/comm"
	"github.com/robotalks/imu.go/pkg/imu/exchange"
	"github.com/robotalks/imu.go/pkg/report/pb"
)

// ToProto converts an outcome to its wire message.
func ToProto(source string, o exchange.Outcome) *pb.Report {
	m := &pb.Report{
		Source:    source,
		Session:   o.SessionID,
		Iteration: o.Iteration,
		Command:   uint32(o.Request.Command),
		Params:    o.Request.Params,
		Outcome:   int32(o.Kind),
		Stats: &pb.Stats{
			Transmitted: o.Stats.Transmitted,
			Received:    o.Stats.Received,
			Valid:       o.Stats.Valid,
		},
		TimeUnixNano: o.Time.UnixNano(),
		LatencyUs:    o.Latency.Microseconds(),
	}
	if o.Err != nil {
		m.Error = o.Err.Error()
	}
	if resp := o.Response; resp != nil {
		m.Status = uint32(resp.Status)
		m.Values = resp.Values
		if info, ok := resp.Command.Info(); ok && info.Response == comm.ShapeByte {
			m.Version = uint32(resp.Version)
		}
	}
	return m
}

// FormatProto renders a received report in the log line format.
func FormatProto(m *pb.Report) string {
	o := exchange.Outcome{
		SessionID: m.Session,
		Iteration: m.Iteration,
		Request:   exchange.Request{Command: comm.Command(m.Command), Params: m.Params},
		Kind:      exchange.Kind(m.Outcome),
	}
	if s := m.Stats; s != nil {
		o.Stats = exchange.Stats{Transmitted: s.Transmitted, Received: s.Received, Valid: s.Valid}
	}
	if o.Kind == exchange.Success {
		o.Response = &comm.Response{
			Command: o.Request.Command,
			Status:  byte(m.Status),
			Values:  m.Values,
			Version: byte(m.Version),
		}
	}
	if m.Error != "" {
		o.Err = protoError(m.Error)
	}
	return FormatOutcome(o, false)
}

type protoError string

func (e protoError) Error() string { return string(e) }
