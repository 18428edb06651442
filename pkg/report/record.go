// Package report provides sinks rendering exchange outcomes.
package report

import (
	"fmt"
	"time"

	"github.com/robotalks/imu.go/pkg/imu/comm"
	"github.com/robotalks/imu.go/pkg/imu/exchange"
)

// Record is the serializable form of an exchange.Outcome.
type Record struct {
	Source       string         `json:"source,omitempty"`
	Session      string         `json:"session,omitempty"`
	Iteration    uint64         `json:"iteration"`
	Command      string         `json:"command"`
	Code         byte           `json:"code"`
	Params       []float32      `json:"params,omitempty"`
	Outcome      string         `json:"outcome"`
	Status       byte           `json:"status"`
	Values       []float32      `json:"values,omitempty"`
	Version      string         `json:"version,omitempty"`
	Error        string         `json:"error,omitempty"`
	Stats        exchange.Stats `json:"stats"`
	CRCErrorRate *float64       `json:"crc_error_rate,omitempty"`
	Time         time.Time      `json:"time"`
	LatencyUS    int64          `json:"latency_us"`
}

// NewRecord converts an outcome.
func NewRecord(source string, o exchange.Outcome) *Record {
	r := &Record{
		Source:    source,
		Session:   o.SessionID,
		Iteration: o.Iteration,
		Command:   o.Request.Command.String(),
		Code:      byte(o.Request.Command),
		Params:    o.Request.Params,
		Outcome:   o.Kind.String(),
		Stats:     o.Stats,
		Time:      o.Time,
		LatencyUS: o.Latency.Microseconds(),
	}
	if o.Err != nil {
		r.Error = o.Err.Error()
	}
	if rate, ok := o.Stats.CRCErrorRate(); ok {
		r.CRCErrorRate = &rate
	}
	if resp := o.Response; resp != nil {
		r.Status = resp.Status
		r.Values = resp.Values
		if info, ok := resp.Command.Info(); ok && info.Response == comm.ShapeByte {
			r.Version = fmt.Sprintf("%02X", resp.Version)
		}
	}
	return r
}
