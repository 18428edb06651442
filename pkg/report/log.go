package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/imu.go/pkg/imu/comm"
	"github.com/robotalks/imu.go/pkg/imu/exchange"
)

// Log writes outcomes to glog, one line per iteration.
type Log struct {
	// Verbose adds raw frame bytes.
	Verbose bool
}

// Report implements exchange.Sink.
func (l *Log) Report(ctx context.Context, o exchange.Outcome) {
	line := FormatOutcome(o, l.Verbose)
	if o.Kind == exchange.Success {
		glog.Info(line)
	} else {
		glog.Warning(line)
	}
}

// FormatOutcome renders an outcome with running statistics.
func FormatOutcome(o exchange.Outcome, verbose bool) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "#%d %s: %s", o.Iteration, o.Request, o.Kind)
	if resp := o.Response; resp != nil {
		fmt.Fprintf(&w, " status=%02X", resp.Status)
		if info, ok := resp.Command.Info(); ok {
			switch info.Response {
			case comm.ShapeFloats:
				fmt.Fprintf(&w, " data=%v", resp.Values)
			case comm.ShapeByte:
				fmt.Fprintf(&w, " ver.=%02X", resp.Version)
			}
		}
		if verbose && resp.Frame != nil {
			fmt.Fprintf(&w, " rx=[% X]", resp.Frame.Raw)
		}
	}
	if o.Err != nil {
		fmt.Fprintf(&w, " (%v)", o.Err)
	}
	fmt.Fprintf(&w, " | %s", FormatStats(o.Stats))
	return w.String()
}

// FormatStats renders counters and the CRC error rate in percent.
func FormatStats(s exchange.Stats) string {
	str := fmt.Sprintf("tx=%d rx=%d valid=%d", s.Transmitted, s.Received, s.Valid)
	if rate, ok := s.CRCErrorRate(); ok {
		str += fmt.Sprintf(" crc error=%.2f%%", rate*100)
	}
	return str
}
