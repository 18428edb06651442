package report

import (
	"context"

	"github.com/robotalks/imu.go/pkg/imu/exchange"
)

// Multi fans out outcomes to all sinks in order.
type Multi []exchange.Sink

// Add appends non-nil sinks.
func (m *Multi) Add(sinks ...exchange.Sink) *Multi {
	for _, s := range sinks {
		if s != nil {
			*m = append(*m, s)
		}
	}
	return m
}

// Report implements exchange.Sink.
func (m Multi) Report(ctx context.Context, o exchange.Outcome) {
	for _, s := range m {
		s.Report(ctx, o)
	}
}
