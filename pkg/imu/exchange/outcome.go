package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/robotalks/imu.go/pkg/imu/comm"
)

// Kind classifies an iteration.
type Kind int

// Outcome kinds.
const (
	// Success means a valid response is decoded.
	Success Kind = iota
	// CRCFailure means a frame arrived but is corrupted or undecodable.
	CRCFailure
	// NoResponse means no complete frame arrived in time.
	NoResponse
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case CRCFailure:
		return "crc-failure"
	case NoResponse:
		return "no-response"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Outcome is the result of one iteration, with the statistics right after it.
type Outcome struct {
	SessionID string
	Iteration uint64
	Request   Request
	Kind      Kind
	Response  *comm.Response
	Err       error
	Stats     Stats
	Time      time.Time
	Latency   time.Duration
}

// Sink receives outcomes. It is called synchronously from the exchange
// loop.
type Sink interface {
	Report(context.Context, Outcome)
}

// ReportFunc is func type of Sink.
type ReportFunc func(context.Context, Outcome)

// Report implements Sink.
func (f ReportFunc) Report(ctx context.Context, o Outcome) {
	f(ctx, o)
}
