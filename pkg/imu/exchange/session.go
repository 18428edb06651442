package exchange

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	fx "github.com/robotalks/imu.go/pkg/framework"
)

// Port is a Transport owned by a Session.
type Port interface {
	Transport
	io.Closer
}

// Opener acquires the Port for a Session.
type Opener func() (Port, error)

// Session owns a Port for the lifetime of one Run: it is opened before
// the first iteration and closed on every exit path, including
// cancellation.
type Session struct {
	ID          string
	Open        Opener
	Sink        Sink
	Window      time.Duration
	ReadTimeout time.Duration
	// Rate limits iterations per second, 0 for unpaced.
	Rate float64
}

// NewSession creates a Session with a random ID.
func NewSession(open Opener, sink Sink) *Session {
	return &Session{ID: uuid.NewString(), Open: open, Sink: sink}
}

// Run opens the port, runs the exchange loop and closes the port.
func (s *Session) Run(ctx context.Context, req Request, iterations int) (summary Summary) {
	port, err := s.Open()
	if err != nil {
		return Summary{Termination: Failed, Err: err}
	}
	glog.Infof("session %s: %s x %d", s.ID, req, iterations)

	ctl := NewController(port, s.Sink).SetTiming(s.Window, s.ReadTimeout)
	ctl.SessionID = s.ID
	if s.Rate > 0 {
		ctl.Limiter = rate.NewLimiter(rate.Limit(s.Rate), 1)
	}

	err = fx.RunWithContextCloser(ctx, port, func() error {
		summary = ctl.Run(ctx, req, iterations)
		return summary.Err
	})
	if summary.Termination == Completed && err != nil {
		// close failed after a clean run.
		summary.Termination, summary.Err = Failed, err
	}
	glog.Infof("session %s %s after %d iterations: %+v", s.ID, summary.Termination, summary.Iterations, summary.Stats)
	return summary
}
