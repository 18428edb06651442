package exchange

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
	"golang.org/x/time/rate"

	"github.com/robotalks/imu.go/pkg/imu/comm"
)

// Transport is the byte stream to the peripheral.
type Transport interface {
	comm.Source
	io.Writer
	// ResetInputBuffer discards received bytes not read yet.
	ResetInputBuffer() error
}

// Controller runs request/response iterations over a Transport.
// At most one request is outstanding: the response is taken to be the
// next frame after the request, there is no correlation id.
type Controller struct {
	Transport Transport
	Sink      Sink
	SessionID string
	// Limiter paces iterations in Run, nil for no pacing.
	Limiter *rate.Limiter

	reader    *comm.Reader
	stats     Stats
	iteration uint64
}

// NewController creates a Controller with default timing.
func NewController(t Transport, sink Sink) *Controller {
	return &Controller{
		Transport: t,
		Sink:      sink,
		reader:    comm.NewReader(t),
	}
}

// SetTiming overrides the response window and per-phase read timeout.
// Zero keeps the current value.
func (c *Controller) SetTiming(window, readTimeout time.Duration) *Controller {
	if window > 0 {
		c.reader.Window = window
	}
	if readTimeout > 0 {
		c.reader.ReadTimeout = readTimeout
	}
	return c
}

// Stats gets the current statistics.
func (c *Controller) Stats() Stats {
	return c.stats
}

// Exchange sends one request and waits for one response.
//
// Recoverable failures are carried in the Outcome (and reported to the
// Sink). The returned error is set only when nothing could be sent
// (ErrPayloadMismatch, ErrFrameTooLarge, ErrUnknownCommand) or the
// transport is gone (ErrTransportClosed).
func (c *Controller) Exchange(ctx context.Context, req Request) (Outcome, error) {
	frame, err := comm.Encode(req.Command, req.Params)
	if err != nil {
		return Outcome{}, err
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if err := c.Transport.ResetInputBuffer(); err != nil {
		return Outcome{}, fmt.Errorf("%w: reset input: %v", comm.ErrTransportClosed, err)
	}

	o := Outcome{
		SessionID: c.SessionID,
		Request:   req,
		Time:      time.Now(),
	}
	if _, err := c.Transport.Write(frame); err != nil {
		return Outcome{}, fmt.Errorf("%w: write: %v", comm.ErrTransportClosed, err)
	}
	c.iteration++
	o.Iteration = c.iteration
	c.stats.Transmitted++
	glog.V(2).Infof("TX % X", frame)

	resp, synced, err := c.reader.ReadResponse()
	o.Latency = time.Since(o.Time)
	if errors.Is(err, comm.ErrTransportClosed) {
		return o, err
	}
	if synced {
		c.stats.Received++
	}
	switch {
	case err == nil:
		c.stats.Valid++
		o.Kind, o.Response = Success, resp
	case errors.Is(err, comm.ErrMalformedPayload), errors.Is(err, comm.ErrUnknownCommand):
		// checksum passed, the content doesn't fit the command.
		c.stats.Valid++
		o.Kind, o.Err = CRCFailure, err
	case comm.IsCorrupt(err):
		o.Kind, o.Err = CRCFailure, err
	default:
		o.Kind, o.Err = NoResponse, err
	}
	o.Stats = c.stats
	if c.Sink != nil {
		c.Sink.Report(ctx, o)
	}
	return o, nil
}

// Termination tells why Run stopped.
type Termination int

// Terminations.
const (
	// Completed means the requested number of iterations is done.
	Completed Termination = iota
	// Cancelled means the context was cancelled.
	Cancelled
	// Failed means a fatal error, see Summary.Err.
	Failed
)

// String implements fmt.Stringer.
func (t Termination) String() string {
	switch t {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("termination(%d)", int(t))
}

// Summary is the result of Run.
type Summary struct {
	Termination Termination
	Iterations  uint64
	Stats       Stats
	Err         error
}

// Run repeats Exchange with the same request. iterations <= 0 runs until
// ctx is cancelled. A failed iteration is never retried, the next
// iteration sends a fresh request.
func (c *Controller) Run(ctx context.Context, req Request, iterations int) Summary {
	start := c.iteration
	summarize := func(t Termination, err error) Summary {
		return Summary{
			Termination: t,
			Iterations:  c.iteration - start,
			Stats:       c.stats,
			Err:         err,
		}
	}
	if _, err := comm.Encode(req.Command, req.Params); err != nil {
		return summarize(Failed, err)
	}
	for n := 0; iterations <= 0 || n < iterations; n++ {
		if ctx.Err() != nil {
			return summarize(Cancelled, ctx.Err())
		}
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return summarize(Cancelled, ctx.Err())
				}
				return summarize(Failed, err)
			}
		}
		if _, err := c.Exchange(ctx, req); err != nil {
			if ctx.Err() != nil {
				return summarize(Cancelled, ctx.Err())
			}
			return summarize(Failed, err)
		}
	}
	return summarize(Completed, nil)
}
