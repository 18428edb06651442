package exchange

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/imu.go/pkg/imu/comm"
	"github.com/robotalks/imu.go/pkg/imu/sim"
)

type countingPort struct {
	*sim.Peripheral
	closed int
}

func (p *countingPort) Close() error {
	p.closed++
	return p.Peripheral.Close()
}

func newTestSession(sink Sink) (*Session, *countingPort) {
	port := &countingPort{Peripheral: sim.NewPeripheral()}
	s := NewSession(func() (Port, error) { return port, nil }, sink)
	return s, port
}

func TestSessionCompleted(t *testing.T) {
	sink := &collector{}
	s, port := newTestSession(sink)
	require.NotEmpty(t, s.ID)
	summary := s.Run(context.Background(), Request{Command: comm.CmdReadTemp}, 3)
	require.Equal(t, Completed, summary.Termination)
	require.Equal(t, uint64(3), summary.Stats.Valid)
	require.Equal(t, 1, port.closed)
	for _, o := range sink.outcomes {
		require.Equal(t, s.ID, o.SessionID)
	}
}

func TestSessionClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &collector{onReport: func(o Outcome) {
		if o.Iteration == 2 {
			cancel()
		}
	}}
	s, port := newTestSession(sink)
	summary := s.Run(ctx, Request{Command: comm.CmdReadAll}, 0)
	require.Equal(t, Cancelled, summary.Termination)
	require.Equal(t, 1, port.closed)
}

func TestSessionClosesOnFailure(t *testing.T) {
	s, port := newTestSession(nil)
	summary := s.Run(context.Background(), Request{Command: comm.CmdSetBias}, 1)
	require.Equal(t, Failed, summary.Termination)
	require.ErrorIs(t, summary.Err, comm.ErrPayloadMismatch)
	require.Equal(t, 1, port.closed)
}

func TestSessionOpenError(t *testing.T) {
	openErr := errors.New("no such device")
	s := NewSession(func() (Port, error) { return nil, openErr }, nil)
	summary := s.Run(context.Background(), Request{Command: comm.CmdReadAll}, 1)
	require.Equal(t, Failed, summary.Termination)
	require.Equal(t, openErr, summary.Err)
}

func TestSessionRate(t *testing.T) {
	s, _ := newTestSession(nil)
	s.Rate = 1000
	summary := s.Run(context.Background(), Request{Command: comm.CmdReadAll}, 3)
	require.Equal(t, Completed, summary.Termination)
	require.Equal(t, uint64(3), summary.Iterations)
}
