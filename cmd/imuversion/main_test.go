package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/imu.go/pkg/imu/comm"
	"github.com/robotalks/imu.go/pkg/imu/exchange"
	"github.com/robotalks/imu.go/pkg/imu/sim"
)

type trackedPort struct {
	*sim.Peripheral
	closed int
}

func (p *trackedPort) Close() error {
	p.closed++
	return p.Peripheral.Close()
}

func newVersionSession(p *sim.Peripheral) (*exchange.Session, *trackedPort) {
	port := &trackedPort{Peripheral: p}
	return exchange.NewSession(func() (exchange.Port, error) { return port, nil }, nil), port
}

func TestQueryVersion(t *testing.T) {
	p := sim.NewPeripheral()
	p.Version = 0x23
	s, port := newVersionSession(p)
	resp, err := queryVersion(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Equal(t, comm.CmdFirmwareVersion, resp.Command)
	require.Equal(t, byte(0x23), resp.Version)
	require.Equal(t, 1, port.closed)
}

func TestQueryVersionNoResponse(t *testing.T) {
	p := sim.NewPeripheral()
	p.Inject(sim.FaultSilent)
	s, port := newVersionSession(p)
	resp, err := queryVersion(context.Background(), s)
	require.NoError(t, err)
	require.Nil(t, resp)
	require.Equal(t, 1, port.closed)
}

func TestQueryVersionCancelledClosesPort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, port := newVersionSession(sim.NewPeripheral())
	resp, err := queryVersion(ctx, s)
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, resp)
	require.Equal(t, 1, port.closed)
}
