package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/imu.go/pkg/imu/comm"
	"github.com/robotalks/imu.go/pkg/imu/exchange"
	"github.com/robotalks/imu.go/pkg/imu/sim"
)

func TestNewConfigCopiesDefault(t *testing.T) {
	conf := NewConfig()
	conf.Port = "changed"
	require.NotEqual(t, "changed", Default().Port)
	require.Equal(t, comm.DefaultWindow, conf.Window)
}

func TestOpenSim(t *testing.T) {
	conf := NewConfig()
	conf.Port = SimPort
	require.True(t, conf.IsSim())
	port, err := conf.Open()
	require.NoError(t, err)
	require.IsType(t, &sim.Peripheral{}, port)
	require.NoError(t, port.Close())
}

func TestOpenInvalidBaud(t *testing.T) {
	conf := NewConfig()
	conf.Port = "/dev/does-not-matter"
	conf.Baud = 0
	_, err := conf.Open()
	require.Error(t, err)
}

func TestSimSession(t *testing.T) {
	conf := NewConfig()
	conf.Port = SimPort
	summary := conf.NewSession(nil).Run(context.Background(), exchange.Request{Command: comm.CmdFirmwareVersion}, 2)
	require.Equal(t, exchange.Completed, summary.Termination)
	require.Equal(t, exchange.Stats{Transmitted: 2, Received: 2, Valid: 2}, summary.Stats)
}
