package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/imu.go/pkg/imu/comm"
	"github.com/robotalks/imu.go/pkg/imu/exchange"
	"github.com/robotalks/imu.go/pkg/imu/transport"
	"github.com/robotalks/imu.go/pkg/report"
)

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	conf := transport.NewConfig()
	conf.Port = transport.SimPort
	var out bytes.Buffer
	s := &Shell{Config: conf, Out: &out}
	require.NoError(t, s.Open())
	t.Cleanup(s.Close)
	return s, &out
}

func TestShellDo(t *testing.T) {
	s, out := newTestShell(t)
	summary, err := s.Do(context.Background(), exchange.Request{Command: comm.CmdReadTemp}, 2)
	require.NoError(t, err)
	assert.Equal(t, exchange.Completed, summary.Termination)
	assert.Equal(t, uint64(2), summary.Iterations)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "#2 read-temp: success")

	stats, ok := s.Stats()
	require.True(t, ok)
	assert.Equal(t, exchange.Stats{Transmitted: 2, Received: 2, Valid: 2}, stats)
}

func TestShellDoJSON(t *testing.T) {
	s, out := newTestShell(t)
	s.OutputJSON = true
	var forwarded int
	s.Sink = exchange.ReportFunc(func(context.Context, exchange.Outcome) { forwarded++ })
	_, err := s.Do(context.Background(), exchange.Request{Command: comm.CmdFirmwareVersion}, 1)
	require.NoError(t, err)

	var rec report.Record
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "firmware-version", rec.Command)
	assert.Equal(t, "success", rec.Outcome)
	assert.Equal(t, 1, forwarded)
}

func TestShellDoRejectsBadParams(t *testing.T) {
	s, out := newTestShell(t)
	summary, err := s.Do(context.Background(), exchange.Request{Command: comm.CmdSetBias}, 1)
	assert.ErrorIs(t, err, comm.ErrPayloadMismatch)
	assert.Equal(t, exchange.Failed, summary.Termination)
	assert.Zero(t, out.Len())
}

func TestShellClosed(t *testing.T) {
	s, _ := newTestShell(t)
	s.Close()
	_, ok := s.Stats()
	assert.False(t, ok)
	_, err := s.Do(context.Background(), exchange.Request{Command: comm.CmdReadAll}, 1)
	assert.Error(t, err)
}

func TestCmds(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range Cmds() {
		names[cmd.Name] = true
	}
	for _, info := range comm.Commands() {
		assert.True(t, names[info.Name], info.Name)
	}
	for _, name := range []string{"open", "close", "stats", "commands", "loop"} {
		assert.True(t, names[name], name)
	}
}
