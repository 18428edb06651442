package env

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/imu.go/pkg/report"
)

func TestNewEnvSinks(t *testing.T) {
	cases := []struct {
		name      string
		conf      Config
		sinks     int
		runnables int
	}{
		{"log", Config{Source: "dev1"}, 1, 0},
		{"json", Config{Source: "dev1", JSON: true}, 1, 0},
		{"mqtt", Config{Source: "dev1", MQTTBrokerURL: "mqtt://localhost:1883/imu/"}, 2, 0},
		{"listen", Config{Source: "dev1", Listen: "127.0.0.1:0"}, 3, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			conf := c.conf
			env, err := conf.NewEnv()
			require.NoError(t, err)
			assert.Len(t, env.Sink, c.sinks)
			assert.Len(t, env.Runnables(), c.runnables)
			assert.NoError(t, env.Close())
		})
	}
}

func TestNewEnvDefaults(t *testing.T) {
	conf := &Config{}
	env, err := conf.NewEnv()
	require.NoError(t, err)
	assert.NotEmpty(t, conf.Source)
	_, isLog := env.Sink[0].(*report.Log)
	assert.True(t, isLog)
	assert.NoError(t, env.Start())
}

func TestNewEnvBadBrokerURL(t *testing.T) {
	conf := &Config{Source: "dev1", MQTTBrokerURL: "mqtt://%zz"}
	_, err := conf.NewEnv()
	assert.Error(t, err)
}

func TestServeStopsOnCancel(t *testing.T) {
	conf := &Config{Source: "dev1", Listen: "127.0.0.1:0"}
	env, err := conf.NewEnv()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.Runnables()[0].Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server not stopped")
	}
}
