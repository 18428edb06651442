// Package env assembles report sinks from flags and environment.
package env

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/imu.go/pkg/framework"
	"github.com/robotalks/imu.go/pkg/report"
	"github.com/robotalks/imu.go/pkg/report/mqtt"
	"github.com/robotalks/imu.go/pkg/report/websocket"
)

// Config provides options for reporting outcomes.
type Config struct {
	// Source identifies this master in published reports.
	Source string
	// MQTTBrokerURL enables publishing, e.g. mqtt://host:port/topic-prefix/
	MQTTBrokerURL string
	// Listen enables the HTTP endpoint serving /reports and /metrics.
	Listen string
	// JSON prints JSON lines on stdout instead of log lines.
	JSON bool
	// Verbose includes raw frames in log lines.
	Verbose bool
}

var defaultConfig Config

func init() {
	defaultConfig.MQTTBrokerURL = os.Getenv("IMU_MQTT_URL")
	defaultConfig.Listen = os.Getenv("IMU_LISTEN")
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Source, "source", defaultConfig.Source, "Source ID in reports, defaults to machine ID.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL to publish reports.")
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "Address serving /reports and /metrics.")
	flag.BoolVar(&defaultConfig.JSON, "json", defaultConfig.JSON, "Print reports as JSON lines.")
	flag.BoolVar(&defaultConfig.Verbose, "raw", defaultConfig.Verbose, "Include raw frames in log lines.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Env holds the sinks and the services backing them.
type Env struct {
	Config *Config
	Sink   report.Multi

	queue  *mqtt.Queue
	server *http.Server
}

// NewEnv creates Env from config. Nothing is connected or listening
// until Run.
func (c *Config) NewEnv() (*Env, error) {
	if c.Source == "" {
		c.Source = report.MachineSource()
	}
	env := &Env{Config: c}
	if c.JSON {
		env.Sink.Add(report.NewJSON(os.Stdout, c.Source))
	} else {
		env.Sink.Add(&report.Log{Verbose: c.Verbose})
	}
	if c.MQTTBrokerURL != "" {
		q, err := mqtt.NewQueueFromURL(c.MQTTBrokerURL)
		if err != nil {
			return nil, fmt.Errorf("invalid MQTT broker URL: %w", err)
		}
		env.queue = q
		env.Sink.Add(mqtt.NewPublisher(q, c.Source))
	}
	if c.Listen != "" {
		reg := report.NewRegistry()
		hub := websocket.NewHub(c.Source)
		env.Sink.Add(report.NewMetrics(reg), hub)
		mux := http.NewServeMux()
		mux.Handle("/reports", hub)
		mux.Handle("/metrics", report.MetricsHandler(reg))
		env.server = &http.Server{Addr: c.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}
	return env, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// Start connects the broker. The queue reconnects on its own afterwards.
func (e *Env) Start() error {
	if e.queue == nil {
		return nil
	}
	if err := e.queue.Connect(); err != nil {
		return fmt.Errorf("connect MQTT broker: %w", err)
	}
	return nil
}

// Runnables returns the services to run alongside the session.
func (e *Env) Runnables() []fx.Runnable {
	var runnables []fx.Runnable
	if e.server != nil {
		runnables = append(runnables, fx.NamedRun("http", fx.RunFunc(e.serve)))
	}
	return runnables
}

func (e *Env) serve(ctx context.Context) error {
	glog.Infof("serving /reports and /metrics on %s", e.server.Addr)
	err := fx.RunWithContextCancel(ctx, func() {
		sctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		e.server.Shutdown(sctx)
	}, func() error {
		if err := e.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close disconnects the broker.
func (e *Env) Close() error {
	if e.queue != nil {
		return e.queue.Close()
	}
	return nil
}
