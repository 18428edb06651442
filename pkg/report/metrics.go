package report

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/imu.go/pkg/imu/exchange"
)

// NewRegistry creates a registry with the Go runtime collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// MetricsHandler serves the registry.
func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Metrics exports outcomes as Prometheus metrics.
type Metrics struct {
	Outcomes     *prometheus.CounterVec   // labels: command, outcome
	Frames       *prometheus.GaugeVec     // labels: counter=transmitted|received|valid
	CRCErrorRate prometheus.Gauge         // of the current session
	Latency      *prometheus.HistogramVec // labels: command
}

// NewMetrics registers and returns the metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "imu_exchange_outcomes_total",
			Help: "Exchange iterations by command and outcome.",
		}, []string{"command", "outcome"}),
		Frames: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "imu_exchange_frames",
			Help: "Frame counters of the current session.",
		}, []string{"counter"}),
		CRCErrorRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "imu_exchange_crc_error_ratio",
			Help: "Received frames failing CRC over received frames.",
		}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "imu_exchange_latency_seconds",
			Help:    "Time from request to response.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 10),
		}, []string{"command"}),
	}
	reg.MustRegister(m.Outcomes, m.Frames, m.CRCErrorRate, m.Latency)
	return m
}

// Report implements exchange.Sink.
func (m *Metrics) Report(ctx context.Context, o exchange.Outcome) {
	cmd := o.Request.Command.String()
	m.Outcomes.WithLabelValues(cmd, o.Kind.String()).Inc()
	m.Frames.WithLabelValues("transmitted").Set(float64(o.Stats.Transmitted))
	m.Frames.WithLabelValues("received").Set(float64(o.Stats.Received))
	m.Frames.WithLabelValues("valid").Set(float64(o.Stats.Valid))
	if rate, ok := o.Stats.CRCErrorRate(); ok {
		m.CRCErrorRate.Set(rate)
	}
	if o.Kind == exchange.Success {
		m.Latency.WithLabelValues(cmd).Observe(o.Latency.Seconds())
	}
}
