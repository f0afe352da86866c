package api

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type clientMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

func newClientMetrics(reg prometheus.Registerer) *clientMetrics {
	m := &clientMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "handyctl_api_requests_total",
				Help: "Total number of API requests by status code and method",
			},
			[]string{"code", "method"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "handyctl_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "handyctl_api_in_flight_requests",
				Help: "Number of API requests currently in flight",
			},
		),
	}
	m.requests = register(reg, m.requests)
	m.duration = register(reg, m.duration)
	m.inFlight = register(reg, m.inFlight)
	return m
}

// register reuses an identical collector that is already registered, so
// several clients can share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// instrument returns a copy of hc whose transport records request metrics.
func instrument(hc *http.Client, reg prometheus.Registerer) *http.Client {
	m := newClientMetrics(reg)

	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	cp := *hc
	cp.Transport = promhttp.InstrumentRoundTripperInFlight(m.inFlight,
		promhttp.InstrumentRoundTripperCounter(m.requests,
			promhttp.InstrumentRoundTripperDuration(m.duration, base),
		),
	)
	return &cp
}
