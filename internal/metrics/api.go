package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dracor"

// Upstream holds the metrics of calls to the DraCor API and the local work derived from them.
type Upstream struct {
	// RequestsTotal counts upstream requests by endpoint and outcome status.
	RequestsTotal *prometheus.CounterVec
	// RequestDuration observes upstream latency by endpoint.
	RequestDuration *prometheus.HistogramVec
	// CacheTotal counts payload memo lookups by result ("hit"/"miss").
	CacheTotal *prometheus.CounterVec
	// FilterTotal counts filter evaluations by result ("ok"/"config_error").
	FilterTotal *prometheus.CounterVec
}

// NewUpstream creates an unregistered metric set.
func NewUpstream() *Upstream {
	return &Upstream{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Total number of DraCor API requests",
			},
			[]string{"endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "DraCor API request duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"endpoint"},
		),
		CacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payload_cache_total",
				Help:      "Payload memo hits and misses",
			},
			[]string{"result"},
		),
		FilterTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "filter_evaluations_total",
				Help:      "Record filter evaluations",
			},
			[]string{"result"},
		),
	}
}

// Register adds the set to reg. Collectors already registered by an identical
// set are reused so that several clients can share one registry.
func (u *Upstream) Register(reg prometheus.Registerer) error {
	var err error
	u.RequestsTotal, err = RegisterOrReuse(reg, u.RequestsTotal)
	if err != nil {
		return err
	}
	u.RequestDuration, err = RegisterOrReuse(reg, u.RequestDuration)
	if err != nil {
		return err
	}
	u.CacheTotal, err = RegisterOrReuse(reg, u.CacheTotal)
	if err != nil {
		return err
	}
	u.FilterTotal, err = RegisterOrReuse(reg, u.FilterTotal)
	return err
}

// RegisterOrReuse registers c on reg, or returns the identical collector already registered.
func RegisterOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Default is the process-wide upstream metric set used by the gateway.
var Default = NewUpstream()

var upstreamMetricsRegistered bool

// RegisterUpstreamMetrics registers Default on the global registry. Must be called once from main.
func RegisterUpstreamMetrics() {
	if upstreamMetricsRegistered {
		return
	}
	if err := Default.Register(prometheus.DefaultRegisterer); err != nil {
		panic(err)
	}
	upstreamMetricsRegistered = true
}
