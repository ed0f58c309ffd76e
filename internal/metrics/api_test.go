package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestUpstream_RegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	a := NewUpstream()
	if err := a.Register(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	b := NewUpstream()
	if err := b.Register(reg); err != nil {
		t.Fatalf("second register: %v", err)
	}

	a.CacheTotal.WithLabelValues("hit").Inc()
	b.CacheTotal.WithLabelValues("hit").Inc()

	if v := testutil.ToFloat64(a.CacheTotal.WithLabelValues("hit")); v != 2 {
		t.Errorf("shared counter = %v, want 2", v)
	}
}

func TestUpstream_CollectorNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	u := NewUpstream()
	if err := u.Register(reg); err != nil {
		t.Fatal(err)
	}
	u.RequestsTotal.WithLabelValues("/corpora/{corpus}", "200").Inc()
	u.RequestDuration.WithLabelValues("/corpora/{corpus}").Observe(0.2)
	u.FilterTotal.WithLabelValues("ok").Inc()
	u.CacheTotal.WithLabelValues("miss").Inc()

	n, err := testutil.GatherAndCount(reg,
		"dracor_upstream_requests_total",
		"dracor_upstream_request_duration_seconds",
		"dracor_payload_cache_total",
		"dracor_filter_evaluations_total",
	)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("gathered %d series, want 4", n)
	}
}
