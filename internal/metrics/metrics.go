// File: internal/metrics/metrics.go
package metrics

import (
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"secret.module/secret"
)

// Observer turns secret lifecycle events into Prometheus metrics.
type Observer struct {
	allocated *prometheus.CounterVec
	accessed  *prometheus.CounterVec
	erased    *prometheus.CounterVec
	failures  *prometheus.CounterVec
	live      *prometheus.GaugeVec
}

// NewObserver registers the secret metrics with reg.
func NewObserver(reg prometheus.Registerer) *Observer {
	factory := promauto.With(reg)
	return &Observer{
		allocated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secret_allocated_total",
				Help: "Total number of secrets allocated",
			},
			[]string{"variant"},
		),
		accessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secret_access_total",
				Help: "Total number of access scopes opened",
			},
			[]string{"variant", "mode"},
		),
		erased: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secret_erased_total",
				Help: "Total number of secrets erased",
			},
			[]string{"variant"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secret_failures_total",
				Help: "Total number of failed secret operations",
			},
			[]string{"variant", "code"},
		),
		live: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "secret_live",
				Help: "Number of secrets allocated and not yet erased",
			},
			[]string{"variant"},
		),
	}
}

func (o *Observer) Observe(ev secret.Event) {
	switch ev.Kind {
	case secret.EventAllocated:
		o.allocated.WithLabelValues(ev.Variant).Inc()
		o.live.WithLabelValues(ev.Variant).Inc()
	case secret.EventAccessed:
		o.accessed.WithLabelValues(ev.Variant, ev.Mode.String()).Inc()
	case secret.EventErased:
		o.erased.WithLabelValues(ev.Variant).Inc()
		o.live.WithLabelValues(ev.Variant).Dec()
	case secret.EventFailed:
		code := string(secret.CodeOf(ev.Err))
		if code == "" {
			code = "UNKNOWN"
		}
		o.failures.WithLabelValues(ev.Variant, code).Inc()
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *prometheus.Registry
	defaultObserver *Observer
)

// Default returns the process-wide registry and observer, creating them on
// first use.
func Default() (*prometheus.Registry, *Observer) {
	defaultOnce.Do(func() {
		defaultRegistry = prometheus.NewRegistry()
		defaultObserver = NewObserver(defaultRegistry)
	})
	return defaultRegistry, defaultObserver
}

// WriteText writes every metric family of g in the Prometheus text format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
