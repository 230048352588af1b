// Package metrics provides a provider that counts dispatched records
// in Prometheus metrics, so error rates can be watched without parsing
// log output.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/loomlog/loom"
)

// A Provider counts records in a counter vector partitioned by
// category and level. It never inspects record payloads and is cheap
// enough to register unconditionally.
type Provider struct {
	records *prometheus.CounterVec
	min     loom.Level
}

// An Option configures a Provider.
type Option func(*Provider)

// WithMinLevel sets a static floor below which records are not
// counted.
func WithMinLevel(min loom.Level) Option {
	return func(p *Provider) { p.min = min }
}

// NewProvider registers the loom_records_total counter vector with reg
// and returns the provider. A nil reg uses the default registerer.
// Registration panics on metric name collision, matching the
// registerer's own contract.
func NewProvider(reg prometheus.Registerer, opts ...Option) *Provider {
	p := &Provider{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loom",
			Name:      "records_total",
			Help:      "Log records dispatched, by category and level.",
		}, []string{"category", "level"}),
		min: loom.LevelTrace,
	}
	for _, opt := range opts {
		opt(p)
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(p.records)
	return p
}

// Enabled implements loom.Provider.
func (p *Provider) Enabled(category string, level loom.Level) bool {
	return level >= p.min
}

// Log implements loom.Provider.
func (p *Provider) Log(rec *loom.Record) error {
	p.records.WithLabelValues(rec.Category, rec.Level.String()).Inc()
	return nil
}
