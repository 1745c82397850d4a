package api

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultValid   = "valid"
	resultInvalid = "invalid"
)

// Metrics holds the engine's Prometheus counters.
type Metrics struct {
	Signed   *prometheus.CounterVec // by suite
	Verified *prometheus.CounterVec // by suite and result
}

// NewMetrics creates the counters and registers them on registry. With a
// nil registry the counters work but are not exported. Engines sharing a
// registry share the counters.
func NewMetrics(registry prometheus.Registerer) (*Metrics, error) {
	signed, err := counterVec(registry, prometheus.CounterOpts{
		Name: "bcos_tx_signed_total",
		Help: "The total number of transactions signed",
	}, "suite")
	if err != nil {
		return nil, err
	}
	verified, err := counterVec(registry, prometheus.CounterOpts{
		Name: "bcos_tx_verify_total",
		Help: "The total number of signature verifications by result",
	}, "suite", "result")
	if err != nil {
		return nil, err
	}
	return &Metrics{Signed: signed, Verified: verified}, nil
}

func counterVec(registry prometheus.Registerer, opts prometheus.CounterOpts, labels ...string) (*prometheus.CounterVec, error) {
	c := prometheus.NewCounterVec(opts, labels)
	if registry == nil {
		return c, nil
	}
	if err := registry.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, errors.Wrapf(err, "register %s", opts.Name)
	}
	return c, nil
}
