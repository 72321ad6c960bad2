// Package metrics maintains the prometheus collectors describing the work
// done by the ledger.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "powledger"

// Set of result label values.
const (
	ResultOK        = "ok"
	ResultCancelled = "cancelled"
	ResultFailed    = "failed"
)

// Metrics holds the collectors for mining, validation and the mempool. All
// collectors are registered on a private registry so several values can
// exist in one process. A nil Metrics discards every observation.
type Metrics struct {
	registry *prometheus.Registry

	miningOps      *prometheus.CounterVec
	miningDuration prometheus.Histogram
	miningAttempts prometheus.Counter
	blocksAdded    prometheus.Counter
	blocksRejected *prometheus.CounterVec
	chainLength    prometheus.Gauge
	validations    *prometheus.CounterVec
	txSubmitted    prometheus.Counter
	mempoolSize    prometheus.Gauge
}

// New constructs the collectors and registers them along with the go and
// process collectors.
func New() *Metrics {
	m := Metrics{
		registry: prometheus.NewRegistry(),

		miningOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mining",
			Name:      "operations_total",
			Help:      "the number of mining operations by result",
		}, []string{"result"}),

		miningDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "mining",
			Name:      "duration_seconds",
			Help:      "the time spent searching for a nonce",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),

		miningAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mining",
			Name:      "attempts_total",
			Help:      "the number of nonces needed to seal blocks",
		}),

		blocksAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "blocks_added_total",
			Help:      "the number of blocks appended to the chain",
		}),

		blocksRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "blocks_rejected_total",
			Help:      "the number of candidate blocks rejected by reason",
		}, []string{"reason"}),

		chainLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "length",
			Help:      "the number of blocks in the chain",
		}),

		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "validations_total",
			Help:      "the number of chain validations by result",
		}, []string{"result"}),

		txSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mempool",
			Name:      "submitted_total",
			Help:      "the number of transactions accepted into the mempool",
		}),

		mempoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mempool",
			Name:      "size",
			Help:      "the number of transactions waiting to be mined",
		}),
	}

	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.miningOps,
		m.miningDuration,
		m.miningAttempts,
		m.blocksAdded,
		m.blocksRejected,
		m.chainLength,
		m.validations,
		m.txSubmitted,
		m.mempoolSize,
	)

	return &m
}

// Registry returns the registry the collectors live in so other packages
// can register their own collectors next to them.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the http handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// =============================================================================

// ObserveMining records the outcome of a nonce search.
func (m *Metrics) ObserveMining(duration time.Duration, attempts uint64, err error) {
	if m == nil {
		return
	}

	m.miningDuration.Observe(duration.Seconds())

	switch {
	case err == nil:
		m.miningOps.WithLabelValues(ResultOK).Inc()
		m.miningAttempts.Add(float64(attempts))
	case isCancelled(err):
		m.miningOps.WithLabelValues(ResultCancelled).Inc()
	default:
		m.miningOps.WithLabelValues(ResultFailed).Inc()
	}
}

// BlockAdded records a block appended to a chain of the specified length.
func (m *Metrics) BlockAdded(length int) {
	if m == nil {
		return
	}

	m.blocksAdded.Inc()
	m.chainLength.Set(float64(length))
}

// BlockRejected records a candidate block refused by the chain.
func (m *Metrics) BlockRejected(reason string) {
	if m == nil {
		return
	}

	m.blocksRejected.WithLabelValues(reason).Inc()
}

// ChainLength records the current length of the chain.
func (m *Metrics) ChainLength(length int) {
	if m == nil {
		return
	}

	m.chainLength.Set(float64(length))
}

// Validation records the result of a chain validation.
func (m *Metrics) Validation(err error) {
	if m == nil {
		return
	}

	result := ResultOK
	if err != nil {
		result = ResultFailed
	}
	m.validations.WithLabelValues(result).Inc()
}

// TxSubmitted records a transaction accepted into a mempool of the
// specified size.
func (m *Metrics) TxSubmitted(size int) {
	if m == nil {
		return
	}

	m.txSubmitted.Inc()
	m.mempoolSize.Set(float64(size))
}

// MempoolSize records the current size of the mempool.
func (m *Metrics) MempoolSize(size int) {
	if m == nil {
		return
	}

	m.mempoolSize.Set(float64(size))
}

// =============================================================================

// isCancelled reports whether the operation was stopped by its context.
func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
