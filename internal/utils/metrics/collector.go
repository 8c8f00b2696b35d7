// internal/utils/metrics/collector.go
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
)

const namespace = "genesis"

// Collector owns the node's metrics on a private registry so that several
// collectors (one per test) never clash on registration.
type Collector struct {
	registry *prometheus.Registry

	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	tokensPurchased   *prometheus.CounterVec
	solRaised         *prometheus.CounterVec
	commissionPaid    *prometheus.CounterVec
	swapVolume        *prometheus.CounterVec
	swapFees          *prometheus.CounterVec
	oraclePrice       *prometheus.GaugeVec
	oracleAge         *prometheus.GaugeVec
	poolLiquidity     *prometheus.GaugeVec
	events            *prometheus.CounterVec
}

// NewCollector creates the collector and registers every metric plus the
// Go runtime collectors.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Ledger operations by ledger, operation and result",
		}, []string{"ledger", "operation", "result"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Ledger operation latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}, []string{"ledger", "operation"}),
		tokensPurchased: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "launch_tokens_purchased_total",
			Help:      "Base units of tokens sold per launch",
		}, []string{"launch"}),
		solRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "launch_lamports_raised_total",
			Help:      "Lamports paid by buyers per launch, fees included",
		}, []string{"launch"}),
		commissionPaid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "affiliate_commission_total",
			Help:      "Commission tokens minted per affiliate tier",
		}, []string{"tier"}),
		swapVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swap_volume_total",
			Help:      "Swap input amount per pool and source mint",
		}, []string{"pool", "source_mint"}),
		swapFees: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swap_fees_total",
			Help:      "Swap fees retained per pool, in output units",
		}, []string{"pool"}),
		oraclePrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "oracle_price",
			Help:      "Latest weighted oracle price (1e9 precision)",
		}, []string{"pool"}),
		oracleAge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "oracle_age_seconds",
			Help:      "Seconds since the pool's last oracle update",
		}, []string{"pool"}),
		poolLiquidity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_liquidity",
			Help:      "Tracked pool liquidity per side",
		}, []string{"pool", "side"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Committed ledger events by type",
		}, []string{"type"}),
	}

	c.registry.MustRegister(
		c.operations, c.operationDuration,
		c.tokensPurchased, c.solRaised, c.commissionPaid,
		c.swapVolume, c.swapFees, c.oraclePrice, c.oracleAge, c.poolLiquidity,
		c.events,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the private registry for the /metrics handler.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Reset clears every labelled series (useful for tests).
func (c *Collector) Reset() {
	for _, v := range []interface{ Reset() }{
		c.operations, c.operationDuration, c.tokensPurchased, c.solRaised,
		c.commissionPaid, c.swapVolume, c.swapFees, c.oraclePrice,
		c.oracleAge, c.poolLiquidity, c.events,
	} {
		v.Reset()
	}
}

// Result classifies an operation outcome into a low-cardinality label.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, ledger.ErrConflict):
		return "conflict"
	case errors.Is(err, ledger.ErrRetryLater):
		return "retry_later"
	case errors.Is(err, ledger.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ledger.ErrNotFound):
		return "not_found"
	case ledger.IsArithmetic(err):
		return "arithmetic"
	default:
		return "rejected"
	}
}

// RecordOperation counts one ledger operation and observes its latency.
func (c *Collector) RecordOperation(ledgerName, operation string, duration time.Duration, err error) {
	c.operations.WithLabelValues(ledgerName, operation, Result(err)).Inc()
	c.operationDuration.WithLabelValues(ledgerName, operation).Observe(duration.Seconds())
}

// Measure runs f and records it as one operation.
func (c *Collector) Measure(ledgerName, operation string, f func() error) error {
	start := time.Now()
	err := f()
	c.RecordOperation(ledgerName, operation, time.Since(start), err)
	return err
}

// ObserveOracleAge sets the age gauge for a pool.
func (c *Collector) ObserveOracleAge(pool string, age time.Duration) {
	c.oracleAge.WithLabelValues(pool).Set(age.Seconds())
}
