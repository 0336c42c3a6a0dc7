// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "groupledger"

// Registry is the registry every collector below is registered with.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// BalanceComputations counts evaluations of a group snapshot, by cache result.
	BalanceComputations = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "balance_computations_total",
		Help:      "Balance evaluations by cache result (hit, miss, disabled).",
	}, []string{"cache"})

	// BalanceDuration observes how long a cache-missing evaluation took.
	BalanceDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "balance_computation_seconds",
		Help:      "Time spent folding a snapshot into balances and suggestions.",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
	})

	// SkippedRecords counts records the engine could not fold.
	SkippedRecords = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "skipped_records_total",
		Help:      "Records skipped by the balance engine, by kind and reason.",
	}, []string{"kind", "reason"})

	// SuggestedSettlements observes how many payments each evaluation suggests.
	SuggestedSettlements = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "suggested_settlements",
		Help:      "Number of suggested payments per evaluation.",
		Buckets:   prometheus.LinearBuckets(0, 2, 10),
	})

	// RecordMutations counts writes to expenses, settlements and groups.
	RecordMutations = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_mutations_total",
		Help:      "Create, update and delete operations by record kind.",
	}, []string{"kind", "op"})

	// WatchSubscribers is the number of open balance watch streams.
	WatchSubscribers = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "watch_subscribers",
		Help:      "Open WatchGroupBalances streams.",
	})

	// DroppedNotifications counts change events dropped for slow subscribers.
	DroppedNotifications = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dropped_notifications_total",
		Help:      "Change notifications dropped because a subscriber's buffer was full.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// RegisterCacheEntries exports the number of memoized balance reports,
// read from entries at scrape time. It may be called once.
func RegisterCacheEntries(entries func() int) {
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "balance_cache_entries",
		Help:      "Balance reports currently memoized.",
	}, func() float64 { return float64(entries()) })
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
