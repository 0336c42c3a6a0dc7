package ledger

import (
	"log/slog"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"

	"github.com/mmynk/groupledger/internal/calculator"
	"github.com/mmynk/groupledger/internal/metrics"
)

// Report is the result of evaluating a snapshot.
type Report struct {
	Digest         string                           `json:"digest"`
	Balances       calculator.Balances              `json:"balances"`
	Classification calculator.Classification        `json:"classification"`
	Suggestions    []calculator.SuggestedSettlement `json:"suggestions"`
	Skipped        []calculator.Skip                `json:"skipped,omitempty"`
}

// Evaluate runs the pipeline with no memoization. Empty lists are non-nil so
// they encode as [] rather than null.
func Evaluate(s Snapshot) Report {
	res := calculator.ComputeBalances(s.Expenses, s.Settlements, s.Members)
	c := calculator.Classify(res.Balances)
	return Report{
		Digest:   s.Digest().String(),
		Balances: res.Balances,
		Classification: calculator.Classification{
			Creditors: nonNil(c.Creditors),
			Debtors:   nonNil(c.Debtors),
			Settled:   nonNil(c.Settled),
		},
		Suggestions: nonNil(calculator.Simplify(res.Balances)),
		Skipped:     res.Skipped,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Engine evaluates snapshots and memoizes reports by snapshot digest.
// It is safe for concurrent use.
type Engine struct {
	mu    sync.Mutex
	cache *lru.Cache // nil when memoization is disabled
}

// NewEngine creates an Engine holding up to cacheSize reports.
// A cacheSize of zero or less disables memoization.
func NewEngine(cacheSize int) *Engine {
	e := &Engine{}
	if cacheSize > 0 {
		e.cache = lru.New(cacheSize)
	}
	return e
}

// Evaluate returns the report for s, from cache when an identical snapshot
// was evaluated before. Callers must treat the returned slices as read-only.
func (e *Engine) Evaluate(s Snapshot) Report {
	if e.cache == nil {
		metrics.BalanceComputations.WithLabelValues("disabled").Inc()
		return e.evaluate(s)
	}

	digest := s.Digest()

	e.mu.Lock()
	cached, ok := e.cache.Get(digest)
	e.mu.Unlock()
	if ok {
		metrics.BalanceComputations.WithLabelValues("hit").Inc()
		return cached.(Report)
	}

	metrics.BalanceComputations.WithLabelValues("miss").Inc()
	report := e.evaluate(s)

	e.mu.Lock()
	e.cache.Add(digest, report)
	e.mu.Unlock()

	return report
}

// Len returns the number of memoized reports.
func (e *Engine) Len() int {
	if e.cache == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.Len()
}

func (e *Engine) evaluate(s Snapshot) Report {
	start := time.Now()
	report := Evaluate(s)
	metrics.BalanceDuration.Observe(time.Since(start).Seconds())
	metrics.SuggestedSettlements.Observe(float64(len(report.Suggestions)))

	for _, skip := range report.Skipped {
		metrics.SkippedRecords.WithLabelValues(string(skip.Kind), skip.Reason).Inc()
		slog.Debug("Record skipped by balance engine",
			"kind", skip.Kind,
			"record_id", skip.RecordID,
			"user_id", skip.UserID,
			"reason", skip.Reason,
		)
	}

	return report
}
