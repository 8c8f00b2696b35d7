// internal/keeper/keeper.go
package keeper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/rovshanmuradov/genesis-launchpad/internal/ledger"
	"github.com/rovshanmuradov/genesis-launchpad/internal/utils/metrics"
)

// Job is one keeper pass, run on a schedule.
type Job interface {
	Name() string
	RunOnce(ctx context.Context) (Report, error)
}

// Report counts the outcome of one pass.
type Report struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// RetryPolicy bounds resubmission of a conflicting update.
type RetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy matches the node defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxTries: 5, InitialInterval: 200 * time.Millisecond, MaxInterval: 5 * time.Second}
}

func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	return b
}

// submit runs op until it succeeds, fails permanently or runs out of tries.
// Only write conflicts are retried here; temporal rejections wait for the
// next scheduled pass.
func submit[T any](ctx context.Context, policy RetryPolicy, notify backoff.Notify, op func() (T, error)) (T, error) {
	maxTries := policy.MaxTries
	if maxTries == 0 {
		maxTries = 1
	}
	return backoff.Retry(ctx, func() (T, error) {
		res, err := op()
		if err != nil && !errors.Is(err, ledger.ErrConflict) {
			return res, backoff.Permanent(err)
		}
		return res, err
	},
		backoff.WithBackOff(policy.backOff()),
		backoff.WithMaxTries(maxTries),
		backoff.WithNotify(notify))
}

// tally collects per-target outcomes from concurrent workers.
type tally struct {
	mu     sync.Mutex
	report Report
	errs   []error
}

func (t *tally) updated() {
	t.mu.Lock()
	t.report.Updated++
	t.mu.Unlock()
}

func (t *tally) skipped() {
	t.mu.Lock()
	t.report.Skipped++
	t.mu.Unlock()
}

func (t *tally) failed(err error) {
	t.mu.Lock()
	t.report.Failed++
	t.errs = append(t.errs, err)
	t.mu.Unlock()
}

func (t *tally) result() (Report, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.report, errors.Join(t.errs...)
}

func record(m *metrics.Collector, ledgerName, op string, start time.Time, err error) {
	if m != nil {
		m.RecordOperation(ledgerName, op, time.Since(start), err)
	}
}
