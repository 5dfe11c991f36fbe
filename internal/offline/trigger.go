package offline

import (
	"context"
	"time"

	"github.com/riskibarqy/golf-league/internal/platform/logging"
)

// Syncer is what a Trigger drives. *Engine satisfies it.
type Syncer interface {
	Sync(ctx context.Context) (Result, error)
}

// Trigger feeds sync requests to a single consumer. Requests that arrive
// while one is already queued are coalesced; a request that arrives during
// a run is queued once and runs after it.
type Trigger struct {
	syncer   Syncer
	interval time.Duration
	logger   *logging.Logger
	requests chan string
	results  func(reason string, res Result, err error)
}

type TriggerOption func(*Trigger)

// WithResultHook is called after every run with the reason that caused it.
func WithResultHook(fn func(reason string, res Result, err error)) TriggerOption {
	return func(t *Trigger) {
		t.results = fn
	}
}

// NewTrigger builds a trigger. A non-positive interval disables the ticker.
func NewTrigger(syncer Syncer, interval time.Duration, logger *logging.Logger, opts ...TriggerOption) *Trigger {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Trigger{
		syncer:   syncer,
		interval: interval,
		logger:   logger,
		requests: make(chan string, 1),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Request asks for a sync. It never blocks and reports false when the
// request was folded into one already pending.
func (t *Trigger) Request(reason string) bool {
	select {
	case t.requests <- reason:
		return true
	default:
		return false
	}
}

// Run consumes requests until ctx is done. An in-flight sync is allowed to
// finish before Run returns.
func (t *Trigger) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if t.interval > 0 {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			t.run(ctx, "interval")
		case reason := <-t.requests:
			t.run(ctx, reason)
		}
	}
}

func (t *Trigger) run(ctx context.Context, reason string) {
	res, err := t.syncer.Sync(context.WithoutCancel(ctx))
	switch {
	case err != nil:
		t.logger.ErrorContext(ctx, "triggered sync failed", "reason", reason, "error", err)
	case res.Skipped:
		t.logger.DebugContext(ctx, "triggered sync skipped", "reason", reason)
	default:
		t.logger.InfoContext(ctx, "triggered sync done",
			"reason", reason,
			"success", res.Success,
			"failed", res.Failed,
		)
	}
	if t.results != nil {
		t.results(reason, res, err)
	}
}
