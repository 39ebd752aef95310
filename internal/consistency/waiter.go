// Package consistency confirms that artifact keys written to an
// eventually-consistent store have become visible before the pipeline
// reports success. The wait is advisory: it can time out, and callers
// treat that as a signal, never as an error.
package consistency

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"contentguard/internal/backoff"
	"contentguard/internal/kv"
)

// Request describes one durability check. It is built per check and carries
// no state between calls; the Enabled flag travels here instead of in module
// state so tests can flip it per request.
type Request struct {
	ArtifactID string
	Keys       []string
	// Namespace, when set, prefixes every key ("<ns>:<key>").
	Namespace string
	Enabled   bool

	InitialDelay time.Duration
	MaxDelay     time.Duration
	// MaxWait bounds the cumulative wait. No round starts once it would
	// push past this budget.
	MaxWait time.Duration
}

// Result reports how the wait ended. Satisfied=false is a soft timeout, not
// a failure; Missing lists the keys still unresolved in the last round.
type Result struct {
	Satisfied bool
	Skipped   bool
	Attempts  int
	Elapsed   time.Duration
	Missing   []string
}

const (
	defaultInitialDelay = 300 * time.Millisecond
	defaultMaxDelay     = 3 * time.Second
	defaultMaxWait      = 15 * time.Second
)

type Waiter struct {
	store  kv.Store
	logger *zap.Logger

	// sleep is swapped out in tests to avoid real delays.
	sleep func(time.Duration)
}

func NewWaiter(store kv.Store, logger *zap.Logger) *Waiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Waiter{
		store:  store,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Wait polls the store in rounds until every key resolves or the time budget
// runs out. It never returns an error: single-key read failures count as
// "not yet visible" for that round, and budget exhaustion is reported through
// Result.Satisfied.
func (w *Waiter) Wait(ctx context.Context, req Request) Result {
	if !req.Enabled {
		return Result{Satisfied: true, Skipped: true}
	}
	if len(req.Keys) == 0 {
		return Result{Satisfied: true}
	}

	keys := make([]string, len(req.Keys))
	for i, k := range req.Keys {
		if req.Namespace != "" {
			keys[i] = req.Namespace + ":" + k
		} else {
			keys[i] = k
		}
	}

	policy := backoff.Policy{
		InitialDelay: orDefault(req.InitialDelay, defaultInitialDelay),
		MaxDelay:     orDefault(req.MaxDelay, defaultMaxDelay),
		Factor:       2,
	}
	maxWait := orDefault(req.MaxWait, defaultMaxWait)

	start := time.Now()
	attempt := 0
	for {
		missing := w.readRound(ctx, keys)
		if len(missing) == 0 {
			elapsed := time.Since(start)
			w.logger.Debug("all keys visible",
				zap.String("artifact_id", req.ArtifactID),
				zap.Int("attempts", attempt+1),
				zap.Duration("elapsed", elapsed))
			return Result{Satisfied: true, Attempts: attempt + 1, Elapsed: elapsed}
		}

		delay := policy.Delay(attempt)
		if time.Since(start)+delay > maxWait {
			elapsed := time.Since(start)
			w.logger.Warn("durability not confirmed within budget",
				zap.String("artifact_id", req.ArtifactID),
				zap.Strings("missing", missing),
				zap.Int("attempts", attempt+1),
				zap.Duration("elapsed", elapsed))
			return Result{Attempts: attempt + 1, Elapsed: elapsed, Missing: missing}
		}

		w.logger.Debug("keys not yet visible, backing off",
			zap.String("artifact_id", req.ArtifactID),
			zap.Strings("missing", missing),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay))
		w.sleep(delay)
		attempt++
	}
}

// readRound issues one read per key in parallel and returns the keys that
// did not resolve. Read errors are absorbed: the key simply counts as
// missing for this round and is retried on the next one.
func (w *Waiter) readRound(ctx context.Context, keys []string) []string {
	hits := make([]bool, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			value, err := w.store.Get(gctx, key)
			if err == nil && len(value) > 0 {
				hits[i] = true
			}
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	var missing []string
	for i, ok := range hits {
		if !ok {
			missing = append(missing, keys[i])
		}
	}
	return missing
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
