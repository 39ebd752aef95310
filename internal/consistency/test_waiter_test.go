package consistency

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contentguard/internal/kv"
)

// flakyStore makes each key visible only after a configured number of reads,
// simulating eventual consistency.
type flakyStore struct {
	mu        sync.Mutex
	visibleAt map[string]int
	reads     map[string]int
	failKeys  map[string]bool
	getCalls  int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{
		visibleAt: map[string]int{},
		reads:     map[string]int{},
		failKeys:  map[string]bool{},
	}
}

func (s *flakyStore) Put(context.Context, string, []byte) error { return nil }

func (s *flakyStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	s.reads[key]++
	if s.failKeys[key] {
		return nil, fmt.Errorf("transient read failure")
	}
	at, ok := s.visibleAt[key]
	if !ok || s.reads[key] < at {
		return nil, kv.ErrNotFound
	}
	return []byte("v"), nil
}

func (s *flakyStore) List(context.Context, string) ([]string, error) { return nil, nil }

func (s *flakyStore) totalReads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCalls
}

func newTestWaiter(store kv.Store) *Waiter {
	w := NewWaiter(store, zap.NewNop())
	w.sleep = func(time.Duration) {}
	return w
}

func TestWaitDisabledPerformsZeroReads(t *testing.T) {
	store := newFlakyStore()
	w := newTestWaiter(store)

	res := w.Wait(context.Background(), Request{
		ArtifactID: "m-1",
		Keys:       []string{"module:m-1"},
		Enabled:    false,
	})
	require.True(t, res.Satisfied)
	require.True(t, res.Skipped)
	require.Zero(t, store.totalReads())
}

func TestWaitEmptyKeySetPerformsZeroReads(t *testing.T) {
	store := newFlakyStore()
	w := newTestWaiter(store)

	res := w.Wait(context.Background(), Request{ArtifactID: "m-1", Enabled: true})
	require.True(t, res.Satisfied)
	require.False(t, res.Skipped)
	require.Zero(t, store.totalReads())
}

func TestWaitSatisfiedFirstRound(t *testing.T) {
	store := newFlakyStore()
	store.visibleAt["module:m-1"] = 1
	store.visibleAt["module:m-1:en"] = 1
	w := newTestWaiter(store)

	res := w.Wait(context.Background(), Request{
		ArtifactID: "m-1",
		Keys:       []string{"module:m-1", "module:m-1:en"},
		Enabled:    true,
	})
	require.True(t, res.Satisfied)
	require.Equal(t, 1, res.Attempts)
	require.Equal(t, 2, store.totalReads())
}

func TestWaitEventuallySatisfied(t *testing.T) {
	store := newFlakyStore()
	store.visibleAt["module:m-2"] = 1
	store.visibleAt["module:m-2:de"] = 3
	w := newTestWaiter(store)

	res := w.Wait(context.Background(), Request{
		ArtifactID:   "m-2",
		Keys:         []string{"module:m-2", "module:m-2:de"},
		Enabled:      true,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		MaxWait:      time.Minute,
	})
	require.True(t, res.Satisfied)
	require.Equal(t, 3, res.Attempts)
}

func TestWaitTimesOutSoftly(t *testing.T) {
	store := newFlakyStore() // nothing ever visible
	w := NewWaiter(store, zap.NewNop())
	slept := time.Duration(0)
	w.sleep = func(d time.Duration) { slept += d }

	res := w.Wait(context.Background(), Request{
		ArtifactID:   "m-3",
		Keys:         []string{"module:m-3", "module:m-3:fr"},
		Enabled:      true,
		InitialDelay: 40 * time.Millisecond,
		MaxDelay:     40 * time.Millisecond,
		MaxWait:      50 * time.Millisecond,
	})
	require.False(t, res.Satisfied)
	require.False(t, res.Skipped)
	require.ElementsMatch(t, []string{"module:m-3", "module:m-3:fr"}, res.Missing)
	require.GreaterOrEqual(t, res.Attempts, 1)
}

func TestWaitAbsorbsReadErrors(t *testing.T) {
	store := newFlakyStore()
	store.visibleAt["module:m-4"] = 1
	store.failKeys["module:m-4:es"] = true
	w := newTestWaiter(store)

	res := w.Wait(context.Background(), Request{
		ArtifactID:   "m-4",
		Keys:         []string{"module:m-4", "module:m-4:es"},
		Enabled:      true,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		MaxWait:      5 * time.Millisecond,
	})
	// Never panics or errors; the failing key just stays missing.
	require.False(t, res.Satisfied)
	require.Equal(t, []string{"module:m-4:es"}, res.Missing)
}

func TestWaitNamespacePrefix(t *testing.T) {
	store := newFlakyStore()
	store.visibleAt["staging:module:m-5"] = 1
	w := newTestWaiter(store)

	res := w.Wait(context.Background(), Request{
		ArtifactID: "m-5",
		Keys:       []string{"module:m-5"},
		Namespace:  "staging",
		Enabled:    true,
	})
	require.True(t, res.Satisfied)
	require.Equal(t, 1, store.reads["staging:module:m-5"])
}

func TestWaitConcurrentRequestsIndependent(t *testing.T) {
	store := newFlakyStore()
	store.visibleAt["module:a"] = 1
	store.visibleAt["module:b"] = 1
	w := newTestWaiter(store)

	var wg sync.WaitGroup
	results := make([]Result, 2)
	for i, key := range []string{"module:a", "module:b"} {
		i, key := i, key
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = w.Wait(context.Background(), Request{
				ArtifactID: key,
				Keys:       []string{key},
				Enabled:    true,
			})
		}()
	}
	wg.Wait()
	require.True(t, results[0].Satisfied)
	require.True(t, results[1].Satisfied)
}
