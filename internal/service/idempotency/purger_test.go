package idempotency

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

var (
	_ ExpiredPurger = (*scriptedPurgeStore)(nil)
	_ ExpiredPurger = (*memory.IdempotencyRepository)(nil)
)

// scriptedPurgeStore отдаёт заранее заданные результаты удаления по порциям.
type scriptedPurgeStore struct {
	mu      sync.Mutex
	batches []int
	err     error
	limits  []int
}

func (s *scriptedPurgeStore) DeleteExpired(_ context.Context, _ time.Time, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits = append(s.limits, limit)
	if s.err != nil {
		return 0, s.err
	}
	if len(s.batches) == 0 {
		return 0, nil
	}
	n := s.batches[0]
	s.batches = s.batches[1:]
	return n, nil
}

func (s *scriptedPurgeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limits)
}

func TestPurgerSweepStopsOnPartialBatch(t *testing.T) {
	store := &scriptedPurgeStore{batches: []int{2, 2, 1}}
	reg := prometheus.NewRegistry()
	purger := NewPurger(store, PurgeConfig{BatchSize: 2}, metrics.NewBackgroundMetricsWithRegisterer(reg), nil)

	report, err := purger.Sweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, PurgeReport{Deleted: 5, Batches: 3}, report)
	assert.Equal(t, []int{2, 2, 2}, store.limits)

	count, err := testutil.GatherAndCount(reg, "storefront_idempotency_purge_batch_size")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPurgerSweepHonoursBatchLimit(t *testing.T) {
	store := &scriptedPurgeStore{batches: []int{3, 3, 3, 3}}
	purger := NewPurger(store, PurgeConfig{BatchSize: 3, MaxBatches: 2}, nil, nil)

	report, err := purger.Sweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, PurgeReport{Deleted: 6, Batches: 2, Truncated: true}, report)
	assert.Equal(t, 2, store.calls())
}

func TestPurgerSweepReturnsStoreError(t *testing.T) {
	store := &scriptedPurgeStore{err: errors.New("db down")}
	purger := NewPurger(store, PurgeConfig{}, nil, nil)

	report, err := purger.Sweep(context.Background(), time.Now())
	require.ErrorContains(t, err, "db down")
	assert.Zero(t, report.Deleted)
	assert.Equal(t, []int{DefaultPurgeConfig().BatchSize}, store.limits)
}

func TestPurgerSweepSkipsStoreWhenCanceled(t *testing.T) {
	store := &scriptedPurgeStore{batches: []int{10}}
	purger := NewPurger(store, PurgeConfig{BatchSize: 10}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := purger.Sweep(ctx, time.Now())
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, store.calls())
}

func TestPurgerSweepMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewIdempotencyRepository()
	for _, key := range []string{"k-1", "k-2", "k-3"} {
		_, err := repo.CreateProcessing(ctx, key, "hash", time.Millisecond)
		require.NoError(t, err)
	}
	_, err := repo.CreateProcessing(ctx, "fresh", "hash", time.Hour)
	require.NoError(t, err)

	purger := NewPurger(repo, PurgeConfig{BatchSize: 2}, nil, nil)
	report, err := purger.Sweep(ctx, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Deleted)
	assert.False(t, report.Truncated)
}

func TestPurgerRunRecordsSweepsUntilCanceled(t *testing.T) {
	store := &scriptedPurgeStore{}
	reg := prometheus.NewRegistry()
	m := metrics.NewBackgroundMetricsWithRegisterer(reg)
	purger := NewPurger(store, PurgeConfig{Interval: 5 * time.Millisecond, BatchSize: 10}, m, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		purger.Run(ctx)
	}()

	require.Eventually(t, func() bool { return store.calls() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("purger did not stop on context cancel")
	}

	count, err := testutil.GatherAndCount(reg, "storefront_idempotency_purge_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPurgerRunWithoutStoreReturns(t *testing.T) {
	purger := NewPurger(nil, PurgeConfig{}, nil, nil)
	purger.Run(context.Background())
}
