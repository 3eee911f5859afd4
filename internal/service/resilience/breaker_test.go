package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestBreaker(maxFailures int) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker("test", maxFailures, time.Minute, quietLogger())
	cb.now = clock.Now
	return cb, clock
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb, _ := newTestBreaker(2)
	boom := errors.New("boom")

	require.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CircuitClosed, cb.State())
	require.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CircuitOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(2)
	boom := errors.New("boom")

	_ = cb.Execute(func() error { return boom })
	require.NoError(t, cb.Execute(func() error { return nil }))
	_ = cb.Execute(func() error { return boom })
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cb, clock := newTestBreaker(1)
	boom := errors.New("boom")
	_ = cb.Execute(func() error { return boom })
	require.Equal(t, CircuitOpen, cb.State())

	clock.now = clock.now.Add(2 * time.Minute)
	_ = cb.Execute(func() error { return boom })
	assert.Equal(t, CircuitOpen, cb.State(), "failed probe reopens")

	clock.now = clock.now.Add(2 * time.Minute)
	require.NoError(t, cb.Execute(func() error {
		assert.Equal(t, CircuitHalfOpen, cb.State())
		require.ErrorIs(t, cb.Execute(func() error { return nil }), ErrCircuitOpen, "only one probe at a time")
		return nil
	}))
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitState_String(t *testing.T) {
	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitState(42).String())
}

type flakyCache struct {
	err         error
	gets        int
	sets        int
	invalidated []string
}

func (c *flakyCache) Get(context.Context, string) (domain.Product, bool, error) {
	c.gets++
	if c.err != nil {
		return domain.Product{}, false, c.err
	}
	return domain.Product{ID: "p-1", Name: "Lamp"}, true, nil
}

func (c *flakyCache) Set(context.Context, domain.Product) error {
	c.sets++
	return c.err
}

func (c *flakyCache) Invalidate(_ context.Context, ids ...string) error {
	c.invalidated = append(c.invalidated, ids...)
	return c.err
}

func TestGuardedCache_ShortCircuitsReadsButAlwaysInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := &flakyCache{err: errors.New("redis down")}
	cb, clock := newTestBreaker(2)
	cache := NewGuardedCache(inner, cb)

	_, _, err := cache.Get(ctx, "p-1")
	require.Error(t, err)
	require.Error(t, cache.Set(ctx, domain.Product{ID: "p-1"}))
	require.Equal(t, CircuitOpen, cb.State())

	_, _, err = cache.Get(ctx, "p-1")
	require.ErrorIs(t, err, ErrCircuitOpen)
	require.ErrorIs(t, cache.Set(ctx, domain.Product{ID: "p-1"}), ErrCircuitOpen)
	assert.Equal(t, 1, inner.gets)
	assert.Equal(t, 1, inner.sets)

	require.Error(t, cache.Invalidate(ctx, "p-1", "p-2"))
	assert.Equal(t, []string{"p-1", "p-2"}, inner.invalidated)

	inner.err = nil
	require.NoError(t, cache.Invalidate(ctx, "p-3"))
	assert.Equal(t, CircuitClosed, cb.State())

	clock.now = clock.now.Add(time.Hour)
	product, ok, err := cache.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Lamp", product.Name)
}
