package idempotency

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func TestGuardReplaysSuccessfulResponse(t *testing.T) {
	guard := NewGuard(memory.NewIdempotencyRepository(), time.Hour, nil)
	ctx := context.Background()
	hash := RequestHash("place", []byte("cart-1"))

	calls := 0
	run := func(context.Context) ([]byte, error) {
		calls++
		return []byte(fmt.Sprintf(`{"id":"o-%d"}`, calls)), nil
	}

	body, replayed, err := guard.Do(ctx, "key-1", hash, run)
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.JSONEq(t, `{"id":"o-1"}`, string(body))

	body, replayed, err = guard.Do(ctx, "key-1", hash, run)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.JSONEq(t, `{"id":"o-1"}`, string(body))
	assert.Equal(t, 1, calls)
}

func TestGuardRejectsKeyReuseWithDifferentRequest(t *testing.T) {
	guard := NewGuard(memory.NewIdempotencyRepository(), time.Hour, nil)
	ctx := context.Background()
	ok := func(context.Context) ([]byte, error) { return []byte(`{}`), nil }

	_, _, err := guard.Do(ctx, "key-1", RequestHash("place", []byte("cart-1")), ok)
	require.NoError(t, err)

	_, _, err = guard.Do(ctx, "key-1", RequestHash("place", []byte("cart-2")), ok)
	require.ErrorIs(t, err, domain.ErrIdempotencyHashMismatch)
}

func TestGuardReplaysFailureKind(t *testing.T) {
	guard := NewGuard(memory.NewIdempotencyRepository(), time.Hour, nil)
	ctx := context.Background()
	hash := RequestHash("place", []byte("cart-1"))

	shortage := &domain.InsufficientStockError{ProductID: "p-1", Requested: 3, Available: 1}
	_, _, err := guard.Do(ctx, "key-1", hash, func(context.Context) ([]byte, error) {
		return nil, shortage
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, replayed, err := guard.Do(ctx, "key-1", hash, func(context.Context) ([]byte, error) {
		t.Fatal("run must not be called for a replayed failure")
		return nil, nil
	})
	assert.False(t, replayed)
	require.True(t, domain.IsInsufficientStock(err))

	var replayedErr *ReplayedError
	require.True(t, errors.As(err, &replayedErr))
	assert.Equal(t, shortage.Error(), replayedErr.Message)
}

func TestGuardReportsInProgress(t *testing.T) {
	repo := memory.NewIdempotencyRepository()
	guard := NewGuard(repo, time.Hour, nil)
	ctx := context.Background()
	hash := RequestHash("place", []byte("cart-1"))

	_, err := repo.CreateProcessing(ctx, "key-1", hash, time.Hour)
	require.NoError(t, err)

	_, _, err = guard.Do(ctx, "key-1", hash, func(context.Context) ([]byte, error) {
		return []byte(`{}`), nil
	})
	require.ErrorIs(t, err, ErrRequestInProgress)
}

func TestGuardStoresResultAfterCallerCanceled(t *testing.T) {
	guard := NewGuard(memory.NewIdempotencyRepository(), time.Hour, nil)
	hash := RequestHash("place", []byte("cart-1"))

	calls := 0
	ctx, cancel := context.WithCancel(context.Background())
	body, _, err := guard.Do(ctx, "key-1", hash, func(context.Context) ([]byte, error) {
		calls++
		cancel()
		return []byte(`{"id":"o-1"}`), nil
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"o-1"}`, string(body))

	body, replayed, err := guard.Do(context.Background(), "key-1", hash, func(context.Context) ([]byte, error) {
		calls++
		return []byte(`{"id":"o-2"}`), nil
	})
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.JSONEq(t, `{"id":"o-1"}`, string(body))
	assert.Equal(t, 1, calls)
}

func TestGuardStoresFailureAfterCallerCanceled(t *testing.T) {
	guard := NewGuard(memory.NewIdempotencyRepository(), time.Hour, nil)
	hash := RequestHash("place", []byte("cart-1"))

	ctx, cancel := context.WithCancel(context.Background())
	_, _, err := guard.Do(ctx, "key-1", hash, func(context.Context) ([]byte, error) {
		cancel()
		return nil, domain.ErrCartNotFound
	})
	require.ErrorIs(t, err, domain.ErrCartNotFound)

	_, replayed, err := guard.Do(context.Background(), "key-1", hash, func(context.Context) ([]byte, error) {
		return []byte(`{}`), nil
	})
	assert.False(t, replayed)
	assert.NotErrorIs(t, err, ErrRequestInProgress)
	assert.True(t, domain.IsNotFound(err))
}

func TestGuardWithoutKeyAlwaysRuns(t *testing.T) {
	guard := NewGuard(memory.NewIdempotencyRepository(), time.Hour, nil)
	calls := 0
	run := func(context.Context) ([]byte, error) {
		calls++
		return nil, nil
	}

	for range 3 {
		_, replayed, err := guard.Do(context.Background(), "  ", "hash", run)
		require.NoError(t, err)
		assert.False(t, replayed)
	}
	assert.Equal(t, 3, calls)
}

func TestReplayedErrorKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		is   func(error) bool
	}{
		{name: "not found", err: domain.ErrOrderNotFound, is: domain.IsNotFound},
		{name: "bad state", err: fmt.Errorf("finish: %w", domain.ErrBadOrderState), is: domain.IsBadOrderState},
		{name: "invalid", err: domain.ErrCartIDRequired, is: domain.IsValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, _ := classify(tc.err)
			replayed := &ReplayedError{Kind: kind, Message: tc.err.Error()}
			assert.True(t, tc.is(replayed))
		})
	}

	internal := &ReplayedError{Kind: kindInternal}
	assert.False(t, domain.IsNotFound(internal))
	assert.NotEmpty(t, internal.Error())
}
