package provider_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"datafeed/internal/provider"
)

func TestFanOutLaunchesAllBeforeAwaiting(t *testing.T) {
	t.Parallel()

	// Arrange: every call blocks until all keys have started.
	keys := []string{"A", "B", "C"}
	var started atomic.Int32
	all := make(chan struct{})

	// Act
	rows, err := provider.FanOut(t.Context(), keys, provider.FanOutOptions{}, func(ctx context.Context, key string) ([]map[string]any, error) {
		if started.Add(1) == int32(len(keys)) {
			close(all)
		}
		select {
		case <-all:
		case <-time.After(2 * time.Second):
			return nil, errors.New("keys were not in flight together")
		}
		return []map[string]any{{"symbol": key}}, nil
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestFanOutFailFast(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := provider.FanOut(t.Context(), []string{"A", "B"}, provider.FanOutOptions{Policy: provider.FailFast}, func(ctx context.Context, key string) ([]map[string]any, error) {
		if key == "B" {
			return nil, boom
		}
		return []map[string]any{{"symbol": key}}, nil
	})

	require.ErrorIs(t, err, boom)
}

func TestFanOutSkipFailed(t *testing.T) {
	t.Parallel()

	rows, err := provider.FanOut(t.Context(), []string{"A", "B", "C"}, provider.FanOutOptions{Policy: provider.SkipFailed, Limit: 1}, func(ctx context.Context, key string) ([]map[string]any, error) {
		switch key {
		case "A":
			return nil, errors.New("boom")
		case "B":
			return nil, nil
		}
		return []map[string]any{{"symbol": key}}, nil
	})

	require.NoError(t, err)
	require.Equal(t, []map[string]any{{"symbol": "C"}}, rows)
}

func TestFanOutEmpty(t *testing.T) {
	t.Parallel()

	for _, policy := range []provider.Policy{provider.FailFast, provider.SkipFailed} {
		_, err := provider.FanOut(t.Context(), []string{"A", "B"}, provider.FanOutOptions{Policy: policy}, func(ctx context.Context, key string) ([]map[string]any, error) {
			if key == "A" {
				return nil, provider.Empty("nothing for %s", key)
			}
			return []map[string]any{}, nil
		})

		require.ErrorIs(t, err, provider.ErrEmptyData, "policy %v", policy)
	}
}

func TestFanOutAllFailedReturnsFirstError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := provider.FanOut(t.Context(), []int{1, 2}, provider.FanOutOptions{Policy: provider.SkipFailed}, func(ctx context.Context, key int) ([]map[string]any, error) {
		return nil, boom
	})

	require.ErrorIs(t, err, boom)
}
