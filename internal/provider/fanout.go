package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"datafeed/internal/logging"
)

// Policy decides what a failed sub-request does to the whole extraction.
type Policy int

const (
	// FailFast fails the extraction on the first sub-request error.
	FailFast Policy = iota
	// SkipFailed logs and skips failed or empty keys.
	SkipFailed
)

func (p Policy) String() string {
	if p == SkipFailed {
		return "skip-failed"
	}
	return "fail-fast"
}

type FanOutOptions struct {
	// Limit caps in-flight sub-requests. Zero launches every key at once.
	Limit  int
	Policy Policy
}

// FanOut runs fn for every key concurrently and concatenates the rows in
// completion order. It returns once every sub-request has finished.
//
// An empty sub-result is never fatal. When no key produced rows the result is
// an EmptyDataError, unless every key failed under SkipFailed, in which case
// the first failure is returned.
func FanOut[K comparable](ctx context.Context, keys []K, opts FanOutOptions, fn func(ctx context.Context, key K) ([]map[string]any, error)) ([]map[string]any, error) {
	rqID := logging.RequestID(ctx)

	g, gctx := errgroup.WithContext(ctx)
	if opts.Limit > 0 {
		g.SetLimit(opts.Limit)
	}

	var (
		mu       sync.Mutex
		out      []map[string]any
		failed   int
		firstErr error
	)
	for _, key := range keys {
		g.Go(func() error {
			rows, err := fn(gctx, key)
			if err != nil && errors.Is(err, ErrEmptyData) {
				rows, err = nil, nil
			}
			if err != nil {
				if opts.Policy == FailFast {
					return err
				}
				slog.Warn("sub-request failed, skipping",
					slog.String("rqID", rqID), slog.String("key", fmt.Sprint(key)), slog.String("err", err.Error()))
				mu.Lock()
				failed++
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return nil
			}
			if len(rows) == 0 {
				slog.Warn("no data for key", slog.String("rqID", rqID), slog.String("key", fmt.Sprint(key)))
				return nil
			}
			mu.Lock()
			out = append(out, rows...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(out) == 0 {
		if failed > 0 && failed == len(keys) {
			return nil, firstErr
		}
		return nil, Empty("no results found for %v", keys)
	}
	return out, nil
}
