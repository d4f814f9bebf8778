// Package sourcetest provides generic test cases for FetchSource
// implementations.
package sourcetest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	batchloader "github.com/kazuhira-dev/batch-loader"
	"golang.org/x/sync/errgroup"
)

// Options configures the generic FetchSource contract tests.
type Options struct {
	// Batch is the batch key handed to every Fetch call.
	Batch batchloader.BatchKey

	// Items are item keys the source is expected to handle. At least two are
	// required so that the disjoint-call case is meaningful; they do not all
	// have to resolve to values.
	Items []batchloader.ItemKey

	// Concurrency is the number of goroutines used by the concurrent case.
	// It defaults to 8.
	Concurrency int
}

// Run exercises the FetchSource contract against src:
// results contain only requested item keys, repeated and disjoint calls agree
// with a single bulk call, and concurrent fetches are safe.
func Run(t *testing.T, src batchloader.FetchSource, opts Options) {
	t.Helper()
	if len(opts.Items) < 2 {
		t.Fatal("sourcetest: at least two item keys are required")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}

	t.Run("OnlyRequestedKeys", func(t *testing.T) {
		t.Parallel()

		values, err := src.Fetch(t.Context(), opts.Batch, opts.Items)
		if err != nil {
			t.Fatal(err)
		}

		requested := make(map[batchloader.ItemKey]struct{}, len(opts.Items))
		for _, item := range opts.Items {
			requested[item] = struct{}{}
		}
		for item := range values {
			if _, ok := requested[item]; !ok {
				t.Errorf("fetch returned a value for item %v that was not requested", item)
			}
		}
	})

	t.Run("DisjointCallsAgree", func(t *testing.T) {
		t.Parallel()

		full, err := src.Fetch(t.Context(), opts.Batch, opts.Items)
		if err != nil {
			t.Fatal(err)
		}

		mid := len(opts.Items) / 2
		merged := make(map[batchloader.ItemKey]any, len(full))
		for _, part := range [][]batchloader.ItemKey{opts.Items[:mid], opts.Items[mid:]} {
			values, err := src.Fetch(t.Context(), opts.Batch, part)
			if err != nil {
				t.Fatal(err)
			}
			for item, value := range values {
				merged[item] = value
			}
		}

		if df := cmp.Diff(full, merged); df != "" {
			t.Errorf("disjoint fetches disagree with the bulk fetch: %s", df)
		}
	})

	t.Run("ConcurrentFetches", func(t *testing.T) {
		t.Parallel()

		expected, err := src.Fetch(t.Context(), opts.Batch, opts.Items)
		if err != nil {
			t.Fatal(err)
		}

		var g errgroup.Group
		for range opts.Concurrency {
			g.Go(func() error {
				values, err := src.Fetch(t.Context(), opts.Batch, opts.Items)
				if err != nil {
					return err
				}
				if df := cmp.Diff(expected, values); df != "" {
					t.Errorf("concurrent fetch disagrees: %s", df)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatal(err)
		}
	})
}
