package source

import (
	"context"
	"fmt"

	batchloader "github.com/kazuhira-dev/batch-loader"
	"github.com/kazuhira-dev/batch-loader/internal/keyutil"
)

// FetchFunc is a FetchSource that uses a function to fetch batches.
type FetchFunc func(ctx context.Context, batch batchloader.BatchKey, items []batchloader.ItemKey) (map[batchloader.ItemKey]any, error)

var _ batchloader.FetchSource = (FetchFunc)(nil)

// Fetch calls the function.
func (f FetchFunc) Fetch(ctx context.Context, batch batchloader.BatchKey, items []batchloader.ItemKey) (map[batchloader.ItemKey]any, error) {
	return f(ctx, batch, items)
}

// MapSource is a FetchSource backed by a static in-memory mapping from batch
// key to item values. It is handy for fixtures and cache warming in tests.
type MapSource map[batchloader.BatchKey]map[batchloader.ItemKey]any

var _ batchloader.FetchSource = (MapSource)(nil)

// Fetch resolves the requested items from the mapping. Items with no entry
// are simply omitted from the result.
func (s MapSource) Fetch(_ context.Context, batch batchloader.BatchKey, items []batchloader.ItemKey) (map[batchloader.ItemKey]any, error) {
	values := make(map[batchloader.ItemKey]any, len(items))
	for _, item := range items {
		if value, ok := s[batch][item]; ok {
			values[item] = value
		}
	}
	return values, nil
}

// ObservedSource decorates a FetchSource and invokes OnFetch once per actual
// fetch call, before delegating. It exists so tests and instrumentation can
// observe that a fetch occurred without global mutable state.
type ObservedSource struct {
	// Source is the underlying source that this decorator wraps.
	Source batchloader.FetchSource

	// OnFetch is called once per Fetch invocation with the batch key and the
	// deduplicated item keys. A nil OnFetch is ignored.
	OnFetch func(batch batchloader.BatchKey, items []batchloader.ItemKey)
}

var _ batchloader.FetchSource = (*ObservedSource)(nil)

// Fetch reports the call to OnFetch and delegates to the underlying source.
func (s *ObservedSource) Fetch(ctx context.Context, batch batchloader.BatchKey, items []batchloader.ItemKey) (map[batchloader.ItemKey]any, error) {
	if s.OnFetch != nil {
		s.OnFetch(batch, items)
	}
	return s.Source.Fetch(ctx, batch, items)
}

// LintSource is a FetchSource decorator used for linting purposes.
// It validates the behavior of the wrapped source, ensuring it properly
// follows the FetchSource contract.
type LintSource struct {
	Source batchloader.FetchSource
}

var _ batchloader.FetchSource = (*LintSource)(nil)

// Fetch delegates to the underlying source and checks that the result only
// contains entries for requested item keys.
func (s *LintSource) Fetch(ctx context.Context, batch batchloader.BatchKey, items []batchloader.ItemKey) (map[batchloader.ItemKey]any, error) {
	values, err := s.Source.Fetch(ctx, batch, items)
	if err != nil {
		return nil, err
	}

	requested := keyutil.SetOf(items)
	for item := range values {
		if _, ok := requested[item]; !ok {
			panic(fmt.Sprintf("source: fetch for batch %v returned a value for item %v that was not requested", batch, item))
		}
	}
	return values, nil
}
