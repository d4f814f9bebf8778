package batchloader

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/errgroup"

	"github.com/kazuhira-dev/batch-loader/internal/keyutil"
)

// Run executes every pending fetch and returns a new Loader with the results
// merged into the caches and the pending queues cleared.
//
// Each (source, batch key) pair with pending items is resolved by exactly one
// Fetch call carrying the full deduplicated item-key set for that batch key.
// Fetches for distinct pairs execute concurrently; Run does not return until
// all of them have completed. Pending item keys absent from a fetch result
// are cached as not found.
//
// If any fetch returns an error or panics, Run aborts: it returns a nil
// Loader and a *FetchError, and none of the run's results are merged. The
// receiver is unaffected either way and stays fully usable, so a failed run
// can simply be retried on the old value.
//
// Calling Run with nothing pending performs no fetches and returns an
// equivalent Loader.
func (l *Loader) Run(ctx context.Context) (*Loader, error) {
	type task struct {
		name  SourceName
		batch BatchKey
		items []ItemKey
	}
	var tasks []task
	for name, st := range l.sources {
		for batch, set := range st.pending {
			if len(set) == 0 {
				continue
			}
			tasks = append(tasks, task{name: name, batch: batch, items: keyutil.Items(set)})
		}
	}

	next := l.clone()
	if len(tasks) == 0 {
		return next, nil
	}

	var (
		mu      sync.Mutex
		fetched = make(map[SourceName]map[cacheKey]Result, len(l.sources))
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range tasks {
		g.Go(func() error {
			var (
				values map[ItemKey]any
				err    error
			)
			fetch := l.sources[t.name].fetch
			if r := panics.Try(func() { values, err = fetch.Fetch(ctx, t.batch, t.items) }); r != nil {
				err = r.AsError()
			}
			if err != nil {
				return &FetchError{Source: t.name, Batch: t.batch, Err: err}
			}

			entries := make(map[cacheKey]Result, len(t.items))
			for _, item := range t.items {
				value, ok := values[item]
				if !ok {
					entries[cacheKey{batch: t.batch, item: item}] = Result{}
					continue
				}
				entries[cacheKey{batch: t.batch, item: item}] = Result{Value: value, Found: true}
			}

			mu.Lock()
			defer mu.Unlock()
			if fetched[t.name] == nil {
				fetched[t.name] = make(map[cacheKey]Result, len(entries))
			}
			for k, r := range entries {
				fetched[t.name][k] = r
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for name, entries := range fetched {
		st := l.sources[name]
		cache := make(map[cacheKey]Result, len(st.cache)+len(entries))
		for k, r := range st.cache {
			cache[k] = r
		}
		for k, r := range entries {
			cache[k] = r
		}
		next.sources[name] = &sourceState{
			fetch:   st.fetch,
			cache:   cache,
			pending: map[BatchKey]map[ItemKey]struct{}{},
		}
	}
	return next, nil
}
