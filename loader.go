package batchloader

import (
	"fmt"

	"github.com/kazuhira-dev/batch-loader/internal/keyutil"
	"github.com/kazuhira-dev/batch-loader/internal/seedcheck"
)

// Loader is an immutable container of sources, each pairing a fetch
// capability with its own cache and pending-request state.
//
// Every mutating operation returns a new Loader value; the receiver is left
// untouched, so concurrent callers holding different Loader values never
// race. Untouched sources are shared structurally between values, not copied.
//
// A Loader is scoped to one logical unit of work (for example one request)
// and is discarded at the end of it.
type Loader struct {
	sources map[SourceName]*sourceState
}

// cacheKey addresses one resolved (or resolved-as-absent) item in a source's
// cache.
type cacheKey struct {
	batch BatchKey
	item  ItemKey
}

// sourceState is the per-source cache and pending queue. Like the Loader it
// is never mutated in place; operations that change it build a fresh value
// and share the untouched maps.
type sourceState struct {
	fetch   FetchSource
	cache   map[cacheKey]Result
	pending map[BatchKey]map[ItemKey]struct{}
}

// New creates an empty Loader with no sources.
func New() *Loader {
	return &Loader{sources: map[SourceName]*sourceState{}}
}

// WithSource returns a new Loader with src registered under name.
// Registering a name again replaces the source and drops its state.
func (l *Loader) WithSource(name SourceName, src FetchSource) *Loader {
	if src == nil {
		panic("batchloader: nil FetchSource")
	}
	next := l.clone()
	next.sources[name] = &sourceState{
		fetch:   src,
		cache:   map[cacheKey]Result{},
		pending: map[BatchKey]map[ItemKey]struct{}{},
	}
	return next
}

// Load queues a single item for the given source and batch key.
// If the pair is already cached (including cached as not found) or already
// pending, nothing is queued. Load performs no I/O.
func (l *Loader) Load(name SourceName, batch BatchKey, item ItemKey) *Loader {
	return l.LoadMany(name, batch, []ItemKey{item})
}

// LoadMany queues multiple items for the given source and batch key.
// Item keys are deduplicated; pairs that are already cached or pending are
// skipped. LoadMany performs no I/O.
func (l *Loader) LoadMany(name SourceName, batch BatchKey, items []ItemKey) *Loader {
	st := l.state(name)

	queue := make([]ItemKey, 0, len(items))
	for _, item := range keyutil.Uniq(items) {
		if _, ok := st.cache[cacheKey{batch: batch, item: item}]; ok {
			continue
		}
		if _, ok := st.pending[batch][item]; ok {
			continue
		}
		queue = append(queue, item)
	}

	next := l.clone()
	if len(queue) != 0 {
		next.sources[name] = st.withQueued(batch, queue)
	}
	return next
}

// Get returns the resolved value for the pair.
// It reports false both when the pair was never loaded and when a completed
// Run found no value for it; it never triggers a fetch.
func (l *Loader) Get(name SourceName, batch BatchKey, item ItemKey) (any, bool) {
	r := l.state(name).cache[cacheKey{batch: batch, item: item}]
	return r.Value, r.Found
}

// GetMany returns one Result per input item key, in the caller-supplied
// order. Unresolved keys yield the zero Result.
func (l *Loader) GetMany(name SourceName, batch BatchKey, items []ItemKey) []Result {
	st := l.state(name)
	results := make([]Result, len(items))
	for i, item := range items {
		results[i] = st.cache[cacheKey{batch: batch, item: item}]
	}
	return results
}

// Put seeds the cache directly, bypassing any fetch. A later Load for the
// same pair is a no-op and triggers no fetch.
//
// Placeholder values that merely stand in for unfetched data (nil, nil
// pointers, maps or slices, and values whose NotLoaded method reports true)
// are rejected: Put returns an equivalent Loader without seeding, so a
// malformed seed cannot mask a legitimate future fetch.
func (l *Loader) Put(name SourceName, batch BatchKey, item ItemKey, value any) *Loader {
	st := l.state(name)
	next := l.clone()
	if !seedcheck.Loaded(value) {
		return next
	}
	next.sources[name] = st.withCached(map[cacheKey]Result{
		{batch: batch, item: item}: {Value: value, Found: true},
	})
	return next
}

// GetAs is a typed convenience wrapper around Loader.Get.
// It reports false when the pair is unresolved or the cached value does not
// have type V.
func GetAs[V any](l *Loader, name SourceName, batch BatchKey, item ItemKey) (V, bool) {
	v, ok := l.Get(name, batch, item)
	if !ok {
		var zero V
		return zero, false
	}
	value, ok := v.(V)
	return value, ok
}

// state returns the registered source or panics. Referencing an unknown
// source name is a programmer error, not a runtime condition.
func (l *Loader) state(name SourceName) *sourceState {
	st, ok := l.sources[name]
	if !ok {
		panic(fmt.Sprintf("batchloader: unknown source %q", string(name)))
	}
	return st
}

// clone returns a new Loader sharing every source state with the receiver.
func (l *Loader) clone() *Loader {
	sources := make(map[SourceName]*sourceState, len(l.sources)+1)
	for name, st := range l.sources {
		sources[name] = st
	}
	return &Loader{sources: sources}
}

// withQueued returns a copy of the state with items added to the batch's
// pending set. The cache map is shared; pending maps are copied on write.
func (st *sourceState) withQueued(batch BatchKey, items []ItemKey) *sourceState {
	pending := make(map[BatchKey]map[ItemKey]struct{}, len(st.pending)+1)
	for b, set := range st.pending {
		pending[b] = set
	}

	set := make(map[ItemKey]struct{}, len(st.pending[batch])+len(items))
	for item := range st.pending[batch] {
		set[item] = struct{}{}
	}
	for _, item := range items {
		set[item] = struct{}{}
	}
	pending[batch] = set

	return &sourceState{fetch: st.fetch, cache: st.cache, pending: pending}
}

// withCached returns a copy of the state with entries merged into the cache.
// The pending maps are shared.
func (st *sourceState) withCached(entries map[cacheKey]Result) *sourceState {
	cache := make(map[cacheKey]Result, len(st.cache)+len(entries))
	for k, r := range st.cache {
		cache[k] = r
	}
	for k, r := range entries {
		cache[k] = r
	}
	return &sourceState{fetch: st.fetch, cache: cache, pending: st.pending}
}
