// Package batchloader coalesces many independent single-item requests into a
// minimal number of bulk fetch operations and memoizes the results for the
// lifetime of a unit of work.
//
// Call sites queue requests with Load or LoadMany (pure bookkeeping, no I/O),
// Run executes every pending fetch, and Get or GetMany read the results back.
// The Loader itself never talks to storage; it only decides when and how
// grouped a pluggable fetch function is invoked.
package batchloader

import "context"

// SourceName identifies a registered source within a Loader.
type SourceName string

// BatchKey identifies a class of bulk-fetchable request, such as a record
// type or an association name. Two requests with equal batch keys are
// eligible to be served by a single fetch call.
//
// The dynamic type of a BatchKey must be comparable.
type BatchKey = any

// ItemKey identifies a specific element within a batch, such as a filter or
// an owner record reference. Item keys are deduplicated before fetch.
//
// The dynamic type of an ItemKey must be comparable.
type ItemKey = any

// FetchSource loads a batch of items in a single operation.
type FetchSource interface {
	// Fetch resolves the given item keys for one batch key.
	// It must return an entry only for item keys it can actually resolve;
	// keys missing from the result are treated as not found.
	// It must be callable multiple times with disjoint item-key sets without
	// side effects beyond the backing read.
	Fetch(ctx context.Context, batch BatchKey, items []ItemKey) (map[ItemKey]any, error)
}

// Result is the outcome of a single (BatchKey, ItemKey) lookup.
// The zero value means the pair is unresolved: either it was never fetched,
// or the fetch returned no value for it.
type Result struct {
	// Value is the resolved value. It is nil when Found is false.
	Value any

	// Found indicates whether the fetch (or a Put) produced a value for the
	// pair. A false Found after a completed Run means the backing source had
	// nothing for the key.
	Found bool
}
