// Package tablesource implements a batchloader.FetchSource over a tabular
// backing store.
//
// It interprets two kinds of batch keys: RecordBatch loads individual rows
// by primary key or by equality-filter lists, and AssocBatch loads all
// related rows for a whole batch of owners in a single bulk query, then
// partitions them back per owner honoring the association's cardinality and
// ordering.
//
// The package never builds backend-specific queries itself; it only speaks
// the Querier interface, which a backing store (see the memdb subpackage)
// implements. A QueryHook lets callers shape every query, for example to
// exclude soft-deleted rows, without changing the batch/item key contract.
package tablesource
