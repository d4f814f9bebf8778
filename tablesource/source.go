package tablesource

import (
	"context"
	"fmt"

	batchloader "github.com/kazuhira-dev/batch-loader"
)

// Record is a fetched row, keyed by column name.
// Column values must have comparable dynamic types to participate in
// conditions.
type Record map[string]any

// Querier is the single capability a backing store must provide.
// Implementations must be safe for concurrent use: distinct batches of one
// run may query in parallel.
type Querier interface {
	// Query returns the rows matching q, ordered by q.OrderBy when set.
	Query(ctx context.Context, q Query) ([]Record, error)
}

// RecordBatch is the batch key for loading individual records of one table.
// Item keys are primary-key values, a single Cond, or a Conds filter built
// with Where. Each filter matches back to exactly one row, or none.
type RecordBatch struct {
	// Table is the table to load records from.
	Table string

	// Scope is an opaque tag handed to the source's QueryHook.
	// Distinct scopes form distinct batches.
	Scope string
}

// AssocBatch is the batch key for loading an association of a batch of
// owners. Item keys are Owner values; all owners of one batch must belong to
// the same table.
type AssocBatch struct {
	// Assoc is the association name as declared in the owner table's schema.
	Assoc string

	// Scope is an opaque tag handed to the source's QueryHook.
	Scope string
}

// Owner identifies the owning record of an association load.
type Owner struct {
	// Table is the owner's table.
	Table string

	// ID is the owner's primary-key value. Its dynamic type must be
	// comparable.
	ID any
}

// NotLoaded is a placeholder for association data that has not been fetched.
// Seeding it into a Loader via Put is rejected, so a stub handed through
// from an upstream record cannot mask a legitimate future fetch.
type NotLoaded struct {
	// Assoc is the association the placeholder stands in for.
	Assoc string
}

// NotLoaded marks the value as an unloaded placeholder.
func (NotLoaded) NotLoaded() bool {
	return true
}

// Source is a batchloader.FetchSource over a tabular backing store.
type Source struct {
	db     Querier
	schema *Schema
	hook   QueryHook
}

var _ batchloader.FetchSource = (*Source)(nil)

// Option configures a Source.
type Option interface {
	apply(*Source)
}

type optionFunc func(*Source)

func (f optionFunc) apply(s *Source) {
	f(s)
}

// WithQueryHook sets the hook that shapes every query the source issues.
func WithQueryHook(hook QueryHook) Option {
	return optionFunc(func(s *Source) {
		s.hook = hook
	})
}

// New creates a Source reading from db using the given schema.
func New(db Querier, schema *Schema, opts ...Option) *Source {
	if db == nil {
		panic("tablesource: nil Querier")
	}
	if schema == nil {
		panic("tablesource: nil Schema")
	}
	if err := schema.validate(); err != nil {
		panic(err.Error())
	}

	s := &Source{db: db, schema: schema}
	for _, o := range opts {
		o.apply(s)
	}
	return s
}

// Fetch dispatches on the batch key kind and resolves the items with a
// single bulk query.
func (s *Source) Fetch(ctx context.Context, batch batchloader.BatchKey, items []batchloader.ItemKey) (map[batchloader.ItemKey]any, error) {
	switch b := batch.(type) {
	case RecordBatch:
		return s.fetchRecords(ctx, b, items)
	case AssocBatch:
		return s.fetchAssoc(ctx, b, items)
	default:
		return nil, fmt.Errorf("tablesource: unsupported batch key type %T", batch)
	}
}

// fetchRecords resolves record loads: one query for the whole batch, then
// each item's filter is matched back to exactly one fetched row, or none.
func (s *Source) fetchRecords(ctx context.Context, batch RecordBatch, items []batchloader.ItemKey) (map[batchloader.ItemKey]any, error) {
	table, err := s.schema.table(batch.Table)
	if err != nil {
		return nil, err
	}

	filters := make([]Conds, len(items))
	for i, item := range items {
		filters[i] = filterOf(table, item)
	}

	q := s.applyHook(Query{Table: batch.Table, Filters: filters}, batch.Scope)
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	values := make(map[batchloader.ItemKey]any, len(items))
	for i, item := range items {
		var match Record
		for _, row := range rows {
			if !matches(row, filters[i]) {
				continue
			}
			if match != nil {
				return nil, fmt.Errorf("tablesource: filter %v matched more than one row in table %q", filters[i], batch.Table)
			}
			match = row
		}
		if match != nil {
			values[item] = match
		}
	}
	return values, nil
}

// filterOf normalizes an item key into a filter. Anything that is not a
// Cond or Conds is treated as a primary-key value.
func filterOf(table Table, item batchloader.ItemKey) Conds {
	switch k := item.(type) {
	case Conds:
		return k
	case Cond:
		return Where(k)
	default:
		return Where(Cond{Column: table.PrimaryKey, Value: k})
	}
}

// matches reports whether the row satisfies every condition of the filter.
func matches(row Record, f Conds) bool {
	for _, c := range f.Conditions() {
		if row[c.Column] != c.Value {
			return false
		}
	}
	return true
}

func (s *Source) applyHook(q Query, scope string) Query {
	if s.hook == nil {
		return q
	}
	return s.hook(q, scope)
}
