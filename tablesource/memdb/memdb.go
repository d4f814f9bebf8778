// Package memdb provides a thread-safe in-memory Querier for tests and
// examples.
package memdb

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kazuhira-dev/batch-loader/tablesource"
)

// DB is an in-memory table store. It is safe for concurrent use.
// Rows are cloned on the way in and out, so callers can never corrupt the
// stored data through a shared map.
type DB struct {
	mu     sync.RWMutex
	tables map[string][]tablesource.Record
}

// New creates an empty DB.
func New() *DB {
	return &DB{tables: map[string][]tablesource.Record{}}
}

// Insert appends rows to the named table, creating it on first use.
func (d *DB) Insert(table string, rows ...tablesource.Record) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, row := range rows {
		d.tables[table] = append(d.tables[table], cloneRecord(row))
	}
}

var _ tablesource.Querier = (*DB)(nil)

// Query returns the rows of q.Table matching q.Where and q.Filters, sorted
// ascending by q.OrderBy when set.
func (d *DB) Query(_ context.Context, q tablesource.Query) ([]tablesource.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rows, ok := d.tables[q.Table]
	if !ok {
		return nil, fmt.Errorf("memdb: unknown table %q", q.Table)
	}

	out := make([]tablesource.Record, 0, len(rows))
	for _, row := range rows {
		if !matchConds(row, q.Where) {
			continue
		}
		if !matchFilters(row, q.Filters) {
			continue
		}
		out = append(out, cloneRecord(row))
	}
	if q.OrderBy != "" {
		sortRows(out, q.OrderBy)
	}
	return out, nil
}

func matchConds(row tablesource.Record, conds []tablesource.Cond) bool {
	for _, c := range conds {
		if row[c.Column] != c.Value {
			return false
		}
	}
	return true
}

func matchFilters(row tablesource.Record, filters []tablesource.Conds) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if matchConds(row, f.Conditions()) {
			return true
		}
	}
	return false
}

func cloneRecord(row tablesource.Record) tablesource.Record {
	clone := make(tablesource.Record, len(row))
	for column, value := range row {
		clone[column] = value
	}
	return clone
}

func sortRows(rows []tablesource.Record, column string) {
	sort.SliceStable(rows, func(i, j int) bool {
		return less(rows[i][column], rows[j][column])
	})
}

// less orders the common column types; everything else falls back to the
// formatted representation.
func less(a, b any) bool {
	switch av := a.(type) {
	case int:
		if bv, ok := b.(int); ok {
			return av < bv
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return av < bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}
