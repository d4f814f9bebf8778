package tablesource

import (
	"fmt"
	"sort"
)

// Cond is a single equality condition on a column.
// Values must have comparable dynamic types.
type Cond struct {
	Column string
	Value  any
}

// maxConds bounds the number of conditions in a single filter so that
// filters stay comparable and can be deduplicated as item keys.
const maxConds = 8

// Conds is a conjunction of up to maxConds conditions, usable as an item key
// for RecordBatch loads. Build it with Where.
type Conds struct {
	conds [maxConds]Cond
	n     int
}

// Where builds a filter from the given conditions.
// Conditions are sorted by column so that equal filters written in a
// different order deduplicate to the same item key.
func Where(conds ...Cond) Conds {
	if len(conds) == 0 {
		panic("tablesource: Where requires at least one condition")
	}
	if len(conds) > maxConds {
		panic(fmt.Sprintf("tablesource: Where supports at most %d conditions", maxConds))
	}

	c := Conds{n: len(conds)}
	copy(c.conds[:], conds)
	sort.SliceStable(c.conds[:c.n], func(i, j int) bool {
		return c.conds[i].Column < c.conds[j].Column
	})
	return c
}

// Conditions returns the filter's conditions.
func (c Conds) Conditions() []Cond {
	return c.conds[:c.n:c.n]
}

// String implements fmt.Stringer for readable errors and logs.
func (c Conds) String() string {
	s := "where("
	for i, cond := range c.Conditions() {
		if i != 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s=%v", cond.Column, cond.Value)
	}
	return s + ")"
}

// Query is the bulk read handed to a Querier. A row matches when it
// satisfies every condition in Where and, if Filters is non-empty, at least
// one of the filters.
type Query struct {
	// Table is the table to read from.
	Table string

	// Where are conditions applied to every row.
	Where []Cond

	// Filters is the per-item disjunction: the deduplicated filters of all
	// items in the batch. Empty means no per-item narrowing.
	Filters []Conds

	// OrderBy names the column the result must be sorted by, ascending.
	// Empty means the backend's natural order.
	OrderBy string
}

// QueryHook shapes a query before it is handed to the Querier. The scope is
// the opaque tag carried by the batch key, so distinct query shapes stay
// distinct batches.
type QueryHook func(q Query, scope string) Query
