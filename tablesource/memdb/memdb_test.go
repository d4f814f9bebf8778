package memdb_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kazuhira-dev/batch-loader/tablesource"
	"github.com/kazuhira-dev/batch-loader/tablesource/memdb"
)

func newDB() *memdb.DB {
	db := memdb.New()
	db.Insert("users",
		tablesource.Record{"id": 1, "name": "Alice", "deleted": false},
		tablesource.Record{"id": 2, "name": "Bob", "deleted": true},
		tablesource.Record{"id": 3, "name": "Carol", "deleted": false},
	)
	return db
}

func TestDB_Query(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    tablesource.Query
		expected []tablesource.Record
	}{
		{
			name:  "all rows",
			query: tablesource.Query{Table: "users"},
			expected: []tablesource.Record{
				{"id": 1, "name": "Alice", "deleted": false},
				{"id": 2, "name": "Bob", "deleted": true},
				{"id": 3, "name": "Carol", "deleted": false},
			},
		},
		{
			name:  "where narrows every row",
			query: tablesource.Query{Table: "users", Where: []tablesource.Cond{{Column: "deleted", Value: false}}},
			expected: []tablesource.Record{
				{"id": 1, "name": "Alice", "deleted": false},
				{"id": 3, "name": "Carol", "deleted": false},
			},
		},
		{
			name: "filters are a disjunction",
			query: tablesource.Query{
				Table: "users",
				Filters: []tablesource.Conds{
					tablesource.Where(tablesource.Cond{Column: "id", Value: 1}),
					tablesource.Where(tablesource.Cond{Column: "id", Value: 2}),
				},
			},
			expected: []tablesource.Record{
				{"id": 1, "name": "Alice", "deleted": false},
				{"id": 2, "name": "Bob", "deleted": true},
			},
		},
		{
			name: "where and filters combine",
			query: tablesource.Query{
				Table: "users",
				Where: []tablesource.Cond{{Column: "deleted", Value: false}},
				Filters: []tablesource.Conds{
					tablesource.Where(tablesource.Cond{Column: "id", Value: 2}),
					tablesource.Where(tablesource.Cond{Column: "id", Value: 3}),
				},
			},
			expected: []tablesource.Record{
				{"id": 3, "name": "Carol", "deleted": false},
			},
		},
		{
			name:     "no matches",
			query:    tablesource.Query{Table: "users", Where: []tablesource.Cond{{Column: "name", Value: "Nobody"}}},
			expected: []tablesource.Record{},
		},
		{
			name:  "order by string column",
			query: tablesource.Query{Table: "users", OrderBy: "name"},
			expected: []tablesource.Record{
				{"id": 1, "name": "Alice", "deleted": false},
				{"id": 2, "name": "Bob", "deleted": true},
				{"id": 3, "name": "Carol", "deleted": false},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rows, err := newDB().Query(t.Context(), tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if df := cmp.Diff(tt.expected, rows); df != "" {
				t.Errorf("unexpected rows: %s", df)
			}
		})
	}
}

func TestDB_Query_UnknownTable(t *testing.T) {
	t.Parallel()

	if _, err := newDB().Query(t.Context(), tablesource.Query{Table: "nope"}); err == nil {
		t.Error("expected an error for an unknown table")
	}
}

func TestDB_Query_OrderByIntColumn(t *testing.T) {
	t.Parallel()

	db := memdb.New()
	db.Insert("posts",
		tablesource.Record{"id": 3},
		tablesource.Record{"id": 1},
		tablesource.Record{"id": 2},
	)

	rows, err := db.Query(t.Context(), tablesource.Query{Table: "posts", OrderBy: "id"})
	if err != nil {
		t.Fatal(err)
	}
	expected := []tablesource.Record{{"id": 1}, {"id": 2}, {"id": 3}}
	if df := cmp.Diff(expected, rows); df != "" {
		t.Errorf("unexpected rows: %s", df)
	}
}

func TestDB_RowsAreCloned(t *testing.T) {
	t.Parallel()

	db := memdb.New()
	inserted := tablesource.Record{"id": 1, "name": "Alice"}
	db.Insert("users", inserted)

	// Mutating the inserted map must not change the stored row.
	inserted["name"] = "Mallory"

	rows, err := db.Query(t.Context(), tablesource.Query{Table: "users"})
	if err != nil {
		t.Fatal(err)
	}
	if rows[0]["name"] != "Alice" {
		t.Errorf("stored row was mutated: %v", rows[0])
	}

	// Mutating a fetched row must not change the stored row either.
	rows[0]["name"] = "Mallory"
	rows, err = db.Query(t.Context(), tablesource.Query{Table: "users"})
	if err != nil {
		t.Fatal(err)
	}
	if rows[0]["name"] != "Alice" {
		t.Errorf("fetched row aliases the stored row: %v", rows[0])
	}
}
