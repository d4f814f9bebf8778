package tablesource

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Schema declares the tables a Source can load from and the associations
// between them.
type Schema struct {
	Tables map[string]Table
}

// Table describes one table.
type Table struct {
	// PrimaryKey is the primary-key column. Defaults to "id".
	PrimaryKey string

	// Assocs maps association names to their definitions.
	Assocs map[string]Association
}

// Association describes a relationship from an owner table to a related
// table.
type Association struct {
	// Table is the related table.
	Table string

	// ForeignKey is the column on the related table referencing the owner's
	// primary key.
	ForeignKey string

	// OrderBy is the column the related rows are ordered by, ascending.
	// Defaults to the related table's primary key.
	OrderBy string

	// HasOne marks a one-to-one relationship: each owner resolves to a
	// single record instead of a collection.
	HasOne bool

	// Where are static conditions applied to every load of this
	// association, e.g. a soft-delete exclusion.
	Where []Cond
}

// table returns the named table with defaults applied.
func (s *Schema) table(name string) (Table, error) {
	t, ok := s.Tables[name]
	if !ok {
		return Table{}, fmt.Errorf("tablesource: unknown table %q", name)
	}
	if t.PrimaryKey == "" {
		t.PrimaryKey = "id"
	}
	return t, nil
}

// validate checks that every association names a table and a foreign key.
func (s *Schema) validate() error {
	for name, t := range s.Tables {
		for assocName, assoc := range t.Assocs {
			if assoc.Table == "" {
				return fmt.Errorf("tablesource: association %q of table %q has no table", assocName, name)
			}
			if assoc.ForeignKey == "" {
				return fmt.Errorf("tablesource: association %q of table %q has no foreign key", assocName, name)
			}
		}
	}
	return nil
}

type schemaYAML struct {
	Tables map[string]tableYAML `yaml:"tables"`
}

type tableYAML struct {
	PrimaryKey string               `yaml:"primary_key"`
	Assocs     map[string]assocYAML `yaml:"assocs"`
}

type assocYAML struct {
	Table      string     `yaml:"table"`
	ForeignKey string     `yaml:"foreign_key"`
	OrderBy    string     `yaml:"order_by"`
	HasOne     bool       `yaml:"has_one"`
	Where      []condYAML `yaml:"where"`
}

type condYAML struct {
	Column string `yaml:"column"`
	Value  any    `yaml:"value"`
}

// ParseSchema reads a Schema from YAML. Unknown fields are rejected.
//
// Example document:
//
//	tables:
//	  users:
//	    primary_key: id
//	    assocs:
//	      posts:
//	        table: posts
//	        foreign_key: user_id
//	        order_by: id
//	        where:
//	          - {column: deleted, value: false}
func ParseSchema(r io.Reader) (*Schema, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc schemaYAML
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("tablesource: parse schema: %w", err)
	}
	if len(doc.Tables) == 0 {
		return nil, errors.New("tablesource: schema declares no tables")
	}

	schema := &Schema{Tables: make(map[string]Table, len(doc.Tables))}
	for name, t := range doc.Tables {
		table := Table{PrimaryKey: t.PrimaryKey}
		if len(t.Assocs) != 0 {
			table.Assocs = make(map[string]Association, len(t.Assocs))
		}
		for assocName, a := range t.Assocs {
			assoc := Association{
				Table:      a.Table,
				ForeignKey: a.ForeignKey,
				OrderBy:    a.OrderBy,
				HasOne:     a.HasOne,
			}
			for _, c := range a.Where {
				assoc.Where = append(assoc.Where, Cond{Column: c.Column, Value: c.Value})
			}
			table.Assocs[assocName] = assoc
		}
		schema.Tables[name] = table
	}
	if err := schema.validate(); err != nil {
		return nil, err
	}
	return schema, nil
}
