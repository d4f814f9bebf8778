package tablesource

import (
	"context"
	"fmt"

	batchloader "github.com/kazuhira-dev/batch-loader"
)

// fetchAssoc resolves association loads: one bulk query retrieves all
// related rows for the whole batch of owners, then the rows are partitioned
// back per owner.
//
// Has-many associations resolve to an ordered []Record, empty (but present)
// for owners with no related rows. Has-one associations resolve to a single
// Record; owners with no related row are simply absent from the result.
func (s *Source) fetchAssoc(ctx context.Context, batch AssocBatch, items []batchloader.ItemKey) (map[batchloader.ItemKey]any, error) {
	owners := make([]Owner, len(items))
	var ownerTable string
	for i, item := range items {
		owner, ok := item.(Owner)
		if !ok {
			return nil, fmt.Errorf("tablesource: association item keys must be Owner, got %T", item)
		}
		if i == 0 {
			ownerTable = owner.Table
		} else if owner.Table != ownerTable {
			return nil, fmt.Errorf("tablesource: mixed owner tables %q and %q in one batch", ownerTable, owner.Table)
		}
		owners[i] = owner
	}

	table, err := s.schema.table(ownerTable)
	if err != nil {
		return nil, err
	}
	assoc, ok := table.Assocs[batch.Assoc]
	if !ok {
		return nil, fmt.Errorf("tablesource: table %q has no association %q", ownerTable, batch.Assoc)
	}

	related, err := s.schema.table(assoc.Table)
	if err != nil {
		return nil, err
	}
	orderBy := assoc.OrderBy
	if orderBy == "" {
		orderBy = related.PrimaryKey
	}

	filters := make([]Conds, len(owners))
	for i, owner := range owners {
		filters[i] = Where(Cond{Column: assoc.ForeignKey, Value: owner.ID})
	}

	q := s.applyHook(Query{
		Table:   assoc.Table,
		Where:   assoc.Where,
		Filters: filters,
		OrderBy: orderBy,
	}, batch.Scope)
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	// Partition per owner; rows arrive ordered, so each owner's slice
	// preserves the declared ordering.
	byOwner := make(map[any][]Record, len(owners))
	for _, row := range rows {
		id := row[assoc.ForeignKey]
		byOwner[id] = append(byOwner[id], row)
	}

	values := make(map[batchloader.ItemKey]any, len(owners))
	for _, owner := range owners {
		rows := byOwner[owner.ID]
		if assoc.HasOne {
			if len(rows) != 0 {
				values[owner] = rows[0]
			}
			continue
		}
		if rows == nil {
			rows = []Record{}
		}
		values[owner] = rows
	}
	return values, nil
}
