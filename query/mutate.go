package query

import (
	"context"

	"github.com/whichguy/sheetql/grid"
)

// selectTargets computes the ordinals of the rows a mutation touches: filter
// by WHERE, order by ORDER BY, truncate to LIMIT.
func selectTargets(t *Table, where Expression, orderBy []OrderByItem, limit *int64) ([]int, error) {
	idx, err := filterRows(t, where)
	if err != nil {
		return nil, err
	}
	if len(orderBy) > 0 {
		idx, err = orderOrdinals(t, idx, orderBy)
		if err != nil {
			return nil, err
		}
	}
	if limit != nil && int64(len(idx)) > *limit {
		idx = idx[:*limit]
	}
	return idx, nil
}

// orderOrdinals stably sorts row ordinals by the ORDER BY keys.
func orderOrdinals(t *Table, idx []int, items []OrderByItem) ([]int, error) {
	// reuse the pipeline sorter over a projection-free view of the table
	sub := &Table{Cols: t.Cols, Rows: make([][]Value, len(idx)), EmptyAsNull: t.EmptyAsNull}
	for i, ri := range idx {
		sub.Rows[i] = t.Rows[ri]
	}
	p := &selectPipeline{out: sub, idx: append([]int(nil), idx...)}
	if err := applyOrderBy(p, items); err != nil {
		return nil, err
	}
	return p.idx, nil
}

// execInsert appends one row to the target.
func (e *Engine) execInsert(ctx context.Context, r *resolver, stmt *InsertStmt) (*MutationResult, error) {
	if stmt.Target != nil && stmt.Target.Virtual {
		return e.insertVirtual(r, stmt)
	}
	return e.insertGrid(ctx, r, stmt)
}

func (e *Engine) insertVirtual(r *resolver, stmt *InsertStmt) (*MutationResult, error) {
	t, err := r.resolveVirtual(stmt.Target)
	if err != nil {
		return nil, err
	}
	row, err := buildInsertRow(t, stmt)
	if err != nil {
		return nil, err
	}

	data := cloneData(r.tables[stmt.Target.Name])
	data = append(data, row)
	n := 1
	return &MutationResult{Operation: "insert", UpdatedRows: &n, Data: data}, nil
}

func (e *Engine) insertGrid(ctx context.Context, r *resolver, stmt *InsertStmt) (*MutationResult, error) {
	loc := r.defaultLoc
	if stmt.Target != nil && stmt.Target.Name != "" {
		loc = stmt.Target.Name
	}
	if loc == "" {
		return nil, validationErrf("invalid target: no range location given")
	}

	var row []interface{}
	if len(stmt.Columns) > 0 {
		// named columns need the range width to place values by position
		t, err := r.resolveGrid(ctx, loc)
		if err != nil {
			return nil, err
		}
		packed, err := buildInsertRow(t, stmt)
		if err != nil {
			return nil, err
		}
		row = packed
	} else {
		for _, v := range stmt.Values {
			row = append(row, v.ToAny())
		}
	}

	wr, err := r.src.Append(ctx, loc, row)
	if err != nil {
		return nil, &RemoteError{Op: "append", Err: err}
	}
	n := wr.Rows
	return &MutationResult{Operation: "insert", UpdatedRows: &n, UpdateTime: wr.UpdateTime}, nil
}

// buildInsertRow lays out the VALUES across the target's columns. Positional
// values fill columns left to right; named columns place by name, leaving
// the rest null.
func buildInsertRow(t *Table, stmt *InsertStmt) ([]interface{}, error) {
	row := make([]interface{}, len(t.Cols))
	if len(stmt.Columns) == 0 {
		if len(stmt.Values) > len(t.Cols) {
			return nil, validationErrf("invalid insert: %d values for %d columns", len(stmt.Values), len(t.Cols))
		}
		for i, v := range stmt.Values {
			row[i] = v.ToAny()
		}
		return row, nil
	}
	for i, name := range stmt.Columns {
		ci, err := t.columnIndex(splitColumnRef(name))
		if err != nil {
			return nil, err
		}
		if ci < 0 {
			return nil, validationErrf("column %q not found", name)
		}
		row[ci] = stmt.Values[i].ToAny()
	}
	return row, nil
}

// execUpdate rewrites the assigned cells of every matching row.
func (e *Engine) execUpdate(ctx context.Context, r *resolver, stmt *UpdateStmt) (*MutationResult, error) {
	if stmt.Where == nil {
		return nil, validationErrf("update requires a where clause")
	}
	t, err := r.resolve(ctx, stmt.Target)
	if err != nil {
		return nil, err
	}
	targets, err := selectTargets(t, stmt.Where, stmt.OrderBy, stmt.Limit)
	if err != nil {
		return nil, err
	}

	assignIdx := make([]int, len(stmt.Assignments))
	for i, a := range stmt.Assignments {
		ci, err := t.columnIndex(splitColumnRef(a.Column))
		if err != nil {
			return nil, err
		}
		if ci < 0 {
			return nil, validationErrf("column %q not found", a.Column)
		}
		assignIdx[i] = ci
	}

	n := len(targets)
	if t.Source == SourceVirtual {
		data := cloneData(r.tables[stmt.Target.Name])
		for _, ri := range targets {
			row := data[ri+1] // skip header
			for i, a := range stmt.Assignments {
				for len(row) <= assignIdx[i] {
					row = append(row, nil)
				}
				row[assignIdx[i]] = a.Val.ToAny()
				data[ri+1] = row
			}
		}
		return &MutationResult{Operation: "update", UpdatedRows: &n, Data: data}, nil
	}

	if n == 0 {
		return &MutationResult{Operation: "update", UpdatedRows: &n}, nil
	}
	updates := make([]grid.RowUpdate, 0, n)
	for _, ri := range targets {
		cells := make(map[int]interface{}, len(stmt.Assignments))
		for i, a := range stmt.Assignments {
			cells[assignIdx[i]] = a.Val.ToAny()
		}
		updates = append(updates, grid.RowUpdate{Row: ri, Cells: cells})
	}
	wr, err := r.src.Update(ctx, t.Name, updates)
	if err != nil {
		return nil, &RemoteError{Op: "update", Err: err}
	}
	return &MutationResult{Operation: "update", UpdatedRows: &n, UpdateTime: wr.UpdateTime}, nil
}

// execDelete removes every matching row.
func (e *Engine) execDelete(ctx context.Context, r *resolver, stmt *DeleteStmt) (*MutationResult, error) {
	if stmt.Where == nil {
		return nil, validationErrf("delete requires a where clause")
	}
	t, err := r.resolve(ctx, stmt.Target)
	if err != nil {
		return nil, err
	}
	targets, err := selectTargets(t, stmt.Where, stmt.OrderBy, stmt.Limit)
	if err != nil {
		return nil, err
	}

	n := len(targets)
	if t.Source == SourceVirtual {
		drop := make(map[int]bool, n)
		for _, ri := range targets {
			drop[ri+1] = true // skip header
		}
		src := r.tables[stmt.Target.Name]
		data := make([][]interface{}, 0, len(src)-n)
		for i, row := range src {
			if !drop[i] {
				data = append(data, append([]interface{}(nil), row...))
			}
		}
		return &MutationResult{Operation: "delete", DeletedRows: &n, Data: data}, nil
	}

	if n == 0 {
		return &MutationResult{Operation: "delete", DeletedRows: &n}, nil
	}
	wr, err := r.src.DeleteRows(ctx, t.Name, targets)
	if err != nil {
		return nil, &RemoteError{Op: "delete", Err: err}
	}
	return &MutationResult{Operation: "delete", DeletedRows: &n, UpdateTime: wr.UpdateTime}, nil
}

func cloneData(data [][]interface{}) [][]interface{} {
	cp := make([][]interface{}, len(data))
	for i, row := range data {
		cp[i] = append([]interface{}(nil), row...)
	}
	return cp
}
