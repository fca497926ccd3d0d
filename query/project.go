package query

import (
	"sort"
	"strings"
)

// evalSelectExpr evaluates a projection expression against one row view.
// Aggregates require a view that can compute them (a group view or a chain
// containing one).
func evalSelectExpr(expr SelectExpression, row RowView) (Value, error) {
	switch e := expr.(type) {
	case *ColumnExpr:
		v, found, err := row.Lookup(e.Ref)
		if err != nil {
			return Null(), err
		}
		if !found {
			return Null(), validationErrf("column %q not found", e.Ref.String())
		}
		return v, nil

	case *LiteralExpr:
		return e.Val, nil

	case *AggregateExpr:
		ar, ok := row.(aggregateRow)
		if !ok {
			return Null(), validationErrf("invalid use of aggregate %s without grouping", strings.ToLower(e.Fn))
		}
		return ar.aggregate(e)

	case *ArithmeticExpr:
		left, err := evalSelectExpr(e.Left, row)
		if err != nil {
			return Null(), err
		}
		right, err := evalSelectExpr(e.Right, row)
		if err != nil {
			return Null(), err
		}
		ln, lok := left.asNumber()
		rn, rok := right.asNumber()
		if !lok || !rok {
			return Null(), nil
		}
		switch e.Op {
		case '+':
			return Number(ln + rn), nil
		case '-':
			return Number(ln - rn), nil
		case '*':
			return Number(ln * rn), nil
		default:
			if rn == 0 {
				return Null(), nil
			}
			return Number(ln / rn), nil
		}

	case *FunctionExpr:
		fn, ok := lookupFunction(e.Name)
		if !ok {
			return Null(), validationErrf("invalid function %q", e.Name)
		}
		args := make([]Value, len(e.Args))
		for i, a := range e.Args {
			v, err := evalSelectExpr(a, row)
			if err != nil {
				return Null(), err
			}
			args[i] = v
		}
		return fn.call(args)
	}

	return Null(), validationErrf("invalid projection expression")
}

// chainView tries each view in turn; the first that knows a column wins.
type chainView struct {
	views []RowView
}

func (c chainView) Lookup(ref ColumnRef) (Value, bool, error) {
	for _, v := range c.views {
		val, found, err := v.Lookup(ref)
		if err != nil {
			return Null(), false, err
		}
		if found {
			return val, true, nil
		}
	}
	return Null(), false, nil
}

func (c chainView) EmptyAsNull() bool {
	for _, v := range c.views {
		if v.EmptyAsNull() {
			return true
		}
	}
	return false
}

func (c chainView) aggregate(agg *AggregateExpr) (Value, error) {
	for _, v := range c.views {
		if ar, ok := v.(aggregateRow); ok {
			return ar.aggregate(agg)
		}
	}
	return Null(), validationErrf("invalid use of aggregate %s without grouping", strings.ToLower(agg.Fn))
}

// containsAggregates reports whether any projection or ORDER BY key uses an
// aggregate function.
func containsAggregates(stmt *SelectStmt) bool {
	for _, item := range stmt.Projs {
		if exprHasAggregate(item.Expr) {
			return true
		}
	}
	for _, o := range stmt.OrderBy {
		if exprHasAggregate(o.Expr) {
			return true
		}
	}
	return false
}

func exprHasAggregate(expr SelectExpression) bool {
	switch e := expr.(type) {
	case *AggregateExpr:
		return true
	case *ArithmeticExpr:
		return exprHasAggregate(e.Left) || exprHasAggregate(e.Right)
	case *FunctionExpr:
		for _, a := range e.Args {
			if exprHasAggregate(a) {
				return true
			}
		}
	}
	return false
}

// expandStars rewrites * and alias.* into explicit column projections.
func expandStars(items []SelectItem, t *Table) ([]SelectItem, error) {
	var out []SelectItem
	for _, item := range items {
		star, ok := item.Expr.(*StarExpr)
		if !ok {
			out = append(out, item)
			continue
		}
		matched := false
		for _, c := range t.Cols {
			if star.Table != "" && !strings.EqualFold(c.Qual, star.Table) {
				continue
			}
			matched = true
			ref := ColumnRef{Name: c.ID}
			if c.Qual != "" {
				ref.Table = c.Qual
			}
			out = append(out, SelectItem{Expr: &ColumnExpr{Ref: ref}})
		}
		if !matched && star.Table != "" {
			return nil, validationErrf("table alias %q not found", star.Table)
		}
	}
	return out, nil
}

// selectPipeline carries a projected output plus enough source context for
// ORDER BY keys that reference non-projected columns.
type selectPipeline struct {
	out    *Table
	src    *Table // nil once rows have been aggregated
	idx    []int  // out row -> src ordinal, parallel to out.Rows
	groups []group
	keyIdx []int
}

// view returns the row view ORDER BY and DISTINCT evaluate against:
// projected columns first, then source or group fallback.
func (p *selectPipeline) view(row int) RowView {
	views := []RowView{p.out.rowView(row)}
	if p.src != nil {
		views = append(views, p.src.rowView(p.idx[row]))
	}
	if p.groups != nil {
		views = append(views, groupView{t: p.src, keyIdx: p.keyIdx, g: &p.groups[row]})
	}
	return chainView{views: views}
}

// outColumn builds the output column for one projection item.
func outColumn(item SelectItem, src *Table) Column {
	id := item.Alias
	if id == "" {
		id = canonicalName(item.Expr)
	}
	col := Column{ID: id, Label: id}
	// plain column projections inherit the source label and type
	if ce, ok := item.Expr.(*ColumnExpr); ok && src != nil {
		if ci, err := src.columnIndex(ce.Ref); err == nil && ci >= 0 {
			col.Label = src.Cols[ci].Label
			col.Type = src.Cols[ci].Type
			if item.Alias != "" {
				col.Label = item.Alias
			}
		}
	}
	return col
}

// projectRows evaluates projections row by row (no aggregation).
func projectRows(t *Table, idx []int, items []SelectItem) (*selectPipeline, error) {
	out := &Table{Source: SourceDerived, EmptyAsNull: t.EmptyAsNull}
	for _, item := range items {
		out.Cols = append(out.Cols, outColumn(item, t))
	}

	kept := make([]int, 0, len(idx))
	for _, ri := range idx {
		row := make([]Value, len(items))
		view := t.rowView(ri)
		for i, item := range items {
			v, err := evalSelectExpr(item.Expr, view)
			if err != nil {
				return nil, err
			}
			row[i] = v
		}
		out.Rows = append(out.Rows, row)
		kept = append(kept, ri)
	}
	out.inferColumnTypes()
	return &selectPipeline{out: out, src: t, idx: kept}, nil
}

// projectGroups evaluates projections once per group. Plain column references
// must be group-by keys.
func projectGroups(t *Table, groups []group, keyIdx []int, items []SelectItem) (*selectPipeline, error) {
	out := &Table{Source: SourceDerived, EmptyAsNull: t.EmptyAsNull}
	for _, item := range items {
		out.Cols = append(out.Cols, outColumn(item, t))
	}

	for gi := range groups {
		view := groupView{t: t, keyIdx: keyIdx, g: &groups[gi]}
		row := make([]Value, len(items))
		for i, item := range items {
			v, err := evalSelectExpr(item.Expr, view)
			if err != nil {
				return nil, err
			}
			row[i] = v
		}
		out.Rows = append(out.Rows, row)
	}
	out.inferColumnTypes()
	return &selectPipeline{out: out, src: t, groups: groups, keyIdx: keyIdx}, nil
}

// projectPivot turns the distinct values of the pivot column into one output
// column per aggregate projection, after the group-by key columns.
func projectPivot(t *Table, idx []int, stmt *SelectStmt) (*selectPipeline, error) {
	pivotIdx, err := t.columnIndex(splitColumnRef(stmt.Pivot))
	if err != nil {
		return nil, err
	}
	if pivotIdx < 0 {
		return nil, validationErrf("pivot column %q not found", stmt.Pivot)
	}

	var keyItems, aggItems []SelectItem
	for _, item := range stmt.Projs {
		if exprHasAggregate(item.Expr) {
			aggItems = append(aggItems, item)
		} else {
			keyItems = append(keyItems, item)
		}
	}
	if len(aggItems) == 0 {
		return nil, validationErrf("invalid pivot: an aggregate projection is required")
	}

	// distinct pivot values in ascending order
	var pivots []Value
	seen := make(map[string]bool)
	for _, ri := range idx {
		v := t.Rows[ri][pivotIdx]
		sig := v.Kind.String() + "\x00" + v.Text()
		if !seen[sig] {
			seen[sig] = true
			pivots = append(pivots, v)
		}
	}
	sort.SliceStable(pivots, func(i, j int) bool {
		return compareValues(pivots[i], pivots[j]) < 0
	})

	groups, keyIdx, err := groupRows(t, idx, stmt.GroupBy)
	if err != nil {
		return nil, err
	}
	groups, err = filterGroups(t, keyIdx, groups, stmt.Having)
	if err != nil {
		return nil, err
	}

	out := &Table{Source: SourceDerived, EmptyAsNull: t.EmptyAsNull}
	for _, item := range keyItems {
		out.Cols = append(out.Cols, outColumn(item, t))
	}
	for _, pv := range pivots {
		for _, item := range aggItems {
			id := pv.Text() + " " + canonicalName(item.Expr)
			out.Cols = append(out.Cols, Column{ID: id, Label: id})
		}
	}

	for gi := range groups {
		view := groupView{t: t, keyIdx: keyIdx, g: &groups[gi]}
		row := make([]Value, 0, len(out.Cols))
		for _, item := range keyItems {
			v, err := evalSelectExpr(item.Expr, view)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}
		for _, pv := range pivots {
			// members of this group whose pivot cell equals pv
			var members []int
			for _, ri := range groups[gi].members {
				if compareValues(t.Rows[ri][pivotIdx], pv) == 0 &&
					t.Rows[ri][pivotIdx].Kind == pv.Kind {
					members = append(members, ri)
				}
			}
			sub := groupView{t: t, keyIdx: keyIdx, g: &group{keys: groups[gi].keys, members: members}}
			for _, item := range aggItems {
				v, err := evalSelectExpr(item.Expr, sub)
				if err != nil {
					return nil, err
				}
				row = append(row, v)
			}
		}
		out.Rows = append(out.Rows, row)
	}
	out.inferColumnTypes()
	return &selectPipeline{out: out, src: t, groups: groups, keyIdx: keyIdx}, nil
}
