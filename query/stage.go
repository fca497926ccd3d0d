package query

import "sort"

// finishSelect applies the post-projection stages in their fixed order:
// DISTINCT, then ORDER BY, then OFFSET, then LIMIT.
func finishSelect(p *selectPipeline, stmt *SelectStmt) error {
	if stmt.Distinct {
		applyDistinct(p)
	}
	if len(stmt.OrderBy) > 0 {
		if err := applyOrderBy(p, stmt.OrderBy); err != nil {
			return err
		}
	}
	applyPage(p, stmt.Offset, stmt.Limit)
	return nil
}

// applyDistinct keeps the first occurrence of each projected tuple.
func applyDistinct(p *selectPipeline) {
	seen := make(map[string]bool, len(p.out.Rows))
	keep := make([]int, 0, len(p.out.Rows))
	for i, row := range p.out.Rows {
		sig := ""
		for _, v := range row {
			sig += v.Kind.String() + "\x00" + v.Text() + "\x01"
		}
		if !seen[sig] {
			seen[sig] = true
			keep = append(keep, i)
		}
	}
	p.permute(keep)
}

// applyOrderBy stably sorts the output rows by the given keys. Keys may
// reference projected columns, non-projected source columns, or aggregates
// of the underlying groups.
func applyOrderBy(p *selectPipeline, items []OrderByItem) error {
	n := len(p.out.Rows)
	keys := make([][]Value, n)
	for i := 0; i < n; i++ {
		row := make([]Value, len(items))
		view := p.view(i)
		for k, item := range items {
			v, err := evalSelectExpr(item.Expr, view)
			if err != nil {
				return err
			}
			row[k] = v
		}
		keys[i] = row
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ka, kb := keys[order[a]], keys[order[b]]
		for k, item := range items {
			cmp := compareValues(ka[k], kb[k])
			if cmp == 0 {
				continue
			}
			if item.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	p.permute(order)
	return nil
}

// applyPage drops the first offset rows, then truncates to limit rows.
func applyPage(p *selectPipeline, offset, limit *int64) {
	n := len(p.out.Rows)
	start := 0
	if offset != nil {
		start = int(*offset)
		if start > n {
			start = n
		}
	}
	end := n
	if limit != nil {
		if lim := start + int(*limit); lim < end {
			end = lim
		}
	}
	keep := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		keep = append(keep, i)
	}
	p.permute(keep)
}

// permute reorders (and possibly drops) rows along with the parallel source
// and group bookkeeping.
func (p *selectPipeline) permute(order []int) {
	rows := make([][]Value, len(order))
	for i, o := range order {
		rows[i] = p.out.Rows[o]
	}
	p.out.Rows = rows

	if p.idx != nil {
		idx := make([]int, len(order))
		for i, o := range order {
			idx[i] = p.idx[o]
		}
		p.idx = idx
	}
	if p.groups != nil {
		groups := make([]group, len(order))
		for i, o := range order {
			groups[i] = p.groups[o]
		}
		p.groups = groups
	}
}
