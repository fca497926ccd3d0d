package query

// group is one GROUP BY bucket: its key values and the ordinals of its
// member rows, in first-appearance order.
type group struct {
	keys    []Value
	members []int
}

// groupRows buckets the rows at idx by the GROUP BY columns. With no GROUP BY
// columns every row lands in a single group with no keys. Returns the groups
// and the resolved key column indexes.
func groupRows(t *Table, idx []int, groupBy []ColumnRef) ([]group, []int, error) {
	keyIdx := make([]int, len(groupBy))
	for i, ref := range groupBy {
		ci, err := t.columnIndex(ref)
		if err != nil {
			return nil, nil, err
		}
		if ci < 0 {
			return nil, nil, validationErrf("group by column %q not found", ref.String())
		}
		keyIdx[i] = ci
	}

	if len(groupBy) == 0 {
		return []group{{members: idx}}, keyIdx, nil
	}

	var groups []group
	seen := make(map[string]int)
	for _, ri := range idx {
		keys := make([]Value, len(keyIdx))
		sig := ""
		for i, ci := range keyIdx {
			keys[i] = t.Rows[ri][ci]
			sig += keys[i].Kind.String() + "\x00" + keys[i].Text() + "\x01"
		}
		gi, ok := seen[sig]
		if !ok {
			gi = len(groups)
			seen[sig] = gi
			groups = append(groups, group{keys: keys})
		}
		groups[gi].members = append(groups[gi].members, ri)
	}
	return groups, keyIdx, nil
}

// groupView exposes one aggregated group to a HAVING predicate: the group-by
// key columns resolve to key values, aggregates are computed over members.
type groupView struct {
	t      *Table
	keyIdx []int
	g      *group
}

func (v groupView) Lookup(ref ColumnRef) (Value, bool, error) {
	ci, err := v.t.columnIndex(ref)
	if err != nil {
		return Null(), false, err
	}
	for i, ki := range v.keyIdx {
		if ci == ki {
			return v.g.keys[i], true, nil
		}
	}
	return Null(), false, nil
}

func (v groupView) EmptyAsNull() bool { return v.t.EmptyAsNull }

func (v groupView) aggregate(agg *AggregateExpr) (Value, error) {
	return computeAggregate(v.t, v.g.members, agg)
}

// computeAggregate evaluates one aggregate over the member rows.
func computeAggregate(t *Table, members []int, agg *AggregateExpr) (Value, error) {
	if agg.Star {
		return Number(float64(len(members))), nil
	}

	ci, err := t.columnIndex(agg.Arg)
	if err != nil {
		return Null(), err
	}
	if ci < 0 {
		return Null(), validationErrf("aggregate column %q not found", agg.Arg.String())
	}

	switch agg.Fn {
	case "COUNT":
		n := 0
		for _, ri := range members {
			if t.Rows[ri][ci].Kind != KindNull {
				n++
			}
		}
		return Number(float64(n)), nil

	case "SUM", "AVG":
		sum := 0.0
		n := 0
		for _, ri := range members {
			if v, ok := t.Rows[ri][ci].asNumber(); ok {
				sum += v
				n++
			}
		}
		if agg.Fn == "AVG" {
			if n == 0 {
				return Null(), nil
			}
			return Number(sum / float64(n)), nil
		}
		return Number(sum), nil

	case "MIN", "MAX":
		best := Null()
		for _, ri := range members {
			v := t.Rows[ri][ci]
			if v.Kind == KindNull {
				continue
			}
			if best.Kind == KindNull {
				best = v
				continue
			}
			cmp := compareValues(v, best)
			if (agg.Fn == "MIN" && cmp < 0) || (agg.Fn == "MAX" && cmp > 0) {
				best = v
			}
		}
		return best, nil
	}

	return Null(), validationErrf("invalid aggregate function %q", agg.Fn)
}

// filterGroups drops groups failing the HAVING predicate.
func filterGroups(t *Table, keyIdx []int, groups []group, having Expression) ([]group, error) {
	if having == nil {
		return groups, nil
	}
	kept := groups[:0]
	for i := range groups {
		ok, err := having.Evaluate(groupView{t: t, keyIdx: keyIdx, g: &groups[i]})
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, groups[i])
		}
	}
	return kept, nil
}
