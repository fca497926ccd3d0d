package query

// joinTables nested-loop joins left and right on clause's equality condition.
// The output carries every column of both inputs, qualified by their aliases.
func joinTables(left, right *Table, clause JoinClause) (*Table, error) {
	out := &Table{Source: SourceDerived}
	out.Cols = append(out.Cols, left.Cols...)
	out.Cols = append(out.Cols, right.Cols...)

	li, err := left.columnIndex(clause.LeftCol)
	if err != nil {
		return nil, err
	}
	ri, err := right.columnIndex(clause.RightCol)
	if err != nil {
		return nil, err
	}
	// the ON columns may be written in either order
	if li < 0 && ri < 0 {
		li2, err := left.columnIndex(clause.RightCol)
		if err != nil {
			return nil, err
		}
		ri2, err := right.columnIndex(clause.LeftCol)
		if err != nil {
			return nil, err
		}
		li, ri = li2, ri2
	}
	if li < 0 {
		return nil, validationErrf("join column %q not found", clause.LeftCol.String())
	}
	if ri < 0 {
		return nil, validationErrf("join column %q not found", clause.RightCol.String())
	}

	leftWidth := len(left.Cols)
	rightWidth := len(right.Cols)

	switch clause.Type {
	case JoinRight:
		for _, rrow := range right.Rows {
			matched := false
			for _, lrow := range left.Rows {
				if joinMatch(lrow[li], rrow[ri]) {
					out.Rows = append(out.Rows, joinedRow(lrow, rrow))
					matched = true
				}
			}
			if !matched {
				out.Rows = append(out.Rows, joinedRow(nullRow(leftWidth), rrow))
			}
		}
	default:
		for _, lrow := range left.Rows {
			matched := false
			for _, rrow := range right.Rows {
				if joinMatch(lrow[li], rrow[ri]) {
					out.Rows = append(out.Rows, joinedRow(lrow, rrow))
					matched = true
				}
			}
			if !matched && clause.Type == JoinLeft {
				out.Rows = append(out.Rows, joinedRow(lrow, nullRow(rightWidth)))
			}
		}
	}

	out.EmptyAsNull = left.EmptyAsNull || right.EmptyAsNull
	return out, nil
}

// joinMatch applies the forgiving equality rules; nulls never join.
func joinMatch(a, b Value) bool {
	if a.Kind == KindNull || b.Kind == KindNull {
		return false
	}
	return compare(a, TokenEqual, b)
}

func joinedRow(l, r []Value) []Value {
	row := make([]Value, 0, len(l)+len(r))
	row = append(row, l...)
	return append(row, r...)
}

func nullRow(n int) []Value {
	row := make([]Value, n)
	for i := range row {
		row[i] = Null()
	}
	return row
}
