package query

// ResultCol describes one output column.
type ResultCol struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Type    string `json:"type"`
	Pattern string `json:"pattern,omitempty"`
}

// ResultCell is one output cell: the raw value plus optional formatted text.
type ResultCell struct {
	V interface{} `json:"v"`
	F string      `json:"f,omitempty"`
}

// ResultRow is one output row.
type ResultRow struct {
	C []ResultCell `json:"c"`
}

// Result is the uniform SELECT result shape. It is identical whether the
// statement ran through the native dialect bridge or direct evaluation.
type Result struct {
	Cols []ResultCol `json:"cols"`
	Rows []ResultRow `json:"rows"`
}

// MutationResult summarizes an INSERT, UPDATE or DELETE. Grid mutations
// report UpdateTime; virtual-table mutations return the complete
// post-mutation array in Data, header row included.
type MutationResult struct {
	Operation   string          `json:"operation"`
	UpdatedRows *int            `json:"updatedRows,omitempty"`
	DeletedRows *int            `json:"deletedRows,omitempty"`
	UpdateTime  string          `json:"updateTime,omitempty"`
	Data        [][]interface{} `json:"data,omitempty"`
}

// Response is the outcome of one statement: exactly one of Result or
// Mutation is set.
type Response struct {
	Result   *Result         `json:"result,omitempty"`
	Mutation *MutationResult `json:"mutation,omitempty"`
}

// buildResult converts a projected table into the wire result shape,
// applying LABEL and FORMAT overrides. Pattern metadata is attached only
// when withMetadata is set.
func buildResult(t *Table, labels, formats map[string]string, withMetadata bool) *Result {
	res := &Result{Rows: []ResultRow{}}
	patterns := make([]string, len(t.Cols))

	for i, c := range t.Cols {
		col := ResultCol{ID: c.ID, Label: c.Label, Type: c.Type.String()}
		if col.Label == "" {
			col.Label = c.ID
		}
		if label, ok := lookupOverride(labels, c); ok {
			col.Label = label
		}
		if format, ok := lookupOverride(formats, c); ok {
			patterns[i] = format
			if withMetadata {
				col.Pattern = format
			}
		} else if c.Format != "" {
			patterns[i] = c.Format
			if withMetadata {
				col.Pattern = c.Format
			}
		}
		res.Cols = append(res.Cols, col)
	}

	for _, row := range t.Rows {
		out := ResultRow{C: make([]ResultCell, len(row))}
		for i, v := range row {
			cell := ResultCell{V: v.ToAny()}
			if patterns[i] != "" && v.Kind != KindNull {
				cell.F = formatCell(v, patterns[i])
			}
			out.C[i] = cell
		}
		res.Rows = append(res.Rows, out)
	}
	return res
}

// lookupOverride matches a LABEL/FORMAT key against a column by id or
// qualified id, case-insensitively.
func lookupOverride(m map[string]string, c Column) (string, bool) {
	for key, val := range m {
		if equalFoldID(key, c.ID) || equalFoldID(key, c.qualifiedID()) {
			return val, true
		}
	}
	return "", false
}

func equalFoldID(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
