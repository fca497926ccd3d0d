package query

import (
	"context"

	"github.com/whichguy/sheetql/grid"
)

// resolver turns FROM/JOIN targets into Tables. Virtual tables come from the
// per-call payload; anything else is read from the grid source.
type resolver struct {
	src        grid.Source
	tables     map[string][][]interface{}
	defaultLoc string
}

// resolve loads the table for ref. A nil ref targets the caller-supplied
// default location.
func (r *resolver) resolve(ctx context.Context, ref *TableRef) (*Table, error) {
	if ref != nil && ref.Virtual {
		return r.resolveVirtual(ref)
	}
	loc := r.defaultLoc
	if ref != nil && ref.Name != "" {
		loc = ref.Name
	}
	if loc == "" {
		return nil, validationErrf("invalid target: no range location given")
	}
	if err := ValidateTableName(loc); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	t, err := r.resolveGrid(ctx, loc)
	if err != nil {
		return nil, err
	}
	if ref != nil {
		t.qualify(ref.aliasOrName())
	}
	return t, nil
}

// resolveVirtual builds a Table from a header-plus-rows 2-D array.
func (r *resolver) resolveVirtual(ref *TableRef) (*Table, error) {
	data, ok := r.tables[ref.Name]
	if !ok {
		return nil, validationErrf("virtual table %q not found", ref.Name)
	}
	if len(data) == 0 {
		return nil, validationErrf("virtual table %q is empty: header row required", ref.Name)
	}

	header := data[0]
	t := &Table{
		Source:      SourceVirtual,
		Name:        ref.Name,
		EmptyAsNull: true,
	}
	for i, h := range header {
		t.Cols = append(t.Cols, Column{ID: FromAny(h).Text()})
		t.Cols[i].Label = t.Cols[i].ID
	}
	for _, raw := range data[1:] {
		row := make([]Value, len(t.Cols))
		for i := range t.Cols {
			if i < len(raw) {
				row[i] = FromAny(raw[i])
			} else {
				row[i] = Null()
			}
		}
		t.Rows = append(t.Rows, row)
	}
	t.inferColumnTypes()
	t.qualify(ref.aliasOrName())
	return t, nil
}

// resolveGrid reads a range from the remote source and letter-codes its
// columns by position.
func (r *resolver) resolveGrid(ctx context.Context, loc string) (*Table, error) {
	data, err := r.src.Read(ctx, loc)
	if err != nil {
		return nil, &RemoteError{Op: "read", Err: err}
	}

	width := 0
	for _, raw := range data {
		if len(raw) > width {
			width = len(raw)
		}
	}

	t := &Table{
		Source: SourceGrid,
		Name:   loc,
	}
	for i := 0; i < width; i++ {
		id := colLetter(i)
		t.Cols = append(t.Cols, Column{ID: id, Label: id})
	}
	for _, raw := range data {
		row := make([]Value, width)
		for i := 0; i < width; i++ {
			if i < len(raw) {
				row[i] = FromAny(raw[i])
			} else {
				row[i] = Null()
			}
		}
		t.Rows = append(t.Rows, row)
	}
	t.inferColumnTypes()
	return t, nil
}
