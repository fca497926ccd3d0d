package query

import "strings"

// SourceKind discriminates where a table's rows came from.
type SourceKind int

const (
	SourceVirtual SourceKind = iota
	SourceGrid
	SourceDerived // join or projection output
)

// Column describes one table column.
type Column struct {
	ID     string // letter code for grid ranges, header name otherwise
	Qual   string // alias qualifier, set once the table enters a join
	Label  string // display label, defaults to ID
	Type   Kind
	Format string // display format pattern, empty unless FORMAT was applied
}

// qualifiedID returns the column id prefixed with its alias qualifier.
func (c Column) qualifiedID() string {
	if c.Qual != "" {
		return c.Qual + "." + c.ID
	}
	return c.ID
}

// Table is an ordered set of columns and rows plus its source identity. Row
// position within Rows is the stable ordinal used to address the physical
// source during mutation.
type Table struct {
	Cols        []Column
	Rows        [][]Value
	Source      SourceKind
	Name        string // virtual table name or grid location
	Alias       string
	EmptyAsNull bool // virtual tables treat "" as null for IS NULL checks
}

// columnIndex finds the column matched by ref. Returns -1 when absent and an
// error when an unqualified name matches more than one column.
func (t *Table) columnIndex(ref ColumnRef) (int, error) {
	found := -1
	for i, c := range t.Cols {
		if ref.Table != "" {
			if strings.EqualFold(c.Qual, ref.Table) && strings.EqualFold(c.ID, ref.Name) {
				return i, nil
			}
			// also accept the fully qualified form stored as a plain id
			if strings.EqualFold(c.ID, ref.Table+"."+ref.Name) {
				return i, nil
			}
			continue
		}
		if strings.EqualFold(c.ID, ref.Name) {
			if found >= 0 {
				return -1, validationErrf("invalid column reference %q: ambiguous after join, qualify it with a table alias", ref.Name)
			}
			found = i
		}
	}
	return found, nil
}

// qualify stamps every column with the table's alias so joined tables
// resolve alias.column references.
func (t *Table) qualify(alias string) {
	if alias == "" {
		return
	}
	t.Alias = alias
	for i := range t.Cols {
		t.Cols[i].Qual = alias
	}
}

// RowView exposes one row (or one aggregated group) to predicate
// evaluation.
type RowView interface {
	// Lookup resolves a column reference. found is false for unknown
	// columns; the error reports ambiguity.
	Lookup(ref ColumnRef) (Value, bool, error)
	// EmptyAsNull reports whether an empty string counts as null here.
	EmptyAsNull() bool
}

// tableRow is the RowView over one physical table row.
type tableRow struct {
	t   *Table
	idx int
}

func (r tableRow) Lookup(ref ColumnRef) (Value, bool, error) {
	i, err := r.t.columnIndex(ref)
	if err != nil {
		return Null(), false, err
	}
	if i < 0 {
		return Null(), false, nil
	}
	return r.t.Rows[r.idx][i], true, nil
}

func (r tableRow) EmptyAsNull() bool { return r.t.EmptyAsNull }

// rowView returns the RowView over row i.
func (t *Table) rowView(i int) RowView { return tableRow{t: t, idx: i} }

// inferColumnTypes sets each column's Type from its cell values: number,
// boolean or date only when every non-null, non-empty cell coerces.
func (t *Table) inferColumnTypes() {
	for ci := range t.Cols {
		kind := KindNull
		uniform := true
		for _, row := range t.Rows {
			v := row[ci]
			if v.Kind == KindNull || (v.Kind == KindString && v.Str == "") {
				continue
			}
			k := cellKind(v)
			if kind == KindNull {
				kind = k
			} else if kind != k {
				uniform = false
				break
			}
		}
		if !uniform || kind == KindNull {
			kind = KindString
		}
		t.Cols[ci].Type = kind
	}
}

func cellKind(v Value) Kind {
	switch v.Kind {
	case KindNumber, KindBool, KindDate:
		return v.Kind
	case KindString:
		if _, ok := v.asNumber(); ok {
			return KindNumber
		}
		if looksLikeDate(v.Str) {
			return KindDate
		}
		return KindString
	default:
		return KindString
	}
}

// colLetter converts a zero-based column position to its letter code:
// 0 -> A, 25 -> Z, 26 -> AA.
func colLetter(i int) string {
	letters := ""
	for {
		letters = string(rune('A'+i%26)) + letters
		i = i/26 - 1
		if i < 0 {
			return letters
		}
	}
}
