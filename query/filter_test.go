package query

import (
	"testing"
)

// testTable builds a virtual-style table from a header row and value rows.
func testTable(header []string, rows ...[]interface{}) *Table {
	t := &Table{Source: SourceVirtual, EmptyAsNull: true}
	for _, h := range header {
		t.Cols = append(t.Cols, Column{ID: h, Label: h})
	}
	for _, raw := range rows {
		row := make([]Value, len(header))
		for i := range header {
			if i < len(raw) {
				row[i] = FromAny(raw[i])
			} else {
				row[i] = Null()
			}
		}
		t.Rows = append(t.Rows, row)
	}
	t.inferColumnTypes()
	return t
}

func whereCond(t *testing.T, cond string) Expression {
	t.Helper()
	sel := mustSelect(t, "select * where "+cond)
	return sel.Where
}

func TestFilterRows(t *testing.T) {
	tbl := testTable(
		[]string{"Name", "Amount", "Status"},
		[]interface{}{"Alice", 100, "active"},
		[]interface{}{"Bob", 30, "pending"},
		[]interface{}{"Carol", 75, "active"},
	)

	tests := []struct {
		name string
		cond string
		want []int
	}{
		{"equality", `Status = "active"`, []int{0, 2}},
		{"greater", `Amount > 50`, []int{0, 2}},
		{"and", `Status = "active" and Amount > 80`, []int{0}},
		{"or", `Amount < 40 or Amount > 90`, []int{0, 1}},
		{"not equal", `Status != "active"`, []int{1}},
		{"contains", `Name contains "li"`, []int{0}},
		{"contains case insensitive", `Name contains "ALI"`, []int{0}},
		{"starts with", `Name starts with "Ca"`, []int{2}},
		{"ends with", `Name ends with "ob"`, []int{1}},
		{"lower", `lower(Name) = "alice"`, []int{0}},
		{"unknown column no match", `Missing = 1`, []int{}},
		{"unknown column is null matches", `Missing is null`, []int{0, 1, 2}},
		{"type mismatch no match", `Name > 5`, []int{}},
		{"parenthesized", `(Amount > 90 or Amount < 40) and Status = "pending"`, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := filterRows(tbl, whereCond(t, tt.cond))
			if err != nil {
				t.Fatalf("filterRows error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("filterRows(%q) = %v, want %v", tt.cond, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("filterRows(%q) = %v, want %v", tt.cond, got, tt.want)
					break
				}
			}
		})
	}
}

func TestIsNull_EmptyString(t *testing.T) {
	tbl := testTable(
		[]string{"Name", "Note"},
		[]interface{}{"Alice", ""},
		[]interface{}{"Bob", "has note"},
		[]interface{}{"Carol", nil},
	)

	idx, err := filterRows(tbl, whereCond(t, "Note is null"))
	if err != nil {
		t.Fatalf("filterRows error: %v", err)
	}
	if len(idx) != 2 || idx[0] != 0 || idx[1] != 2 {
		t.Errorf("is null over empty-as-null table = %v, want [0 2]", idx)
	}

	idx, err = filterRows(tbl, whereCond(t, "Note is not null"))
	if err != nil {
		t.Fatalf("filterRows error: %v", err)
	}
	if len(idx) != 1 || idx[0] != 1 {
		t.Errorf("is not null = %v, want [1]", idx)
	}
}

func TestIsNull_GridKeepsEmptyStrings(t *testing.T) {
	tbl := testTable(
		[]string{"A"},
		[]interface{}{""},
		[]interface{}{nil},
	)
	tbl.EmptyAsNull = false

	idx, err := filterRows(tbl, whereCond(t, "A is null"))
	if err != nil {
		t.Fatalf("filterRows error: %v", err)
	}
	if len(idx) != 1 || idx[0] != 1 {
		t.Errorf("is null without empty-as-null = %v, want [1]", idx)
	}
}

func TestFilter_AmbiguousColumnErrors(t *testing.T) {
	tbl := testTable([]string{"ID"}, []interface{}{1})
	tbl.qualify("a")
	other := testTable([]string{"ID"}, []interface{}{1})
	other.qualify("b")

	joined, err := joinTables(tbl, other, JoinClause{
		Type:     JoinInner,
		LeftCol:  ColumnRef{Table: "a", Name: "ID"},
		RightCol: ColumnRef{Table: "b", Name: "ID"},
	})
	if err != nil {
		t.Fatalf("joinTables error: %v", err)
	}

	_, err = filterRows(joined, whereCond(t, "ID = 1"))
	if err == nil {
		t.Fatal("expected ambiguity error for unqualified ID after join")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("err = %T, want *ValidationError", err)
	}

	idx, err := filterRows(joined, whereCond(t, "a.ID = 1"))
	if err != nil {
		t.Fatalf("qualified lookup error: %v", err)
	}
	if len(idx) != 1 {
		t.Errorf("qualified filter = %v, want one row", idx)
	}
}

func TestTodayOperand(t *testing.T) {
	tbl := testTable([]string{"A"}, []interface{}{1})
	idx, err := filterRows(tbl, whereCond(t, "today() = today()"))
	if err != nil {
		t.Fatalf("filterRows error: %v", err)
	}
	if len(idx) != 1 {
		t.Errorf("today() = today() should match every row, got %v", idx)
	}
}
