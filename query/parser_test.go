package query

import (
	"errors"
	"strings"
	"testing"
)

func mustSelect(t *testing.T, stmt string) *SelectStmt {
	t.Helper()
	s, err := Parse(stmt)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", stmt, err)
	}
	sel, ok := s.(*SelectStmt)
	if !ok {
		t.Fatalf("Parse(%q) = %T, want *SelectStmt", stmt, s)
	}
	return sel
}

func TestParse_SelectBasic(t *testing.T) {
	sel := mustSelect(t, `select * from :orders where Amount > 50`)

	if len(sel.Projs) != 1 {
		t.Fatalf("projections = %d, want 1", len(sel.Projs))
	}
	if _, ok := sel.Projs[0].Expr.(*StarExpr); !ok {
		t.Errorf("projection = %T, want *StarExpr", sel.Projs[0].Expr)
	}
	if sel.From == nil || !sel.From.Virtual || sel.From.Name != "orders" {
		t.Errorf("From = %+v, want virtual orders", sel.From)
	}
	if sel.Where == nil {
		t.Error("Where = nil, want condition")
	}
}

func TestParse_SelectNoFrom(t *testing.T) {
	sel := mustSelect(t, `select A, B where A > 1`)
	if sel.From != nil {
		t.Errorf("From = %+v, want nil for default location", sel.From)
	}
	if len(sel.Projs) != 2 {
		t.Errorf("projections = %d, want 2", len(sel.Projs))
	}
}

func TestParse_SelectFull(t *testing.T) {
	sel := mustSelect(t, `select Region, sum(Amount) as Total from :sales `+
		`where Status = "closed" group by Region having sum(Amount) > 100 `+
		`order by Total desc limit 10 offset 5`)

	if len(sel.GroupBy) != 1 || sel.GroupBy[0].Name != "Region" {
		t.Errorf("GroupBy = %v", sel.GroupBy)
	}
	if sel.Having == nil {
		t.Error("Having = nil")
	}
	if len(sel.OrderBy) != 1 || !sel.OrderBy[0].Desc {
		t.Errorf("OrderBy = %+v", sel.OrderBy)
	}
	if sel.Limit == nil || *sel.Limit != 10 {
		t.Errorf("Limit = %v, want 10", sel.Limit)
	}
	if sel.Offset == nil || *sel.Offset != 5 {
		t.Errorf("Offset = %v, want 5", sel.Offset)
	}
	if sel.Projs[1].Alias != "Total" {
		t.Errorf("alias = %q, want Total", sel.Projs[1].Alias)
	}
}

func TestParse_SelectDistinct(t *testing.T) {
	sel := mustSelect(t, `select distinct A, B from :t`)
	if !sel.Distinct {
		t.Error("Distinct = false, want true")
	}
}

func TestParse_Joins(t *testing.T) {
	tests := []struct {
		name string
		stmt string
		typ  JoinType
	}{
		{"bare join", `select * from :a as x join :b as y on x.ID = y.ID`, JoinInner},
		{"inner join", `select * from :a as x inner join :b as y on x.ID = y.ID`, JoinInner},
		{"left join", `select * from :a as x left join :b as y on x.ID = y.ID`, JoinLeft},
		{"left outer join", `select * from :a as x left outer join :b as y on x.ID = y.ID`, JoinLeft},
		{"right join", `select * from :a as x right join :b as y on x.ID = y.ID`, JoinRight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := mustSelect(t, tt.stmt)
			if len(sel.Joins) != 1 {
				t.Fatalf("joins = %d, want 1", len(sel.Joins))
			}
			join := sel.Joins[0]
			if join.Type != tt.typ {
				t.Errorf("join type = %v, want %v", join.Type, tt.typ)
			}
			if join.LeftCol.Table != "x" || join.RightCol.Table != "y" {
				t.Errorf("join cols = %v / %v", join.LeftCol, join.RightCol)
			}
		})
	}
}

func TestParse_LabelFormatPivot(t *testing.T) {
	sel := mustSelect(t, `select Region, sum(Amount) from :t group by Region `+
		`label Region 'Sales Region' format Amount '$#,##0.00' pivot Quarter`)

	if sel.Labels["Region"] != "Sales Region" {
		t.Errorf("Labels = %v", sel.Labels)
	}
	if sel.Formats["Amount"] != "$#,##0.00" {
		t.Errorf("Formats = %v", sel.Formats)
	}
	if sel.Pivot != "Quarter" {
		t.Errorf("Pivot = %q, want Quarter", sel.Pivot)
	}
}

func TestParse_GridRangeTargets(t *testing.T) {
	sel := mustSelect(t, `select A, B from Sheet1!A1:C10 where A > 1`)
	if sel.From == nil || sel.From.Virtual || sel.From.Name != "Sheet1!A1:C10" {
		t.Errorf("From = %+v", sel.From)
	}
}

func TestParse_Insert(t *testing.T) {
	s, err := Parse(`insert values ("Dave", 42, "active") from :data`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	ins := s.(*InsertStmt)
	if len(ins.Values) != 3 {
		t.Errorf("values = %d, want 3", len(ins.Values))
	}
	if ins.Target == nil || ins.Target.Name != "data" {
		t.Errorf("target = %+v", ins.Target)
	}

	s, err = Parse(`insert into (Name, Amount) values ("Dave", 42) from :data`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	ins = s.(*InsertStmt)
	if len(ins.Columns) != 2 || ins.Columns[0] != "Name" {
		t.Errorf("columns = %v", ins.Columns)
	}
}

func TestParse_InsertColumnValueMismatch(t *testing.T) {
	_, err := Parse(`insert into (Name, Amount) values ("Dave") from :data`)
	var syn *SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("err = %v, want *SyntaxError", err)
	}
}

func TestParse_Update(t *testing.T) {
	s, err := Parse(`update set Status = "done", Amount = 0 from :data where Amount > 50 order by Amount desc limit 2`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	upd := s.(*UpdateStmt)
	if len(upd.Assignments) != 2 {
		t.Errorf("assignments = %d, want 2", len(upd.Assignments))
	}
	if upd.Where == nil {
		t.Error("Where = nil")
	}
	if upd.Limit == nil || *upd.Limit != 2 {
		t.Errorf("Limit = %v", upd.Limit)
	}
}

func TestParse_UpdateClauseOrder(t *testing.T) {
	// WHERE before FROM and the reverse both parse
	for _, stmt := range []string{
		`update set A = 1 where B = 2 from :t`,
		`update set A = 1 from :t where B = 2`,
	} {
		s, err := Parse(stmt)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", stmt, err)
			continue
		}
		upd := s.(*UpdateStmt)
		if upd.Where == nil || upd.Target == nil {
			t.Errorf("Parse(%q): Where/Target missing", stmt)
		}
	}
}

func TestParse_Delete(t *testing.T) {
	s, err := Parse(`delete from :data where Status = "pending" order by Priority desc limit 1`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	del := s.(*DeleteStmt)
	if del.Where == nil {
		t.Error("Where = nil")
	}
	if len(del.OrderBy) != 1 || !del.OrderBy[0].Desc {
		t.Errorf("OrderBy = %+v", del.OrderBy)
	}
	if del.Limit == nil || *del.Limit != 1 {
		t.Errorf("Limit = %v", del.Limit)
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		stmt string
	}{
		{"unknown verb", "upsert into :t"},
		{"empty statement", ""},
		{"dangling where", "select * where"},
		{"duplicate where", "select * where A = 1 where B = 2"},
		{"missing on", "select * from :a join :b"},
		{"negative limit", "select * limit -1"},
		{"trailing garbage", "select A from :t garbage ("},
		{"bad values", "insert values (,) from :t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.stmt)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want syntax error", tt.stmt)
			}
			var syn *SyntaxError
			if !errors.As(err, &syn) {
				t.Errorf("Parse(%q) err = %T, want *SyntaxError", tt.stmt, err)
			}
		})
	}
}

func TestParse_WhereOperators(t *testing.T) {
	sel := mustSelect(t, `select * where Name contains "li" and City starts with "New" or Zip ends with "01" and Note is not null`)
	if sel.Where == nil {
		t.Fatal("Where = nil")
	}
}

func TestParse_DateLiteral(t *testing.T) {
	sel := mustSelect(t, `select * where Created >= date "2024-01-01"`)
	cmp, ok := sel.Where.(*CompareExpr)
	if !ok {
		t.Fatalf("Where = %T, want *CompareExpr", sel.Where)
	}
	lit, ok := cmp.Right.(*LiteralOperand)
	if !ok || lit.Val.Kind != KindDate {
		t.Errorf("right operand = %+v, want date literal", cmp.Right)
	}
}

func TestParse_IsoStringCoercesToDate(t *testing.T) {
	sel := mustSelect(t, `select * where Created >= "2024-01-01"`)
	cmp := sel.Where.(*CompareExpr)
	lit := cmp.Right.(*LiteralOperand)
	if lit.Val.Kind != KindDate {
		t.Errorf("right operand kind = %v, want KindDate", lit.Val.Kind)
	}
}

func TestParse_TooLong(t *testing.T) {
	stmt := "select * where A = \"" + strings.Repeat("x", MaxStatementLength) + "\""
	_, err := Parse(stmt)
	if err == nil {
		t.Fatal("expected error for oversized statement")
	}
}

func TestCanonicalName(t *testing.T) {
	sel := mustSelect(t, `select Region, sum(Amount), count(*) from :t group by Region`)
	if got := canonicalName(sel.Projs[1].Expr); got != "sum(Amount)" {
		t.Errorf("canonicalName = %q, want sum(Amount)", got)
	}
	if got := canonicalName(sel.Projs[2].Expr); got != "count(*)" {
		t.Errorf("canonicalName = %q, want count(*)", got)
	}
}
