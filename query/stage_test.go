package query

import "testing"

func stageFixture(t *testing.T) *selectPipeline {
	t.Helper()
	tbl := testTable(
		[]string{"Name", "Amount"},
		[]interface{}{"Alice", 100},
		[]interface{}{"Bob", 30},
		[]interface{}{"Carol", 75},
		[]interface{}{"Alice", 100},
	)
	items := []SelectItem{
		{Expr: &ColumnExpr{Ref: ColumnRef{Name: "Name"}}},
		{Expr: &ColumnExpr{Ref: ColumnRef{Name: "Amount"}}},
	}
	p, err := projectRows(tbl, allRows(tbl), items)
	if err != nil {
		t.Fatalf("projectRows error: %v", err)
	}
	return p
}

func names(p *selectPipeline) []string {
	var out []string
	for _, row := range p.out.Rows {
		out = append(out, row[0].Str)
	}
	return out
}

func TestApplyDistinct(t *testing.T) {
	p := stageFixture(t)
	applyDistinct(p)
	if len(p.out.Rows) != 3 {
		t.Fatalf("distinct rows = %d, want 3", len(p.out.Rows))
	}
	got := names(p)
	want := []string{"Alice", "Bob", "Carol"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("distinct order = %v, want %v", got, want)
			break
		}
	}
}

func TestApplyOrderBy_ReverseSymmetry(t *testing.T) {
	asc := stageFixture(t)
	if err := applyOrderBy(asc, []OrderByItem{{Expr: &ColumnExpr{Ref: ColumnRef{Name: "Name"}}}}); err != nil {
		t.Fatalf("order by asc error: %v", err)
	}
	desc := stageFixture(t)
	if err := applyOrderBy(desc, []OrderByItem{{Expr: &ColumnExpr{Ref: ColumnRef{Name: "Name"}}, Desc: true}}); err != nil {
		t.Fatalf("order by desc error: %v", err)
	}

	a, d := names(asc), names(desc)
	for i := range a {
		if a[i] != d[len(d)-1-i] {
			t.Errorf("asc %v is not the reverse of desc %v", a, d)
			break
		}
	}
}

func TestApplyOrderBy_Stable(t *testing.T) {
	p := stageFixture(t)
	if err := applyOrderBy(p, []OrderByItem{{Expr: &ColumnExpr{Ref: ColumnRef{Name: "Amount"}}, Desc: true}}); err != nil {
		t.Fatalf("order by error: %v", err)
	}
	// the two Alice/100 rows keep their relative order ahead of Carol and Bob
	got := names(p)
	want := []string{"Alice", "Alice", "Carol", "Bob"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order = %v, want %v", got, want)
			break
		}
	}
}

func TestApplyOrderBy_NonProjectedColumn(t *testing.T) {
	tbl := testTable(
		[]string{"Name", "Rank"},
		[]interface{}{"x", 2},
		[]interface{}{"y", 1},
		[]interface{}{"z", 3},
	)
	items := []SelectItem{{Expr: &ColumnExpr{Ref: ColumnRef{Name: "Name"}}}}
	p, err := projectRows(tbl, allRows(tbl), items)
	if err != nil {
		t.Fatalf("projectRows error: %v", err)
	}
	if err := applyOrderBy(p, []OrderByItem{{Expr: &ColumnExpr{Ref: ColumnRef{Name: "Rank"}}}}); err != nil {
		t.Fatalf("order by non-projected error: %v", err)
	}
	got := names(p)
	want := []string{"y", "x", "z"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order = %v, want %v", got, want)
			break
		}
	}
}

func TestApplyPage(t *testing.T) {
	two := int64(2)
	one := int64(1)

	tests := []struct {
		name   string
		offset *int64
		limit  *int64
		want   []string
	}{
		{"limit only", nil, &two, []string{"Alice", "Bob"}},
		{"offset only", &one, nil, []string{"Bob", "Carol", "Alice"}},
		{"offset then limit", &one, &two, []string{"Bob", "Carol"}},
		{"offset past end", ptrInt64(10), nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := stageFixture(t)
			applyPage(p, tt.offset, tt.limit)
			got := names(p)
			if len(got) != len(tt.want) {
				t.Fatalf("rows = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("rows = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func ptrInt64(n int64) *int64 { return &n }

func TestFinishSelect_StageOrder(t *testing.T) {
	// DISTINCT runs before ORDER BY and paging: limit 3 over 4 rows with one
	// duplicate yields all 3 distinct rows, sorted
	p := stageFixture(t)
	lim := int64(3)
	stmt := &SelectStmt{
		Distinct: true,
		OrderBy:  []OrderByItem{{Expr: &ColumnExpr{Ref: ColumnRef{Name: "Amount"}}}},
		Limit:    &lim,
	}
	if err := finishSelect(p, stmt); err != nil {
		t.Fatalf("finishSelect error: %v", err)
	}
	got := names(p)
	want := []string{"Bob", "Carol", "Alice"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rows = %v, want %v", got, want)
			break
		}
	}
}
