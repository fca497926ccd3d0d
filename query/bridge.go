package query

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/whichguy/sheetql/grid"
)

// bridgeFuncs are the scalar functions the remote dialect understands.
var bridgeFuncs = map[string]bool{
	"LOWER": true,
	"UPPER": true,
	"YEAR":  true,
	"MONTH": true,
	"DAY":   true,
}

// bridgeEligible reports whether stmt can run through the remote source's
// native dialect: a single non-virtual source, no JOIN, no DISTINCT, and a
// source that can execute native queries.
func bridgeEligible(stmt *SelectStmt, src grid.Source) (grid.Querier, bool) {
	if stmt.Distinct || len(stmt.Joins) > 0 {
		return nil, false
	}
	if stmt.From != nil && stmt.From.Virtual {
		return nil, false
	}
	q, ok := src.(grid.Querier)
	return q, ok
}

// execBridge translates stmt into the native dialect, runs it remotely and
// reshapes the response into the uniform result. ok is false when some part
// of the statement cannot be expressed in the dialect; the caller then falls
// back to direct evaluation.
func (e *Engine) execBridge(ctx context.Context, q grid.Querier, loc string, stmt *SelectStmt, withMetadata bool) (*Result, bool, error) {
	native, ok := buildDialectQuery(stmt)
	if !ok {
		return nil, false, nil
	}

	e.log.Debug().Str("location", loc).Str("native", native).Msg("bridged select")

	qr, err := q.Query(ctx, loc, native)
	if err != nil {
		return nil, true, &RemoteError{Op: "query", Err: err}
	}

	res := &Result{Rows: []ResultRow{}}
	for _, c := range qr.Cols {
		col := ResultCol{ID: c.ID, Label: c.Label, Type: c.Type}
		if col.Label == "" {
			col.Label = c.ID
		}
		if withMetadata {
			col.Pattern = c.Pattern
		}
		res.Cols = append(res.Cols, col)
	}
	for _, r := range qr.Rows {
		row := ResultRow{C: make([]ResultCell, len(r))}
		for i, c := range r {
			row.C[i] = ResultCell{V: c.V, F: c.F}
		}
		res.Rows = append(res.Rows, row)
	}
	return res, true, nil
}

// buildDialectQuery serializes stmt into the remote dialect. ok is false
// when the statement uses something the dialect has no spelling for.
func buildDialectQuery(stmt *SelectStmt) (string, bool) {
	var b strings.Builder

	b.WriteString("select ")
	if len(stmt.Projs) == 1 {
		if star, isStar := stmt.Projs[0].Expr.(*StarExpr); isStar && star.Table == "" {
			b.WriteString("*")
		}
	}
	if b.Len() == len("select ") {
		parts := make([]string, 0, len(stmt.Projs))
		for _, item := range stmt.Projs {
			s, ok := dialectExpr(item.Expr)
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		b.WriteString(strings.Join(parts, ", "))
	}

	if stmt.Where != nil {
		s, ok := dialectCond(stmt.Where)
		if !ok {
			return "", false
		}
		b.WriteString(" where " + s)
	}

	if len(stmt.GroupBy) > 0 {
		parts := make([]string, len(stmt.GroupBy))
		for i, ref := range stmt.GroupBy {
			parts[i] = dialectColumn(ref)
		}
		b.WriteString(" group by " + strings.Join(parts, ", "))
	}

	if stmt.Pivot != "" {
		b.WriteString(" pivot " + dialectColumn(splitColumnRef(stmt.Pivot)))
	}

	if stmt.Having != nil {
		// the dialect has no having clause
		return "", false
	}

	if len(stmt.OrderBy) > 0 {
		parts := make([]string, 0, len(stmt.OrderBy))
		for _, item := range stmt.OrderBy {
			s, ok := dialectExpr(item.Expr)
			if !ok {
				return "", false
			}
			if item.Desc {
				s += " desc"
			}
			parts = append(parts, s)
		}
		b.WriteString(" order by " + strings.Join(parts, ", "))
	}

	if stmt.Limit != nil {
		b.WriteString(" limit " + strconv.FormatInt(*stmt.Limit, 10))
	}
	if stmt.Offset != nil {
		b.WriteString(" offset " + strconv.FormatInt(*stmt.Offset, 10))
	}

	if s, ok := dialectPairs("label", stmt.Labels); ok {
		b.WriteString(s)
	} else {
		return "", false
	}
	if s, ok := dialectPairs("format", stmt.Formats); ok {
		b.WriteString(s)
	} else {
		return "", false
	}

	return b.String(), true
}

func dialectPairs(keyword string, m map[string]string) (string, bool) {
	if len(m) == 0 {
		return "", true
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		lit, ok := dialectString(m[k])
		if !ok {
			return "", false
		}
		parts = append(parts, k+" "+lit)
	}
	return " " + keyword + " " + strings.Join(parts, ", "), true
}

func dialectExpr(expr SelectExpression) (string, bool) {
	switch e := expr.(type) {
	case *ColumnExpr:
		return dialectColumn(e.Ref), true
	case *AggregateExpr:
		if e.Star {
			if e.Fn != "COUNT" {
				return "", false
			}
			// the dialect has no count(*); count over the first column is
			// not equivalent, so fall back
			return "", false
		}
		return strings.ToLower(e.Fn) + "(" + dialectColumn(e.Arg) + ")", true
	case *ArithmeticExpr:
		l, ok := dialectExpr(e.Left)
		if !ok {
			return "", false
		}
		r, ok := dialectExpr(e.Right)
		if !ok {
			return "", false
		}
		return "(" + l + " " + string(e.Op) + " " + r + ")", true
	case *LiteralExpr:
		return dialectValue(e.Val)
	case *FunctionExpr:
		if !bridgeFuncs[e.Name] {
			return "", false
		}
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			s, ok := dialectExpr(a)
			if !ok {
				return "", false
			}
			parts[i] = s
		}
		return strings.ToLower(e.Name) + "(" + strings.Join(parts, ", ") + ")", true
	}
	return "", false
}

func dialectCond(cond Expression) (string, bool) {
	switch e := cond.(type) {
	case *BinaryExpr:
		op := " and "
		if e.Operator == TokenOr {
			op = " or "
		}
		l, ok := dialectCond(e.Left)
		if !ok {
			return "", false
		}
		r, ok := dialectCond(e.Right)
		if !ok {
			return "", false
		}
		return "(" + l + op + r + ")", true

	case *CompareExpr:
		l, ok := dialectOperand(e.Left)
		if !ok {
			return "", false
		}
		r, ok := dialectOperand(e.Right)
		if !ok {
			return "", false
		}
		ops := map[TokenType]string{
			TokenEqual: "=", TokenNotEqual: "!=",
			TokenLess: "<", TokenGreater: ">",
			TokenLessEqual: "<=", TokenGreaterEqual: ">=",
		}
		return l + " " + ops[e.Operator] + " " + r, true

	case *MatchExpr:
		l, ok := dialectOperand(e.Left)
		if !ok {
			return "", false
		}
		r, ok := dialectOperand(e.Right)
		if !ok {
			return "", false
		}
		kw := map[MatchOp]string{
			MatchContains:   "contains",
			MatchStartsWith: "starts with",
			MatchEndsWith:   "ends with",
		}
		return l + " " + kw[e.Op] + " " + r, true

	case *IsNullExpr:
		l, ok := dialectOperand(e.Operand)
		if !ok {
			return "", false
		}
		if e.Negate {
			return l + " is not null", true
		}
		return l + " is null", true

	case *BoolExpr:
		return strconv.FormatBool(e.Val), true
	}
	return "", false
}

func dialectOperand(op Operand) (string, bool) {
	switch o := op.(type) {
	case *ColumnOperand:
		col := dialectColumn(o.Ref)
		if o.Lower {
			return "lower(" + col + ")", true
		}
		return col, true
	case *LiteralOperand:
		return dialectValue(o.Val)
	case *TodayOperand:
		// now() is a datetime; todate truncates it to the start of the day
		return "todate(now())", true
	case *AggregateOperand:
		return "", false
	}
	return "", false
}

func dialectColumn(ref ColumnRef) string {
	name := ref.Name
	if strings.ContainsAny(name, " -") {
		return "`" + name + "`"
	}
	return name
}

func dialectValue(v Value) (string, bool) {
	switch v.Kind {
	case KindNull:
		// the dialect has no null literal outside is null
		return "", false
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.Bool), true
	case KindDate:
		return `date "` + v.Time.Format("2006-01-02") + `"`, true
	default:
		return dialectString(v.Str)
	}
}

// dialectString quotes a string literal. The dialect has no escape syntax,
// so a string containing both quote characters cannot be expressed.
func dialectString(s string) (string, bool) {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`, true
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'", true
	}
	return "", false
}
