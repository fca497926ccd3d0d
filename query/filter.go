package query

import (
	"strings"
	"time"
)

// Expression is a boolean predicate over one row.
type Expression interface {
	// Evaluate reports whether the row matches. A type mismatch between
	// operands is not an error; the row simply does not match.
	Evaluate(row RowView) (bool, error)
}

// Operand resolves to a value against one row.
type Operand interface {
	Resolve(row RowView) (Value, error)
}

// ColumnOperand resolves a column reference. Unknown columns resolve to null
// so predicates over missing columns match nothing instead of failing.
type ColumnOperand struct {
	Ref   ColumnRef
	Lower bool // wrap in lower() for case-insensitive comparison
}

func (o *ColumnOperand) Resolve(row RowView) (Value, error) {
	v, found, err := row.Lookup(o.Ref)
	if err != nil {
		return Null(), err
	}
	if !found {
		return Null(), nil
	}
	if o.Lower && v.Kind == KindString {
		v = String(strings.ToLower(v.Str))
	}
	return v, nil
}

// LiteralOperand resolves to a fixed value.
type LiteralOperand struct {
	Val Value
}

func (o *LiteralOperand) Resolve(RowView) (Value, error) {
	return o.Val, nil
}

// TodayOperand resolves to the current date at midnight UTC.
type TodayOperand struct{}

func (o *TodayOperand) Resolve(RowView) (Value, error) {
	y, m, d := time.Now().UTC().Date()
	return Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)), nil
}

// AggregateOperand resolves an aggregate value from a group view. It only
// appears in HAVING predicates, evaluated against aggregated groups.
type AggregateOperand struct {
	Agg *AggregateExpr
}

// aggregateRow is implemented by the group view HAVING evaluates against.
type aggregateRow interface {
	aggregate(agg *AggregateExpr) (Value, error)
}

func (o *AggregateOperand) Resolve(row RowView) (Value, error) {
	ar, ok := row.(aggregateRow)
	if !ok {
		return Null(), validationErrf("invalid use of aggregate %s outside HAVING", strings.ToLower(o.Agg.Fn))
	}
	return ar.aggregate(o.Agg)
}

// BinaryExpr combines two predicates with AND or OR.
type BinaryExpr struct {
	Left     Expression
	Operator TokenType // TokenAnd or TokenOr
	Right    Expression
}

func (e *BinaryExpr) Evaluate(row RowView) (bool, error) {
	left, err := e.Left.Evaluate(row)
	if err != nil {
		return false, err
	}
	if e.Operator == TokenAnd {
		if !left {
			return false, nil
		}
		return e.Right.Evaluate(row)
	}
	if left {
		return true, nil
	}
	return e.Right.Evaluate(row)
}

// CompareExpr compares two operands with =, !=, <, >, <= or >=.
type CompareExpr struct {
	Left     Operand
	Operator TokenType
	Right    Operand
}

func (e *CompareExpr) Evaluate(row RowView) (bool, error) {
	left, err := e.Left.Resolve(row)
	if err != nil {
		return false, err
	}
	right, err := e.Right.Resolve(row)
	if err != nil {
		return false, err
	}
	return compare(left, e.Operator, right), nil
}

// MatchOp is a substring match operator.
type MatchOp int

const (
	MatchContains MatchOp = iota
	MatchStartsWith
	MatchEndsWith
)

// MatchExpr is CONTAINS, STARTS WITH or ENDS WITH. Matching is
// case-insensitive; non-string operands are matched on their text form.
type MatchExpr struct {
	Left  Operand
	Op    MatchOp
	Right Operand
}

func (e *MatchExpr) Evaluate(row RowView) (bool, error) {
	left, err := e.Left.Resolve(row)
	if err != nil {
		return false, err
	}
	right, err := e.Right.Resolve(row)
	if err != nil {
		return false, err
	}
	if left.Kind == KindNull || right.Kind == KindNull {
		return false, nil
	}
	haystack := strings.ToLower(left.Text())
	needle := strings.ToLower(right.Text())
	switch e.Op {
	case MatchStartsWith:
		return strings.HasPrefix(haystack, needle), nil
	case MatchEndsWith:
		return strings.HasSuffix(haystack, needle), nil
	default:
		return strings.Contains(haystack, needle), nil
	}
}

// IsNullExpr is IS NULL / IS NOT NULL. For sources that flag EmptyAsNull an
// empty string also counts as null.
type IsNullExpr struct {
	Operand Operand
	Negate  bool
}

func (e *IsNullExpr) Evaluate(row RowView) (bool, error) {
	v, err := e.Operand.Resolve(row)
	if err != nil {
		return false, err
	}
	isNull := v.Kind == KindNull
	if !isNull && v.Kind == KindString && v.Str == "" && row.EmptyAsNull() {
		isNull = true
	}
	if e.Negate {
		return !isNull, nil
	}
	return isNull, nil
}

// BoolExpr is a bare boolean literal used as a predicate.
type BoolExpr struct {
	Val bool
}

func (e *BoolExpr) Evaluate(RowView) (bool, error) {
	return e.Val, nil
}

// filterRows returns the zero-based ordinals of rows matching cond, in table
// order. A nil cond matches every row.
func filterRows(t *Table, cond Expression) ([]int, error) {
	idx := make([]int, 0, len(t.Rows))
	for i := range t.Rows {
		if cond == nil {
			idx = append(idx, i)
			continue
		}
		ok, err := cond.Evaluate(t.rowView(i))
		if err != nil {
			return nil, err
		}
		if ok {
			idx = append(idx, i)
		}
	}
	return idx, nil
}
