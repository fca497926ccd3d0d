package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the type of a cell value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindDate
)

// String returns the wire name of the kind, matching the "type" field of
// result columns.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindDate:
		return "date"
	default:
		return "null"
	}
}

// Value is a single cell value. Exactly one of the payload fields is
// meaningful, selected by Kind.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	Time time.Time
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// String returns a string value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Boolean returns a boolean value.
func Boolean(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Date returns a date value.
func Date(t time.Time) Value { return Value{Kind: KindDate, Time: t} }

// FromAny converts a caller-supplied cell (virtual table payloads, grid
// reads, JSON-decoded input) into a Value.
func FromAny(v interface{}) Value {
	switch val := v.(type) {
	case nil:
		return Null()
	case string:
		return String(val)
	case bool:
		return Boolean(val)
	case float64:
		return Number(val)
	case float32:
		return Number(float64(val))
	case int:
		return Number(float64(val))
	case int8:
		return Number(float64(val))
	case int16:
		return Number(float64(val))
	case int32:
		return Number(float64(val))
	case int64:
		return Number(float64(val))
	case uint:
		return Number(float64(val))
	case uint8:
		return Number(float64(val))
	case uint16:
		return Number(float64(val))
	case uint32:
		return Number(float64(val))
	case uint64:
		return Number(float64(val))
	case time.Time:
		return Date(val)
	default:
		return String(fmt.Sprintf("%v", val))
	}
}

// ToAny converts a Value back to its plain Go form for JSON results and
// mutation payloads.
func (v Value) ToAny() interface{} {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindDate:
		if v.Time.Hour() == 0 && v.Time.Minute() == 0 && v.Time.Second() == 0 {
			return v.Time.Format("2006-01-02")
		}
		return v.Time.Format("2006-01-02 15:04:05")
	default:
		return nil
	}
}

// Text returns the display text of a value.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindDate:
		s, _ := v.ToAny().(string)
		return s
	default:
		return ""
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// asNumber coerces the value to a float64 when it is numeric or a
// numeric-looking string.
func (v Value) asNumber() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// asDate coerces the value to a time when it is a date or an ISO-date-like
// string.
func (v Value) asDate() (time.Time, bool) {
	switch v.Kind {
	case KindDate:
		return v.Time, true
	case KindString:
		return parseDate(v.Str)
	default:
		return time.Time{}, false
	}
}

// looksLikeDate reports whether a string value would coerce to a date.
func looksLikeDate(s string) bool {
	_, ok := parseDate(s)
	return ok
}

// compare evaluates `left op right` with forgiving typed semantics:
// incompatible operands never error, they simply fail to match.
func compare(left Value, op TokenType, right Value) bool {
	if left.Kind == KindNull || right.Kind == KindNull {
		switch op {
		case TokenEqual:
			return left.Kind == KindNull && right.Kind == KindNull
		case TokenNotEqual:
			return (left.Kind == KindNull) != (right.Kind == KindNull)
		}
		return false
	}

	if left.Kind == KindDate || right.Kind == KindDate {
		lt, lok := left.asDate()
		rt, rok := right.asDate()
		if lok && rok {
			return compareNumbers(float64(lt.UnixMilli()), op, float64(rt.UnixMilli()))
		}
		return false
	}

	if left.Kind == KindNumber || right.Kind == KindNumber {
		ln, lok := left.asNumber()
		rn, rok := right.asNumber()
		if lok && rok {
			return compareNumbers(ln, op, rn)
		}
		return false
	}

	if left.Kind == KindBool && right.Kind == KindBool {
		switch op {
		case TokenEqual:
			return left.Bool == right.Bool
		case TokenNotEqual:
			return left.Bool != right.Bool
		}
		return false
	}

	if left.Kind == KindString && right.Kind == KindString {
		return compareStrings(left.Str, op, right.Str)
	}

	return false
}

func compareNumbers(left float64, op TokenType, right float64) bool {
	const epsilon = 1e-9
	switch op {
	case TokenEqual:
		return math.Abs(left-right) < epsilon*math.Max(1.0, math.Max(math.Abs(left), math.Abs(right)))
	case TokenNotEqual:
		return math.Abs(left-right) >= epsilon*math.Max(1.0, math.Max(math.Abs(left), math.Abs(right)))
	case TokenLess:
		return left < right
	case TokenGreater:
		return left > right
	case TokenLessEqual:
		return left <= right
	case TokenGreaterEqual:
		return left >= right
	default:
		return false
	}
}

func compareStrings(left string, op TokenType, right string) bool {
	switch op {
	case TokenEqual:
		return left == right
	case TokenNotEqual:
		return left != right
	case TokenLess:
		return left < right
	case TokenGreater:
		return left > right
	case TokenLessEqual:
		return left <= right
	case TokenGreaterEqual:
		return left >= right
	default:
		return false
	}
}

// compareValues orders two values for sorting: -1 if a < b, 0 if equal,
// +1 if a > b. Nulls sort first; mismatched types compare equal.
func compareValues(a, b Value) int {
	aNull := a.Kind == KindNull
	bNull := b.Kind == KindNull
	if aNull && bNull {
		return 0
	}
	if aNull {
		return -1
	}
	if bNull {
		return 1
	}

	if a.Kind == KindDate || b.Kind == KindDate {
		at, aok := a.asDate()
		bt, bok := b.asDate()
		if aok && bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
		return 0
	}

	if a.Kind == KindNumber || b.Kind == KindNumber {
		an, aok := a.asNumber()
		bn, bok := b.asNumber()
		if aok && bok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
		return 0
	}

	if a.Kind == KindString && b.Kind == KindString {
		return strings.Compare(a.Str, b.Str)
	}

	if a.Kind == KindBool && b.Kind == KindBool {
		switch {
		case !a.Bool && b.Bool:
			return -1
		case a.Bool && !b.Bool:
			return 1
		default:
			return 0
		}
	}

	return 0
}
