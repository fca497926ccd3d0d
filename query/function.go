package query

import (
	"fmt"
	"math"
	"strings"
)

// scalarFunc evaluates a scalar function over already-resolved arguments.
type scalarFunc struct {
	name    string
	minArgs int
	maxArgs int
	apply   func(args []Value) (Value, error)
}

var scalarFuncs = map[string]*scalarFunc{
	"LOWER": {
		name: "LOWER", minArgs: 1, maxArgs: 1,
		apply: func(args []Value) (Value, error) {
			return String(strings.ToLower(args[0].Text())), nil
		},
	},
	"UPPER": {
		name: "UPPER", minArgs: 1, maxArgs: 1,
		apply: func(args []Value) (Value, error) {
			return String(strings.ToUpper(args[0].Text())), nil
		},
	},
	"TRIM": {
		name: "TRIM", minArgs: 1, maxArgs: 1,
		apply: func(args []Value) (Value, error) {
			return String(strings.TrimSpace(args[0].Text())), nil
		},
	},
	"LENGTH": {
		name: "LENGTH", minArgs: 1, maxArgs: 1,
		apply: func(args []Value) (Value, error) {
			return Number(float64(len(args[0].Text()))), nil
		},
	},
	"ABS": {
		name: "ABS", minArgs: 1, maxArgs: 1,
		apply: func(args []Value) (Value, error) {
			n, ok := args[0].asNumber()
			if !ok {
				return Null(), nil
			}
			return Number(math.Abs(n)), nil
		},
	},
	"ROUND": {
		name: "ROUND", minArgs: 1, maxArgs: 2,
		apply: func(args []Value) (Value, error) {
			n, ok := args[0].asNumber()
			if !ok {
				return Null(), nil
			}
			places := 0.0
			if len(args) == 2 {
				p, ok := args[1].asNumber()
				if !ok {
					return Null(), fmt.Errorf("round: places must be a number")
				}
				places = p
			}
			scale := math.Pow(10, places)
			return Number(math.Round(n*scale) / scale), nil
		},
	},
	"YEAR": {
		name: "YEAR", minArgs: 1, maxArgs: 1,
		apply: func(args []Value) (Value, error) {
			t, ok := args[0].asDate()
			if !ok {
				return Null(), nil
			}
			return Number(float64(t.Year())), nil
		},
	},
	"MONTH": {
		name: "MONTH", minArgs: 1, maxArgs: 1,
		apply: func(args []Value) (Value, error) {
			t, ok := args[0].asDate()
			if !ok {
				return Null(), nil
			}
			return Number(float64(t.Month())), nil
		},
	},
	"DAY": {
		name: "DAY", minArgs: 1, maxArgs: 1,
		apply: func(args []Value) (Value, error) {
			t, ok := args[0].asDate()
			if !ok {
				return Null(), nil
			}
			return Number(float64(t.Day())), nil
		},
	},
}

// lookupFunction returns the scalar function registered under the upper-cased
// name.
func lookupFunction(upper string) (*scalarFunc, bool) {
	fn, ok := scalarFuncs[upper]
	return fn, ok
}

func (f *scalarFunc) call(args []Value) (Value, error) {
	if len(args) < f.minArgs || len(args) > f.maxArgs {
		if f.minArgs == f.maxArgs {
			return Null(), fmt.Errorf("%s expects %d argument(s), got %d", strings.ToLower(f.name), f.minArgs, len(args))
		}
		return Null(), fmt.Errorf("%s expects %d to %d arguments, got %d", strings.ToLower(f.name), f.minArgs, f.maxArgs, len(args))
	}
	for _, a := range args {
		if a.Kind == KindNull {
			return Null(), nil
		}
	}
	return f.apply(args)
}
