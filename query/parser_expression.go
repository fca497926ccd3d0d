package query

import (
	"fmt"
	"strconv"
	"strings"
)

var aggregateNames = map[string]bool{
	"COUNT": true,
	"SUM":   true,
	"AVG":   true,
	"MIN":   true,
	"MAX":   true,
}

// parseCondition parses a predicate tree: comparisons combined with AND/OR,
// AND binding tighter, parenthesizable. allowAggregates permits aggregate
// operands (HAVING only).
func (p *Parser) parseCondition(allowAggregates bool) (Expression, error) {
	return p.parseOr(allowAggregates)
}

func (p *Parser) parseOr(allowAggregates bool) (Expression, error) {
	if err := p.depth.enter(); err != nil {
		return nil, err
	}
	defer p.depth.exit()

	left, err := p.parseAnd(allowAggregates)
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd(allowAggregates)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: TokenOr, Right: right}
	}

	return left, nil
}

func (p *Parser) parseAnd(allowAggregates bool) (Expression, error) {
	if err := p.depth.enter(); err != nil {
		return nil, err
	}
	defer p.depth.exit()

	left, err := p.parseComparison(allowAggregates)
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenAnd {
		p.advance()
		right, err := p.parseComparison(allowAggregates)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: TokenAnd, Right: right}
	}

	return left, nil
}

// parseComparison parses one predicate leaf: comparison, string match,
// IS [NOT] NULL, boolean literal, or a parenthesized condition.
func (p *Parser) parseComparison(allowAggregates bool) (Expression, error) {
	if p.current().Type == TokenLeftParen {
		p.advance()
		cond, err := p.parseOr(allowAggregates)
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRightParen, ") after condition"); err != nil {
			return nil, err
		}
		return cond, nil
	}

	wasBool := p.current().Type == TokenBool
	boolVal := strings.EqualFold(p.current().Value, "true")

	left, err := p.parseOperand(allowAggregates)
	if err != nil {
		return nil, err
	}

	switch p.current().Type {
	case TokenEqual, TokenNotEqual, TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual:
		op := p.current().Type
		p.advance()
		right, err := p.parseOperand(allowAggregates)
		if err != nil {
			return nil, err
		}
		return &CompareExpr{Left: left, Operator: op, Right: right}, nil

	case TokenContains:
		p.advance()
		right, err := p.parseOperand(allowAggregates)
		if err != nil {
			return nil, err
		}
		return &MatchExpr{Left: left, Op: MatchContains, Right: right}, nil

	case TokenStarts, TokenEnds:
		op := MatchStartsWith
		if p.current().Type == TokenEnds {
			op = MatchEndsWith
		}
		p.advance()
		if err := p.expect(TokenWith, "WITH after STARTS/ENDS"); err != nil {
			return nil, err
		}
		right, err := p.parseOperand(allowAggregates)
		if err != nil {
			return nil, err
		}
		return &MatchExpr{Left: left, Op: op, Right: right}, nil

	case TokenIs:
		p.advance()
		negate := false
		if p.current().Type == TokenNot {
			negate = true
			p.advance()
		}
		if err := p.expect(TokenNull, "NULL after IS"); err != nil {
			return nil, err
		}
		return &IsNullExpr{Operand: left, Negate: negate}, nil
	}

	if wasBool {
		return &BoolExpr{Val: boolVal}, nil
	}
	return nil, fmt.Errorf("expected comparison operator, got %q", p.current().Value)
}

// parseOperand parses one side of a comparison: a column (optionally through
// lower()), a literal, DATE "...", TODAY(), or (with allowAggregates) an
// aggregate call.
func (p *Parser) parseOperand(allowAggregates bool) (Operand, error) {
	switch p.current().Type {
	case TokenString:
		v := p.current().Value
		p.advance()
		if looksLikeDate(v) {
			if t, ok := parseDate(v); ok {
				return &LiteralOperand{Val: Date(t)}, nil
			}
		}
		return &LiteralOperand{Val: String(v)}, nil

	case TokenNumber:
		n, err := parseNumberToken(p.current().Value)
		if err != nil {
			return nil, err
		}
		p.advance()
		return &LiteralOperand{Val: Number(n)}, nil

	case TokenBool:
		v := strings.EqualFold(p.current().Value, "true")
		p.advance()
		return &LiteralOperand{Val: Boolean(v)}, nil

	case TokenNull:
		p.advance()
		return &LiteralOperand{Val: Null()}, nil

	case TokenDate:
		p.advance()
		if p.current().Type != TokenString {
			return nil, fmt.Errorf("expected quoted date after DATE keyword")
		}
		t, ok := parseDate(p.current().Value)
		if !ok {
			return nil, fmt.Errorf("invalid date literal %q", p.current().Value)
		}
		p.advance()
		return &LiteralOperand{Val: Date(t)}, nil

	case TokenIdent:
		name := p.current().Value
		upper := strings.ToUpper(name)

		if upper == "TODAY" && p.peek().Type == TokenLeftParen {
			p.advance()
			p.advance()
			if err := p.expect(TokenRightParen, ") after TODAY("); err != nil {
				return nil, err
			}
			return &TodayOperand{}, nil
		}

		if upper == "LOWER" && p.peek().Type == TokenLeftParen {
			p.advance()
			p.advance()
			ref, err := p.parseColumnRef()
			if err != nil {
				return nil, err
			}
			if err := p.expect(TokenRightParen, ") after lower("); err != nil {
				return nil, err
			}
			return &ColumnOperand{Ref: ref, Lower: true}, nil
		}

		if aggregateNames[upper] && p.peek().Type == TokenLeftParen {
			if !allowAggregates {
				return nil, fmt.Errorf("aggregate %s not allowed here", upper)
			}
			agg, err := p.parseAggregateCall()
			if err != nil {
				return nil, err
			}
			return &AggregateOperand{Agg: agg}, nil
		}

		if err := ValidateColumnName(name); err != nil {
			return nil, err
		}
		p.advance()
		return &ColumnOperand{Ref: splitColumnRef(name)}, nil
	}

	return nil, fmt.Errorf("expected operand, got %q", p.current().Value)
}

// parseAggregateCall parses COUNT(*), COUNT(col), SUM(col), AVG(col),
// MIN(col), MAX(col) with the function name as the current token.
func (p *Parser) parseAggregateCall() (*AggregateExpr, error) {
	fn := strings.ToUpper(p.current().Value)
	p.advance() // function name
	p.advance() // (

	agg := &AggregateExpr{Fn: fn}
	if p.current().Type == TokenIdent && p.current().Value == "*" {
		if fn != "COUNT" {
			return nil, fmt.Errorf("%s(*) is not supported", fn)
		}
		agg.Star = true
		p.advance()
	} else {
		ref, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		agg.Arg = ref
	}

	if err := p.expect(TokenRightParen, ") after aggregate argument"); err != nil {
		return nil, err
	}
	return agg, nil
}

// parseSelectExpression parses a projection/order expression with standard
// arithmetic precedence: (+ -) below (* /), parenthesizable.
func (p *Parser) parseSelectExpression() (SelectExpression, error) {
	if err := p.depth.enter(); err != nil {
		return nil, err
	}
	defer p.depth.exit()

	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenPlus || p.current().Type == TokenMinus {
		op := byte('+')
		if p.current().Type == TokenMinus {
			op = '-'
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ArithmeticExpr{Left: left, Op: op, Right: right}
	}

	return left, nil
}

func (p *Parser) parseMultiplicative() (SelectExpression, error) {
	left, err := p.parseSelectFactor()
	if err != nil {
		return nil, err
	}

	for {
		// '*' lexes as an ident; in operator position it means multiply
		if p.current().Type == TokenIdent && p.current().Value == "*" {
			p.advance()
			right, err := p.parseSelectFactor()
			if err != nil {
				return nil, err
			}
			left = &ArithmeticExpr{Left: left, Op: '*', Right: right}
			continue
		}
		if p.current().Type == TokenSlash {
			p.advance()
			right, err := p.parseSelectFactor()
			if err != nil {
				return nil, err
			}
			left = &ArithmeticExpr{Left: left, Op: '/', Right: right}
			continue
		}
		return left, nil
	}
}

func (p *Parser) parseSelectFactor() (SelectExpression, error) {
	switch p.current().Type {
	case TokenNumber:
		n, err := parseNumberToken(p.current().Value)
		if err != nil {
			return nil, err
		}
		p.advance()
		return &LiteralExpr{Val: Number(n)}, nil

	case TokenString:
		v := p.current().Value
		p.advance()
		return &LiteralExpr{Val: String(v)}, nil

	case TokenBool:
		v := strings.EqualFold(p.current().Value, "true")
		p.advance()
		return &LiteralExpr{Val: Boolean(v)}, nil

	case TokenDate:
		p.advance()
		if p.current().Type != TokenString {
			return nil, fmt.Errorf("expected quoted date after DATE keyword")
		}
		t, ok := parseDate(p.current().Value)
		if !ok {
			return nil, fmt.Errorf("invalid date literal %q", p.current().Value)
		}
		p.advance()
		return &LiteralExpr{Val: Date(t)}, nil

	case TokenLeftParen:
		p.advance()
		expr, err := p.parseSelectExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRightParen, ") after expression"); err != nil {
			return nil, err
		}
		return expr, nil

	case TokenIdent:
		name := p.current().Value
		if name == "*" {
			return nil, fmt.Errorf("unexpected * in expression")
		}
		upper := strings.ToUpper(name)

		if aggregateNames[upper] && p.peek().Type == TokenLeftParen {
			return p.parseAggregateCall()
		}

		if p.peek().Type == TokenLeftParen {
			if _, ok := lookupFunction(upper); ok {
				return p.parseFunctionCall(upper)
			}
			return nil, fmt.Errorf("unknown function %q", name)
		}

		if err := ValidateColumnName(name); err != nil {
			return nil, err
		}
		p.advance()
		return &ColumnExpr{Ref: splitColumnRef(name)}, nil
	}

	return nil, fmt.Errorf("expected expression, got %q", p.current().Value)
}

func (p *Parser) parseFunctionCall(upper string) (SelectExpression, error) {
	p.advance() // function name
	p.advance() // (

	fn := &FunctionExpr{Name: upper}
	if p.current().Type != TokenRightParen {
		for {
			arg, err := p.parseSelectExpression()
			if err != nil {
				return nil, err
			}
			fn.Args = append(fn.Args, arg)
			if p.current().Type != TokenComma {
				break
			}
			p.advance()
		}
	}
	if err := p.expect(TokenRightParen, ") after function arguments"); err != nil {
		return nil, err
	}
	return fn, nil
}

func parseNumberToken(s string) (float64, error) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}

// canonicalName derives the output column id for an unaliased projection.
func canonicalName(expr SelectExpression) string {
	switch e := expr.(type) {
	case *ColumnExpr:
		return e.Ref.String()
	case *AggregateExpr:
		if e.Star {
			return strings.ToLower(e.Fn) + "(*)"
		}
		return strings.ToLower(e.Fn) + "(" + e.Arg.String() + ")"
	case *FunctionExpr:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = canonicalName(a)
		}
		return strings.ToLower(e.Name) + "(" + strings.Join(parts, ", ") + ")"
	case *ArithmeticExpr:
		return canonicalName(e.Left) + " " + string(e.Op) + " " + canonicalName(e.Right)
	case *LiteralExpr:
		return e.Val.Text()
	case *StarExpr:
		return "*"
	default:
		return "expr"
	}
}
