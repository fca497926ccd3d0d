package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses statements into an AST.
type Parser struct {
	tokens []Token
	pos    int
	depth  *depthCounter
}

// NewParser creates a new parser.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens, depth: &depthCounter{}}
}

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) advance() {
	p.pos++
}

func (p *Parser) expect(tokType TokenType, what string) error {
	if p.current().Type != tokType {
		return fmt.Errorf("expected %s, got %q", what, p.current().Value)
	}
	p.advance()
	return nil
}

// Parse parses one statement. Failure always surfaces a *SyntaxError; a
// partially applied statement is never returned.
func Parse(stmt string) (Statement, error) {
	if err := ValidateStatement(stmt); err != nil {
		return nil, &SyntaxError{Msg: err.Error()}
	}

	tokens := Tokenize(stmt)
	if err := ValidateTokens(tokens); err != nil {
		return nil, &SyntaxError{Msg: err.Error()}
	}

	p := NewParser(tokens)

	var s Statement
	var err error
	switch p.current().Type {
	case TokenSelect:
		s, err = p.parseSelect()
	case TokenInsert:
		s, err = p.parseInsert()
	case TokenUpdate:
		s, err = p.parseUpdate()
	case TokenDelete:
		s, err = p.parseDelete()
	default:
		err = fmt.Errorf("unknown statement verb %q", p.current().Value)
	}
	if err != nil {
		if se, ok := err.(*SyntaxError); ok {
			return nil, se
		}
		return nil, &SyntaxError{Msg: err.Error()}
	}

	if p.current().Type == TokenError {
		return nil, &SyntaxError{Msg: fmt.Sprintf("invalid character %q", p.current().Value)}
	}
	if p.current().Type != TokenEOF {
		return nil, &SyntaxError{Msg: fmt.Sprintf("unexpected trailing tokens: %q", p.current().Value)}
	}

	return s, nil
}

// parseSelect parses:
//
//	SELECT [DISTINCT] projlist [FROM target] [joins] [WHERE cond]
//	[GROUP BY cols] [HAVING cond] [ORDER BY keys] [LIMIT n] [OFFSET n]
//	[LABEL col 'text', ...] [FORMAT col 'pattern', ...] [PIVOT col]
func (p *Parser) parseSelect() (*SelectStmt, error) {
	p.advance() // SELECT

	stmt := &SelectStmt{}

	if p.current().Type == TokenDistinct {
		stmt.Distinct = true
		p.advance()
	}

	projs, err := p.parseSelectList()
	if err != nil {
		return nil, &SyntaxError{Clause: "SELECT", Msg: err.Error()}
	}
	stmt.Projs = projs

	for {
		switch p.current().Type {
		case TokenFrom:
			if stmt.From != nil {
				return nil, &SyntaxError{Clause: "FROM", Msg: "duplicate FROM clause"}
			}
			p.advance()
			ref, err := p.parseTableRef()
			if err != nil {
				return nil, &SyntaxError{Clause: "FROM", Msg: err.Error()}
			}
			stmt.From = ref

		case TokenJoin, TokenInner, TokenLeft, TokenRight:
			join, err := p.parseJoin()
			if err != nil {
				return nil, &SyntaxError{Clause: "JOIN", Msg: err.Error()}
			}
			stmt.Joins = append(stmt.Joins, *join)

		case TokenWhere:
			if stmt.Where != nil {
				return nil, &SyntaxError{Clause: "WHERE", Msg: "duplicate WHERE clause"}
			}
			p.advance()
			cond, err := p.parseCondition(false)
			if err != nil {
				return nil, &SyntaxError{Clause: "WHERE", Msg: err.Error()}
			}
			stmt.Where = cond

		case TokenGroup:
			p.advance()
			if err := p.expect(TokenBy, "BY after GROUP"); err != nil {
				return nil, &SyntaxError{Clause: "GROUP BY", Msg: err.Error()}
			}
			cols, err := p.parseColumnRefList()
			if err != nil {
				return nil, &SyntaxError{Clause: "GROUP BY", Msg: err.Error()}
			}
			stmt.GroupBy = cols

		case TokenHaving:
			p.advance()
			cond, err := p.parseCondition(true)
			if err != nil {
				return nil, &SyntaxError{Clause: "HAVING", Msg: err.Error()}
			}
			stmt.Having = cond

		case TokenOrder:
			items, err := p.parseOrderBy()
			if err != nil {
				return nil, &SyntaxError{Clause: "ORDER BY", Msg: err.Error()}
			}
			stmt.OrderBy = items

		case TokenLimit:
			n, err := p.parseBound("LIMIT")
			if err != nil {
				return nil, &SyntaxError{Clause: "LIMIT", Msg: err.Error()}
			}
			stmt.Limit = n

		case TokenOffset:
			n, err := p.parseBound("OFFSET")
			if err != nil {
				return nil, &SyntaxError{Clause: "OFFSET", Msg: err.Error()}
			}
			stmt.Offset = n

		case TokenLabel:
			m, err := p.parseColumnTextPairs("LABEL")
			if err != nil {
				return nil, &SyntaxError{Clause: "LABEL", Msg: err.Error()}
			}
			stmt.Labels = m

		case TokenFormat:
			m, err := p.parseColumnTextPairs("FORMAT")
			if err != nil {
				return nil, &SyntaxError{Clause: "FORMAT", Msg: err.Error()}
			}
			stmt.Formats = m

		case TokenPivot:
			p.advance()
			if p.current().Type != TokenIdent {
				return nil, &SyntaxError{Clause: "PIVOT", Msg: fmt.Sprintf("expected column name, got %q", p.current().Value)}
			}
			stmt.Pivot = p.current().Value
			p.advance()

		default:
			return stmt, nil
		}
	}
}

// parseSelectList parses the projection list: *, alias.*, columns,
// aggregates, arithmetic expressions, AS aliases.
func (p *Parser) parseSelectList() ([]SelectItem, error) {
	var items []SelectItem

	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, *item)

		if p.current().Type != TokenComma {
			return items, nil
		}
		p.advance()
	}
}

func (p *Parser) parseSelectItem() (*SelectItem, error) {
	// bare *
	if p.current().Type == TokenIdent && p.current().Value == "*" {
		p.advance()
		return &SelectItem{Expr: &StarExpr{}}, nil
	}

	// alias.* lexes as ident "alias." followed by ident "*"
	if p.current().Type == TokenIdent && strings.HasSuffix(p.current().Value, ".") &&
		p.peek().Type == TokenIdent && p.peek().Value == "*" {
		alias := strings.TrimSuffix(p.current().Value, ".")
		p.advance()
		p.advance()
		return &SelectItem{Expr: &StarExpr{Table: alias}}, nil
	}

	expr, err := p.parseSelectExpression()
	if err != nil {
		return nil, err
	}

	item := &SelectItem{Expr: expr}
	if p.current().Type == TokenAs {
		p.advance()
		if p.current().Type != TokenIdent {
			return nil, fmt.Errorf("expected alias after AS, got %q", p.current().Value)
		}
		item.Alias = p.current().Value
		p.advance()
	}
	return item, nil
}

// parseTableRef parses a FROM/JOIN target: :name [AS alias] or a grid range
// location [AS alias].
func (p *Parser) parseTableRef() (*TableRef, error) {
	ref := &TableRef{}

	switch p.current().Type {
	case TokenTableRef:
		ref.Virtual = true
		ref.Name = p.current().Value
		p.advance()
	case TokenIdent, TokenString:
		ref.Name = p.current().Value
		p.advance()
	default:
		return nil, fmt.Errorf("expected table reference or range location, got %q", p.current().Value)
	}

	if err := ValidateTableName(ref.Name); err != nil {
		return nil, err
	}
	if ref.Name == "" {
		return nil, fmt.Errorf("empty table reference")
	}

	if p.current().Type == TokenAs {
		p.advance()
		if p.current().Type != TokenIdent {
			return nil, fmt.Errorf("expected alias after AS, got %q", p.current().Value)
		}
		ref.Alias = p.current().Value
		p.advance()
	} else if p.current().Type == TokenIdent && p.current().Value != "*" {
		ref.Alias = p.current().Value
		p.advance()
	}

	return ref, nil
}

// parseJoin parses (JOIN | INNER JOIN | LEFT [OUTER] JOIN | RIGHT [OUTER]
// JOIN) target ON a.x = b.y.
func (p *Parser) parseJoin() (*JoinClause, error) {
	join := &JoinClause{Type: JoinInner}

	switch p.current().Type {
	case TokenJoin:
		p.advance()
	case TokenInner:
		p.advance()
		if err := p.expect(TokenJoin, "JOIN after INNER"); err != nil {
			return nil, err
		}
	case TokenLeft:
		join.Type = JoinLeft
		p.advance()
		if p.current().Type == TokenOuter {
			p.advance()
		}
		if err := p.expect(TokenJoin, "JOIN after LEFT"); err != nil {
			return nil, err
		}
	case TokenRight:
		join.Type = JoinRight
		p.advance()
		if p.current().Type == TokenOuter {
			p.advance()
		}
		if err := p.expect(TokenJoin, "JOIN after RIGHT"); err != nil {
			return nil, err
		}
	}

	target, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	join.Target = *target

	if err := p.expect(TokenOn, "ON after join target"); err != nil {
		return nil, err
	}

	left, err := p.parseColumnRef()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenEqual, "= in join condition"); err != nil {
		return nil, err
	}
	right, err := p.parseColumnRef()
	if err != nil {
		return nil, err
	}

	join.LeftCol = left
	join.RightCol = right
	return join, nil
}

func (p *Parser) parseColumnRef() (ColumnRef, error) {
	if p.current().Type != TokenIdent {
		return ColumnRef{}, fmt.Errorf("expected column reference, got %q", p.current().Value)
	}
	name := p.current().Value
	if err := ValidateColumnName(name); err != nil {
		return ColumnRef{}, err
	}
	p.advance()
	return splitColumnRef(name), nil
}

// splitColumnRef splits an alias-qualified reference at the first dot.
func splitColumnRef(s string) ColumnRef {
	if i := strings.Index(s, "."); i > 0 && i < len(s)-1 {
		return ColumnRef{Table: s[:i], Name: s[i+1:]}
	}
	return ColumnRef{Name: s}
}

func (p *Parser) parseColumnRefList() ([]ColumnRef, error) {
	var cols []ColumnRef
	for {
		ref, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		cols = append(cols, ref)
		if p.current().Type != TokenComma {
			return cols, nil
		}
		p.advance()
	}
}

// parseOrderBy parses ORDER BY key [ASC|DESC] (, key [ASC|DESC])*. A key may
// be a column, an aggregate, or an arithmetic expression.
func (p *Parser) parseOrderBy() ([]OrderByItem, error) {
	p.advance() // ORDER
	if err := p.expect(TokenBy, "BY after ORDER"); err != nil {
		return nil, err
	}

	var items []OrderByItem
	for {
		expr, err := p.parseSelectExpression()
		if err != nil {
			return nil, err
		}
		item := OrderByItem{Expr: expr}

		switch p.current().Type {
		case TokenAsc:
			p.advance()
		case TokenDesc:
			item.Desc = true
			p.advance()
		}
		items = append(items, item)

		if p.current().Type != TokenComma {
			return items, nil
		}
		p.advance()
	}
}

func (p *Parser) parseBound(clause string) (*int64, error) {
	p.advance() // LIMIT or OFFSET
	if p.current().Type != TokenNumber {
		return nil, fmt.Errorf("expected number after %s, got %q", clause, p.current().Value)
	}
	n, err := strconv.ParseInt(p.current().Value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q", clause, p.current().Value)
	}
	if n < 0 {
		return nil, fmt.Errorf("%s must be non-negative, got %d", clause, n)
	}
	p.advance()
	return &n, nil
}

// parseColumnTextPairs parses `col 'text' (, col 'text')*` for LABEL and
// FORMAT clauses.
func (p *Parser) parseColumnTextPairs(clause string) (map[string]string, error) {
	p.advance() // LABEL or FORMAT
	pairs := make(map[string]string)
	for {
		if p.current().Type != TokenIdent {
			return nil, fmt.Errorf("expected column name in %s, got %q", clause, p.current().Value)
		}
		col := p.current().Value
		p.advance()
		if p.current().Type != TokenString {
			return nil, fmt.Errorf("expected quoted text after column %q in %s", col, clause)
		}
		pairs[col] = p.current().Value
		p.advance()

		if p.current().Type != TokenComma {
			return pairs, nil
		}
		p.advance()
	}
}
