package query

import (
	"fmt"
	"strings"
)

// parseInsert parses:
//
//	INSERT [INTO (col, col, ...)] VALUES (lit, lit, ...) [FROM target]
//
// Positional VALUES match the target's column order; the INTO form assigns
// by column name.
func (p *Parser) parseInsert() (*InsertStmt, error) {
	p.advance() // INSERT

	stmt := &InsertStmt{}

	if p.current().Type == TokenInto {
		p.advance()
		if err := p.expect(TokenLeftParen, "( after INTO"); err != nil {
			return nil, &SyntaxError{Clause: "INSERT", Msg: err.Error()}
		}
		for {
			if p.current().Type != TokenIdent {
				return nil, &SyntaxError{Clause: "INSERT", Msg: fmt.Sprintf("expected column name, got %q", p.current().Value)}
			}
			stmt.Columns = append(stmt.Columns, p.current().Value)
			p.advance()
			if p.current().Type != TokenComma {
				break
			}
			p.advance()
		}
		if err := p.expect(TokenRightParen, ") after column list"); err != nil {
			return nil, &SyntaxError{Clause: "INSERT", Msg: err.Error()}
		}
	}

	if err := p.expect(TokenValues, "VALUES"); err != nil {
		return nil, &SyntaxError{Clause: "INSERT", Msg: err.Error()}
	}
	if err := p.expect(TokenLeftParen, "( after VALUES"); err != nil {
		return nil, &SyntaxError{Clause: "INSERT", Msg: err.Error()}
	}
	for {
		v, err := p.parseLiteral()
		if err != nil {
			return nil, &SyntaxError{Clause: "VALUES", Msg: err.Error()}
		}
		stmt.Values = append(stmt.Values, v)
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	if err := p.expect(TokenRightParen, ") after value list"); err != nil {
		return nil, &SyntaxError{Clause: "VALUES", Msg: err.Error()}
	}

	if len(stmt.Columns) > 0 && len(stmt.Columns) != len(stmt.Values) {
		return nil, &SyntaxError{Clause: "VALUES", Msg: fmt.Sprintf("%d columns but %d values", len(stmt.Columns), len(stmt.Values))}
	}

	if p.current().Type == TokenFrom {
		p.advance()
		ref, err := p.parseTableRef()
		if err != nil {
			return nil, &SyntaxError{Clause: "FROM", Msg: err.Error()}
		}
		stmt.Target = ref
	}

	return stmt, nil
}

// parseUpdate parses:
//
//	UPDATE SET col = lit (, col = lit)* WHERE cond [FROM target]
//	[ORDER BY keys] [LIMIT n]
//
// WHERE and FROM are accepted in either order.
func (p *Parser) parseUpdate() (*UpdateStmt, error) {
	p.advance() // UPDATE

	stmt := &UpdateStmt{}

	if err := p.expect(TokenSet, "SET after UPDATE"); err != nil {
		return nil, &SyntaxError{Clause: "UPDATE", Msg: err.Error()}
	}
	for {
		if p.current().Type != TokenIdent {
			return nil, &SyntaxError{Clause: "SET", Msg: fmt.Sprintf("expected column name, got %q", p.current().Value)}
		}
		col := p.current().Value
		p.advance()
		if err := p.expect(TokenEqual, "= in assignment"); err != nil {
			return nil, &SyntaxError{Clause: "SET", Msg: err.Error()}
		}
		v, err := p.parseLiteral()
		if err != nil {
			return nil, &SyntaxError{Clause: "SET", Msg: err.Error()}
		}
		stmt.Assignments = append(stmt.Assignments, Assignment{Column: col, Val: v})
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}

	for {
		switch p.current().Type {
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
		case TokenFrom:
			if stmt.Target != nil {
				return nil, &SyntaxError{Clause: "FROM", Msg: "duplicate FROM clause"}
			}
			p.advance()
			ref, err := p.parseTableRef()
			if err != nil {
				return nil, &SyntaxError{Clause: "FROM", Msg: err.Error()}
			}
			stmt.Target = ref
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
		default:
			return stmt, nil
		}
	}
}

// parseDelete parses:
//
//	DELETE WHERE cond [FROM target] [ORDER BY keys] [LIMIT n]
//
// with WHERE and FROM accepted in either order.
func (p *Parser) parseDelete() (*DeleteStmt, error) {
	p.advance() // DELETE

	stmt := &DeleteStmt{}

	for {
		switch p.current().Type {
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
		case TokenFrom:
			if stmt.Target != nil {
				return nil, &SyntaxError{Clause: "FROM", Msg: "duplicate FROM clause"}
			}
			p.advance()
			ref, err := p.parseTableRef()
			if err != nil {
				return nil, &SyntaxError{Clause: "FROM", Msg: err.Error()}
			}
			stmt.Target = ref
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
		default:
			return stmt, nil
		}
	}
}

// parseLiteral parses a literal value: string, number, boolean, NULL, or
// DATE "...".
func (p *Parser) parseLiteral() (Value, error) {
	switch p.current().Type {
	case TokenString:
		v := p.current().Value
		p.advance()
		return String(v), nil
	case TokenNumber:
		n, err := parseNumberToken(p.current().Value)
		if err != nil {
			return Null(), err
		}
		p.advance()
		return Number(n), nil
	case TokenBool:
		v := strings.EqualFold(p.current().Value, "true")
		p.advance()
		return Boolean(v), nil
	case TokenNull:
		p.advance()
		return Null(), nil
	case TokenDate:
		p.advance()
		if p.current().Type != TokenString {
			return Null(), fmt.Errorf("expected quoted date after DATE keyword")
		}
		t, ok := parseDate(p.current().Value)
		if !ok {
			return Null(), fmt.Errorf("invalid date literal %q", p.current().Value)
		}
		p.advance()
		return Date(t), nil
	default:
		return Null(), fmt.Errorf("expected literal value, got %q", p.current().Value)
	}
}
