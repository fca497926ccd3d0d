// Package query implements a SQL-flavored statement interpreter over two
// kinds of tabular sources: remote grid ranges reached through a grid.Source,
// and caller-supplied in-memory virtual tables addressed with a :name
// reference.
//
// A statement string (SELECT, INSERT, UPDATE or DELETE) is sanitized, lexed
// and parsed into an AST, then executed either directly (filter, join,
// aggregate, sort, page) or, for simple single-source SELECTs, by translating
// the clause set into the grid's own restricted query dialect. Both paths
// produce the same Result shape.
//
// Example:
//
//	eng := query.New(src)
//	resp, err := eng.Execute(ctx, query.Request{
//	    Statement: `SELECT * FROM :data WHERE Status = "active"`,
//	    Tables:    map[string][][]interface{}{"data": rows},
//	})
package query

// TokenType represents the type of a token.
type TokenType int

const (
	// Keywords
	TokenSelect TokenType = iota
	TokenFrom
	TokenWhere
	TokenAnd
	TokenOr
	TokenAs
	TokenGroup
	TokenBy
	TokenHaving
	TokenOrder
	TokenAsc
	TokenDesc
	TokenLimit
	TokenOffset
	TokenIs
	TokenNot
	TokenNull
	TokenDistinct
	TokenJoin
	TokenInner
	TokenLeft
	TokenRight
	TokenOuter
	TokenOn
	TokenInsert
	TokenInto
	TokenValues
	TokenUpdate
	TokenSet
	TokenDelete
	TokenContains
	TokenStarts
	TokenEnds
	TokenWith
	TokenDate
	TokenLabel
	TokenFormat
	TokenPivot

	// Operators
	TokenEqual        // =
	TokenNotEqual     // !=
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=
	TokenPlus         // +
	TokenMinus        // -
	TokenSlash        // /

	// Literals
	TokenString
	TokenNumber
	TokenIdent
	TokenBool
	TokenTableRef // :name

	// Delimiters
	TokenComma      // ,
	TokenLeftParen  // (
	TokenRightParen // )

	// Special
	TokenEOF
	TokenError
)

// Token represents a lexical token.
type Token struct {
	Type  TokenType
	Value string
}
