package query

import (
	"errors"
	"fmt"
)

// Input limits guard against resource exhaustion from hostile statements.
const (
	// MaxStatementLength is the maximum allowed statement length (64KB).
	MaxStatementLength = 64 * 1024

	// MaxTokens is the maximum number of tokens in a statement.
	MaxTokens = 2000

	// MaxExpressionDepth is the maximum nesting depth for expressions.
	MaxExpressionDepth = 50

	// MaxColumnNameLength is the maximum length for a column name.
	MaxColumnNameLength = 256

	// MaxTableNameLength is the maximum length for a table name or range
	// location.
	MaxTableNameLength = 1024
)

var (
	ErrStatementTooLong  = errors.New("statement too long")
	ErrTooManyTokens     = errors.New("too many tokens in statement")
	ErrExpressionTooDeep = errors.New("expression nesting too deep")
	ErrColumnNameTooLong = errors.New("column name too long")
	ErrTableNameTooLong  = errors.New("table name too long")
	ErrEmptyStatement    = errors.New("empty statement")
)

// ValidateStatement performs length validation on raw statement input.
func ValidateStatement(stmt string) error {
	if stmt == "" {
		return ErrEmptyStatement
	}
	if len(stmt) > MaxStatementLength {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrStatementTooLong, len(stmt), MaxStatementLength)
	}
	return nil
}

// ValidateTokens validates the token count of a lexed statement.
func ValidateTokens(tokens []Token) error {
	if len(tokens) > MaxTokens {
		return fmt.Errorf("%w: %d (max %d)", ErrTooManyTokens, len(tokens), MaxTokens)
	}
	return nil
}

// ValidateColumnName validates column name length.
func ValidateColumnName(name string) error {
	if len(name) > MaxColumnNameLength {
		return fmt.Errorf("%w: %d chars (max %d)", ErrColumnNameTooLong, len(name), MaxColumnNameLength)
	}
	return nil
}

// ValidateTableName validates table name or location length.
func ValidateTableName(name string) error {
	if len(name) > MaxTableNameLength {
		return fmt.Errorf("%w: %d chars (max %d)", ErrTableNameTooLong, len(name), MaxTableNameLength)
	}
	return nil
}

// depthCounter guards recursive parse functions against pathological
// nesting.
type depthCounter struct {
	depth int
}

func (d *depthCounter) enter() error {
	d.depth++
	if d.depth > MaxExpressionDepth {
		return ErrExpressionTooDeep
	}
	return nil
}

func (d *depthCounter) exit() {
	d.depth--
}
