package query

import "fmt"

// SyntaxError means the statement did not parse. Clause names the offending
// clause when known.
type SyntaxError struct {
	Clause string
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Clause != "" {
		return fmt.Sprintf("syntax error in %s clause: %s", e.Clause, e.Msg)
	}
	return fmt.Sprintf("syntax error: %s", e.Msg)
}

// ValidationError means the statement parsed but cannot be executed: missing
// WHERE on a mutation, unknown virtual table, ambiguous column reference,
// missing target location. Validation always happens before any remote I/O.
//
// Callers pattern-match on message substrings ("where", "not found",
// "invalid"), so wording for those categories is stable.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// RemoteError wraps a failed grid read or write.
type RemoteError struct {
	Op  string // "read", "query", "append", "update", "delete"
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }
