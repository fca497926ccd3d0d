// Package grid abstracts the remote grid-based data source. The engine talks
// to it through Source for raw cell access and, when available, Querier for
// the source's own restricted query dialect.
package grid

import "context"

// Source provides raw read and write access to grid ranges. Implementations
// must be safe for concurrent use.
type Source interface {
	// Read fetches every cell of the range at loc, row-major. Missing
	// trailing cells may be omitted per row.
	Read(ctx context.Context, loc string) ([][]interface{}, error)

	// Append adds one row after the last populated row of the range.
	Append(ctx context.Context, loc string, row []interface{}) (*WriteResult, error)

	// Update writes individual cells of existing rows. Row and column
	// positions are zero-based within the range.
	Update(ctx context.Context, loc string, updates []RowUpdate) (*WriteResult, error)

	// DeleteRows removes the given zero-based rows from the range.
	DeleteRows(ctx context.Context, loc string, rows []int) (*WriteResult, error)
}

// Querier executes a statement in the source's native query dialect against
// a range. Sources that cannot run native queries simply do not implement it.
type Querier interface {
	Query(ctx context.Context, loc string, q string) (*QueryResult, error)
}

// RowUpdate addresses one row and the cells to overwrite within it.
type RowUpdate struct {
	Row   int                 // zero-based row within the range
	Cells map[int]interface{} // zero-based column -> new value
}

// WriteResult reports the outcome of a write operation.
type WriteResult struct {
	Rows       int    // rows appended, updated or deleted
	UpdateTime string // source-reported commit time, RFC3339, may be empty
}

// Col describes one column of a native query response.
type Col struct {
	ID      string
	Label   string
	Type    string
	Pattern string
}

// Cell is one native query response cell: raw value plus optional formatted
// text.
type Cell struct {
	V interface{}
	F string
}

// QueryResult is the reshaped response of a native dialect query.
type QueryResult struct {
	Cols []Col
	Rows [][]Cell
}
