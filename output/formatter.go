// Package output renders query results and mutation summaries for the CLI.
//
// Supported formats:
//   - JSON: the engine's wire shape, pretty-printed
//   - CSV: label header row plus one record per row
//   - Table: aligned text table for terminals
//
// Example usage:
//
//	f := output.NewJSONFormatter(os.Stdout)
//	if err := f.Format(resp); err != nil {
//	    log.Fatal(err)
//	}
package output

import (
	"fmt"
	"io"

	"github.com/whichguy/sheetql/query"
)

// Formatter renders one engine response.
type Formatter interface {
	// Format writes the response in the formatter's format.
	Format(resp *query.Response) error

	// SetOutput changes the output writer.
	SetOutput(w io.Writer)
}

// New returns the formatter registered under name: "json", "csv" or "table".
func New(name string, w io.Writer) (Formatter, error) {
	switch name {
	case "json":
		return NewJSONFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	case "table":
		return NewTableFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", name)
	}
}

// cellText renders one result cell, preferring its formatted text.
func cellText(c query.ResultCell) string {
	if c.F != "" {
		return c.F
	}
	if c.V == nil {
		return ""
	}
	switch v := c.V.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
