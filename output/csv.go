package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/whichguy/sheetql/query"
)

// CSVFormatter outputs SELECT results as CSV with a label header row.
// Mutation summaries render as a two-row key/value table.
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter.
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer.
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes the response as CSV.
func (c *CSVFormatter) Format(resp *query.Response) error {
	w := csv.NewWriter(c.writer)

	if resp.Mutation != nil {
		if err := writeMutationCSV(w, resp.Mutation); err != nil {
			return err
		}
	} else if resp.Result != nil {
		header := make([]string, len(resp.Result.Cols))
		for i, col := range resp.Result.Cols {
			header[i] = col.Label
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, row := range resp.Result.Rows {
			record := make([]string, len(row.C))
			for i, cell := range row.C {
				record[i] = sanitizeCSV(cellText(cell))
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

func writeMutationCSV(w *csv.Writer, m *query.MutationResult) error {
	header := []string{"operation"}
	record := []string{m.Operation}
	if m.UpdatedRows != nil {
		header = append(header, "updatedRows")
		record = append(record, fmt.Sprintf("%d", *m.UpdatedRows))
	}
	if m.DeletedRows != nil {
		header = append(header, "deletedRows")
		record = append(record, fmt.Sprintf("%d", *m.DeletedRows))
	}
	if m.UpdateTime != "" {
		header = append(header, "updateTime")
		record = append(record, m.UpdateTime)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	return w.Write(record)
}

// sanitizeCSV guards against formula injection when the output is opened in
// a spreadsheet application.
func sanitizeCSV(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '\n', '|':
		return "'" + strings.ReplaceAll(s, "'", "''")
	}
	return s
}
