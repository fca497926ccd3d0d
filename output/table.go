package output

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/whichguy/sheetql/query"
)

// TableFormatter outputs results as an aligned text table.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer.
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format writes the response as a text table.
func (t *TableFormatter) Format(resp *query.Response) error {
	tbl := tablewriter.NewWriter(t.writer)

	if resp.Mutation != nil {
		m := resp.Mutation
		tbl.SetHeader([]string{"operation", "rows", "updateTime"})
		rows := 0
		if m.UpdatedRows != nil {
			rows = *m.UpdatedRows
		}
		if m.DeletedRows != nil {
			rows = *m.DeletedRows
		}
		tbl.Append([]string{m.Operation, fmt.Sprintf("%d", rows), m.UpdateTime})
		tbl.Render()
		return nil
	}

	if resp.Result == nil {
		return nil
	}

	header := make([]string, len(resp.Result.Cols))
	for i, col := range resp.Result.Cols {
		header[i] = col.Label
	}
	tbl.SetHeader(header)

	for _, row := range resp.Result.Rows {
		record := make([]string, len(row.C))
		for i, cell := range row.C {
			record[i] = cellText(cell)
		}
		tbl.Append(record)
	}
	tbl.Render()
	return nil
}
