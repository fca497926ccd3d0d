package output

import (
	"encoding/json"
	"io"

	"github.com/whichguy/sheetql/query"
)

// JSONFormatter outputs the response in its wire shape.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer.
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes the response as indented JSON.
func (j *JSONFormatter) Format(resp *query.Response) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
