package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/whichguy/sheetql/query"
)

func TestJSONFormatter_Select(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(&buf)
	if err := f.Format(selectResponse()); err != nil {
		t.Fatalf("Format error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"f": "$1,234.50"`) {
		t.Errorf("formatted value missing:\n%s", out)
	}
	if strings.Contains(out, `"pattern"`) {
		t.Errorf("pattern should be omitted when unset:\n%s", out)
	}
}

func TestJSONFormatter_MutationZeroRows(t *testing.T) {
	var buf bytes.Buffer
	zero := 0
	f := NewJSONFormatter(&buf)
	err := f.Format(&query.Response{
		Mutation: &query.MutationResult{Operation: "delete", DeletedRows: &zero},
	})
	if err != nil {
		t.Fatalf("Format error: %v", err)
	}

	// a zero count still serializes
	if !strings.Contains(buf.String(), `"deletedRows": 0`) {
		t.Errorf("zero deletedRows dropped:\n%s", buf.String())
	}
}
