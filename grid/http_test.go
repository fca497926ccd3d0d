package grid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPSource_Read(t *testing.T) {
	var gotPath, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotReqID = r.Header.Get("X-Request-ID")
		_ = json.NewEncoder(w).Encode(valuesPayload{Values: [][]interface{}{
			{"a", 1.0},
			{"b", 2.0},
		}})
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL)
	got, err := s.Read(context.Background(), "Sheet1!A1:B2")
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(got) != 2 || got[0][0] != "a" {
		t.Errorf("Read = %v", got)
	}
	if gotPath != "/ranges/Sheet1%21A1:B2" && gotPath != "/ranges/Sheet1!A1:B2" {
		t.Errorf("path = %q", gotPath)
	}
	if gotReqID == "" {
		t.Error("request id header missing")
	}
}

func TestHTTPSource_Append(t *testing.T) {
	var gotBody valuesPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(writePayload{UpdatedRows: 1, UpdateTime: "2024-01-01T00:00:00Z"})
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL)
	wr, err := s.Append(context.Background(), "r", []interface{}{"x", 5})
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if wr.Rows != 1 || wr.UpdateTime != "2024-01-01T00:00:00Z" {
		t.Errorf("WriteResult = %+v", wr)
	}
	if len(gotBody.Values) != 1 || gotBody.Values[0][0] != "x" {
		t.Errorf("body = %+v", gotBody)
	}
}

func TestHTTPSource_Update(t *testing.T) {
	var gotBody updatePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(writePayload{UpdatedRows: 1})
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL)
	_, err := s.Update(context.Background(), "r", []RowUpdate{
		{Row: 3, Cells: map[int]interface{}{2: "v"}},
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if len(gotBody.Updates) != 1 || gotBody.Updates[0].Row != 3 {
		t.Errorf("body = %+v", gotBody)
	}
	if gotBody.Updates[0].Cells["2"] != "v" {
		t.Errorf("cells = %v", gotBody.Updates[0].Cells)
	}
}

func TestHTTPSource_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var q queryPayload
		_ = json.NewDecoder(r.Body).Decode(&q)
		if q.Q != "select A where B > 1" {
			t.Errorf("query = %q", q.Q)
		}
		_, _ = w.Write([]byte(`{
			"cols": [{"id":"A","label":"Name","type":"string","pattern":"@"}],
			"rows": [{"c":[{"v":"alice","f":"Alice"}]}]
		}`))
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL)
	qr, err := s.Query(context.Background(), "r", "select A where B > 1")
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if len(qr.Cols) != 1 || qr.Cols[0].Pattern != "@" {
		t.Errorf("cols = %+v", qr.Cols)
	}
	if len(qr.Rows) != 1 || qr.Rows[0][0].V != "alice" || qr.Rows[0][0].F != "Alice" {
		t.Errorf("rows = %+v", qr.Rows)
	}
}

func TestHTTPSource_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "permission denied", http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewHTTPSource(srv.URL)
	_, err := s.Read(context.Background(), "r")
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
}
