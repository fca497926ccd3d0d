package grid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPSource talks to a remote grid service over its JSON API. It implements
// both Source and Querier, so simple SELECTs can run through the service's
// native query dialect instead of fetching whole ranges.
type HTTPSource struct {
	base   string
	client *http.Client
	log    zerolog.Logger
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

// WithLogger attaches a logger for request tracing.
func WithLogger(log zerolog.Logger) HTTPOption {
	return func(s *HTTPSource) { s.log = log }
}

// NewHTTPSource creates a source rooted at base, e.g.
// "https://grid.example.com/v4".
func NewHTTPSource(base string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		base:   base,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type valuesPayload struct {
	Values [][]interface{} `json:"values"`
}

type writePayload struct {
	UpdatedRows int    `json:"updatedRows"`
	UpdateTime  string `json:"updateTime"`
}

type updatePayload struct {
	Updates []wireUpdate `json:"updates"`
}

type wireUpdate struct {
	Row   int                    `json:"row"`
	Cells map[string]interface{} `json:"cells"`
}

type deletePayload struct {
	Rows []int `json:"rows"`
}

type queryPayload struct {
	Q string `json:"q"`
}

type wireCell struct {
	V interface{} `json:"v"`
	F string      `json:"f,omitempty"`
}

type wireQueryResult struct {
	Cols []struct {
		ID      string `json:"id"`
		Label   string `json:"label"`
		Type    string `json:"type"`
		Pattern string `json:"pattern,omitempty"`
	} `json:"cols"`
	Rows []struct {
		C []wireCell `json:"c"`
	} `json:"rows"`
}

func (s *HTTPSource) Read(ctx context.Context, loc string) ([][]interface{}, error) {
	var out valuesPayload
	if err := s.do(ctx, http.MethodGet, s.rangeURL(loc, ""), nil, &out); err != nil {
		return nil, err
	}
	return out.Values, nil
}

func (s *HTTPSource) Append(ctx context.Context, loc string, row []interface{}) (*WriteResult, error) {
	in := valuesPayload{Values: [][]interface{}{row}}
	var out writePayload
	if err := s.do(ctx, http.MethodPost, s.rangeURL(loc, "append"), in, &out); err != nil {
		return nil, err
	}
	return &WriteResult{Rows: out.UpdatedRows, UpdateTime: out.UpdateTime}, nil
}

func (s *HTTPSource) Update(ctx context.Context, loc string, updates []RowUpdate) (*WriteResult, error) {
	in := updatePayload{}
	for _, u := range updates {
		w := wireUpdate{Row: u.Row, Cells: make(map[string]interface{}, len(u.Cells))}
		for col, v := range u.Cells {
			w.Cells[strconv.Itoa(col)] = v
		}
		in.Updates = append(in.Updates, w)
	}
	var out writePayload
	if err := s.do(ctx, http.MethodPost, s.rangeURL(loc, "update"), in, &out); err != nil {
		return nil, err
	}
	return &WriteResult{Rows: out.UpdatedRows, UpdateTime: out.UpdateTime}, nil
}

func (s *HTTPSource) DeleteRows(ctx context.Context, loc string, rows []int) (*WriteResult, error) {
	in := deletePayload{Rows: rows}
	var out writePayload
	if err := s.do(ctx, http.MethodPost, s.rangeURL(loc, "delete"), in, &out); err != nil {
		return nil, err
	}
	return &WriteResult{Rows: out.UpdatedRows, UpdateTime: out.UpdateTime}, nil
}

func (s *HTTPSource) Query(ctx context.Context, loc string, q string) (*QueryResult, error) {
	in := queryPayload{Q: q}
	var out wireQueryResult
	if err := s.do(ctx, http.MethodPost, s.rangeURL(loc, "query"), in, &out); err != nil {
		return nil, err
	}
	res := &QueryResult{}
	for _, c := range out.Cols {
		res.Cols = append(res.Cols, Col{ID: c.ID, Label: c.Label, Type: c.Type, Pattern: c.Pattern})
	}
	for _, r := range out.Rows {
		row := make([]Cell, len(r.C))
		for i, c := range r.C {
			row[i] = Cell{V: c.V, F: c.F}
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func (s *HTTPSource) rangeURL(loc, action string) string {
	u := s.base + "/ranges/" + url.PathEscape(loc)
	if action != "" {
		u += "/" + action
	}
	return u
}

func (s *HTTPSource) do(ctx context.Context, method, u string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error().Str("request_id", reqID).Str("url", u).Err(err).Msg("grid request failed")
		return err
	}
	defer resp.Body.Close()

	s.log.Debug().
		Str("request_id", reqID).
		Str("method", method).
		Str("url", u).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("grid request")

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("grid service returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
