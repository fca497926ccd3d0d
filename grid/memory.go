package grid

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemorySource is an in-memory Source keyed by location string. It backs
// tests and local file-driven runs. It does not implement Querier, so
// statements against it always take the direct evaluation path.
type MemorySource struct {
	mu     sync.RWMutex
	ranges map[string][][]interface{}
}

// NewMemorySource returns an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{ranges: make(map[string][][]interface{})}
}

// Load installs or replaces the cells at loc.
func (s *MemorySource) Load(loc string, data [][]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([][]interface{}, len(data))
	for i, row := range data {
		cp[i] = append([]interface{}(nil), row...)
	}
	s.ranges[loc] = cp
}

// Snapshot returns a copy of the cells at loc, or nil when absent.
func (s *MemorySource) Snapshot(loc string) [][]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.ranges[loc]
	if !ok {
		return nil
	}
	cp := make([][]interface{}, len(data))
	for i, row := range data {
		cp[i] = append([]interface{}(nil), row...)
	}
	return cp
}

func (s *MemorySource) Read(_ context.Context, loc string) ([][]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.ranges[loc]
	if !ok {
		return nil, fmt.Errorf("range %q not found", loc)
	}
	cp := make([][]interface{}, len(data))
	for i, row := range data {
		cp[i] = append([]interface{}(nil), row...)
	}
	return cp, nil
}

func (s *MemorySource) Append(_ context.Context, loc string, row []interface{}) (*WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.ranges[loc]
	if !ok {
		return nil, fmt.Errorf("range %q not found", loc)
	}
	s.ranges[loc] = append(data, append([]interface{}(nil), row...))
	return s.writeResult(1), nil
}

func (s *MemorySource) Update(_ context.Context, loc string, updates []RowUpdate) (*WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.ranges[loc]
	if !ok {
		return nil, fmt.Errorf("range %q not found", loc)
	}
	for _, u := range updates {
		if u.Row < 0 || u.Row >= len(data) {
			return nil, fmt.Errorf("row %d out of range for %q", u.Row, loc)
		}
		for col, v := range u.Cells {
			for len(data[u.Row]) <= col {
				data[u.Row] = append(data[u.Row], nil)
			}
			data[u.Row][col] = v
		}
	}
	return s.writeResult(len(updates)), nil
}

func (s *MemorySource) DeleteRows(_ context.Context, loc string, rows []int) (*WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.ranges[loc]
	if !ok {
		return nil, fmt.Errorf("range %q not found", loc)
	}
	drop := make(map[int]bool, len(rows))
	for _, r := range rows {
		if r < 0 || r >= len(data) {
			return nil, fmt.Errorf("row %d out of range for %q", r, loc)
		}
		drop[r] = true
	}
	kept := data[:0]
	for i, row := range data {
		if !drop[i] {
			kept = append(kept, row)
		}
	}
	s.ranges[loc] = kept
	return s.writeResult(len(drop)), nil
}

func (s *MemorySource) writeResult(n int) *WriteResult {
	return &WriteResult{Rows: n, UpdateTime: time.Now().UTC().Format(time.RFC3339)}
}
