package grid

import (
	"context"
	"testing"
)

func seeded() *MemorySource {
	s := NewMemorySource()
	s.Load("r", [][]interface{}{
		{"a", 1},
		{"b", 2},
		{"c", 3},
	})
	return s
}

func TestMemorySource_Read(t *testing.T) {
	s := seeded()
	got, err := s.Read(context.Background(), "r")
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(got) != 3 || got[0][0] != "a" {
		t.Errorf("Read = %v", got)
	}

	// mutating the returned slice must not touch the stored data
	got[0][0] = "zzz"
	again, _ := s.Read(context.Background(), "r")
	if again[0][0] != "a" {
		t.Error("Read returned a shared slice")
	}
}

func TestMemorySource_ReadMissing(t *testing.T) {
	s := NewMemorySource()
	if _, err := s.Read(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for missing range")
	}
}

func TestMemorySource_Append(t *testing.T) {
	s := seeded()
	wr, err := s.Append(context.Background(), "r", []interface{}{"d", 4})
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if wr.Rows != 1 || wr.UpdateTime == "" {
		t.Errorf("WriteResult = %+v", wr)
	}
	data := s.Snapshot("r")
	if len(data) != 4 || data[3][0] != "d" {
		t.Errorf("after append = %v", data)
	}
}

func TestMemorySource_Update(t *testing.T) {
	s := seeded()
	wr, err := s.Update(context.Background(), "r", []RowUpdate{
		{Row: 0, Cells: map[int]interface{}{1: 10}},
		{Row: 2, Cells: map[int]interface{}{0: "cc", 1: 30}},
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if wr.Rows != 2 {
		t.Errorf("rows = %d, want 2", wr.Rows)
	}
	data := s.Snapshot("r")
	if data[0][1] != 10 || data[2][0] != "cc" || data[2][1] != 30 {
		t.Errorf("after update = %v", data)
	}
	if data[1][1] != 2 {
		t.Errorf("row 1 changed: %v", data[1])
	}
}

func TestMemorySource_UpdateExtendsShortRow(t *testing.T) {
	s := NewMemorySource()
	s.Load("r", [][]interface{}{{"a"}})
	if _, err := s.Update(context.Background(), "r", []RowUpdate{
		{Row: 0, Cells: map[int]interface{}{2: "x"}},
	}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	data := s.Snapshot("r")
	if len(data[0]) != 3 || data[0][2] != "x" {
		t.Errorf("after update = %v", data[0])
	}
}

func TestMemorySource_UpdateOutOfRange(t *testing.T) {
	s := seeded()
	if _, err := s.Update(context.Background(), "r", []RowUpdate{{Row: 9}}); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestMemorySource_DeleteRows(t *testing.T) {
	s := seeded()
	wr, err := s.DeleteRows(context.Background(), "r", []int{0, 2})
	if err != nil {
		t.Fatalf("DeleteRows error: %v", err)
	}
	if wr.Rows != 2 {
		t.Errorf("rows = %d, want 2", wr.Rows)
	}
	data := s.Snapshot("r")
	if len(data) != 1 || data[0][0] != "b" {
		t.Errorf("after delete = %v", data)
	}
}
