// Package reader loads Apache Parquet files into the header-plus-rows 2-D
// arrays the engine consumes as virtual tables.
//
// It uses the parquet-go library and reads whole files into memory, so it
// suits lookup-sized tables rather than large datasets.
package reader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// Reader reads one parquet file.
//
// It maintains both an OS file handle and a parquet file handle to enable
// proper resource cleanup.
type Reader struct {
	file   *os.File
	pqFile *parquet.File
}

// NewReader opens and validates a parquet file.
//
// Example:
//
//	r, err := reader.NewReader("orders.parquet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	return &Reader{
		file:   file,
		pqFile: pqFile,
	}, nil
}

// Columns returns the leaf column names in schema order.
func (r *Reader) Columns() []string {
	var names []string
	for _, f := range r.pqFile.Schema().Fields() {
		names = append(names, f.Name())
	}
	return names
}

// ReadTable reads the whole file as a 2-D array whose first row is the
// header, in schema column order.
func (r *Reader) ReadTable() ([][]interface{}, error) {
	cols := r.Columns()

	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table := [][]interface{}{header}

	pr := parquet.NewReader(r.pqFile)
	defer func() { _ = pr.Close() }()

	for {
		row := make(map[string]interface{})
		err := pr.Read(&row)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		cells := make([]interface{}, len(cols))
		for i, c := range cols {
			cells[i] = row[c]
		}
		table = append(table, cells)
	}

	return table, nil
}

// Schema returns the parquet file schema.
func (r *Reader) Schema() *parquet.Schema {
	return r.pqFile.Schema()
}

// Close releases the underlying file handle. Safe to call more than once.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// LoadTable reads path into a header-plus-rows 2-D array in one call.
func LoadTable(path string) ([][]interface{}, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return r.ReadTable()
}
