package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/whichguy/sheetql/grid"
	"github.com/whichguy/sheetql/logger"
	"github.com/whichguy/sheetql/output"
	"github.com/whichguy/sheetql/query"
	"github.com/whichguy/sheetql/reader"
	"github.com/whichguy/sheetql/server"
)

// repeatable name=path flag
type pairList []string

func (p *pairList) String() string     { return strings.Join(*p, ",") }
func (p *pairList) Set(s string) error { *p = append(*p, s); return nil }

var (
	queryFlag  = flag.String("q", "", "statement to execute (e.g. \"select * where A > 30\")")
	targetFlag = flag.String("target", "", "default grid range location")
	baseFlag   = flag.String("base", "", "grid service base URL; omit to use in-memory ranges")
	formatFlag = flag.String("f", "table", "output format: json, csv, table")
	metaFlag   = flag.Bool("metadata", false, "include format pattern metadata in results")
	serveFlag  = flag.Int("serve", 0, "run the HTTP server on this port instead of executing -q")
	levelFlag  = flag.String("log-level", "info", "log level: trace, debug, info, warn, error")
	prettyFlag = flag.Bool("pretty", false, "human-readable log output")

	tableFlags pairList
	rangeFlags pairList
)

func main() {
	flag.Var(&tableFlags, "t", "virtual table as name=file.parquet (repeatable)")
	flag.Var(&rangeFlags, "r", "in-memory grid range as location=file.parquet (repeatable)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Execute SQL-flavored statements against grid ranges and virtual tables.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -r Sheet1!A1:C10=data.parquet -target \"Sheet1!A1:C10\" -q \"select * where A > 30\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -t orders=orders.parquet -q \"select Region, sum(Amount) from :orders group by Region\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -base https://grid.example.com/v4 -serve 8080\n", os.Args[0])
	}

	flag.Parse()

	log := logger.New(os.Stderr, *levelFlag, *prettyFlag)

	src, err := buildSource()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	engine := query.New(src, query.WithLogger(log))

	if *serveFlag > 0 {
		srv := server.NewServer(*serveFlag, engine, log)
		if err := srv.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *queryFlag == "" {
		fmt.Fprintf(os.Stderr, "Error: -q is required unless -serve is given\n\n")
		flag.Usage()
		os.Exit(1)
	}

	tables, err := loadTables(tableFlags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	resp, err := engine.Execute(context.Background(), query.Request{
		Statement: *queryFlag,
		Location:  *targetFlag,
		Tables:    tables,
		Metadata:  *metaFlag,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	f, err := output.New(*formatFlag, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := f.Format(resp); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}

// buildSource picks the grid backend: remote service when -base is set,
// otherwise an in-memory source seeded from -r files.
func buildSource() (grid.Source, error) {
	if *baseFlag != "" {
		if len(rangeFlags) > 0 {
			return nil, fmt.Errorf("-r cannot be combined with -base")
		}
		log := logger.New(os.Stderr, *levelFlag, *prettyFlag)
		return grid.NewHTTPSource(*baseFlag, grid.WithLogger(log)), nil
	}

	mem := grid.NewMemorySource()
	for _, pair := range rangeFlags {
		loc, path, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid -r value %q, want location=file.parquet", pair)
		}
		data, err := reader.LoadTable(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		// grid ranges have no header row; drop the parquet column names
		if len(data) > 0 {
			data = data[1:]
		}
		mem.Load(loc, data)
	}
	return mem, nil
}

func loadTables(pairs pairList) (map[string][][]interface{}, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	tables := make(map[string][][]interface{}, len(pairs))
	for _, pair := range pairs {
		name, path, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid -t value %q, want name=file.parquet", pair)
		}
		data, err := reader.LoadTable(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		tables[name] = data
	}
	return tables, nil
}
