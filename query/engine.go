package query

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/whichguy/sheetql/grid"
)

// Engine executes statements against a grid source and per-call virtual
// tables. An Engine holds no mutable state between calls, so a single
// instance is safe for concurrent use as long as its source is.
type Engine struct {
	src grid.Source
	log zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an Engine over src.
func New(src grid.Source, opts ...Option) *Engine {
	e := &Engine{src: src, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Request is one statement execution.
type Request struct {
	// Statement is the statement text.
	Statement string

	// Location is the default grid range, used when the statement has no
	// FROM target of its own.
	Location string

	// Tables holds the virtual tables referenced via :name. Each is a
	// header-plus-rows 2-D array, read for exactly this call.
	Tables map[string][][]interface{}

	// Metadata adds display format patterns to result columns.
	Metadata bool
}

// Execute parses, validates and runs one statement. All validation happens
// before any remote access; a statement that fails validation never touches
// the grid source.
func (e *Engine) Execute(ctx context.Context, req Request) (*Response, error) {
	if err := ValidateStatement(req.Statement); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	masked := MaskLiterals(req.Statement)
	for _, name := range ExtractTableRefs(masked) {
		if _, ok := req.Tables[name]; !ok {
			return nil, validationErrf("virtual table %q not found", name)
		}
	}

	stmt, err := Parse(req.Statement)
	if err != nil {
		return nil, err
	}

	r := &resolver{src: e.src, tables: req.Tables, defaultLoc: req.Location}

	switch s := stmt.(type) {
	case *SelectStmt:
		res, err := e.execSelect(ctx, r, s, req.Metadata)
		if err != nil {
			return nil, err
		}
		return &Response{Result: res}, nil
	case *InsertStmt:
		mut, err := e.execInsert(ctx, r, s)
		if err != nil {
			return nil, err
		}
		return &Response{Mutation: mut}, nil
	case *UpdateStmt:
		mut, err := e.execUpdate(ctx, r, s)
		if err != nil {
			return nil, err
		}
		return &Response{Mutation: mut}, nil
	case *DeleteStmt:
		mut, err := e.execDelete(ctx, r, s)
		if err != nil {
			return nil, err
		}
		return &Response{Mutation: mut}, nil
	}
	return nil, validationErrf("invalid statement")
}

// execSelect runs a SELECT through the native dialect bridge when eligible,
// falling back to direct evaluation.
func (e *Engine) execSelect(ctx context.Context, r *resolver, stmt *SelectStmt, withMetadata bool) (*Result, error) {
	if q, ok := bridgeEligible(stmt, e.src); ok {
		loc := r.defaultLoc
		if stmt.From != nil && stmt.From.Name != "" {
			loc = stmt.From.Name
		}
		if loc == "" {
			return nil, validationErrf("invalid target: no range location given")
		}
		res, handled, err := e.execBridge(ctx, q, loc, stmt, withMetadata)
		if err != nil {
			return nil, err
		}
		if handled {
			return res, nil
		}
	}
	return e.evalSelect(ctx, r, stmt, withMetadata)
}

// evalSelect is the direct evaluation path: resolve, join, filter, group,
// project, then distinct/order/page.
func (e *Engine) evalSelect(ctx context.Context, r *resolver, stmt *SelectStmt, withMetadata bool) (*Result, error) {
	t, err := r.resolve(ctx, stmt.From)
	if err != nil {
		return nil, err
	}
	for _, join := range stmt.Joins {
		right, err := r.resolve(ctx, &join.Target)
		if err != nil {
			return nil, err
		}
		t, err = joinTables(t, right, join)
		if err != nil {
			return nil, err
		}
	}

	idx, err := filterRows(t, stmt.Where)
	if err != nil {
		return nil, err
	}

	items, err := expandStars(stmt.Projs, t)
	if err != nil {
		return nil, err
	}

	var p *selectPipeline
	switch {
	case stmt.Pivot != "":
		p, err = projectPivot(t, idx, stmt)
	case len(stmt.GroupBy) > 0 || containsAggregates(stmt):
		var groups []group
		var keyIdx []int
		groups, keyIdx, err = groupRows(t, idx, stmt.GroupBy)
		if err == nil {
			groups, err = filterGroups(t, keyIdx, groups, stmt.Having)
		}
		if err == nil {
			p, err = projectGroups(t, groups, keyIdx, items)
		}
	default:
		p, err = projectRows(t, idx, items)
	}
	if err != nil {
		return nil, err
	}

	if err := finishSelect(p, stmt); err != nil {
		return nil, err
	}

	e.log.Debug().
		Int("rows", len(p.out.Rows)).
		Int("cols", len(p.out.Cols)).
		Msg("select evaluated")

	return buildResult(p.out, stmt.Labels, stmt.Formats, withMetadata), nil
}
