package query

// Statement is a parsed SELECT, INSERT, UPDATE or DELETE.
type Statement interface {
	stmtNode()
}

// TableRef identifies a FROM/JOIN target: either a virtual table (:name) or
// a grid range location.
type TableRef struct {
	Virtual bool
	Name    string // virtual table name or range location
	Alias   string // explicit AS alias; falls back to Name for virtual tables
}

// aliasOrName returns the alias used for qualified column references.
func (r *TableRef) aliasOrName() string {
	if r == nil {
		return ""
	}
	if r.Alias != "" {
		return r.Alias
	}
	if r.Virtual {
		return r.Name
	}
	return ""
}

// ColumnRef is a possibly alias-qualified column reference.
type ColumnRef struct {
	Table string // alias qualifier, empty when unqualified
	Name  string
}

func (c ColumnRef) String() string {
	if c.Table != "" {
		return c.Table + "." + c.Name
	}
	return c.Name
}

// JoinType represents the type of join operation.
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeft
	JoinRight
)

// JoinClause is a single `JOIN target ON a.x = b.y` clause.
type JoinClause struct {
	Type     JoinType
	Target   TableRef
	LeftCol  ColumnRef
	RightCol ColumnRef
}

// OrderByItem is one ORDER BY key. The expression may be a plain column, an
// aggregate, or an arithmetic expression.
type OrderByItem struct {
	Expr SelectExpression
	Desc bool
}

// SelectItem is one projection with an optional alias.
type SelectItem struct {
	Expr  SelectExpression
	Alias string
}

// SelectExpression is an expression that can appear in a projection list.
type SelectExpression interface {
	selectExpr()
}

// StarExpr is `*` or `alias.*`.
type StarExpr struct {
	Table string // alias qualifier for alias.*, empty for bare *
}

// ColumnExpr references a single column.
type ColumnExpr struct {
	Ref ColumnRef
}

// AggregateExpr is COUNT/SUM/AVG/MIN/MAX over a column, or COUNT(*).
type AggregateExpr struct {
	Fn   string // upper-cased function name
	Arg  ColumnRef
	Star bool
}

// ArithmeticExpr is a binary arithmetic expression with one of + - * /.
type ArithmeticExpr struct {
	Left  SelectExpression
	Op    byte
	Right SelectExpression
}

// LiteralExpr is a literal projection value.
type LiteralExpr struct {
	Val Value
}

// FunctionExpr is a scalar function call, e.g. lower(Name).
type FunctionExpr struct {
	Name string // upper-cased
	Args []SelectExpression
}

func (*StarExpr) selectExpr()       {}
func (*ColumnExpr) selectExpr()     {}
func (*AggregateExpr) selectExpr()  {}
func (*ArithmeticExpr) selectExpr() {}
func (*LiteralExpr) selectExpr()    {}
func (*FunctionExpr) selectExpr()   {}

// SelectStmt is a parsed SELECT.
type SelectStmt struct {
	Distinct bool
	Projs    []SelectItem
	From     *TableRef // nil means the caller-supplied default location
	Joins    []JoinClause
	Where    Expression
	GroupBy  []ColumnRef
	Having   Expression
	OrderBy  []OrderByItem
	Limit    *int64
	Offset   *int64
	Labels   map[string]string // column id -> display label
	Formats  map[string]string // column id -> display format pattern
	Pivot    string            // pivot column, empty when absent
}

// InsertStmt is a parsed INSERT. Columns is empty for positional VALUES.
type InsertStmt struct {
	Target  *TableRef
	Columns []string
	Values  []Value
}

// Assignment is one `col = literal` pair in an UPDATE SET list.
type Assignment struct {
	Column string
	Val    Value
}

// UpdateStmt is a parsed UPDATE.
type UpdateStmt struct {
	Target      *TableRef
	Assignments []Assignment
	Where       Expression
	OrderBy     []OrderByItem
	Limit       *int64
}

// DeleteStmt is a parsed DELETE.
type DeleteStmt struct {
	Target  *TableRef
	Where   Expression
	OrderBy []OrderByItem
	Limit   *int64
}

func (*SelectStmt) stmtNode() {}
func (*InsertStmt) stmtNode() {}
func (*UpdateStmt) stmtNode() {}
func (*DeleteStmt) stmtNode() {}
