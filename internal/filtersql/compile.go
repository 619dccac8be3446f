// Package filtersql compiles filter expression trees to parameterized SQL
// for the SQLite reference backend.
//
// Values are always bound through ? placeholders, never interpolated, and
// every query carries a deterministic ORDER BY so result order is stable
// across runs.
package filtersql

import (
	"fmt"
	"strings"

	"github.com/quarrydb/quarry/internal/filterir"
	"github.com/quarrydb/quarry/internal/schema"
	"github.com/quarrydb/quarry/internal/value"
)

// Compiler compiles one query; aliases are numbered per compile so nested
// relation subqueries never collide.
type Compiler struct {
	schema *schema.Schema
	aliasN int
}

// New creates a Compiler over the given schema.
func New(s *schema.Schema) *Compiler {
	return &Compiler{schema: s}
}

// BuildQuery renders a full SELECT for records of model matching expr,
// honoring ordering and pagination from args. Returns the SQL and its bound
// parameters.
func (c *Compiler) BuildQuery(model *schema.Model, expr filterir.Expr, args *filterir.QueryArgs) (string, []any, error) {
	alias := c.nextAlias()
	idCol := IDColumn(model)

	var sb strings.Builder
	var params []any

	fmt.Fprintf(&sb, "SELECT %s.* FROM %s %s", alias, TableName(model), alias)

	var conds []string
	if expr != nil {
		sql, p, err := c.compileExpr(model, alias, expr)
		if err != nil {
			return "", nil, err
		}
		if sql != "" {
			conds = append(conds, sql)
			params = append(params, p...)
		}
	}
	if args != nil {
		if args.After != "" {
			conds = append(conds, fmt.Sprintf("%s.%s > ?", alias, idCol))
			params = append(params, args.After)
		}
		if args.Before != "" {
			conds = append(conds, fmt.Sprintf("%s.%s < ?", alias, idCol))
			params = append(params, args.Before)
		}
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	// Deterministic ordering: requested order first, identity as tiebreak.
	sb.WriteString(" ORDER BY ")
	if args != nil && args.OrderBy != "" {
		dir := "ASC"
		if args.Descending {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, "%s.%s %s, ", alias, args.OrderBy, dir)
	}
	fmt.Fprintf(&sb, "%s.%s ASC", alias, idCol)

	if args != nil {
		if args.First > 0 {
			fmt.Fprintf(&sb, " LIMIT %d", args.First)
		} else if args.Skip > 0 {
			sb.WriteString(" LIMIT -1")
		}
		if args.Skip > 0 {
			fmt.Fprintf(&sb, " OFFSET %d", args.Skip)
		}
	}

	return sb.String(), params, nil
}

// CompileWhere renders just the condition for expr against model, with the
// model's table aliased as given. Used by the store when embedding filters
// into its own statements.
func (c *Compiler) CompileWhere(model *schema.Model, alias string, expr filterir.Expr) (string, []any, error) {
	return c.compileExpr(model, alias, expr)
}

func (c *Compiler) nextAlias() string {
	a := fmt.Sprintf("t%d", c.aliasN)
	c.aliasN++
	return a
}

// compileExpr compiles any expression node. Returns an empty condition for
// match-everything nodes.
func (c *Compiler) compileExpr(model *schema.Model, alias string, e filterir.Expr) (string, []any, error) {
	switch node := e.(type) {
	case filterir.Logical:
		return c.compileLogical(model, alias, node)
	case filterir.ScalarValue:
		return c.compileScalarValue(model, alias, node)
	case filterir.ScalarList:
		return c.compileScalarList(model, alias, node)
	case filterir.RelationFilter:
		return c.compileRelationFilter(model, alias, node)
	case filterir.RelationListFilter:
		return c.compileRelationList(model, alias, node)
	case filterir.Raw:
		// Raw nodes are unclassified input; refusing to execute them keeps
		// a compiler defect from silently changing result sets.
		return "", nil, fmt.Errorf("refusing to execute unclassified filter key %q", node.Key)
	default:
		return "", nil, fmt.Errorf("unsupported expression type: %T", e)
	}
}

func (c *Compiler) compileLogical(model *schema.Model, alias string, node filterir.Logical) (string, []any, error) {
	if len(node.Children) == 0 {
		if node.Op == filterir.OpOr {
			return "1 = 0", nil, nil
		}
		return "", nil, nil // AND of nothing matches everything
	}

	var parts []string
	var params []any
	for _, child := range node.Children {
		sql, p, err := c.compileExpr(model, alias, child)
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			sql = "1 = 1"
		}
		parts = append(parts, "("+sql+")")
		params = append(params, p...)
	}

	switch node.Op {
	case filterir.OpAnd:
		return strings.Join(parts, " AND "), params, nil
	case filterir.OpOr:
		return strings.Join(parts, " OR "), params, nil
	case filterir.OpNot:
		return "NOT (" + strings.Join(parts, " AND ") + ")", params, nil
	default:
		return "", nil, fmt.Errorf("unsupported logical operator %q", node.Op)
	}
}

func (c *Compiler) compileScalarValue(model *schema.Model, alias string, node filterir.ScalarValue) (string, []any, error) {
	if node.Field.IsList {
		// List fields live out-of-line; a single-value comparison means
		// "some element compares".
		return c.compileListElement(model, alias, node.Field, node.Op, []value.Typed{node.Value})
	}

	col := fmt.Sprintf("%s.%s", alias, ColumnName(node.Field))

	if _, isNull := node.Value.(value.TypedNull); isNull {
		switch node.Op {
		case filterir.OpEquals:
			return col + " IS NULL", nil, nil
		case filterir.OpNotEquals:
			return col + " IS NOT NULL", nil, nil
		default:
			return "", nil, fmt.Errorf("operator %s does not accept null", node.Op)
		}
	}

	param, ok := value.SQLParam(node.Value)
	if !ok {
		return "", nil, fmt.Errorf("field %s: value has no SQL parameter form", node.Field.Name)
	}

	switch node.Op {
	case filterir.OpEquals:
		return col + " = ?", []any{param}, nil
	case filterir.OpNotEquals:
		return col + " != ?", []any{param}, nil
	case filterir.OpLt:
		return col + " < ?", []any{param}, nil
	case filterir.OpLte:
		return col + " <= ?", []any{param}, nil
	case filterir.OpGt:
		return col + " > ?", []any{param}, nil
	case filterir.OpGte:
		return col + " >= ?", []any{param}, nil
	case filterir.OpContains:
		return col + " LIKE '%' || ? || '%'", []any{param}, nil
	case filterir.OpNotContains:
		return col + " NOT LIKE '%' || ? || '%'", []any{param}, nil
	case filterir.OpStartsWith:
		return col + " LIKE ? || '%'", []any{param}, nil
	case filterir.OpEndsWith:
		return col + " LIKE '%' || ?", []any{param}, nil
	default:
		return "", nil, fmt.Errorf("unsupported scalar operator %q", node.Op)
	}
}

func (c *Compiler) compileScalarList(model *schema.Model, alias string, node filterir.ScalarList) (string, []any, error) {
	if node.Field.IsList {
		return c.compileListElement(model, alias, node.Field, node.Op, node.Values)
	}

	col := fmt.Sprintf("%s.%s", alias, ColumnName(node.Field))
	return inClause(col, node.Op, node.Values, node.Field.Name)
}

// compileListElement compares against the side table of a scalar list
// field: true when some stored element satisfies the comparison.
func (c *Compiler) compileListElement(model *schema.Model, alias string, f *schema.Field, op filterir.Operator, values []value.Typed) (string, []any, error) {
	sub := c.nextAlias()
	idCol := IDColumn(model)

	var inner string
	var params []any
	switch {
	case filterir.IsListValued(op):
		sql, p, err := inClause(sub+".value", op, values, f.Name)
		if err != nil {
			return "", nil, err
		}
		inner, params = sql, p
	case len(values) == 1:
		param, ok := value.SQLParam(values[0])
		if !ok {
			return "", nil, fmt.Errorf("field %s: value has no SQL parameter form", f.Name)
		}
		cmp, err := comparison(op)
		if err != nil {
			return "", nil, err
		}
		inner = fmt.Sprintf("%s.value %s ?", sub, cmp)
		params = []any{param}
	default:
		return "", nil, fmt.Errorf("field %s: operator %s takes one value", f.Name, op)
	}

	sql := fmt.Sprintf("EXISTS (SELECT 1 FROM %s %s WHERE %s.parent_id = %s.%s AND %s)",
		ListTableName(model, f), sub, sub, alias, idCol, inner)
	return sql, params, nil
}

func (c *Compiler) compileRelationFilter(model *schema.Model, alias string, node filterir.RelationFilter) (string, []any, error) {
	related := c.schema.Model(node.Field.RelatedModel)
	if related == nil {
		return "", nil, fmt.Errorf("relation %s references unknown model %q", node.Field.Name, node.Field.RelatedModel)
	}

	link := LinkTableName(model, node.Field)
	linkAlias := c.nextAlias()
	relAlias := c.nextAlias()
	idCol := IDColumn(model)
	relIDCol := IDColumn(related)

	// Null nested expression addresses bare existence of any related row.
	if node.Nested == nil {
		exists := fmt.Sprintf("EXISTS (SELECT 1 FROM %s %s WHERE %s.parent_id = %s.%s)",
			link, linkAlias, linkAlias, alias, idCol)
		switch node.Op {
		case filterir.OpIs, filterir.OpNone:
			return "NOT " + exists, nil, nil
		case filterir.OpIsNot, filterir.OpSome:
			return exists, nil, nil
		case filterir.OpEvery:
			return "", nil, nil // vacuously true
		default:
			return "", nil, fmt.Errorf("unsupported relation operator %q", node.Op)
		}
	}

	nestedSQL, params, err := c.compileExpr(related, relAlias, node.Nested)
	if err != nil {
		return "", nil, err
	}
	if nestedSQL == "" {
		nestedSQL = "1 = 1"
	}

	matching := fmt.Sprintf(
		"SELECT 1 FROM %s %s JOIN %s %s ON %s.%s = %s.child_id WHERE %s.parent_id = %s.%s AND ",
		link, linkAlias, TableName(related), relAlias,
		relAlias, relIDCol, linkAlias, linkAlias, alias, idCol)

	switch node.Op {
	case filterir.OpSome, filterir.OpIs:
		return "EXISTS (" + matching + "(" + nestedSQL + "))", params, nil
	case filterir.OpNone, filterir.OpIsNot:
		return "NOT EXISTS (" + matching + "(" + nestedSQL + "))", params, nil
	case filterir.OpEvery:
		return "NOT EXISTS (" + matching + "NOT (" + nestedSQL + "))", params, nil
	default:
		return "", nil, fmt.Errorf("unsupported relation operator %q", node.Op)
	}
}

func (c *Compiler) compileRelationList(model *schema.Model, alias string, node filterir.RelationListFilter) (string, []any, error) {
	if len(node.Alternatives) == 0 {
		return "1 = 0", nil, nil
	}

	target := model
	op := filterir.OpEquals
	if node.Field.IsRelation() {
		op = filterir.DefaultRelationOperator(node.Field)
	}

	var parts []string
	var params []any
	for _, alt := range node.Alternatives {
		var sql string
		var p []any
		var err error
		if node.Field.IsRelation() {
			sql, p, err = c.compileRelationFilter(target, alias, filterir.RelationFilter{
				Field: node.Field, Op: op, Nested: alt,
			})
		} else {
			sql, p, err = c.compileExpr(target, alias, alt)
		}
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			sql = "1 = 1"
		}
		parts = append(parts, "("+sql+")")
		params = append(params, p...)
	}
	return strings.Join(parts, " OR "), params, nil
}

func comparison(op filterir.Operator) (string, error) {
	switch op {
	case filterir.OpEquals:
		return "=", nil
	case filterir.OpNotEquals:
		return "!=", nil
	case filterir.OpLt:
		return "<", nil
	case filterir.OpLte:
		return "<=", nil
	case filterir.OpGt:
		return ">", nil
	case filterir.OpGte:
		return ">=", nil
	default:
		return "", fmt.Errorf("unsupported comparison operator %q", op)
	}
}

// inClause renders col IN (?, ...) or NOT IN. Empty lists keep SQL validity:
// IN () matches nothing, NOT IN () matches everything.
func inClause(col string, op filterir.Operator, values []value.Typed, fieldName string) (string, []any, error) {
	negate := false
	switch op {
	case filterir.OpIn:
	case filterir.OpNotIn:
		negate = true
	default:
		return "", nil, fmt.Errorf("field %s: operator %s is not list-valued", fieldName, op)
	}

	if len(values) == 0 {
		if negate {
			return "1 = 1", nil, nil
		}
		return "1 = 0", nil, nil
	}

	placeholders := make([]string, len(values))
	params := make([]any, len(values))
	for i, v := range values {
		param, ok := value.SQLParam(v)
		if !ok {
			return "", nil, fmt.Errorf("field %s: value has no SQL parameter form", fieldName)
		}
		placeholders[i] = "?"
		params[i] = param
	}

	kw := "IN"
	if negate {
		kw = "NOT IN"
	}
	return fmt.Sprintf("%s %s (%s)", col, kw, strings.Join(placeholders, ", ")), params, nil
}
