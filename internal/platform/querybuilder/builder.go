// Package querybuilder renders the small set of postgres statements the
// repositories need, with $n placeholders numbered in render order.
package querybuilder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// binder collects positional arguments while a statement is rendered.
type binder struct {
	args []any
}

func (b *binder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// expand binds vals to the ? markers of expr from left to right. Extra
// markers are left as they are.
func (b *binder) expand(expr string, vals []any) string {
	if len(vals) == 0 {
		return expr
	}
	var out strings.Builder
	for _, r := range expr {
		if r == '?' && len(vals) > 0 {
			out.WriteString(b.bind(vals[0]))
			vals = vals[1:]
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

// Condition is one AND-ed term of a WHERE clause.
type Condition interface {
	render(b *binder) string
}

type conditionFunc func(b *binder) string

func (f conditionFunc) render(b *binder) string { return f(b) }

func Eq(column string, value any) Condition {
	return conditionFunc(func(b *binder) string {
		return column + " = " + b.bind(value)
	})
}

// LowerEq compares case-insensitively by lowering both sides.
func LowerEq(column, value string) Condition {
	return conditionFunc(func(b *binder) string {
		return "LOWER(" + column + ") = LOWER(" + b.bind(value) + ")"
	})
}

// Expr is a raw SQL term whose ? markers take args.
func Expr(expr string, args ...any) Condition {
	return conditionFunc(func(b *binder) string {
		return b.expand(expr, args)
	})
}

func renderWhere(b *binder, conditions []Condition) string {
	if len(conditions) == 0 {
		return ""
	}
	terms := make([]string, 0, len(conditions))
	for _, c := range conditions {
		terms = append(terms, c.render(b))
	}
	return " WHERE " + strings.Join(terms, " AND ")
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (s *SelectBuilder) From(table string) *SelectBuilder {
	s.table = table
	return s
}

func (s *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	s.where = append(s.where, conditions...)
	return s
}

func (s *SelectBuilder) OrderBy(terms ...string) *SelectBuilder {
	s.orderBy = append(s.orderBy, terms...)
	return s
}

func (s *SelectBuilder) ToSQL() (string, []any, error) {
	switch {
	case len(s.columns) == 0:
		return "", nil, errors.New("select: no columns")
	case strings.TrimSpace(s.table) == "":
		return "", nil, errors.New("select: no table")
	}

	var b binder
	query := "SELECT " + strings.Join(s.columns, ", ") + " FROM " + s.table + renderWhere(&b, s.where)
	if len(s.orderBy) > 0 {
		query += " ORDER BY " + strings.Join(s.orderBy, ", ")
	}
	return query, b.args, nil
}

// InsertBuilder renders a single- or multi-row INSERT.
type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append([]string(nil), columns...)
	return i
}

// Values adds one row; call it once per row.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.rows = append(i.rows, append([]any(nil), values...))
	return i
}

// Suffix appends raw SQL such as ON CONFLICT or RETURNING.
func (i *InsertBuilder) Suffix(sql string) *InsertBuilder {
	i.suffix = strings.TrimSpace(sql)
	return i
}

func (i *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(i.table) == "":
		return "", nil, errors.New("insert: no table")
	case len(i.columns) == 0:
		return "", nil, errors.New("insert: no columns")
	case len(i.rows) == 0:
		return "", nil, errors.New("insert: no rows")
	}

	var b binder
	tuples := make([]string, 0, len(i.rows))
	for n, row := range i.rows {
		if len(row) != len(i.columns) {
			return "", nil, fmt.Errorf("insert: row %d has %d values for %d columns", n, len(row), len(i.columns))
		}
		marks := make([]string, len(row))
		for j, v := range row {
			marks[j] = b.bind(v)
		}
		tuples = append(tuples, "("+strings.Join(marks, ", ")+")")
	}

	query := "INSERT INTO " + i.table + " (" + strings.Join(i.columns, ", ") + ") VALUES " + strings.Join(tuples, ", ")
	if i.suffix != "" {
		query += " " + i.suffix
	}
	return query, b.args, nil
}

type assignment struct {
	column string
	value  func(b *binder) string
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (u *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, value: func(b *binder) string { return b.bind(value) }})
	return u
}

// SetExpr assigns a raw SQL expression, e.g. NOW().
func (u *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, value: func(b *binder) string { return b.expand(expr, args) }})
	return u
}

func (u *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	u.where = append(u.where, conditions...)
	return u
}

func (u *UpdateBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(u.table) == "":
		return "", nil, errors.New("update: no table")
	case len(u.sets) == 0:
		return "", nil, errors.New("update: nothing to set")
	}

	var b binder
	sets := make([]string, 0, len(u.sets))
	for _, a := range u.sets {
		sets = append(sets, a.column+" = "+a.value(&b))
	}
	return "UPDATE " + u.table + " SET " + strings.Join(sets, ", ") + renderWhere(&b, u.where), b.args, nil
}
