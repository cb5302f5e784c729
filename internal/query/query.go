// Package query builds parameterized PostgreSQL statements from ordered field
// maps.
//
// Only identifiers are composed into statement text, always quoted through
// pgx.Identifier. Values are passed as positional arguments ($1..$n) in
// field-map order. Callers are expected to check column names against an
// allow-list before building; see repository.Descriptor.
//
// All functions are pure and deterministic.
package query

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/helixir/procurement-service/internal/domain"
)

// ErrEmptyFieldMap is returned by BuildInsert and BuildUpdate when no fields are given.
var ErrEmptyFieldMap = domain.NewValidationError("fields", "at least one field is required")

// Table is a schema-qualified table name.
type Table struct {
	Schema string
	Name   string
}

// Sanitize returns the quoted, schema-qualified table name.
func (t Table) Sanitize() string {
	if t.Schema == "" {
		return pgx.Identifier{t.Name}.Sanitize()
	}
	return pgx.Identifier{t.Schema, t.Name}.Sanitize()
}

// String implements fmt.Stringer.
func (t Table) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Order is a single ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// Asc returns an ascending order on column.
func Asc(column string) Order { return Order{Column: column} }

// Desc returns a descending order on column.
func Desc(column string) Order { return Order{Column: column, Desc: true} }

// Op is a comparison operator for a Filter.
type Op int

const (
	// OpEqual renders column = $n.
	OpEqual Op = iota
	// OpNotEqual renders column <> $n.
	OpNotEqual
	// OpContainsFold renders a case-insensitive substring match. LIKE
	// metacharacters in the value are escaped.
	OpContainsFold
)

// Filter is a single WHERE predicate. Multiple filters are joined with AND.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Eq returns an equality filter.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEqual, Value: value}
}

// SelectQuery describes a SELECT statement.
type SelectQuery struct {
	Table   Table
	Columns []string
	Filters []Filter
	OrderBy []Order
	Limit   int
	Offset  int
}

// BuildInsert returns an INSERT statement with one placeholder per field, in
// field order, returning the given columns (or every column when none are given).
func BuildInsert(table Table, fields domain.FieldMap, returning ...string) (string, []any, error) {
	if fields.Len() == 0 {
		return "", nil, ErrEmptyFieldMap
	}

	cols := make([]string, fields.Len())
	placeholders := make([]string, fields.Len())
	for i, f := range fields {
		cols[i] = quote(f.Column)
		placeholders[i] = placeholder(i + 1)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		table.Sanitize(),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		returningList(returning),
	)
	return sql, fields.Values(), nil
}

// BuildUpdate returns an UPDATE statement setting every field, followed by a
// single trailing placeholder for the id predicate.
func BuildUpdate(table Table, fields domain.FieldMap, idColumn string, id any, returning ...string) (string, []any, error) {
	if fields.Len() == 0 {
		return "", nil, ErrEmptyFieldMap
	}

	sets := make([]string, fields.Len())
	for i, f := range fields {
		sets[i] = quote(f.Column) + " = " + placeholder(i+1)
	}

	args := append(fields.Values(), id)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s RETURNING %s",
		table.Sanitize(),
		strings.Join(sets, ", "),
		quote(idColumn),
		placeholder(len(args)),
		returningList(returning),
	)
	return sql, args, nil
}

// BuildDelete returns a DELETE statement matching a single id.
func BuildDelete(table Table, idColumn string, id any) (string, []any) {
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table.Sanitize(), quote(idColumn))
	return sql, []any{id}
}

// BuildSelect renders q.
func BuildSelect(q SelectQuery) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(q.Filters))

	b.WriteString("SELECT ")
	b.WriteString(returningList(q.Columns))
	b.WriteString(" FROM ")
	b.WriteString(q.Table.Sanitize())

	for i, f := range q.Filters {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, filterValue(f))
		n := placeholder(len(args))
		switch f.Op {
		case OpNotEqual:
			b.WriteString(quote(f.Column) + " <> " + n)
		case OpContainsFold:
			b.WriteString("LOWER(" + quote(f.Column) + ") LIKE LOWER(" + n + ")")
		default:
			b.WriteString(quote(f.Column) + " = " + n)
		}
	}

	if len(q.OrderBy) > 0 {
		terms := make([]string, len(q.OrderBy))
		for i, o := range q.OrderBy {
			terms[i] = quote(o.Column)
			if o.Desc {
				terms[i] += " DESC"
			} else {
				terms[i] += " ASC"
			}
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		b.WriteString(" LIMIT " + placeholder(len(args)))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		b.WriteString(" OFFSET " + placeholder(len(args)))
	}

	return b.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func filterValue(f Filter) any {
	if f.Op != OpContainsFold {
		return f.Value
	}
	return "%" + likeEscaper.Replace(fmt.Sprint(f.Value)) + "%"
}

func returningList(cols []string) string {
	if len(cols) == 0 {
		return "*"
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quote(c)
	}
	return strings.Join(quoted, ", ")
}

func quote(column string) string {
	return pgx.Identifier{column}.Sanitize()
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
