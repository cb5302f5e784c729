package repository

import (
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"

	"github.com/helixir/procurement-service/internal/query"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Descriptor is the immutable per-entity configuration of a Repository.
type Descriptor[T any] struct {
	// Entity is the display name used in errors and logs.
	Entity   string
	Schema   string
	Table    string
	IDColumn string
	// Columns is every column of the table in scan order. It doubles as the
	// allow-list for field maps, filters and ordering.
	Columns []string
	// Scan decodes one row selected with Columns.
	Scan func(row pgx.Row) (*T, error)
}

// Validate checks that the descriptor can be used to build statements.
func (d Descriptor[T]) Validate() error {
	if d.Entity == "" {
		return fmt.Errorf("descriptor entity is required")
	}
	if d.Scan == nil {
		return fmt.Errorf("descriptor %s: scan function is required", d.Entity)
	}
	if d.Schema != "" && !identifierPattern.MatchString(d.Schema) {
		return fmt.Errorf("descriptor %s: invalid schema %q", d.Entity, d.Schema)
	}
	if !identifierPattern.MatchString(d.Table) {
		return fmt.Errorf("descriptor %s: invalid table %q", d.Entity, d.Table)
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("descriptor %s: columns are required", d.Entity)
	}

	seen := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		if !identifierPattern.MatchString(c) {
			return fmt.Errorf("descriptor %s: invalid column %q", d.Entity, c)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("descriptor %s: duplicate column %q", d.Entity, c)
		}
		seen[c] = struct{}{}
	}
	if _, ok := seen[d.IDColumn]; !ok {
		return fmt.Errorf("descriptor %s: id column %q is not among the columns", d.Entity, d.IDColumn)
	}
	return nil
}

func (d Descriptor[T]) table() query.Table {
	return query.Table{Schema: d.Schema, Name: d.Table}
}
