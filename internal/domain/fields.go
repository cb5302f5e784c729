package domain

// Field is a single column/value pair of a FieldMap.
type Field struct {
	Column string
	Value  any
}

// FieldMap is an ordered set of column values for a write. Insertion order
// drives placeholder numbering. Setting a column twice keeps its original
// position and the last value.
//
// The zero value is an empty map ready to use.
type FieldMap []Field

// Set assigns value to column.
func (m *FieldMap) Set(column string, value any) {
	for i := range *m {
		if (*m)[i].Column == column {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, Field{Column: column, Value: value})
}

// Get returns the value stored for column.
func (m FieldMap) Get(column string) (any, bool) {
	for _, f := range m {
		if f.Column == column {
			return f.Value, true
		}
	}
	return nil, false
}

// Has reports whether column is present.
func (m FieldMap) Has(column string) bool {
	_, ok := m.Get(column)
	return ok
}

// Len returns the number of columns.
func (m FieldMap) Len() int {
	return len(m)
}

// Columns returns the column names in insertion order.
func (m FieldMap) Columns() []string {
	cols := make([]string, len(m))
	for i, f := range m {
		cols[i] = f.Column
	}
	return cols
}

// Values returns the values in insertion order.
func (m FieldMap) Values() []any {
	vals := make([]any, len(m))
	for i, f := range m {
		vals[i] = f.Value
	}
	return vals
}

// setOptional adds column to m only when o was explicitly set by the caller.
// An explicit null is stored as nil.
func setOptional[T any](m *FieldMap, column string, o Optional[T]) {
	if !o.Set {
		return
	}
	m.Set(column, o.Value())
}
