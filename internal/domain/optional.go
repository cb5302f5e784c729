package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Optional is a payload field that distinguishes "not sent" from an explicit
// null. Only fields with Set == true are written to the store, which leaves
// column defaults in place for everything else.
type Optional[T any] struct {
	Val  T
	Set  bool
	Null bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Val: v, Set: true}
}

// Null returns an Optional explicitly set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// Value returns the stored value, or nil for an explicit null.
func (o Optional[T]) Value() any {
	if o.Null {
		return nil
	}
	return o.Val
}

// Get returns the value and whether a non-null value is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Val, o.Set && !o.Null
}

// ValidationValue returns what the validator should inspect: nil when unset
// or null, otherwise a pointer to the value. The pointer keeps an explicitly
// sent zero value (such as "") from being skipped by omitempty.
func (o Optional[T]) ValidationValue() any {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Val
	return &v
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked when the key
// is present in the document, which is what marks the field as set.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Val = zero
		return nil
	}
	o.Null = false
	if ts, ok := any(&o.Val).(*time.Time); ok {
		return unmarshalTimestamp(data, ts)
	}
	return json.Unmarshal(data, &o.Val)
}

// MarshalJSON implements json.Marshaler.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Val)
}
