package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldMap_Set(t *testing.T) {
	t.Run("keeps insertion order", func(t *testing.T) {
		var m FieldMap
		m.Set("b", 1)
		m.Set("a", 2)
		m.Set("c", 3)

		assert.Equal(t, []string{"b", "a", "c"}, m.Columns())
		assert.Equal(t, []any{1, 2, 3}, m.Values())
		assert.Equal(t, 3, m.Len())
	})

	t.Run("last write wins in original position", func(t *testing.T) {
		var m FieldMap
		m.Set("a", 1)
		m.Set("b", 2)
		m.Set("a", 3)

		assert.Equal(t, []string{"a", "b"}, m.Columns())
		v, ok := m.Get("a")
		require.True(t, ok)
		assert.Equal(t, 3, v)
	})

	t.Run("zero value is empty", func(t *testing.T) {
		var m FieldMap
		assert.Equal(t, 0, m.Len())
		assert.False(t, m.Has("a"))
		assert.Empty(t, m.Columns())
	})
}

func TestOptional_UnmarshalJSON(t *testing.T) {
	type payload struct {
		Name  Optional[string] `json:"name"`
		Count Optional[int32]  `json:"count"`
	}

	t.Run("absent key stays unset", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"name":"x"}`), &p))

		assert.True(t, p.Name.Set)
		assert.Equal(t, "x", p.Name.Val)
		assert.False(t, p.Count.Set)
	})

	t.Run("explicit null is set and null", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"name":null}`), &p))

		assert.True(t, p.Name.Set)
		assert.True(t, p.Name.Null)
		assert.Nil(t, p.Name.Value())
		assert.Nil(t, p.Name.ValidationValue())
	})

	t.Run("type mismatch fails", func(t *testing.T) {
		var p payload
		assert.Error(t, json.Unmarshal([]byte(`{"count":"seven"}`), &p))
	})

	t.Run("marshal round trips value and null", func(t *testing.T) {
		data, err := json.Marshal(payload{Name: Some("acme"), Count: Null[int32]()})
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"acme","count":null}`, string(data))
	})
}

func TestPurchaseCreate_DecodeTimestamps(t *testing.T) {
	want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		body string
	}{
		{"rfc3339 utc", `{"fecha_compra":"2024-01-01T10:00:00Z"}`},
		{"rfc3339 offset", `{"fecha_compra":"2024-01-01T05:00:00-05:00"}`},
		{"zone-less is utc", `{"fecha_compra":"2024-01-01T10:00:00"}`},
		{"zone-less fractional", `{"fecha_compra":"2024-01-01T10:00:00.000"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p PurchaseCreate
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))

			got, ok := p.PurchasedAt.Get()
			require.True(t, ok)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}

	t.Run("garbage is rejected", func(t *testing.T) {
		var p PurchaseCreate
		assert.Error(t, json.Unmarshal([]byte(`{"fecha_recibido":"yesterday"}`), &p))
	})

	t.Run("null still means null", func(t *testing.T) {
		var p PurchaseUpdate
		require.NoError(t, json.Unmarshal([]byte(`{"fecha_recibido":null}`), &p))
		assert.True(t, p.ReceivedAt.Set)
		assert.True(t, p.ReceivedAt.Null)
	})
}

func TestSupplierCreate_Fields(t *testing.T) {
	t.Run("only required fields", func(t *testing.T) {
		p := SupplierCreate{Name: "Acme", TaxID: "123"}

		fields := p.Fields()
		assert.Equal(t, []string{SupplierColumnName, SupplierColumnTaxID}, fields.Columns())
		assert.Equal(t, []any{"Acme", "123"}, fields.Values())
	})

	t.Run("explicit optional fields are included in order", func(t *testing.T) {
		rating := pgtype.Numeric{}
		require.NoError(t, rating.Scan("4.50"))
		p := SupplierCreate{
			Name:          "Acme",
			TaxID:         "123",
			Description:   Null[string](),
			PurchaseCount: Some[int32](3),
			Rating:        Some(rating),
		}

		fields := p.Fields()
		assert.Equal(t, []string{
			SupplierColumnName,
			SupplierColumnTaxID,
			SupplierColumnDescription,
			SupplierColumnPurchaseCount,
			SupplierColumnRating,
		}, fields.Columns())

		desc, ok := fields.Get(SupplierColumnDescription)
		require.True(t, ok)
		assert.Nil(t, desc)
	})
}

func TestSupplierUpdate_Fields(t *testing.T) {
	t.Run("empty update has no fields", func(t *testing.T) {
		assert.Equal(t, 0, SupplierUpdate{}.Fields().Len())
	})

	t.Run("decoded from partial JSON", func(t *testing.T) {
		var p SupplierUpdate
		require.NoError(t, json.Unmarshal([]byte(`{"nit":"999","descripcion":null}`), &p))

		fields := p.Fields()
		assert.Equal(t, []string{SupplierColumnTaxID, SupplierColumnDescription}, fields.Columns())
		assert.Equal(t, []any{"999", nil}, fields.Values())
	})
}

func TestPurchaseCreate_Fields(t *testing.T) {
	amount := pgtype.Numeric{}
	require.NoError(t, amount.Scan("150.25"))

	loc := time.FixedZone("UTC-5", -5*3600)
	purchased := time.Date(2024, 3, 1, 10, 0, 0, 0, loc)

	p := PurchaseCreate{
		SupplierID:  7,
		Amount:      amount,
		Invoice:     "F-001",
		PurchasedAt: Some(purchased),
	}

	fields := p.Fields()
	assert.Equal(t, []string{
		PurchaseColumnSupplierID,
		PurchaseColumnAmount,
		PurchaseColumnInvoice,
		PurchaseColumnPurchasedAt,
	}, fields.Columns())

	got, ok := fields.Get(PurchaseColumnPurchasedAt)
	require.True(t, ok)
	ts, ok := got.(time.Time)
	require.True(t, ok)
	assert.Equal(t, time.UTC, ts.Location())
	assert.True(t, purchased.Equal(ts))
}

func TestPurchase_CheckDates(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("received before purchased is rejected", func(t *testing.T) {
		p := PurchaseCreate{PurchasedAt: Some(base), ReceivedAt: Some(base.Add(-time.Hour))}
		err := p.CheckDates()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})

	t.Run("same instant is allowed", func(t *testing.T) {
		p := PurchaseCreate{PurchasedAt: Some(base), ReceivedAt: Some(base)}
		assert.NoError(t, p.CheckDates())
	})

	t.Run("update with only one date is not compared", func(t *testing.T) {
		p := PurchaseUpdate{ReceivedAt: Some(base)}
		assert.NoError(t, p.CheckDates())
	})

	t.Run("null received date is not compared", func(t *testing.T) {
		p := PurchaseUpdate{PurchasedAt: Some(base), ReceivedAt: Null[time.Time]()}
		assert.NoError(t, p.CheckDates())
	})
}

func TestPurchaseStatus(t *testing.T) {
	assert.Equal(t, "pending", PurchaseStatusPending.String())
	assert.Equal(t, "received", PurchaseStatusReceived.String())
	assert.Equal(t, "unknown", PurchaseStatus(42).String())
	assert.True(t, PurchaseStatusCancelled.IsTerminal())
	assert.False(t, PurchaseStatusInProgress.IsTerminal())
}
