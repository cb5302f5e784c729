package domain

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// PurchaseStatus is the lifecycle state of a purchase. Values are stored as
// small integers in the estado column.
type PurchaseStatus int16

const (
	PurchaseStatusPending    PurchaseStatus = 0
	PurchaseStatusInProgress PurchaseStatus = 1
	PurchaseStatusReceived   PurchaseStatus = 2
	PurchaseStatusCancelled  PurchaseStatus = 3
	PurchaseStatusReturned   PurchaseStatus = 4
)

// String returns the lowercase status name.
func (s PurchaseStatus) String() string {
	switch s {
	case PurchaseStatusPending:
		return "pending"
	case PurchaseStatusInProgress:
		return "in_progress"
	case PurchaseStatusReceived:
		return "received"
	case PurchaseStatusCancelled:
		return "cancelled"
	case PurchaseStatusReturned:
		return "returned"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if the status represents a final state.
func (s PurchaseStatus) IsTerminal() bool {
	switch s {
	case PurchaseStatusCancelled, PurchaseStatusReturned:
		return true
	default:
		return false
	}
}

// Purchase column names.
const (
	PurchaseColumnID          = "id_compra"
	PurchaseColumnSupplierID  = "id_proveedor"
	PurchaseColumnAmount      = "valor_compra"
	PurchaseColumnInvoice     = "factura"
	PurchaseColumnPurchasedAt = "fecha_compra"
	PurchaseColumnReceivedAt  = "fecha_recibido"
	PurchaseColumnDestination = "destino"
	PurchaseColumnStatus      = "estado"
)

// PurchaseColumns lists every purchase column in table order.
var PurchaseColumns = []string{
	PurchaseColumnID,
	PurchaseColumnSupplierID,
	PurchaseColumnAmount,
	PurchaseColumnInvoice,
	PurchaseColumnPurchasedAt,
	PurchaseColumnReceivedAt,
	PurchaseColumnDestination,
	PurchaseColumnStatus,
}

// EntityPurchase is the display name used in error messages.
const EntityPurchase = "purchase"

// Purchase is a single supplier invoice.
type Purchase struct {
	ID          int64          `json:"id_compra"`
	SupplierID  int64          `json:"id_proveedor"`
	Amount      pgtype.Numeric `json:"valor_compra"`
	Invoice     string         `json:"factura"`
	PurchasedAt time.Time      `json:"fecha_compra"`
	ReceivedAt  *time.Time     `json:"fecha_recibido"`
	Destination *string        `json:"destino"`
	Status      PurchaseStatus `json:"estado"`
}

// PurchaseCreate is the payload for recording a purchase.
type PurchaseCreate struct {
	SupplierID  int64                    `json:"id_proveedor" validate:"required,gt=0"`
	Amount      pgtype.Numeric           `json:"valor_compra" validate:"required,gt=0"`
	Invoice     string                   `json:"factura" validate:"required,min=1"`
	PurchasedAt Optional[time.Time]      `json:"fecha_compra"`
	ReceivedAt  Optional[time.Time]      `json:"fecha_recibido"`
	Destination Optional[string]         `json:"destino"`
	Status      Optional[PurchaseStatus] `json:"estado" validate:"omitempty,gte=0,lte=4"`
}

// Fields returns the explicitly set columns in declaration order. Timestamps
// are normalized to UTC.
func (p PurchaseCreate) Fields() FieldMap {
	var m FieldMap
	m.Set(PurchaseColumnSupplierID, p.SupplierID)
	m.Set(PurchaseColumnAmount, p.Amount)
	m.Set(PurchaseColumnInvoice, p.Invoice)
	setOptional(&m, PurchaseColumnPurchasedAt, utcOptional(p.PurchasedAt))
	setOptional(&m, PurchaseColumnReceivedAt, utcOptional(p.ReceivedAt))
	setOptional(&m, PurchaseColumnDestination, p.Destination)
	setOptional(&m, PurchaseColumnStatus, p.Status)
	return m
}

// CheckDates rejects a received date earlier than the purchase date.
func (p PurchaseCreate) CheckDates() error {
	return checkPurchaseDates(p.PurchasedAt, p.ReceivedAt)
}

// PurchaseUpdate is a partial update; only fields present in the request are written.
type PurchaseUpdate struct {
	SupplierID  Optional[int64]          `json:"id_proveedor" validate:"omitempty,gt=0"`
	Amount      Optional[pgtype.Numeric] `json:"valor_compra" validate:"omitempty,gt=0"`
	Invoice     Optional[string]         `json:"factura" validate:"omitempty,min=1"`
	PurchasedAt Optional[time.Time]      `json:"fecha_compra"`
	ReceivedAt  Optional[time.Time]      `json:"fecha_recibido"`
	Destination Optional[string]         `json:"destino"`
	Status      Optional[PurchaseStatus] `json:"estado" validate:"omitempty,gte=0,lte=4"`
}

// Fields returns the explicitly set columns in declaration order.
func (p PurchaseUpdate) Fields() FieldMap {
	var m FieldMap
	setOptional(&m, PurchaseColumnSupplierID, p.SupplierID)
	setOptional(&m, PurchaseColumnAmount, p.Amount)
	setOptional(&m, PurchaseColumnInvoice, p.Invoice)
	setOptional(&m, PurchaseColumnPurchasedAt, utcOptional(p.PurchasedAt))
	setOptional(&m, PurchaseColumnReceivedAt, utcOptional(p.ReceivedAt))
	setOptional(&m, PurchaseColumnDestination, p.Destination)
	setOptional(&m, PurchaseColumnStatus, p.Status)
	return m
}

// CheckDates rejects a received date earlier than the purchase date when both
// are part of the update.
func (p PurchaseUpdate) CheckDates() error {
	return checkPurchaseDates(p.PurchasedAt, p.ReceivedAt)
}

func checkPurchaseDates(purchased, received Optional[time.Time]) error {
	p, okP := purchased.Get()
	r, okR := received.Get()
	if okP && okR && r.Before(p) {
		return NewValidationError(PurchaseColumnReceivedAt, "must not be earlier than "+PurchaseColumnPurchasedAt)
	}
	return nil
}

// utcOptional converts a set timestamp to UTC. The columns are timestamp
// without time zone and hold UTC wall-clock values.
func utcOptional(o Optional[time.Time]) Optional[time.Time] {
	if v, ok := o.Get(); ok {
		o.Val = v.UTC()
	}
	return o
}
