// Package domain provides domain models and business logic for the procurement service.
package domain

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Supplier column names. They match the proveedor table and the JSON keys of
// the public API.
const (
	SupplierColumnID              = "id_proveedor"
	SupplierColumnName            = "nombre"
	SupplierColumnTaxID           = "nit"
	SupplierColumnDescription     = "descripcion"
	SupplierColumnItemsPurchased  = "num_art_comprados"
	SupplierColumnItemsReturned   = "num_art_devoluciones"
	SupplierColumnItemsSold       = "num_art_vendidas"
	SupplierColumnPurchaseCount   = "num_compras"
	SupplierColumnAmountPurchased = "valor_comprado"
	SupplierColumnReturnCount     = "num_devoluciones"
	SupplierColumnAmountReturned  = "valor_devuelto"
	SupplierColumnSaleCount       = "num_ventas"
	SupplierColumnAmountSold      = "valor_vendido"
	SupplierColumnRating          = "rating_art_provedor"
)

// SupplierColumns lists every supplier column in table order.
var SupplierColumns = []string{
	SupplierColumnID,
	SupplierColumnName,
	SupplierColumnTaxID,
	SupplierColumnDescription,
	SupplierColumnItemsPurchased,
	SupplierColumnItemsReturned,
	SupplierColumnItemsSold,
	SupplierColumnPurchaseCount,
	SupplierColumnAmountPurchased,
	SupplierColumnReturnCount,
	SupplierColumnAmountReturned,
	SupplierColumnSaleCount,
	SupplierColumnAmountSold,
	SupplierColumnRating,
}

// EntitySupplier is the display name used in error messages.
const EntitySupplier = "supplier"

// Supplier is a vendor the business buys from.
type Supplier struct {
	ID              int64          `json:"id_proveedor"`
	Name            string         `json:"nombre"`
	TaxID           string         `json:"nit"`
	Description     *string        `json:"descripcion"`
	ItemsPurchased  int32          `json:"num_art_comprados"`
	ItemsReturned   int32          `json:"num_art_devoluciones"`
	ItemsSold       int32          `json:"num_art_vendidas"`
	PurchaseCount   int32          `json:"num_compras"`
	AmountPurchased pgtype.Numeric `json:"valor_comprado"`
	ReturnCount     int32          `json:"num_devoluciones"`
	AmountReturned  pgtype.Numeric `json:"valor_devuelto"`
	SaleCount       int32          `json:"num_ventas"`
	AmountSold      pgtype.Numeric `json:"valor_vendido"`
	Rating          pgtype.Numeric `json:"rating_art_provedor"`
}

// SupplierCreate is the payload for registering a supplier. Counters and
// amounts left unset fall back to the column defaults.
type SupplierCreate struct {
	Name            string                   `json:"nombre" validate:"required,max=255"`
	TaxID           string                   `json:"nit" validate:"required,max=100"`
	Description     Optional[string]         `json:"descripcion"`
	ItemsPurchased  Optional[int32]          `json:"num_art_comprados" validate:"omitempty,gte=0"`
	ItemsReturned   Optional[int32]          `json:"num_art_devoluciones" validate:"omitempty,gte=0"`
	ItemsSold       Optional[int32]          `json:"num_art_vendidas" validate:"omitempty,gte=0"`
	PurchaseCount   Optional[int32]          `json:"num_compras" validate:"omitempty,gte=0"`
	AmountPurchased Optional[pgtype.Numeric] `json:"valor_comprado" validate:"omitempty,gte=0"`
	ReturnCount     Optional[int32]          `json:"num_devoluciones" validate:"omitempty,gte=0"`
	AmountReturned  Optional[pgtype.Numeric] `json:"valor_devuelto" validate:"omitempty,gte=0"`
	SaleCount       Optional[int32]          `json:"num_ventas" validate:"omitempty,gte=0"`
	AmountSold      Optional[pgtype.Numeric] `json:"valor_vendido" validate:"omitempty,gte=0"`
	Rating          Optional[pgtype.Numeric] `json:"rating_art_provedor" validate:"omitempty,gte=0,lte=5"`
}

// Fields returns the explicitly set columns in declaration order.
func (p SupplierCreate) Fields() FieldMap {
	var m FieldMap
	m.Set(SupplierColumnName, p.Name)
	m.Set(SupplierColumnTaxID, p.TaxID)
	setOptional(&m, SupplierColumnDescription, p.Description)
	setOptional(&m, SupplierColumnItemsPurchased, p.ItemsPurchased)
	setOptional(&m, SupplierColumnItemsReturned, p.ItemsReturned)
	setOptional(&m, SupplierColumnItemsSold, p.ItemsSold)
	setOptional(&m, SupplierColumnPurchaseCount, p.PurchaseCount)
	setOptional(&m, SupplierColumnAmountPurchased, p.AmountPurchased)
	setOptional(&m, SupplierColumnReturnCount, p.ReturnCount)
	setOptional(&m, SupplierColumnAmountReturned, p.AmountReturned)
	setOptional(&m, SupplierColumnSaleCount, p.SaleCount)
	setOptional(&m, SupplierColumnAmountSold, p.AmountSold)
	setOptional(&m, SupplierColumnRating, p.Rating)
	return m
}

// SupplierUpdate is a partial update; only fields present in the request are written.
type SupplierUpdate struct {
	Name            Optional[string]         `json:"nombre" validate:"omitempty,min=1,max=255"`
	TaxID           Optional[string]         `json:"nit" validate:"omitempty,min=1,max=100"`
	Description     Optional[string]         `json:"descripcion"`
	ItemsPurchased  Optional[int32]          `json:"num_art_comprados" validate:"omitempty,gte=0"`
	ItemsReturned   Optional[int32]          `json:"num_art_devoluciones" validate:"omitempty,gte=0"`
	ItemsSold       Optional[int32]          `json:"num_art_vendidas" validate:"omitempty,gte=0"`
	PurchaseCount   Optional[int32]          `json:"num_compras" validate:"omitempty,gte=0"`
	AmountPurchased Optional[pgtype.Numeric] `json:"valor_comprado" validate:"omitempty,gte=0"`
	ReturnCount     Optional[int32]          `json:"num_devoluciones" validate:"omitempty,gte=0"`
	AmountReturned  Optional[pgtype.Numeric] `json:"valor_devuelto" validate:"omitempty,gte=0"`
	SaleCount       Optional[int32]          `json:"num_ventas" validate:"omitempty,gte=0"`
	AmountSold      Optional[pgtype.Numeric] `json:"valor_vendido" validate:"omitempty,gte=0"`
	Rating          Optional[pgtype.Numeric] `json:"rating_art_provedor" validate:"omitempty,gte=0,lte=5"`
}

// Fields returns the explicitly set columns in declaration order.
func (p SupplierUpdate) Fields() FieldMap {
	var m FieldMap
	setOptional(&m, SupplierColumnName, p.Name)
	setOptional(&m, SupplierColumnTaxID, p.TaxID)
	setOptional(&m, SupplierColumnDescription, p.Description)
	setOptional(&m, SupplierColumnItemsPurchased, p.ItemsPurchased)
	setOptional(&m, SupplierColumnItemsReturned, p.ItemsReturned)
	setOptional(&m, SupplierColumnItemsSold, p.ItemsSold)
	setOptional(&m, SupplierColumnPurchaseCount, p.PurchaseCount)
	setOptional(&m, SupplierColumnAmountPurchased, p.AmountPurchased)
	setOptional(&m, SupplierColumnReturnCount, p.ReturnCount)
	setOptional(&m, SupplierColumnAmountReturned, p.AmountReturned)
	setOptional(&m, SupplierColumnSaleCount, p.SaleCount)
	setOptional(&m, SupplierColumnAmountSold, p.AmountSold)
	setOptional(&m, SupplierColumnRating, p.Rating)
	return m
}
