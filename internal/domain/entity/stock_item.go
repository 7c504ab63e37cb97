package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Categorías de alimento.
const (
	CategoryConcentrate = "concentrate"
	CategoryRoughage    = "roughage"
	CategorySupplement  = "supplement"
	CategoryMineral     = "mineral"
	CategoryOther       = "other"
)

// Unidades de medida admitidas.
const (
	UnitKg     = "kg"
	UnitBags   = "bags"
	UnitBales  = "bales"
	UnitLiters = "liters"
	UnitSacks  = "sacks"
)

// StockItem representa un insumo inventariable de una granja (p. ej. un concentrado).
// Nombre único por granja. CostPerUnit es nulo mientras no haya compras con precio.
type StockItem struct {
	ID           string
	FarmID       string
	Name         string
	Category     string
	Unit         string
	QRCode       string
	Description  string
	IsActive     bool
	ReorderLevel decimal.Decimal     // alerta cuando el saldo llega a este nivel
	CostPerUnit  decimal.NullDecimal // costo promedio ponderado o último precio
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidCategory indica si c es una categoría conocida.
func ValidCategory(c string) bool {
	switch c {
	case CategoryConcentrate, CategoryRoughage, CategorySupplement, CategoryMineral, CategoryOther:
		return true
	}
	return false
}

// ValidUnit indica si u es una unidad conocida.
func ValidUnit(u string) bool {
	switch u {
	case UnitKg, UnitBags, UnitBales, UnitLiters, UnitSacks:
		return true
	}
	return false
}

// ValidID indica si id es un UUID canónico (36 caracteres), el formato de los identificadores de insumo.
func ValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// QuantityScale decimales que se persisten para cantidades y saldos (NUMERIC(14,3)).
const QuantityScale = 3

var maxQuantity = decimal.New(1, 11)

// ValidQuantityScale indica si q se puede guardar sin redondeo: a lo sumo tres decimales
// significativos y once dígitos enteros.
func ValidQuantityScale(q decimal.Decimal) bool {
	return q.Equal(q.Round(QuantityScale)) && q.Abs().LessThan(maxQuantity)
}
