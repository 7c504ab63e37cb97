package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryBalance saldo actual de un insumo dentro de una granja. Exactamente uno por (granja, insumo).
// Se crea con cantidad cero en el primer movimiento; nunca se escribe fuera del libro.
type InventoryBalance struct {
	FarmID          string
	ItemID          string
	QuantityOnHand  decimal.Decimal
	Unit            string
	LastRestockedAt *time.Time
	LastUsageAt     *time.Time
	Version         int64 // se incrementa en cada movimiento
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ZeroBalance saldo en cero para un insumo sin movimientos.
func ZeroBalance(farmID, itemID, unit string) *InventoryBalance {
	return &InventoryBalance{FarmID: farmID, ItemID: itemID, QuantityOnHand: decimal.Zero, Unit: unit}
}
