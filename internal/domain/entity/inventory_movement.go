package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro.
const (
	MovementPurchaseIn = "purchase_in" // compra
	MovementUsageOut   = "usage_out"   // consumo
	MovementAdjustment = "adjustment"  // ajuste manual
	MovementTransfer   = "transfer"    // traslado
	MovementLoss       = "loss"        // pérdida o merma
)

// Tipos de origen para la trazabilidad.
const (
	SourceFeedPurchase = "FeedPurchase"
	SourceFeedUsage    = "FeedUsageLog"
	SourceManual       = "Manual"
)

// SourceRef referencia estable al registro que originó el movimiento.
type SourceRef struct {
	Type string
	ID   string
}

// InventoryMovement entrada inmutable del libro. BalanceAfter = BalanceBefore + Quantity.
// Seq es el orden de creación usado para reproducir el saldo desde cero.
type InventoryMovement struct {
	ID            string
	Seq           int64
	FarmID        string
	ItemID        string
	Date          time.Time
	Kind          string
	Quantity      decimal.Decimal // con signo: positivo entra, negativo sale
	Unit          string
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	SourceType    string
	SourceID      string
	RecordedBy    string
	Notes         string
	CreatedAt     time.Time
}

// ValidMovementKind indica si k es un tipo de movimiento conocido.
func ValidMovementKind(k string) bool {
	switch k {
	case MovementPurchaseIn, MovementUsageOut, MovementAdjustment, MovementTransfer, MovementLoss:
		return true
	}
	return false
}
