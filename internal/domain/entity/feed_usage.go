package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de captura de un consumo.
const (
	ScanMethodManual = "manual"
	ScanMethodQR     = "qr_scan"
)

// FeedUsage registro de consumo de un insumo, opcionalmente por vaca. Inmutable una vez creado.
type FeedUsage struct {
	ID         string
	FarmID     string
	ItemID     string
	Date       time.Time
	Quantity   decimal.Decimal
	Unit       string
	CowID      string // vacío si no se registra por animal
	ScanMethod string
	Notes      string
	LoggedBy   string
	CreatedAt  time.Time
}
