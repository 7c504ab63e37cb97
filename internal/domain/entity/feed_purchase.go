package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeedPurchase compra o reabastecimiento de un insumo. Inmutable una vez creada.
type FeedPurchase struct {
	ID         string
	FarmID     string
	ItemID     string
	Date       time.Time
	Quantity   decimal.Decimal
	Unit       string
	UnitPrice  decimal.NullDecimal
	TotalCost  decimal.Decimal
	Supplier   string
	Notes      string
	RecordedBy string
	CreatedAt  time.Time
}
