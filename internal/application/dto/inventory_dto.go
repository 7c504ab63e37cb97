package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentRequest body para POST /api/inventory/adjustments.
// Type: adjustment (cantidad con signo), loss (cantidad positiva que sale) o transfer (con signo).
type AdjustmentRequest struct {
	ItemID   string          `json:"item_id"`
	Type     string          `json:"type"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit,omitempty"`
	Date     string          `json:"date,omitempty"` // YYYY-MM-DD; vacío = hoy
	Notes    string          `json:"notes,omitempty"`
}

// MovementQuery filtros de GET /api/inventory/movements.
type MovementQuery struct {
	ItemID   string `query:"item_id"`
	Type     string `query:"type"`
	DateFrom string `query:"date_from"`
	DateTo   string `query:"date_to"`
	PageRequest
}

// MovementResponse entrada del historial de inventario.
type MovementResponse struct {
	ID            string          `json:"id"`
	ItemID        string          `json:"item_id"`
	ItemName      string          `json:"item_name,omitempty"`
	Date          string          `json:"date"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	SourceType    string          `json:"source_type,omitempty"`
	SourceID      string          `json:"source_id,omitempty"`
	RecordedBy    string          `json:"recorded_by,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// BalanceResponse saldo de un insumo con sus proyecciones (calculadas en cada consulta).
type BalanceResponse struct {
	ItemID          string          `json:"item_id"`
	ItemName        string          `json:"item_name"`
	Category        string          `json:"category"`
	QuantityOnHand  decimal.Decimal `json:"quantity_on_hand"`
	Unit            string          `json:"unit"`
	ReorderLevel    decimal.Decimal `json:"reorder_level"`
	IsLowStock      bool            `json:"is_low_stock"`
	DaysRemaining   *int64          `json:"days_remaining"` // null = sin consumo en la ventana
	LastRestockedAt *time.Time      `json:"last_restocked_at"`
	LastUsageAt     *time.Time      `json:"last_usage_at"`
}

// CategoryItem insumo dentro del resumen por categoría.
type CategoryItem struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
}

// CategorySummary agrupación del resumen por categoría.
type CategorySummary struct {
	Count int            `json:"count"`
	Items []CategoryItem `json:"items"`
}

// InventorySummaryResponse resumen del inventario de la granja.
type InventorySummaryResponse struct {
	TotalItems    int                        `json:"total_items"`
	LowStockCount int                        `json:"low_stock_count"`
	TotalValue    decimal.Decimal            `json:"total_value"` // insumos sin costo suman 0
	ByCategory    map[string]CategorySummary `json:"by_category"`
}

// BalanceVerificationResponse resultado de reproducir el historial de un insumo.
type BalanceVerificationResponse struct {
	ItemID     string          `json:"item_id"`
	Stored     decimal.Decimal `json:"stored"`
	Replayed   decimal.Decimal `json:"replayed"`
	Movements  int             `json:"movements"`
	Consistent bool            `json:"consistent"`
}

// ReplenishmentSuggestionDTO sugerencia de compra para un insumo con stock bajo.
type ReplenishmentSuggestionDTO struct {
	ItemID             string           `json:"item_id"`
	ItemName           string           `json:"item_name"`
	Category           string           `json:"category"`
	Unit               string           `json:"unit"`
	CurrentStock       decimal.Decimal  `json:"current_stock"`
	ReorderLevel       decimal.Decimal  `json:"reorder_level"`
	IdealStock         decimal.Decimal  `json:"ideal_stock"`          // ReorderLevel * 1.5
	SuggestedOrderQty  decimal.Decimal  `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           *decimal.Decimal `json:"unit_cost"`            // nulo si el insumo no tiene costo
	EstimatedOrderCost *decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	DaysRemaining      *int64           `json:"days_remaining"`
	Priority           int              `json:"priority"` // 1 = más urgente
}
