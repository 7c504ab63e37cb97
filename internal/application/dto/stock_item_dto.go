package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateStockItemRequest entrada para crear un insumo.
type CreateStockItemRequest struct {
	Name         string           `json:"name"`
	Category     string           `json:"category"` // concentrate (defecto), roughage, supplement, mineral, other
	Unit         string           `json:"unit"`     // kg (defecto), bags, bales, liters, sacks
	QRCode       string           `json:"qr_code"`
	Description  string           `json:"description"`
	ReorderLevel decimal.Decimal  `json:"reorder_level"`
	CostPerUnit  *decimal.Decimal `json:"cost_per_unit"`
}

// UpdateStockItemRequest entrada para actualizar un insumo (el saldo solo cambia vía movimientos).
type UpdateStockItemRequest struct {
	Name         *string          `json:"name"`
	Category     *string          `json:"category"`
	Unit         *string          `json:"unit"`
	QRCode       *string          `json:"qr_code"`
	Description  *string          `json:"description"`
	IsActive     *bool            `json:"is_active"`
	ReorderLevel *decimal.Decimal `json:"reorder_level"`
	CostPerUnit  *decimal.Decimal `json:"cost_per_unit"`
}

// StockItemQuery filtros de GET /api/feeds/items.
type StockItemQuery struct {
	Category string `query:"category"`
	Active   string `query:"is_active"` // "true" | "false" | vacío
	Search   string `query:"search"`
	PageRequest
}

// CurrentStockDTO bloque de stock embebido en la respuesta del insumo.
type CurrentStockDTO struct {
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	IsLow         bool            `json:"is_low"`
	DaysRemaining *int64          `json:"days_remaining"`
}

// StockItemResponse salida de un insumo.
type StockItemResponse struct {
	ID           string           `json:"id"`
	FarmID       string           `json:"farm_id"`
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	Unit         string           `json:"unit"`
	QRCode       string           `json:"qr_code"`
	Description  string           `json:"description"`
	IsActive     bool             `json:"is_active"`
	ReorderLevel decimal.Decimal  `json:"reorder_level"`
	CostPerUnit  *decimal.Decimal `json:"cost_per_unit"`
	CurrentStock *CurrentStockDTO `json:"current_stock"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// StockItemListResponse lista paginada de insumos.
type StockItemListResponse struct {
	Items []StockItemResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
