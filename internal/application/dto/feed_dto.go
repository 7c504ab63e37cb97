package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePurchaseRequest body para POST /api/feeds/purchases.
type CreatePurchaseRequest struct {
	ItemID    string           `json:"item_id"`
	Date      string           `json:"date,omitempty"` // YYYY-MM-DD; vacío = hoy
	Quantity  decimal.Decimal  `json:"quantity"`
	Unit      string           `json:"unit,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	TotalCost *decimal.Decimal `json:"total_cost,omitempty"` // vacío = quantity * unit_price
	Supplier  string           `json:"supplier,omitempty"`
	Notes     string           `json:"notes,omitempty"`
}

// PurchaseResponse compra registrada y su movimiento en el libro.
type PurchaseResponse struct {
	ID         string            `json:"id"`
	ItemID     string            `json:"item_id"`
	Date       string            `json:"date"`
	Quantity   decimal.Decimal   `json:"quantity"`
	Unit       string            `json:"unit"`
	UnitPrice  *decimal.Decimal  `json:"unit_price"`
	TotalCost  decimal.Decimal   `json:"total_cost"`
	Supplier   string            `json:"supplier"`
	Notes      string            `json:"notes"`
	RecordedBy string            `json:"recorded_by"`
	CreatedAt  time.Time         `json:"created_at"`
	Movement   *MovementResponse `json:"movement,omitempty"`
}

// CreateUsageRequest body para POST /api/feeds/usage.
type CreateUsageRequest struct {
	ItemID     string          `json:"item_id"`
	Date       string          `json:"date,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit,omitempty"`
	CowID      string          `json:"cow_id,omitempty"`
	ScanMethod string          `json:"scan_method,omitempty"` // manual (defecto) | qr_scan
	Notes      string          `json:"notes,omitempty"`
}

// QRScanRequest body para POST /api/feeds/scan.
type QRScanRequest struct {
	QRCode   string          `json:"qr_code"`
	Quantity decimal.Decimal `json:"quantity"`
	Date     string          `json:"date,omitempty"`
	CowID    string          `json:"cow_id,omitempty"`
	Notes    string          `json:"notes,omitempty"`
}

// UsageResponse consumo registrado y su movimiento en el libro.
type UsageResponse struct {
	ID         string            `json:"id"`
	ItemID     string            `json:"item_id"`
	Date       string            `json:"date"`
	Quantity   decimal.Decimal   `json:"quantity"`
	Unit       string            `json:"unit"`
	CowID      string            `json:"cow_id,omitempty"`
	ScanMethod string            `json:"scan_method"`
	Notes      string            `json:"notes"`
	LoggedBy   string            `json:"logged_by"`
	CreatedAt  time.Time         `json:"created_at"`
	Movement   *MovementResponse `json:"movement,omitempty"`
}

// FeedEventQuery filtros de listados de compras y consumos.
type FeedEventQuery struct {
	ItemID   string `query:"item_id"`
	CowID    string `query:"cow_id"`
	DateFrom string `query:"date_from"`
	DateTo   string `query:"date_to"`
	PageRequest
}

// PurchaseListResponse lista paginada de compras.
type PurchaseListResponse struct {
	Items []PurchaseResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// UsageListResponse lista paginada de consumos.
type UsageListResponse struct {
	Items []UsageResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
