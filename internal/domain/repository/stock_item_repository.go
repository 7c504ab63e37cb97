package repository

import (
	"context"

	"github.com/jhoicas/dairy-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockItemFilter filtros para listar insumos de una granja.
type StockItemFilter struct {
	Category string
	Active   *bool
	Search   string // coincide con nombre o código QR
	Limit    int
	Offset   int
}

// StockItemRepository define el puerto de persistencia para StockItem (DIP).
// Los Get devuelven (nil, nil) cuando no existe el registro.
type StockItemRepository interface {
	Create(ctx context.Context, item *entity.StockItem) error
	GetByID(ctx context.Context, id string) (*entity.StockItem, error)
	// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error)
	GetByFarmAndName(ctx context.Context, farmID, name string) (*entity.StockItem, error)
	GetByFarmAndQR(ctx context.Context, farmID, qrCode string) (*entity.StockItem, error)
	// Update no toca cost_per_unit; el costo solo cambia con UpdateCost.
	Update(ctx context.Context, item *entity.StockItem) error
	// UpdateCost actualiza solo el costo unitario (usado por el libro al registrar compras).
	UpdateCost(ctx context.Context, itemID string, cost decimal.Decimal) error
	ListByFarm(ctx context.Context, farmID string, filter StockItemFilter) ([]*entity.StockItem, error)
}
