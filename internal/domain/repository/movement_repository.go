package repository

import (
	"context"
	"time"

	"github.com/jhoicas/dairy-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MovementFilter filtros del historial de movimientos.
type MovementFilter struct {
	FarmID string
	ItemID string
	Kind   string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// MovementRepository puerto de persistencia del libro de movimientos (solo inserción).
type MovementRepository interface {
	// Create agrega el movimiento y asigna ID, Seq y CreatedAt.
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	// List devuelve movimientos del más reciente al más antiguo.
	List(ctx context.Context, filter MovementFilter) ([]*entity.InventoryMovement, error)
	// ListForReplay devuelve todo el historial de un insumo en orden de creación.
	ListForReplay(ctx context.Context, farmID, itemID string) ([]*entity.InventoryMovement, error)
	// SumUsageSince suma la magnitud de los consumos (usage_out) con fecha >= since.
	SumUsageSince(ctx context.Context, farmID, itemID string, since time.Time) (decimal.Decimal, error)
}
