package repository

import (
	"context"

	"github.com/jhoicas/dairy-ledger/internal/domain/entity"
)

// BalanceRepository define el puerto para consultar/actualizar el saldo por granja+insumo.
// EnsureForUpdate y Save solo tienen sentido dentro de una transacción.
type BalanceRepository interface {
	// Get devuelve el saldo o (nil, nil) si el insumo no tiene movimientos todavía.
	Get(ctx context.Context, farmID, itemID string) (*entity.InventoryBalance, error)
	// EnsureForUpdate crea la fila en cero si no existe (upsert idempotente) y la bloquea
	// hasta el fin de la transacción (SELECT FOR UPDATE).
	EnsureForUpdate(ctx context.Context, farmID, itemID, unit string) (*entity.InventoryBalance, error)
	Save(ctx context.Context, balance *entity.InventoryBalance) error
	ListByFarm(ctx context.Context, farmID string) ([]*entity.InventoryBalance, error)
}
