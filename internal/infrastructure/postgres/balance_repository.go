package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/dairy-ledger/internal/domain/entity"
	"github.com/jhoicas/dairy-ledger/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

const balanceColumns = `farm_id, item_id, quantity_on_hand, unit, last_restocked_at, last_usage_at,
	version, created_at, updated_at`

// BalanceRepo implementación de BalanceRepository sobre PostgreSQL (usable con pool o tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// Get obtiene el saldo de un insumo; (nil, nil) si todavía no existe la fila.
func (r *BalanceRepo) Get(ctx context.Context, farmID, itemID string) (*entity.InventoryBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM inventory_balances WHERE farm_id = $1 AND item_id = $2`
	b, err := scanBalance(r.q.QueryRow(ctx, query, farmID, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// EnsureForUpdate crea la fila en cero si no existe y la bloquea (SELECT FOR UPDATE).
// ON CONFLICT DO NOTHING hace que dos primeros movimientos concurrentes terminen en la misma fila.
func (r *BalanceRepo) EnsureForUpdate(ctx context.Context, farmID, itemID, unit string) (*entity.InventoryBalance, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_balances (farm_id, item_id, quantity_on_hand, unit, version, created_at, updated_at)
		VALUES ($1, $2, 0, $3, 0, now(), now())
		ON CONFLICT (farm_id, item_id) DO NOTHING`,
		farmID, itemID, unit,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure balance: %w", err)
	}
	query := `SELECT ` + balanceColumns + ` FROM inventory_balances
		WHERE farm_id = $1 AND item_id = $2
		FOR UPDATE`
	b, err := scanBalance(r.q.QueryRow(ctx, query, farmID, itemID))
	if err != nil {
		return nil, fmt.Errorf("get balance for update: %w", err)
	}
	return b, nil
}

// Save escribe el saldo bloqueado por EnsureForUpdate.
func (r *BalanceRepo) Save(ctx context.Context, b *entity.InventoryBalance) error {
	query := `
		UPDATE inventory_balances SET quantity_on_hand = $3, unit = $4, last_restocked_at = $5,
			last_usage_at = $6, version = $7, updated_at = $8
		WHERE farm_id = $1 AND item_id = $2`
	cmd, err := r.q.Exec(ctx, query,
		b.FarmID, b.ItemID, b.QuantityOnHand, b.Unit, b.LastRestockedAt, b.LastUsageAt, b.Version, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save balance: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("save balance: fila %s/%s inexistente", b.FarmID, b.ItemID)
	}
	return nil
}

// ListByFarm lista todos los saldos de la granja.
func (r *BalanceRepo) ListByFarm(ctx context.Context, farmID string) ([]*entity.InventoryBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM inventory_balances WHERE farm_id = $1`
	rows, err := r.q.Query(ctx, query, farmID)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func scanBalance(row pgx.Row) (*entity.InventoryBalance, error) {
	var b entity.InventoryBalance
	if err := row.Scan(
		&b.FarmID, &b.ItemID, &b.QuantityOnHand, &b.Unit, &b.LastRestockedAt, &b.LastUsageAt,
		&b.Version, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}
