package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/dairy-ledger/internal/domain/entity"
	"github.com/jhoicas/dairy-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, seq, farm_id, item_id, date, type, quantity, unit, balance_before, balance_after,
	source_type, source_id, recorded_by, notes, created_at`

// MovementRepo implementación del libro de movimientos sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create inserta el movimiento; la base asigna seq.
func (r *MovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO inventory_movements (id, farm_id, item_id, date, type, quantity, unit, balance_before,
			balance_after, source_type, source_id, recorded_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.FarmID, m.ItemID, m.Date, m.Kind, m.Quantity, m.Unit, m.BalanceBefore, m.BalanceAfter,
		m.SourceType, nullIfEmpty(m.SourceID), nullIfEmpty(m.RecordedBy), m.Notes, m.CreatedAt,
	).Scan(&m.Seq)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// List devuelve movimientos filtrados, del más reciente al más antiguo.
func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	b := &filterBuilder{}
	b.add("farm_id = $%d", filter.FarmID)
	if filter.ItemID != "" {
		b.add("item_id = $%d", filter.ItemID)
	}
	if filter.Kind != "" {
		b.add("type = $%d", filter.Kind)
	}
	if filter.From != nil {
		b.add("date >= $%d", *filter.From)
	}
	if filter.To != nil {
		b.add("date <= $%d", *filter.To)
	}
	query := `SELECT ` + movementColumns + ` FROM inventory_movements` + b.where() + ` ORDER BY seq DESC`
	if filter.Limit > 0 {
		query += b.page(filter.Limit, filter.Offset)
	}
	return r.query(ctx, "list movements", query, b.args...)
}

// ListForReplay devuelve el historial completo del insumo en orden de creación.
func (r *MovementRepo) ListForReplay(ctx context.Context, farmID, itemID string) ([]*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements
		WHERE farm_id = $1 AND item_id = $2 ORDER BY seq`
	return r.query(ctx, "list movements for replay", query, farmID, itemID)
}

// SumUsageSince suma la magnitud de los usage_out con fecha >= since.
func (r *MovementRepo) SumUsageSince(ctx context.Context, farmID, itemID string, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(-quantity), 0) FROM inventory_movements
		WHERE farm_id = $1 AND item_id = $2 AND type = 'usage_out' AND date >= $3`,
		farmID, itemID, since,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum usage: %w", err)
	}
	return total, nil
}

func (r *MovementRepo) query(ctx context.Context, op, query string, args ...any) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.InventoryMovement, error) {
	var (
		m                    entity.InventoryMovement
		sourceID, recordedBy *string
	)
	if err := row.Scan(
		&m.ID, &m.Seq, &m.FarmID, &m.ItemID, &m.Date, &m.Kind, &m.Quantity, &m.Unit,
		&m.BalanceBefore, &m.BalanceAfter, &m.SourceType, &sourceID, &recordedBy, &m.Notes, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	m.SourceID = fromNull(sourceID)
	m.RecordedBy = fromNull(recordedBy)
	return &m, nil
}
