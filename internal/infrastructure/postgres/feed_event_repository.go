package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/dairy-ledger/internal/domain/entity"
	"github.com/jhoicas/dairy-ledger/internal/domain/repository"
)

var (
	_ repository.PurchaseRepository = (*PurchaseRepo)(nil)
	_ repository.UsageRepository    = (*UsageRepo)(nil)
)

// PurchaseRepo compras de alimento sobre PostgreSQL (usable con pool o tx).
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

// Create persiste la compra.
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.FeedPurchase) error {
	query := `
		INSERT INTO feed_purchases (id, farm_id, item_id, date, quantity, unit, unit_price, total_cost,
			supplier, notes, recorded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.FarmID, p.ItemID, p.Date, p.Quantity, p.Unit, p.UnitPrice, p.TotalCost,
		p.Supplier, p.Notes, nullIfEmpty(p.RecordedBy), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert feed purchase: %w", err)
	}
	return nil
}

// List lista compras de la granja, de la más reciente a la más antigua.
func (r *PurchaseRepo) List(ctx context.Context, filter repository.FeedEventFilter) ([]*entity.FeedPurchase, error) {
	b := feedEventWhere(filter, false)
	query := `
		SELECT id, farm_id, item_id, date, quantity, unit, unit_price, total_cost, supplier, notes,
			recorded_by, created_at
		FROM feed_purchases` + b.where() + ` ORDER BY date DESC, created_at DESC`
	if filter.Limit > 0 {
		query += b.page(filter.Limit, filter.Offset)
	}
	rows, err := r.q.Query(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("list feed purchases: %w", err)
	}
	defer rows.Close()
	var list []*entity.FeedPurchase
	for rows.Next() {
		var (
			p          entity.FeedPurchase
			recordedBy *string
		)
		if err := rows.Scan(&p.ID, &p.FarmID, &p.ItemID, &p.Date, &p.Quantity, &p.Unit, &p.UnitPrice,
			&p.TotalCost, &p.Supplier, &p.Notes, &recordedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feed purchase: %w", err)
		}
		p.RecordedBy = fromNull(recordedBy)
		list = append(list, &p)
	}
	return list, rows.Err()
}

// UsageRepo consumos de alimento sobre PostgreSQL (usable con pool o tx).
type UsageRepo struct {
	q Querier
}

// NewUsageRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUsageRepository(q Querier) *UsageRepo {
	return &UsageRepo{q: q}
}

// Create persiste el consumo.
func (r *UsageRepo) Create(ctx context.Context, u *entity.FeedUsage) error {
	query := `
		INSERT INTO feed_usage_logs (id, farm_id, item_id, date, quantity, unit, cow_id, scan_method,
			notes, logged_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.FarmID, u.ItemID, u.Date, u.Quantity, u.Unit, nullIfEmpty(u.CowID), u.ScanMethod,
		u.Notes, nullIfEmpty(u.LoggedBy), u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert feed usage: %w", err)
	}
	return nil
}

// List lista consumos de la granja, del más reciente al más antiguo.
func (r *UsageRepo) List(ctx context.Context, filter repository.FeedEventFilter) ([]*entity.FeedUsage, error) {
	b := feedEventWhere(filter, true)
	query := `
		SELECT id, farm_id, item_id, date, quantity, unit, cow_id, scan_method, notes, logged_by, created_at
		FROM feed_usage_logs` + b.where() + ` ORDER BY date DESC, created_at DESC`
	if filter.Limit > 0 {
		query += b.page(filter.Limit, filter.Offset)
	}
	rows, err := r.q.Query(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("list feed usage: %w", err)
	}
	defer rows.Close()
	var list []*entity.FeedUsage
	for rows.Next() {
		var (
			u               entity.FeedUsage
			cowID, loggedBy *string
		)
		if err := rows.Scan(&u.ID, &u.FarmID, &u.ItemID, &u.Date, &u.Quantity, &u.Unit, &cowID,
			&u.ScanMethod, &u.Notes, &loggedBy, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feed usage: %w", err)
		}
		u.CowID = fromNull(cowID)
		u.LoggedBy = fromNull(loggedBy)
		list = append(list, &u)
	}
	return list, rows.Err()
}

func feedEventWhere(filter repository.FeedEventFilter, withCow bool) *filterBuilder {
	b := &filterBuilder{}
	b.add("farm_id = $%d", filter.FarmID)
	if filter.ItemID != "" {
		b.add("item_id = $%d", filter.ItemID)
	}
	if withCow && filter.CowID != "" {
		b.add("cow_id = $%d", filter.CowID)
	}
	if filter.From != nil {
		b.add("date >= $%d", *filter.From)
	}
	if filter.To != nil {
		b.add("date <= $%d", *filter.To)
	}
	return b
}
