package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/dairy-ledger/internal/domain"
	"github.com/jhoicas/dairy-ledger/internal/domain/entity"
	"github.com/jhoicas/dairy-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

const stockItemColumns = `id, farm_id, name, category, unit, qr_code, description, is_active,
	reorder_level, cost_per_unit, created_at, updated_at`

// StockItemRepo implementación del puerto StockItemRepository sobre PostgreSQL (usable con pool o tx).
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

// Create persiste un nuevo insumo. Nombre o QR repetidos en la granja devuelven ErrDuplicate.
func (r *StockItemRepo) Create(ctx context.Context, item *entity.StockItem) error {
	query := `
		INSERT INTO stock_items (` + stockItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.FarmID, item.Name, item.Category, item.Unit, nullIfEmpty(item.QRCode),
		item.Description, item.IsActive, item.ReorderLevel, item.CostPerUnit, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock item: %w", err)
	}
	return nil
}

// GetByID obtiene un insumo por ID.
func (r *StockItemRepo) GetByID(ctx context.Context, id string) (*entity.StockItem, error) {
	return r.getOne(ctx, "get stock item", `SELECT `+stockItemColumns+` FROM stock_items WHERE id = $1`, id)
}

// GetForUpdate obtiene el insumo bloqueando su fila (SELECT ... FOR UPDATE). Solo tiene efecto dentro de una tx.
func (r *StockItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error) {
	return r.getOne(ctx, "lock stock item", `SELECT `+stockItemColumns+` FROM stock_items WHERE id = $1 FOR UPDATE`, id)
}

// GetByFarmAndName obtiene un insumo por granja y nombre exacto.
func (r *StockItemRepo) GetByFarmAndName(ctx context.Context, farmID, name string) (*entity.StockItem, error) {
	return r.getOne(ctx, "get stock item by name",
		`SELECT `+stockItemColumns+` FROM stock_items WHERE farm_id = $1 AND name = $2`, farmID, name)
}

// GetByFarmAndQR obtiene un insumo por granja y código QR.
func (r *StockItemRepo) GetByFarmAndQR(ctx context.Context, farmID, qrCode string) (*entity.StockItem, error) {
	return r.getOne(ctx, "get stock item by qr",
		`SELECT `+stockItemColumns+` FROM stock_items WHERE farm_id = $1 AND qr_code = $2`, farmID, qrCode)
}

// Update actualiza los datos del insumo. El saldo vive en inventory_balances y el costo
// unitario lo mantiene UpdateCost.
func (r *StockItemRepo) Update(ctx context.Context, item *entity.StockItem) error {
	query := `
		UPDATE stock_items SET name = $2, category = $3, unit = $4, qr_code = $5, description = $6,
			is_active = $7, reorder_level = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.Category, item.Unit, nullIfEmpty(item.QRCode), item.Description,
		item.IsActive, item.ReorderLevel, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update stock item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateCost actualiza solo el costo unitario (usado por el libro al registrar compras).
func (r *StockItemRepo) UpdateCost(ctx context.Context, itemID string, cost decimal.Decimal) error {
	_, err := r.q.Exec(ctx,
		`UPDATE stock_items SET cost_per_unit = $2, updated_at = now() WHERE id = $1`,
		itemID, cost,
	)
	if err != nil {
		return fmt.Errorf("update stock item cost: %w", err)
	}
	return nil
}

// ListByFarm lista insumos de la granja ordenados por nombre.
func (r *StockItemRepo) ListByFarm(ctx context.Context, farmID string, filter repository.StockItemFilter) ([]*entity.StockItem, error) {
	b := &filterBuilder{}
	b.add("farm_id = $%d", farmID)
	if filter.Category != "" {
		b.add("category = $%d", filter.Category)
	}
	if filter.Active != nil {
		b.add("is_active = $%d", *filter.Active)
	}
	if filter.Search != "" {
		b.add("(name ILIKE '%%' || $%[1]d || '%%' OR qr_code = $%[1]d)", filter.Search)
	}
	query := `SELECT ` + stockItemColumns + ` FROM stock_items` + b.where() + ` ORDER BY name`
	if filter.Limit > 0 {
		query += b.page(filter.Limit, filter.Offset)
	}

	rows, err := r.q.Query(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockItem
	for rows.Next() {
		it, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func (r *StockItemRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.StockItem, error) {
	it, err := scanStockItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return it, nil
}

func scanStockItem(row pgx.Row) (*entity.StockItem, error) {
	var (
		it entity.StockItem
		qr *string
	)
	if err := row.Scan(
		&it.ID, &it.FarmID, &it.Name, &it.Category, &it.Unit, &qr, &it.Description, &it.IsActive,
		&it.ReorderLevel, &it.CostPerUnit, &it.CreatedAt, &it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	it.QRCode = fromNull(qr)
	return &it, nil
}
