package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/dairy-ledger/internal/application/dto"
	"github.com/jhoicas/dairy-ledger/internal/application/inventory"
	"github.com/jhoicas/dairy-ledger/internal/domain"
	"github.com/jhoicas/dairy-ledger/internal/domain/entity"
	"github.com/jhoicas/dairy-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// StockItemUseCase casos de uso CRUD para insumos. El saldo solo cambia vía el libro.
type StockItemUseCase struct {
	repo   repository.StockItemRepository
	ledger *inventory.Ledger
	now    func() time.Time
}

// NewStockItemUseCase construye el caso de uso. ledger aporta el bloque current_stock.
func NewStockItemUseCase(repo repository.StockItemRepository, ledger *inventory.Ledger) *StockItemUseCase {
	return &StockItemUseCase{repo: repo, ledger: ledger, now: time.Now}
}

// Create crea un insumo. Nombre y QR son únicos por granja.
func (uc *StockItemUseCase) Create(ctx context.Context, farmID string, in dto.CreateStockItemRequest) (*dto.StockItemResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.QRCode = strings.TrimSpace(in.QRCode)
	if farmID == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: farm_id y name son obligatorios", domain.ErrInvalidInput)
	}
	if in.Category == "" {
		in.Category = entity.CategoryConcentrate
	}
	if in.Unit == "" {
		in.Unit = entity.UnitKg
	}
	if err := validateItemFields(in.Category, in.Unit, in.ReorderLevel, in.CostPerUnit); err != nil {
		return nil, err
	}
	if err := uc.ensureUnique(ctx, farmID, "", in.Name, in.QRCode); err != nil {
		return nil, err
	}

	now := uc.now()
	item := &entity.StockItem{
		ID:           uuid.New().String(),
		FarmID:       farmID,
		Name:         in.Name,
		Category:     in.Category,
		Unit:         in.Unit,
		QRCode:       in.QRCode,
		Description:  in.Description,
		IsActive:     true,
		ReorderLevel: in.ReorderLevel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.CostPerUnit != nil {
		item.CostPerUnit = decimal.NewNullDecimal(*in.CostPerUnit)
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return uc.toResponse(ctx, item)
}

// GetByID obtiene un insumo de la granja con su stock actual.
func (uc *StockItemUseCase) GetByID(ctx context.Context, farmID, id string) (*dto.StockItemResponse, error) {
	item, err := uc.get(ctx, farmID, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(ctx, item)
}

// GetByQR resuelve un insumo por su código QR.
func (uc *StockItemUseCase) GetByQR(ctx context.Context, farmID, code string) (*dto.StockItemResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: code es obligatorio", domain.ErrInvalidInput)
	}
	item, err := uc.repo.GetByFarmAndQR(ctx, farmID, code)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: no hay insumo con QR %q", domain.ErrNotFound, code)
	}
	return uc.toResponse(ctx, item)
}

// Update actualiza los datos del insumo. La unidad no puede cambiar si ya hay movimientos.
func (uc *StockItemUseCase) Update(ctx context.Context, farmID, id string, in dto.UpdateStockItemRequest) (*dto.StockItemResponse, error) {
	item, err := uc.get(ctx, farmID, id)
	if err != nil {
		return nil, err
	}
	name, qr := item.Name, item.QRCode
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name no puede ser vacío", domain.ErrInvalidInput)
		}
	}
	if in.QRCode != nil {
		qr = strings.TrimSpace(*in.QRCode)
	}
	if name != item.Name || qr != item.QRCode {
		if err := uc.ensureUnique(ctx, farmID, item.ID, name, qr); err != nil {
			return nil, err
		}
	}
	item.Name, item.QRCode = name, qr

	if in.Category != nil {
		item.Category = *in.Category
	}
	if in.Unit != nil && *in.Unit != item.Unit {
		bal, err := uc.ledger.CurrentBalance(ctx, farmID, item.ID)
		if err != nil {
			return nil, err
		}
		if bal.Version > 0 {
			return nil, fmt.Errorf("%w: el insumo ya tiene movimientos en %s", domain.ErrInvalidInput, item.Unit)
		}
		item.Unit = *in.Unit
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.IsActive != nil {
		item.IsActive = *in.IsActive
	}
	if in.ReorderLevel != nil {
		item.ReorderLevel = *in.ReorderLevel
	}
	if in.CostPerUnit != nil {
		item.CostPerUnit = decimal.NewNullDecimal(*in.CostPerUnit)
	}
	var cost *decimal.Decimal
	if item.CostPerUnit.Valid {
		cost = &item.CostPerUnit.Decimal
	}
	if err := validateItemFields(item.Category, item.Unit, item.ReorderLevel, cost); err != nil {
		return nil, err
	}

	item.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	// El costo solo se escribe si viene en la petición; las compras lo recalculan bajo bloqueo.
	if in.CostPerUnit != nil {
		if err := uc.repo.UpdateCost(ctx, item.ID, *in.CostPerUnit); err != nil {
			return nil, err
		}
	}
	return uc.toResponse(ctx, item)
}

// List lista insumos de la granja con filtros y paginación.
func (uc *StockItemUseCase) List(ctx context.Context, farmID string, q dto.StockItemQuery) (*dto.StockItemListResponse, error) {
	if q.Category != "" && !entity.ValidCategory(q.Category) {
		return nil, fmt.Errorf("%w: categoría %q", domain.ErrInvalidInput, q.Category)
	}
	filter := repository.StockItemFilter{Category: q.Category, Search: strings.TrimSpace(q.Search)}
	switch q.Active {
	case "":
	case "true", "false":
		active := q.Active == "true"
		filter.Active = &active
	default:
		return nil, fmt.Errorf("%w: is_active debe ser true o false", domain.ErrInvalidInput)
	}
	q.DefaultPage()
	filter.Limit, filter.Offset = q.Limit, q.Offset

	list, err := uc.repo.ListByFarm(ctx, farmID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockItemResponse, 0, len(list))
	for _, it := range list {
		resp, err := uc.toResponse(ctx, it)
		if err != nil {
			return nil, err
		}
		items = append(items, *resp)
	}
	return &dto.StockItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}

func (uc *StockItemUseCase) get(ctx context.Context, farmID, id string) (*entity.StockItem, error) {
	if !entity.ValidID(id) {
		return nil, fmt.Errorf("%w: insumo %s", domain.ErrNotFound, id)
	}
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.FarmID != farmID {
		return nil, fmt.Errorf("%w: insumo %s", domain.ErrNotFound, id)
	}
	return item, nil
}

// ensureUnique verifica nombre y QR únicos en la granja, ignorando selfID.
func (uc *StockItemUseCase) ensureUnique(ctx context.Context, farmID, selfID, name, qr string) error {
	existing, err := uc.repo.GetByFarmAndName(ctx, farmID, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return fmt.Errorf("%w: ya existe un insumo %q", domain.ErrDuplicate, name)
	}
	if qr == "" {
		return nil
	}
	existing, err = uc.repo.GetByFarmAndQR(ctx, farmID, qr)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return fmt.Errorf("%w: el QR %q ya está asignado", domain.ErrDuplicate, qr)
	}
	return nil
}

func validateItemFields(category, unit string, reorder decimal.Decimal, cost *decimal.Decimal) error {
	if !entity.ValidCategory(category) {
		return fmt.Errorf("%w: categoría %q", domain.ErrInvalidInput, category)
	}
	if !entity.ValidUnit(unit) {
		return fmt.Errorf("%w: unidad %q", domain.ErrInvalidInput, unit)
	}
	if reorder.IsNegative() {
		return fmt.Errorf("%w: reorder_level no puede ser negativo", domain.ErrInvalidInput)
	}
	if !entity.ValidQuantityScale(reorder) {
		return fmt.Errorf("%w: reorder_level admite hasta %d decimales", domain.ErrInvalidInput, entity.QuantityScale)
	}
	if cost != nil && cost.IsNegative() {
		return fmt.Errorf("%w: cost_per_unit no puede ser negativo", domain.ErrInvalidInput)
	}
	return nil
}

func (uc *StockItemUseCase) toResponse(ctx context.Context, it *entity.StockItem) (*dto.StockItemResponse, error) {
	stock, err := uc.ledger.CurrentStock(ctx, it)
	if err != nil {
		return nil, err
	}
	out := &dto.StockItemResponse{
		ID:           it.ID,
		FarmID:       it.FarmID,
		Name:         it.Name,
		Category:     it.Category,
		Unit:         it.Unit,
		QRCode:       it.QRCode,
		Description:  it.Description,
		IsActive:     it.IsActive,
		ReorderLevel: it.ReorderLevel,
		CurrentStock: stock,
		CreatedAt:    it.CreatedAt,
		UpdatedAt:    it.UpdatedAt,
	}
	if it.CostPerUnit.Valid {
		cost := it.CostPerUnit.Decimal
		out.CostPerUnit = &cost
	}
	return out, nil
}
