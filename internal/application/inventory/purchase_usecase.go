package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/dairy-ledger/internal/application/dto"
	"github.com/jhoicas/dairy-ledger/internal/domain"
	"github.com/jhoicas/dairy-ledger/internal/domain/entity"
	"github.com/jhoicas/dairy-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// PurchaseUseCase registra compras de alimento. Cada compra dispara exactamente un
// record_purchase dentro de la misma transacción en que se inserta.
type PurchaseUseCase struct {
	txRunner     TxRunner
	ledger       *Ledger
	purchaseRepo repository.PurchaseRepository
}

// NewPurchaseUseCase construye el caso de uso. purchaseRepo se usa para lecturas fuera de tx.
func NewPurchaseUseCase(txRunner TxRunner, ledger *Ledger, purchaseRepo repository.PurchaseRepository) *PurchaseUseCase {
	return &PurchaseUseCase{txRunner: txRunner, ledger: ledger, purchaseRepo: purchaseRepo}
}

// Create valida la compra, la persiste y la asienta en el libro. TotalCost por defecto es
// quantity * unit_price (cero si no hay precio).
func (uc *PurchaseUseCase) Create(ctx context.Context, farmID, userID string, in dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if in.ItemID == "" {
		return nil, fmt.Errorf("%w: item_id es obligatorio", domain.ErrInvalidInput)
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if err := validateScale(in.Quantity); err != nil {
		return nil, err
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit_price no puede ser negativo", domain.ErrInvalidInput)
	}
	if in.TotalCost != nil && in.TotalCost.IsNegative() {
		return nil, fmt.Errorf("%w: total_cost no puede ser negativo", domain.ErrInvalidInput)
	}
	now := uc.ledger.now()
	date, err := parseDate(in.Date, now)
	if err != nil {
		return nil, err
	}

	var (
		purchase *entity.FeedPurchase
		mov      *entity.InventoryMovement
	)
	err = uc.txRunner.RunFeed(ctx, func(
		movRepo repository.MovementRepository,
		balanceRepo repository.BalanceRepository,
		itemRepo repository.StockItemRepository,
		purchaseRepo repository.PurchaseRepository,
		_ repository.UsageRepository,
	) error {
		item, err := uc.ledger.loadItem(ctx, itemRepo, farmID, in.ItemID)
		if err != nil {
			return err
		}
		purchase = newPurchase(farmID, userID, item, in, date, now)
		if err := purchaseRepo.Create(ctx, purchase); err != nil {
			return err
		}
		mov, err = uc.ledger.RecordPurchaseInTx(ctx, movRepo, balanceRepo, itemRepo, MovementInput{
			FarmID:   farmID,
			ItemID:   item.ID,
			Date:     purchase.Date,
			Quantity: purchase.Quantity,
			Unit:     purchase.Unit,
			Actor:    userID,
			Source:   entity.SourceRef{Type: entity.SourceFeedPurchase, ID: purchase.ID},
			Notes:    purchase.Notes,
			UnitCost: purchase.UnitPrice,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.committed(ctx, nil, mov)
	out := toPurchaseResponse(purchase)
	out.Movement = ToMovementResponse(mov)
	return out, nil
}

// List lista compras de la granja con filtros de insumo y rango de fechas.
func (uc *PurchaseUseCase) List(ctx context.Context, farmID string, q dto.FeedEventQuery) (*dto.PurchaseListResponse, error) {
	if err := validateItemFilter(q.ItemID); err != nil {
		return nil, err
	}
	from, to, err := parseRange(q.DateFrom, q.DateTo)
	if err != nil {
		return nil, err
	}
	q.DefaultPage()
	list, err := uc.purchaseRepo.List(ctx, repository.FeedEventFilter{
		FarmID: farmID, ItemID: q.ItemID, From: from, To: to, Limit: q.Limit, Offset: q.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPurchaseResponse(p))
	}
	return &dto.PurchaseListResponse{Items: items, Page: dto.PageResponse{Limit: q.Limit, Offset: q.Offset}}, nil
}

func newPurchase(farmID, userID string, item *entity.StockItem, in dto.CreatePurchaseRequest, date, now time.Time) *entity.FeedPurchase {
	unit := in.Unit
	if unit == "" {
		unit = item.Unit
	}
	p := &entity.FeedPurchase{
		ID:         uuid.New().String(),
		FarmID:     farmID,
		ItemID:     item.ID,
		Date:       truncateDay(date),
		Quantity:   in.Quantity,
		Unit:       unit,
		TotalCost:  decimal.Zero,
		Supplier:   in.Supplier,
		Notes:      in.Notes,
		RecordedBy: userID,
		CreatedAt:  now,
	}
	if in.UnitPrice != nil {
		p.UnitPrice = decimal.NewNullDecimal(*in.UnitPrice)
		p.TotalCost = in.Quantity.Mul(*in.UnitPrice).Round(2)
	}
	if in.TotalCost != nil {
		p.TotalCost = *in.TotalCost
	}
	return p
}

func toPurchaseResponse(p *entity.FeedPurchase) *dto.PurchaseResponse {
	out := &dto.PurchaseResponse{
		ID:         p.ID,
		ItemID:     p.ItemID,
		Date:       p.Date.Format(dateLayout),
		Quantity:   p.Quantity,
		Unit:       p.Unit,
		TotalCost:  p.TotalCost,
		Supplier:   p.Supplier,
		Notes:      p.Notes,
		RecordedBy: p.RecordedBy,
		CreatedAt:  p.CreatedAt,
	}
	if p.UnitPrice.Valid {
		price := p.UnitPrice.Decimal
		out.UnitPrice = &price
	}
	return out
}
