package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/dairy-ledger/internal/application/dto"
	"github.com/jhoicas/dairy-ledger/internal/domain"
	"github.com/jhoicas/dairy-ledger/internal/domain/entity"
	"github.com/jhoicas/dairy-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// UsageUseCase registra consumos de alimento, manuales o por escaneo de QR.
// Cada consumo dispara exactamente un record_usage en la misma transacción.
type UsageUseCase struct {
	txRunner  TxRunner
	ledger    *Ledger
	usageRepo repository.UsageRepository
}

// NewUsageUseCase construye el caso de uso.
func NewUsageUseCase(txRunner TxRunner, ledger *Ledger, usageRepo repository.UsageRepository) *UsageUseCase {
	return &UsageUseCase{txRunner: txRunner, ledger: ledger, usageRepo: usageRepo}
}

// Create registra un consumo manual (o qr_scan si el cliente ya resolvió el insumo).
func (uc *UsageUseCase) Create(ctx context.Context, farmID, userID string, in dto.CreateUsageRequest) (*dto.UsageResponse, error) {
	if in.ItemID == "" {
		return nil, fmt.Errorf("%w: item_id es obligatorio", domain.ErrInvalidInput)
	}
	method := in.ScanMethod
	if method == "" {
		method = entity.ScanMethodManual
	}
	if method != entity.ScanMethodManual && method != entity.ScanMethodQR {
		return nil, fmt.Errorf("%w: scan_method %q", domain.ErrInvalidInput, in.ScanMethod)
	}
	return uc.record(ctx, farmID, userID, usageDraft{
		itemID:   in.ItemID,
		date:     in.Date,
		quantity: in.Quantity,
		unit:     in.Unit,
		cowID:    in.CowID,
		method:   method,
		notes:    in.Notes,
	})
}

// ScanQR resuelve el insumo por su código QR dentro de la granja y registra el consumo
// en la unidad del insumo.
func (uc *UsageUseCase) ScanQR(ctx context.Context, farmID, userID string, in dto.QRScanRequest) (*dto.UsageResponse, error) {
	code := strings.TrimSpace(in.QRCode)
	if code == "" {
		return nil, fmt.Errorf("%w: qr_code es obligatorio", domain.ErrInvalidInput)
	}
	return uc.record(ctx, farmID, userID, usageDraft{
		qrCode:   code,
		date:     in.Date,
		quantity: in.Quantity,
		cowID:    in.CowID,
		method:   entity.ScanMethodQR,
		notes:    in.Notes,
	})
}

// Today lista los consumos registrados hoy en la granja.
func (uc *UsageUseCase) Today(ctx context.Context, farmID string) (*dto.UsageListResponse, error) {
	today := truncateDay(uc.ledger.now())
	q := dto.FeedEventQuery{PageRequest: dto.PageRequest{Limit: 200}}
	q.DefaultPage()
	list, err := uc.usageRepo.List(ctx, repository.FeedEventFilter{
		FarmID: farmID, From: &today, To: &today, Limit: q.Limit,
	})
	if err != nil {
		return nil, err
	}
	return toUsageList(list, q.PageRequest), nil
}

// List lista consumos con filtros de insumo, vaca y rango de fechas.
func (uc *UsageUseCase) List(ctx context.Context, farmID string, q dto.FeedEventQuery) (*dto.UsageListResponse, error) {
	if err := validateItemFilter(q.ItemID); err != nil {
		return nil, err
	}
	from, to, err := parseRange(q.DateFrom, q.DateTo)
	if err != nil {
		return nil, err
	}
	q.DefaultPage()
	list, err := uc.usageRepo.List(ctx, repository.FeedEventFilter{
		FarmID: farmID, ItemID: q.ItemID, CowID: q.CowID, From: from, To: to, Limit: q.Limit, Offset: q.Offset,
	})
	if err != nil {
		return nil, err
	}
	return toUsageList(list, q.PageRequest), nil
}

type usageDraft struct {
	itemID   string
	qrCode   string
	date     string
	quantity decimal.Decimal
	unit     string
	cowID    string
	method   string
	notes    string
}

func (uc *UsageUseCase) record(ctx context.Context, farmID, userID string, d usageDraft) (*dto.UsageResponse, error) {
	if farmID == "" {
		return nil, fmt.Errorf("%w: farm_id es obligatorio", domain.ErrInvalidInput)
	}
	if !d.quantity.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if err := validateScale(d.quantity); err != nil {
		return nil, err
	}
	now := uc.ledger.now()
	date, err := parseDate(d.date, now)
	if err != nil {
		return nil, err
	}

	var (
		usage *entity.FeedUsage
		item  *entity.StockItem
		mov   *entity.InventoryMovement
	)
	err = uc.txRunner.RunFeed(ctx, func(
		movRepo repository.MovementRepository,
		balanceRepo repository.BalanceRepository,
		itemRepo repository.StockItemRepository,
		_ repository.PurchaseRepository,
		usageRepo repository.UsageRepository,
	) error {
		var err error
		if d.qrCode != "" {
			item, err = itemRepo.GetByFarmAndQR(ctx, farmID, d.qrCode)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("%w: no hay insumo con QR %q", domain.ErrNotFound, d.qrCode)
			}
		} else {
			item, err = uc.ledger.loadItem(ctx, itemRepo, farmID, d.itemID)
			if err != nil {
				return err
			}
		}
		usage = newUsage(farmID, userID, item, d, date, now)
		if err := usageRepo.Create(ctx, usage); err != nil {
			return err
		}
		mov, err = uc.ledger.RecordUsageInTx(ctx, movRepo, balanceRepo, itemRepo, MovementInput{
			FarmID:   farmID,
			ItemID:   item.ID,
			Date:     usage.Date,
			Quantity: usage.Quantity,
			Unit:     usage.Unit,
			Actor:    userID,
			Source:   entity.SourceRef{Type: entity.SourceFeedUsage, ID: usage.ID},
			CowID:    usage.CowID,
			Notes:    usage.Notes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.committed(ctx, item, mov)

	out := toUsageResponse(usage)
	out.Movement = ToMovementResponse(mov)
	return out, nil
}

func newUsage(farmID, userID string, item *entity.StockItem, d usageDraft, date, now time.Time) *entity.FeedUsage {
	unit := d.unit
	if unit == "" {
		unit = item.Unit
	}
	return &entity.FeedUsage{
		ID:         uuid.New().String(),
		FarmID:     farmID,
		ItemID:     item.ID,
		Date:       truncateDay(date),
		Quantity:   d.quantity,
		Unit:       unit,
		CowID:      d.cowID,
		ScanMethod: d.method,
		Notes:      d.notes,
		LoggedBy:   userID,
		CreatedAt:  now,
	}
}

func toUsageResponse(u *entity.FeedUsage) *dto.UsageResponse {
	return &dto.UsageResponse{
		ID:         u.ID,
		ItemID:     u.ItemID,
		Date:       u.Date.Format(dateLayout),
		Quantity:   u.Quantity,
		Unit:       u.Unit,
		CowID:      u.CowID,
		ScanMethod: u.ScanMethod,
		Notes:      u.Notes,
		LoggedBy:   u.LoggedBy,
		CreatedAt:  u.CreatedAt,
	}
}

func toUsageList(list []*entity.FeedUsage, page dto.PageRequest) *dto.UsageListResponse {
	items := make([]dto.UsageResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *toUsageResponse(u))
	}
	return &dto.UsageListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}
}
