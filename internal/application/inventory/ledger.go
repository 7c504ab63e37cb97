// Package inventory contiene el libro de inventario de alimento por granja y los casos de uso
// de compras y consumos que lo disparan.
package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/dairy-ledger/internal/application/dto"
	"github.com/jhoicas/dairy-ledger/internal/domain"
	"github.com/jhoicas/dairy-ledger/internal/domain/entity"
	"github.com/jhoicas/dairy-ledger/internal/domain/inventory"
	"github.com/jhoicas/dairy-ledger/internal/domain/repository"
	"github.com/jhoicas/dairy-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Policy política del libro.
type Policy struct {
	// AllowNegative permite que consumos, pérdidas o ajustes dejen el saldo bajo cero.
	AllowNegative bool
	// UsageWindowDays ventana de consumo para estimar días restantes.
	UsageWindowDays int
}

// DefaultPolicy conserva la resta incondicional y la ventana de 30 días.
func DefaultPolicy() Policy {
	return Policy{AllowNegative: true, UsageWindowDays: 30}
}

// LedgerDeps dependencias del libro. Alerts, Metrics, Log y Now son opcionales.
type LedgerDeps struct {
	TxRunner    TxRunner
	ItemRepo    repository.StockItemRepository
	BalanceRepo repository.BalanceRepository
	MovRepo     repository.MovementRepository
	Policy      Policy
	Alerts      AlertPublisher
	Metrics     Metrics
	Log         *logger.Logger
	Now         func() time.Time
}

// Ledger mantiene el saldo de cada (granja, insumo) consistente con su historial de movimientos.
// Cada escritura corre en una transacción con la fila del saldo bloqueada (SELECT FOR UPDATE),
// de modo que dos escrituras concurrentes sobre el mismo insumo se serializan.
type Ledger struct {
	txRunner    TxRunner
	itemRepo    repository.StockItemRepository
	balanceRepo repository.BalanceRepository
	movRepo     repository.MovementRepository
	policy      Policy
	alerts      AlertPublisher
	metrics     Metrics
	log         *logger.Logger
	now         func() time.Time
}

// NewLedger construye el libro.
func NewLedger(deps LedgerDeps) *Ledger {
	l := &Ledger{
		txRunner:    deps.TxRunner,
		itemRepo:    deps.ItemRepo,
		balanceRepo: deps.BalanceRepo,
		movRepo:     deps.MovRepo,
		policy:      deps.Policy,
		alerts:      deps.Alerts,
		metrics:     deps.Metrics,
		log:         deps.Log,
		now:         deps.Now,
	}
	if l.policy.UsageWindowDays <= 0 {
		l.policy.UsageWindowDays = DefaultPolicy().UsageWindowDays
	}
	if l.metrics == nil {
		l.metrics = nopMetrics{}
	}
	if l.log == nil {
		l.log = logger.Nop()
	}
	l.log = l.log.Component("ledger")
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// MovementInput entrada de record_purchase / record_usage.
type MovementInput struct {
	FarmID   string
	ItemID   string
	Date     time.Time // fecha efectiva; cero = hoy
	Quantity decimal.Decimal
	Unit     string // vacío = unidad del insumo
	Actor    string
	Source   entity.SourceRef
	CowID    string
	Notes    string
	// UnitCost precio de compra; si es válido actualiza el costo promedio del insumo.
	UnitCost decimal.NullDecimal
}

// AdjustmentInput entrada de un movimiento manual (adjustment, loss, transfer).
type AdjustmentInput struct {
	FarmID   string
	ItemID   string
	Kind     string
	Quantity decimal.Decimal
	Date     time.Time
	Unit     string
	Actor    string
	Notes    string
}

// RecordPurchase registra una entrada por compra en su propia transacción.
func (l *Ledger) RecordPurchase(ctx context.Context, in MovementInput) (*entity.InventoryMovement, error) {
	var mov *entity.InventoryMovement
	err := l.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		balanceRepo repository.BalanceRepository,
		itemRepo repository.StockItemRepository,
	) error {
		var err error
		mov, err = l.RecordPurchaseInTx(ctx, movRepo, balanceRepo, itemRepo, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.committed(ctx, nil, mov)
	return mov, nil
}

// RecordPurchaseInTx registra la compra con repositorios atados a la transacción del caller.
// Suma la cantidad al saldo, actualiza la fecha de reabastecimiento y agrega un movimiento purchase_in.
// El caller cuenta el movimiento (committed) solo después del commit.
func (l *Ledger) RecordPurchaseInTx(
	ctx context.Context,
	movRepo repository.MovementRepository,
	balanceRepo repository.BalanceRepository,
	itemRepo repository.StockItemRepository,
	in MovementInput,
) (*entity.InventoryMovement, error) {
	if err := validateMovementInput(in); err != nil {
		l.metrics.OperationFailed("record_purchase")
		return nil, err
	}
	item, err := l.loadItem(ctx, itemRepo, in.FarmID, in.ItemID)
	if err != nil {
		l.metrics.OperationFailed("record_purchase")
		return nil, err
	}
	mov, bal, err := l.apply(ctx, movRepo, balanceRepo, item, in, entity.MovementPurchaseIn, in.Quantity)
	if err != nil {
		l.metrics.OperationFailed("record_purchase")
		return nil, err
	}
	if in.UnitCost.Valid {
		// costo vigente releído con la fila bloqueada, siempre después del bloqueo del saldo
		locked, err := itemRepo.GetForUpdate(ctx, item.ID)
		if err != nil {
			l.metrics.OperationFailed("record_purchase")
			return nil, err
		}
		if locked == nil {
			l.metrics.OperationFailed("record_purchase")
			return nil, fmt.Errorf("%w: insumo %s", domain.ErrNotFound, item.ID)
		}
		newCost := inventory.WeightedCost(mov.BalanceBefore, locked.CostPerUnit, in.Quantity, in.UnitCost.Decimal)
		if err := itemRepo.UpdateCost(ctx, item.ID, newCost); err != nil {
			l.metrics.OperationFailed("record_purchase")
			return nil, err
		}
	}
	l.log.ForItem(in.FarmID, in.ItemID).Debug().
		Str("quantity", in.Quantity.String()).Str("balance", bal.QuantityOnHand.String()).
		Msg("compra registrada en el libro")
	return mov, nil
}

// RecordUsage registra un consumo en su propia transacción y publica la alerta de stock bajo
// si el saldo cruzó el nivel de reorden.
func (l *Ledger) RecordUsage(ctx context.Context, in MovementInput) (*entity.InventoryMovement, error) {
	var (
		mov  *entity.InventoryMovement
		item *entity.StockItem
	)
	err := l.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		balanceRepo repository.BalanceRepository,
		itemRepo repository.StockItemRepository,
	) error {
		var err error
		item, err = l.loadItem(ctx, itemRepo, in.FarmID, in.ItemID)
		if err != nil {
			return err
		}
		mov, err = l.RecordUsageInTx(ctx, movRepo, balanceRepo, itemRepo, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.committed(ctx, item, mov)
	return mov, nil
}

// RecordUsageInTx resta la cantidad del saldo con repositorios de la transacción del caller.
// Con AllowNegative (defecto) la resta es incondicional; sin él, un saldo resultante negativo
// falla con ErrInsufficientStock.
// Igual que en compras, métricas y alerta quedan para después del commit.
func (l *Ledger) RecordUsageInTx(
	ctx context.Context,
	movRepo repository.MovementRepository,
	balanceRepo repository.BalanceRepository,
	itemRepo repository.StockItemRepository,
	in MovementInput,
) (*entity.InventoryMovement, error) {
	if err := validateMovementInput(in); err != nil {
		l.metrics.OperationFailed("record_usage")
		return nil, err
	}
	item, err := l.loadItem(ctx, itemRepo, in.FarmID, in.ItemID)
	if err != nil {
		l.metrics.OperationFailed("record_usage")
		return nil, err
	}
	mov, bal, err := l.apply(ctx, movRepo, balanceRepo, item, in, entity.MovementUsageOut, in.Quantity.Neg())
	if err != nil {
		l.metrics.OperationFailed("record_usage")
		return nil, err
	}
	l.log.ForItem(in.FarmID, in.ItemID).Debug().Str("cow_id", in.CowID).
		Str("quantity", in.Quantity.String()).Str("balance", bal.QuantityOnHand.String()).
		Msg("consumo registrado en el libro")
	return mov, nil
}

// RecordAdjustment registra un movimiento manual:
//   - adjustment y transfer: cantidad con signo, distinta de cero.
//   - loss: cantidad positiva que sale del saldo.
func (l *Ledger) RecordAdjustment(ctx context.Context, in AdjustmentInput) (*entity.InventoryMovement, error) {
	var delta decimal.Decimal
	switch in.Kind {
	case entity.MovementAdjustment, entity.MovementTransfer:
		if in.Quantity.IsZero() {
			return nil, fmt.Errorf("%w: la cantidad del ajuste no puede ser cero", domain.ErrInvalidInput)
		}
		delta = in.Quantity
	case entity.MovementLoss:
		if !in.Quantity.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: la pérdida debe ser positiva", domain.ErrInvalidInput)
		}
		delta = in.Quantity.Neg()
	default:
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.Kind)
	}
	if in.FarmID == "" || in.ItemID == "" {
		return nil, fmt.Errorf("%w: farm_id e item_id son obligatorios", domain.ErrInvalidInput)
	}
	if err := validateScale(delta); err != nil {
		return nil, err
	}

	mi := MovementInput{
		FarmID:   in.FarmID,
		ItemID:   in.ItemID,
		Date:     in.Date,
		Quantity: delta.Abs(),
		Unit:     in.Unit,
		Actor:    in.Actor,
		Source:   entity.SourceRef{Type: entity.SourceManual},
		Notes:    in.Notes,
	}
	var (
		mov  *entity.InventoryMovement
		item *entity.StockItem
	)
	err := l.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		balanceRepo repository.BalanceRepository,
		itemRepo repository.StockItemRepository,
	) error {
		var err error
		item, err = l.loadItem(ctx, itemRepo, in.FarmID, in.ItemID)
		if err != nil {
			return err
		}
		mov, _, err = l.apply(ctx, movRepo, balanceRepo, item, mi, in.Kind, delta)
		return err
	})
	if err != nil {
		l.metrics.OperationFailed("record_adjustment")
		return nil, err
	}
	l.committed(ctx, item, mov)
	return mov, nil
}

// Adjust registra un movimiento manual desde la API.
func (l *Ledger) Adjust(ctx context.Context, farmID, userID string, in dto.AdjustmentRequest) (*dto.MovementResponse, error) {
	date, err := parseDate(in.Date, l.now())
	if err != nil {
		return nil, err
	}
	mov, err := l.RecordAdjustment(ctx, AdjustmentInput{
		FarmID:   farmID,
		ItemID:   in.ItemID,
		Kind:     in.Type,
		Quantity: in.Quantity,
		Date:     date,
		Unit:     in.Unit,
		Actor:    userID,
		Notes:    in.Notes,
	})
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(mov), nil
}

// apply bloquea (o crea en cero) el saldo, aplica delta, persiste el saldo y agrega el movimiento.
func (l *Ledger) apply(
	ctx context.Context,
	movRepo repository.MovementRepository,
	balanceRepo repository.BalanceRepository,
	item *entity.StockItem,
	in MovementInput,
	kind string,
	delta decimal.Decimal,
) (*entity.InventoryMovement, *entity.InventoryBalance, error) {
	unit := in.Unit
	if unit == "" {
		unit = item.Unit
	}
	bal, err := balanceRepo.EnsureForUpdate(ctx, item.FarmID, item.ID, unit)
	if err != nil {
		return nil, nil, err
	}
	before, after := inventory.Apply(bal.QuantityOnHand, delta)
	if !l.policy.AllowNegative && delta.IsNegative() && after.IsNegative() {
		return nil, nil, fmt.Errorf("%w: saldo %s, salida %s", domain.ErrInsufficientStock, before, delta.Abs())
	}

	now := l.now()
	bal.QuantityOnHand = after
	bal.Version++
	bal.UpdatedAt = now
	if delta.IsPositive() {
		bal.LastRestockedAt = &now
	} else {
		bal.LastUsageAt = &now
	}
	if err := balanceRepo.Save(ctx, bal); err != nil {
		return nil, nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = now
	}
	mov := &entity.InventoryMovement{
		FarmID:        item.FarmID,
		ItemID:        item.ID,
		Date:          truncateDay(date),
		Kind:          kind,
		Quantity:      delta,
		Unit:          unit,
		BalanceBefore: before,
		BalanceAfter:  after,
		SourceType:    in.Source.Type,
		SourceID:      in.Source.ID,
		RecordedBy:    in.Actor,
		Notes:         in.Notes,
		CreatedAt:     now,
	}
	if err := inventory.CheckMovement(mov); err != nil {
		return nil, nil, err
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, nil, err
	}
	return mov, bal, nil
}

// committed cuenta el movimiento y evalúa la alerta de stock bajo. Solo se invoca tras el commit.
func (l *Ledger) committed(ctx context.Context, item *entity.StockItem, mov *entity.InventoryMovement) {
	if mov == nil {
		return
	}
	l.metrics.MovementRecorded(mov.Kind, mov.Quantity)
	l.NotifyLowStock(ctx, item, mov)
}

// NotifyLowStock publica una alerta si el movimiento llevó el saldo de normal a bajo.
// Se invoca después del commit; un fallo de publicación no deshace el movimiento.
func (l *Ledger) NotifyLowStock(ctx context.Context, item *entity.StockItem, mov *entity.InventoryMovement) {
	if l.alerts == nil || item == nil || mov == nil {
		return
	}
	wasLow := inventory.IsLowStock(mov.BalanceBefore, item.ReorderLevel)
	isLow := inventory.IsLowStock(mov.BalanceAfter, item.ReorderLevel)
	if wasLow || !isLow {
		return
	}
	severity := SeverityMedium
	if !mov.BalanceAfter.IsPositive() {
		severity = SeverityHigh
	}
	alert := LowStockAlert{
		FarmID:         item.FarmID,
		ItemID:         item.ID,
		ItemName:       item.Name,
		QuantityOnHand: mov.BalanceAfter,
		ReorderLevel:   item.ReorderLevel,
		Unit:           mov.Unit,
		Severity:       severity,
		MovementID:     mov.ID,
		OccurredAt:     l.now(),
	}
	if err := l.alerts.PublishLowStock(ctx, alert); err != nil {
		l.log.ForItem(item.FarmID, item.ID).Error().Err(err).
			Msg("no se pudo publicar la alerta de stock bajo")
	}
}

// CurrentBalance devuelve el saldo del insumo; un insumo sin movimientos devuelve saldo cero.
func (l *Ledger) CurrentBalance(ctx context.Context, farmID, itemID string) (*entity.InventoryBalance, error) {
	item, err := l.loadItem(ctx, l.itemRepo, farmID, itemID)
	if err != nil {
		return nil, err
	}
	return l.balanceOf(ctx, item)
}

// IsLowStock indica si el saldo está en o por debajo del nivel de reorden.
func (l *Ledger) IsLowStock(ctx context.Context, farmID, itemID string) (bool, error) {
	item, err := l.loadItem(ctx, l.itemRepo, farmID, itemID)
	if err != nil {
		return false, err
	}
	bal, err := l.balanceOf(ctx, item)
	if err != nil {
		return false, err
	}
	return inventory.IsLowStock(bal.QuantityOnHand, item.ReorderLevel), nil
}

// DaysRemaining estima los días de stock con el consumo de la ventana que termina ahora.
// nil si no hubo consumo en la ventana.
func (l *Ledger) DaysRemaining(ctx context.Context, farmID, itemID string) (*int64, error) {
	item, err := l.loadItem(ctx, l.itemRepo, farmID, itemID)
	if err != nil {
		return nil, err
	}
	bal, err := l.balanceOf(ctx, item)
	if err != nil {
		return nil, err
	}
	return l.daysRemaining(ctx, item, bal)
}

// Balance devuelve el saldo con sus proyecciones para la vista de detalle.
func (l *Ledger) Balance(ctx context.Context, farmID, itemID string) (*dto.BalanceResponse, error) {
	item, err := l.loadItem(ctx, l.itemRepo, farmID, itemID)
	if err != nil {
		return nil, err
	}
	bal, err := l.balanceOf(ctx, item)
	if err != nil {
		return nil, err
	}
	return l.balanceView(ctx, item, bal)
}

// ListBalances lista los saldos existentes de la granja ordenados por nombre del insumo.
func (l *Ledger) ListBalances(ctx context.Context, farmID string) ([]dto.BalanceResponse, error) {
	pairs, err := l.farmBalances(ctx, farmID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BalanceResponse, 0, len(pairs))
	for _, p := range pairs {
		view, err := l.balanceView(ctx, p.item, p.balance)
		if err != nil {
			return nil, err
		}
		out = append(out, *view)
	}
	return out, nil
}

// ListLowStock lista solo los saldos en o por debajo del nivel de reorden.
func (l *Ledger) ListLowStock(ctx context.Context, farmID string) ([]dto.BalanceResponse, error) {
	all, err := l.ListBalances(ctx, farmID)
	if err != nil {
		return nil, err
	}
	low := make([]dto.BalanceResponse, 0, len(all))
	for _, b := range all {
		if b.IsLowStock {
			low = append(low, b)
		}
	}
	return low, nil
}

// Summary recorre todos los saldos de la granja: cantidad de insumos, cuántos están bajos,
// valor total (saldo * costo; sin costo aporta 0) y agrupación por categoría.
func (l *Ledger) Summary(ctx context.Context, farmID string) (*dto.InventorySummaryResponse, error) {
	pairs, err := l.farmBalances(ctx, farmID)
	if err != nil {
		return nil, err
	}
	summary := &dto.InventorySummaryResponse{
		TotalItems: len(pairs),
		TotalValue: decimal.Zero,
		ByCategory: make(map[string]dto.CategorySummary),
	}
	for _, p := range pairs {
		if inventory.IsLowStock(p.balance.QuantityOnHand, p.item.ReorderLevel) {
			summary.LowStockCount++
		}
		cat := summary.ByCategory[p.item.Category]
		cat.Count++
		cat.Items = append(cat.Items, dto.CategoryItem{
			Name:     p.item.Name,
			Quantity: p.balance.QuantityOnHand,
			Unit:     p.balance.Unit,
		})
		summary.ByCategory[p.item.Category] = cat

		if p.item.CostPerUnit.Valid {
			summary.TotalValue = summary.TotalValue.Add(p.balance.QuantityOnHand.Mul(p.item.CostPerUnit.Decimal))
		}
	}
	return summary, nil
}

// ListMovements devuelve el historial filtrado, del más reciente al más antiguo.
func (l *Ledger) ListMovements(ctx context.Context, farmID string, q dto.MovementQuery) (*dto.MovementListResponse, error) {
	if q.Type != "" && !entity.ValidMovementKind(q.Type) {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, q.Type)
	}
	if err := validateItemFilter(q.ItemID); err != nil {
		return nil, err
	}
	from, to, err := parseRange(q.DateFrom, q.DateTo)
	if err != nil {
		return nil, err
	}
	q.DefaultPage()
	list, err := l.movRepo.List(ctx, repository.MovementFilter{
		FarmID: farmID,
		ItemID: q.ItemID,
		Kind:   q.Type,
		From:   from,
		To:     to,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *ToMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}

// VerifyBalance reproduce el historial del insumo desde cero y lo compara con el saldo guardado.
// Devuelve el resultado siempre que pueda calcularlo; si no cuadra, el error envuelve ErrConsistency.
func (l *Ledger) VerifyBalance(ctx context.Context, farmID, itemID string) (*dto.BalanceVerificationResponse, error) {
	item, err := l.loadItem(ctx, l.itemRepo, farmID, itemID)
	if err != nil {
		return nil, err
	}
	bal, err := l.balanceOf(ctx, item)
	if err != nil {
		return nil, err
	}
	history, err := l.movRepo.ListForReplay(ctx, farmID, itemID)
	if err != nil {
		return nil, err
	}
	result := &dto.BalanceVerificationResponse{
		ItemID:    itemID,
		Stored:    bal.QuantityOnHand,
		Movements: len(history),
	}
	replayed, err := inventory.Replay(history)
	if err != nil {
		l.log.ForItem(farmID, itemID).Error().Err(err).Msg("historial inconsistente")
		return result, err
	}
	result.Replayed = replayed
	result.Consistent = replayed.Equal(bal.QuantityOnHand)
	if !result.Consistent {
		l.log.ForItem(farmID, itemID).Error().
			Str("stored", bal.QuantityOnHand.String()).Str("replayed", replayed.String()).
			Msg("saldo no coincide con el historial")
		return result, fmt.Errorf("%w: saldo %s, historial %s", domain.ErrConsistency, bal.QuantityOnHand, replayed)
	}
	return result, nil
}

type itemBalance struct {
	item    *entity.StockItem
	balance *entity.InventoryBalance
}

// farmBalances une los saldos de la granja con sus insumos, ordenados por nombre.
func (l *Ledger) farmBalances(ctx context.Context, farmID string) ([]itemBalance, error) {
	if farmID == "" {
		return nil, fmt.Errorf("%w: farm_id es obligatorio", domain.ErrInvalidInput)
	}
	balances, err := l.balanceRepo.ListByFarm(ctx, farmID)
	if err != nil {
		return nil, err
	}
	items, err := l.itemRepo.ListByFarm(ctx, farmID, repository.StockItemFilter{})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.StockItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	pairs := make([]itemBalance, 0, len(balances))
	for _, b := range balances {
		it, ok := byID[b.ItemID]
		if !ok {
			return nil, fmt.Errorf("%w: saldo sin insumo %s", domain.ErrConsistency, b.ItemID)
		}
		pairs = append(pairs, itemBalance{item: it, balance: b})
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].item.Name < pairs[j].item.Name })
	return pairs, nil
}

func (l *Ledger) balanceOf(ctx context.Context, item *entity.StockItem) (*entity.InventoryBalance, error) {
	bal, err := l.balanceRepo.Get(ctx, item.FarmID, item.ID)
	if err != nil {
		return nil, err
	}
	if bal == nil {
		return entity.ZeroBalance(item.FarmID, item.ID, item.Unit), nil
	}
	return bal, nil
}

func (l *Ledger) daysRemaining(ctx context.Context, item *entity.StockItem, bal *entity.InventoryBalance) (*int64, error) {
	window := l.policy.UsageWindowDays
	since := truncateDay(l.now().AddDate(0, 0, -window))
	usage, err := l.movRepo.SumUsageSince(ctx, item.FarmID, item.ID, since)
	if err != nil {
		return nil, err
	}
	return inventory.DaysRemaining(bal.QuantityOnHand, usage, window), nil
}

func (l *Ledger) balanceView(ctx context.Context, item *entity.StockItem, bal *entity.InventoryBalance) (*dto.BalanceResponse, error) {
	days, err := l.daysRemaining(ctx, item, bal)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{
		ItemID:          item.ID,
		ItemName:        item.Name,
		Category:        item.Category,
		QuantityOnHand:  bal.QuantityOnHand,
		Unit:            bal.Unit,
		ReorderLevel:    item.ReorderLevel,
		IsLowStock:      inventory.IsLowStock(bal.QuantityOnHand, item.ReorderLevel),
		DaysRemaining:   days,
		LastRestockedAt: bal.LastRestockedAt,
		LastUsageAt:     bal.LastUsageAt,
	}, nil
}

// CurrentStock bloque de stock para la respuesta de un insumo.
func (l *Ledger) CurrentStock(ctx context.Context, item *entity.StockItem) (*dto.CurrentStockDTO, error) {
	bal, err := l.balanceOf(ctx, item)
	if err != nil {
		return nil, err
	}
	days, err := l.daysRemaining(ctx, item, bal)
	if err != nil {
		return nil, err
	}
	return &dto.CurrentStockDTO{
		Quantity:      bal.QuantityOnHand,
		Unit:          bal.Unit,
		IsLow:         inventory.IsLowStock(bal.QuantityOnHand, item.ReorderLevel),
		DaysRemaining: days,
	}, nil
}

// loadItem obtiene el insumo y verifica que pertenezca a la granja. Un insumo ajeno es ErrNotFound.
func (l *Ledger) loadItem(ctx context.Context, itemRepo repository.StockItemRepository, farmID, itemID string) (*entity.StockItem, error) {
	if farmID == "" || itemID == "" {
		return nil, fmt.Errorf("%w: farm_id e item_id son obligatorios", domain.ErrInvalidInput)
	}
	if !entity.ValidID(itemID) {
		return nil, fmt.Errorf("%w: insumo %s", domain.ErrNotFound, itemID)
	}
	item, err := itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.FarmID != farmID {
		return nil, fmt.Errorf("%w: insumo %s", domain.ErrNotFound, itemID)
	}
	return item, nil
}

func validateMovementInput(in MovementInput) error {
	if in.FarmID == "" || in.ItemID == "" {
		return fmt.Errorf("%w: farm_id e item_id son obligatorios", domain.ErrInvalidInput)
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if err := validateScale(in.Quantity); err != nil {
		return err
	}
	if in.UnitCost.Valid && in.UnitCost.Decimal.IsNegative() {
		return fmt.Errorf("%w: el precio unitario no puede ser negativo", domain.ErrInvalidInput)
	}
	return nil
}

// validateItemFilter rechaza un filtro item_id que no es UUID; vacío significa sin filtro.
func validateItemFilter(itemID string) error {
	if itemID != "" && !entity.ValidID(itemID) {
		return fmt.Errorf("%w: item_id %q no es un identificador válido", domain.ErrInvalidInput, itemID)
	}
	return nil
}

// validateScale rechaza cantidades que el esquema redondearía al guardarlas.
func validateScale(q decimal.Decimal) error {
	if !entity.ValidQuantityScale(q) {
		return fmt.Errorf("%w: la cantidad %s admite hasta %d decimales", domain.ErrInvalidInput, q, entity.QuantityScale)
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// parseDate interpreta YYYY-MM-DD; vacío devuelve def.
func parseDate(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, def.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: fecha %q, formato esperado YYYY-MM-DD", domain.ErrInvalidInput, s)
	}
	return t, nil
}

func parseRange(fromS, toS string) (from, to *time.Time, err error) {
	if fromS != "" {
		t, err := parseDate(fromS, time.Time{})
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if toS != "" {
		t, err := parseDate(toS, time.Time{})
		if err != nil {
			return nil, nil, err
		}
		to = &t
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("%w: date_to anterior a date_from", domain.ErrInvalidInput)
	}
	return from, to, nil
}

// ToMovementResponse convierte un movimiento a su DTO.
func ToMovementResponse(m *entity.InventoryMovement) *dto.MovementResponse {
	if m == nil {
		return nil
	}
	return &dto.MovementResponse{
		ID:            m.ID,
		ItemID:        m.ItemID,
		Date:          m.Date.Format(dateLayout),
		Type:          m.Kind,
		Quantity:      m.Quantity,
		Unit:          m.Unit,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		SourceType:    m.SourceType,
		SourceID:      m.SourceID,
		RecordedBy:    m.RecordedBy,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
	}
}
