package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dairy-ledger/internal/application/dto"
	"github.com/jhoicas/dairy-ledger/internal/application/inventory"
	"github.com/jhoicas/dairy-ledger/internal/domain"
	"github.com/jhoicas/dairy-ledger/internal/domain/entity"
	"github.com/jhoicas/dairy-ledger/internal/domain/repository"
	"github.com/jhoicas/dairy-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	farmA  = "farm-a"
	farmB  = "farm-b"
	worker = "user-1"
)

var day0 = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingPublisher struct {
	mu     sync.Mutex
	alerts []inventory.LowStockAlert
	err    error
}

func (p *recordingPublisher) PublishLowStock(_ context.Context, a inventory.LowStockAlert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, a)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.alerts)
}

type fixture struct {
	store  *memory.Store
	ledger *inventory.Ledger
	clock  *clock
	alerts *recordingPublisher
}

func newFixture(t *testing.T, policy inventory.Policy) *fixture {
	t.Helper()
	store := memory.NewStore()
	clk := &clock{now: day0.Add(8 * time.Hour)}
	alerts := &recordingPublisher{}
	ledger := inventory.NewLedger(inventory.LedgerDeps{
		TxRunner:    store,
		ItemRepo:    store.Items(),
		BalanceRepo: store.Balances(),
		MovRepo:     store.Movements(),
		Policy:      policy,
		Alerts:      alerts,
		Now:         clk.Now,
	})
	return &fixture{store: store, ledger: ledger, clock: clk, alerts: alerts}
}

func (f *fixture) item(t *testing.T, farmID, name, reorder string, cost *decimal.Decimal) *entity.StockItem {
	t.Helper()
	it := &entity.StockItem{
		ID:           uuid.New().String(),
		FarmID:       farmID,
		Name:         name,
		Category:     entity.CategoryConcentrate,
		Unit:         entity.UnitKg,
		IsActive:     true,
		ReorderLevel: d(reorder),
		CreatedAt:    day0,
		UpdatedAt:    day0,
	}
	if cost != nil {
		it.CostPerUnit = decimal.NewNullDecimal(*cost)
	}
	require.NoError(t, f.store.Items().Create(context.Background(), it))
	return it
}

func (f *fixture) purchase(t *testing.T, it *entity.StockItem, qty string, date time.Time) *entity.InventoryMovement {
	t.Helper()
	m, err := f.ledger.RecordPurchase(context.Background(), inventory.MovementInput{
		FarmID: it.FarmID, ItemID: it.ID, Quantity: d(qty), Date: date, Actor: worker,
		Source: entity.SourceRef{Type: entity.SourceFeedPurchase, ID: uuid.New().String()},
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) usage(t *testing.T, it *entity.StockItem, qty string, date time.Time) *entity.InventoryMovement {
	t.Helper()
	m, err := f.ledger.RecordUsage(context.Background(), inventory.MovementInput{
		FarmID: it.FarmID, ItemID: it.ID, Quantity: d(qty), Date: date, Actor: worker,
		Source: entity.SourceRef{Type: entity.SourceFeedUsage, ID: uuid.New().String()},
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) balance(t *testing.T, it *entity.StockItem) decimal.Decimal {
	t.Helper()
	b, err := f.ledger.CurrentBalance(context.Background(), it.FarmID, it.ID)
	require.NoError(t, err)
	return b.QuantityOnHand
}

// ──────────────────────────────────────────────────────────────────────────────
// record_purchase / record_usage
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordPurchase_PrimerMovimientoCreaSaldo(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	it := f.item(t, farmA, "Dairy Meal", "100", nil)

	m := f.purchase(t, it, "500", day0)

	assert.True(t, m.BalanceBefore.IsZero())
	assert.True(t, m.BalanceAfter.Equal(d("500")))
	assert.Equal(t, entity.MovementPurchaseIn, m.Kind)
	assert.Equal(t, entity.UnitKg, m.Unit, "sin unidad explícita se usa la del insumo")
	assert.True(t, f.balance(t, it).Equal(d("500")))

	b, err := f.ledger.CurrentBalance(context.Background(), farmA, it.ID)
	require.NoError(t, err)
	require.NotNil(t, b.LastRestockedAt)
	assert.Nil(t, b.LastUsageAt)
	assert.Equal(t, int64(1), b.Version)
}

func TestRecordPurchase_CantidadNoPositiva(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	it := f.item(t, farmA, "Dairy Meal", "100", nil)

	for _, qty := range []string{"0", "-5"} {
		_, err := f.ledger.RecordPurchase(context.Background(), inventory.MovementInput{
			FarmID: farmA, ItemID: it.ID, Quantity: d(qty),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "qty=%s", qty)
	}
	assert.True(t, f.balance(t, it).IsZero())
}

func TestRecordUsage_RestaIncondicionalDejaSaldoNegativo(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	it := f.item(t, farmA, "Hay", "0", nil)

	m := f.usage(t, it, "30", day0)

	assert.True(t, m.BalanceAfter.Equal(d("-30")))
	assert.True(t, m.Quantity.Equal(d("-30")), "las salidas se guardan con signo negativo")
	assert.True(t, f.balance(t, it).Equal(d("-30")))

	days, err := f.ledger.DaysRemaining(context.Background(), farmA, it.ID)
	require.NoError(t, err)
	require.NotNil(t, days)
	assert.Equal(t, int64(-30), *days)
}

func TestRecordUsage_SinSaldoNegativoFallaYNoDejaRastro(t *testing.T) {
	f := newFixture(t, inventory.Policy{AllowNegative: false, UsageWindowDays: 30})
	it := f.item(t, farmA, "Hay", "0", nil)
	f.purchase(t, it, "10", day0)

	_, err := f.ledger.RecordUsage(context.Background(), inventory.MovementInput{
		FarmID: farmA, ItemID: it.ID, Quantity: d("30"), Date: day0,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, f.balance(t, it).Equal(d("10")))
	history, err := f.store.Movements().ListForReplay(context.Background(), farmA, it.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1, "el consumo rechazado no agrega movimiento")
}

func TestRecord_InsumoDeOtraGranjaEsNotFound(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	it := f.item(t, farmA, "Dairy Meal", "100", nil)

	_, err := f.ledger.RecordUsage(context.Background(), inventory.MovementInput{
		FarmID: farmB, ItemID: it.ID, Quantity: d("5"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.ledger.CurrentBalance(context.Background(), farmB, it.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	balances, err := f.ledger.ListBalances(context.Background(), farmB)
	require.NoError(t, err)
	assert.Empty(t, balances)
}

func TestRecordPurchase_PrecioActualizaCostoPromedio(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	it := f.item(t, farmA, "Dairy Meal", "100", nil)

	_, err := f.ledger.RecordPurchase(context.Background(), inventory.MovementInput{
		FarmID: farmA, ItemID: it.ID, Quantity: d("100"), UnitCost: decimal.NewNullDecimal(d("50")),
	})
	require.NoError(t, err)
	_, err = f.ledger.RecordPurchase(context.Background(), inventory.MovementInput{
		FarmID: farmA, ItemID: it.ID, Quantity: d("100"), UnitCost: decimal.NewNullDecimal(d("70")),
	})
	require.NoError(t, err)

	got, err := f.store.Items().GetByID(context.Background(), it.ID)
	require.NoError(t, err)
	require.True(t, got.CostPerUnit.Valid)
	assert.True(t, got.CostPerUnit.Decimal.Equal(d("60")), "cost = %s", got.CostPerUnit.Decimal)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas: saldo, stock bajo, días restantes, resumen
// ──────────────────────────────────────────────────────────────────────────────

func TestCurrentBalance_InsumoSinMovimientos(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	it := f.item(t, farmA, "Mineral Lick", "5", nil)

	assert.True(t, f.balance(t, it).IsZero())

	days, err := f.ledger.DaysRemaining(context.Background(), farmA, it.ID)
	require.NoError(t, err)
	assert.Nil(t, days, "sin consumo en la ventana no hay estimación")

	low, err := f.ledger.IsLowStock(context.Background(), farmA, it.ID)
	require.NoError(t, err)
	assert.True(t, low, "0 <= 5")
}

func TestEscenarioDairyMeal_BajaAlOctavoDiaYAgotaAlDecimo(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	it := f.item(t, farmA, "Dairy Meal", "100", nil)
	f.purchase(t, it, "500", day0)

	for i := 1; i <= 8; i++ {
		date := day0.AddDate(0, 0, i)
		f.clock.set(date.Add(18 * time.Hour))
		f.usage(t, it, "50", date)

		low, err := f.ledger.IsLowStock(context.Background(), farmA, it.ID)
		require.NoError(t, err)
		if i < 8 {
			assert.False(t, low, "día %d: saldo %s", i, f.balance(t, it))
		} else {
			assert.True(t, low, "día 8: saldo 100 == reorden")
		}
	}
	assert.True(t, f.balance(t, it).Equal(d("100")))

	// 400 kg en la ventana de 30 días: floor(100 * 30 / 400) = 7
	days, err := f.ledger.DaysRemaining(context.Background(), farmA, it.ID)
	require.NoError(t, err)
	require.NotNil(t, days)
	assert.Equal(t, int64(7), *days)

	assert.Equal(t, 1, f.alerts.count(), "solo se alerta al cruzar el nivel")
	alert := f.alerts.alerts[0]
	assert.Equal(t, inventory.SeverityMedium, alert.Severity)
	assert.True(t, alert.QuantityOnHand.Equal(d("100")))
	assert.Equal(t, "Dairy Meal", alert.ItemName)

	for i := 9; i <= 10; i++ {
		date := day0.AddDate(0, 0, i)
		f.clock.set(date.Add(18 * time.Hour))
		f.usage(t, it, "50", date)
	}
	assert.True(t, f.balance(t, it).IsZero(), "día 10: saldo %s", f.balance(t, it))

	usages, err := f.ledger.ListMovements(context.Background(), farmA, dto.MovementQuery{
		ItemID: it.ID, Type: entity.MovementUsageOut,
	})
	require.NoError(t, err)
	assert.Len(t, usages.Items, 10)

	days, err = f.ledger.DaysRemaining(context.Background(), farmA, it.ID)
	require.NoError(t, err)
	require.NotNil(t, days)
	assert.Equal(t, int64(0), *days)

	res, err := f.ledger.VerifyBalance(context.Background(), farmA, it.ID)
	require.NoError(t, err)
	assert.True(t, res.Consistent)
	assert.Equal(t, 11, res.Movements)
	assert.Equal(t, 1, f.alerts.count(), "seguir bajando dentro de la zona baja no repite la alerta")
}

func TestDaysRemaining_IgnoraConsumosFueraDeVentana(t *testing.T) {
	f := newFixture(t, inventory.Policy{AllowNegative: true, UsageWindowDays: 7})
	it := f.item(t, farmA, "Silage", "0", nil)
	f.purchase(t, it, "1000", day0)
	f.usage(t, it, "300", day0) // queda fuera de la ventana

	f.clock.set(day0.AddDate(0, 0, 20))
	f.usage(t, it, "70", day0.AddDate(0, 0, 19))

	// 70 kg en 7 días = 10 kg/día; 630 kg -> 63 días
	days, err := f.ledger.DaysRemaining(context.Background(), farmA, it.ID)
	require.NoError(t, err)
	require.NotNil(t, days)
	assert.Equal(t, int64(63), *days)
}

func TestAlerta_SaldoCeroEsSeveridadAlta(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	it := f.item(t, farmA, "Dairy Meal", "100", nil)
	f.purchase(t, it, "150", day0)

	f.usage(t, it, "150", day0)

	require.Equal(t, 1, f.alerts.count())
	assert.Equal(t, inventory.SeverityHigh, f.alerts.alerts[0].Severity)
}

func TestAlerta_FalloDePublicacionNoDeshaceElMovimiento(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	f.alerts.err = errors.New("broker caído")
	it := f.item(t, farmA, "Dairy Meal", "100", nil)
	f.purchase(t, it, "150", day0)

	f.usage(t, it, "100", day0)

	assert.Equal(t, 1, f.alerts.count())
	assert.True(t, f.balance(t, it).Equal(d("50")))
}

func TestSummary_CostoNuloAportaCero(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	cost := d("2.5")
	meal := f.item(t, farmA, "Dairy Meal", "100", &cost)
	hay := f.item(t, farmA, "Hay", "10", nil)
	f.item(t, farmA, "Sin movimientos", "0", nil)
	other := f.item(t, farmB, "Otra granja", "0", &cost)

	f.purchase(t, meal, "200", day0)
	f.purchase(t, hay, "5", day0)
	f.purchase(t, other, "999", day0)

	s, err := f.ledger.Summary(context.Background(), farmA)
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalItems, "solo insumos con saldo de la granja")
	assert.Equal(t, 1, s.LowStockCount, "Hay: 5 <= 10")
	assert.True(t, s.TotalValue.Equal(d("500")), "200 * 2.5 + Hay sin costo; total = %s", s.TotalValue)
	require.Contains(t, s.ByCategory, entity.CategoryConcentrate)
	assert.Equal(t, 2, s.ByCategory[entity.CategoryConcentrate].Count)
}

func TestListLowStock_OrdenadoPorNombre(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	b := f.item(t, farmA, "B feed", "100", nil)
	a := f.item(t, farmA, "A feed", "100", nil)
	ok := f.item(t, farmA, "C feed", "1", nil)
	f.purchase(t, b, "10", day0)
	f.purchase(t, a, "20", day0)
	f.purchase(t, ok, "50", day0)

	low, err := f.ledger.ListLowStock(context.Background(), farmA)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "A feed", low[0].ItemName)
	assert.Equal(t, "B feed", low[1].ItemName)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes manuales
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordAdjustment_TiposYSignos(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	it := f.item(t, farmA, "Dairy Meal", "0", nil)
	f.purchase(t, it, "100", day0)

	_, err := f.ledger.RecordAdjustment(context.Background(), inventory.AdjustmentInput{
		FarmID: farmA, ItemID: it.ID, Kind: entity.MovementAdjustment, Quantity: d("-4.5"),
	})
	require.NoError(t, err)
	m, err := f.ledger.RecordAdjustment(context.Background(), inventory.AdjustmentInput{
		FarmID: farmA, ItemID: it.ID, Kind: entity.MovementLoss, Quantity: d("10"),
	})
	require.NoError(t, err)
	assert.True(t, m.Quantity.Equal(d("-10")))
	assert.Equal(t, entity.SourceManual, m.SourceType)

	assert.True(t, f.balance(t, it).Equal(d("85.5")))

	_, err = f.ledger.RecordAdjustment(context.Background(), inventory.AdjustmentInput{
		FarmID: farmA, ItemID: it.ID, Kind: entity.MovementLoss, Quantity: d("-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.ledger.RecordAdjustment(context.Background(), inventory.AdjustmentInput{
		FarmID: farmA, ItemID: it.ID, Kind: entity.MovementPurchaseIn, Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "purchase_in solo entra por compras")
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial y verificación
// ──────────────────────────────────────────────────────────────────────────────

func TestVerifyBalance_ReplayCoincide(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	it := f.item(t, farmA, "Dairy Meal", "100", nil)
	f.purchase(t, it, "500", day0)
	f.usage(t, it, "50", day0)
	f.usage(t, it, "50.25", day0)
	f.purchase(t, it, "12.75", day0)

	res, err := f.ledger.VerifyBalance(context.Background(), farmA, it.ID)
	require.NoError(t, err)
	assert.True(t, res.Consistent)
	assert.Equal(t, 4, res.Movements)
	assert.True(t, res.Replayed.Equal(d("412.5")))
}

func TestVerifyBalance_SaldoAlteradoEsInconsistente(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	it := f.item(t, farmA, "Dairy Meal", "100", nil)
	f.purchase(t, it, "500", day0)
	f.store.Tamper(farmA, it.ID, d("480"))

	res, err := f.ledger.VerifyBalance(context.Background(), farmA, it.ID)
	require.ErrorIs(t, err, domain.ErrConsistency)
	require.NotNil(t, res)
	assert.False(t, res.Consistent)
	assert.True(t, res.Stored.Equal(d("480")))
	assert.True(t, res.Replayed.Equal(d("500")))
}

func TestListMovements_FiltrosYOrden(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	it := f.item(t, farmA, "Dairy Meal", "100", nil)
	f.purchase(t, it, "500", day0)
	f.usage(t, it, "50", day0.AddDate(0, 0, 1))
	f.usage(t, it, "40", day0.AddDate(0, 0, 2))

	out, err := f.ledger.ListMovements(context.Background(), farmA, dto.MovementQuery{Type: entity.MovementUsageOut})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "2026-03-03", out.Items[0].Date, "más reciente primero")

	out, err = f.ledger.ListMovements(context.Background(), farmA, dto.MovementQuery{DateFrom: "2026-03-02", DateTo: "2026-03-02"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].Quantity.Equal(d("-50")))

	_, err = f.ledger.ListMovements(context.Background(), farmA, dto.MovementQuery{Type: "robo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.ledger.ListMovements(context.Background(), farmA, dto.MovementQuery{DateFrom: "03/01/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordUsage_ConcurrenteNoPierdeEscrituras(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	it := f.item(t, farmA, "Dairy Meal", "0", nil)
	f.purchase(t, it, "1000", day0)

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.RecordUsage(context.Background(), inventory.MovementInput{
				FarmID: farmA, ItemID: it.ID, Quantity: d("2.5"),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.True(t, f.balance(t, it).Equal(d("875")))
	res, err := f.ledger.VerifyBalance(context.Background(), farmA, it.ID)
	require.NoError(t, err)
	assert.True(t, res.Consistent)
	assert.Equal(t, n+1, res.Movements)
}

// ──────────────────────────────────────────────────────────────────────────────
// Identificadores, escala de cantidades, costo bajo bloqueo y métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestRecord_IDNoUUIDEsNotFound(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())

	_, err := f.ledger.RecordUsage(context.Background(), inventory.MovementInput{
		FarmID: farmA, ItemID: "x", Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.ledger.CurrentBalance(context.Background(), farmA, "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.ledger.ListMovements(context.Background(), farmA, dto.MovementQuery{ItemID: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un filtro item_id mal formado es VALIDATION")
}

func TestRecord_CantidadConMasDeTresDecimales(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	it := f.item(t, farmA, "Dairy Meal", "100", nil)

	for _, qty := range []string{"0.0004", "1.2345"} {
		_, err := f.ledger.RecordPurchase(context.Background(), inventory.MovementInput{
			FarmID: farmA, ItemID: it.ID, Quantity: d(qty),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "compra qty=%s", qty)

		_, err = f.ledger.RecordUsage(context.Background(), inventory.MovementInput{
			FarmID: farmA, ItemID: it.ID, Quantity: d(qty),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "consumo qty=%s", qty)

		_, err = f.ledger.RecordAdjustment(context.Background(), inventory.AdjustmentInput{
			FarmID: farmA, ItemID: it.ID, Kind: entity.MovementAdjustment, Quantity: d(qty).Neg(),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "ajuste qty=%s", qty)
	}
	assert.True(t, f.balance(t, it).IsZero())

	f.purchase(t, it, "12.750", day0)
	assert.True(t, f.balance(t, it).Equal(d("12.75")), "ceros a la derecha no cuentan como decimales")
}

// staleItems devuelve en GetByID una copia vieja del insumo; GetForUpdate lee el estado real.
type staleItems struct {
	repository.StockItemRepository
	stale entity.StockItem
}

func (s staleItems) GetByID(context.Context, string) (*entity.StockItem, error) {
	cp := s.stale
	return &cp, nil
}

type staleTx struct {
	*memory.Store
	stale entity.StockItem
}

func (s staleTx) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	balanceRepo repository.BalanceRepository,
	itemRepo repository.StockItemRepository,
) error) error {
	return s.Store.Run(ctx, func(m repository.MovementRepository, b repository.BalanceRepository, i repository.StockItemRepository) error {
		return fn(m, b, staleItems{StockItemRepository: i, stale: s.stale})
	})
}

func TestRecordPurchase_CostoPromedioUsaLaFilaBloqueada(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	it := f.item(t, farmA, "Dairy Meal", "100", nil)
	before := *it // costo nulo, como lo vería una compra concurrente que leyó antes

	_, err := f.ledger.RecordPurchase(context.Background(), inventory.MovementInput{
		FarmID: farmA, ItemID: it.ID, Quantity: d("100"), UnitCost: decimal.NewNullDecimal(d("50")),
	})
	require.NoError(t, err)

	late := inventory.NewLedger(inventory.LedgerDeps{
		TxRunner:    staleTx{Store: f.store, stale: before},
		ItemRepo:    f.store.Items(),
		BalanceRepo: f.store.Balances(),
		MovRepo:     f.store.Movements(),
		Policy:      inventory.DefaultPolicy(),
	})
	mov, err := late.RecordPurchase(context.Background(), inventory.MovementInput{
		FarmID: farmA, ItemID: it.ID, Quantity: d("100"), UnitCost: decimal.NewNullDecimal(d("70")),
	})
	require.NoError(t, err)
	assert.True(t, mov.BalanceBefore.Equal(d("100")))

	got, err := f.store.Items().GetByID(context.Background(), it.ID)
	require.NoError(t, err)
	require.True(t, got.CostPerUnit.Valid)
	assert.True(t, got.CostPerUnit.Decimal.Equal(d("60")), "cost = %s, esperado (100*50 + 100*70) / 200", got.CostPerUnit.Decimal)
}

type recordingMetrics struct {
	mu        sync.Mutex
	movements []string
	failures  []string
}

func (m *recordingMetrics) MovementRecorded(kind string, _ decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements = append(m.movements, kind)
}

func (m *recordingMetrics) OperationFailed(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, op)
}

var errCommit = errors.New("commit rechazado")

// failingCommit ejecuta el cuerpo de la tx completo y luego falla como lo haría un commit.
type failingCommit struct{ *memory.Store }

func (f failingCommit) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	balanceRepo repository.BalanceRepository,
	itemRepo repository.StockItemRepository,
) error) error {
	return f.Store.Run(ctx, func(m repository.MovementRepository, b repository.BalanceRepository, i repository.StockItemRepository) error {
		if err := fn(m, b, i); err != nil {
			return err
		}
		return errCommit
	})
}

func TestMetrics_SoloCuentaMovimientosConfirmados(t *testing.T) {
	f := newFixture(t, inventory.DefaultPolicy())
	it := f.item(t, farmA, "Dairy Meal", "100", nil)
	recorded := &recordingMetrics{}
	deps := inventory.LedgerDeps{
		TxRunner:    failingCommit{f.store},
		ItemRepo:    f.store.Items(),
		BalanceRepo: f.store.Balances(),
		MovRepo:     f.store.Movements(),
		Policy:      inventory.DefaultPolicy(),
		Metrics:     recorded,
	}

	_, err := inventory.NewLedger(deps).RecordPurchase(context.Background(), inventory.MovementInput{
		FarmID: farmA, ItemID: it.ID, Quantity: d("10"),
	})
	require.ErrorIs(t, err, errCommit)
	assert.Empty(t, recorded.movements, "un movimiento deshecho no se cuenta")
	assert.True(t, f.balance(t, it).IsZero())

	deps.TxRunner = f.store
	_, err = inventory.NewLedger(deps).RecordPurchase(context.Background(), inventory.MovementInput{
		FarmID: farmA, ItemID: it.ID, Quantity: d("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{entity.MovementPurchaseIn}, recorded.movements)
}
