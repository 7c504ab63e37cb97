package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/dairy-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad del libro: saldo y movimiento se confirman juntos o no se confirman.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		balanceRepo repository.BalanceRepository,
		itemRepo repository.StockItemRepository,
	) error) error

	// RunFeed igual que Run, más los repositorios de compras y consumos (eventos que disparan el libro).
	RunFeed(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		balanceRepo repository.BalanceRepository,
		itemRepo repository.StockItemRepository,
		purchaseRepo repository.PurchaseRepository,
		usageRepo repository.UsageRepository,
	) error) error
}

// Severidades de alerta.
const (
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// LowStockAlert evento emitido cuando un insumo cruza su nivel de reorden hacia abajo.
type LowStockAlert struct {
	FarmID         string          `json:"farm_id"`
	ItemID         string          `json:"item_id"`
	ItemName       string          `json:"item_name"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	ReorderLevel   decimal.Decimal `json:"reorder_level"`
	Unit           string          `json:"unit"`
	Severity       string          `json:"severity"`
	MovementID     string          `json:"movement_id"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// AlertPublisher publica alertas fuera del servicio (Kafka en producción).
type AlertPublisher interface {
	PublishLowStock(ctx context.Context, alert LowStockAlert) error
}

// Metrics registra la actividad del libro. Lo implementa el adaptador Prometheus.
type Metrics interface {
	MovementRecorded(kind string, quantity decimal.Decimal)
	OperationFailed(operation string)
}

type nopMetrics struct{}

func (nopMetrics) MovementRecorded(string, decimal.Decimal) {}
func (nopMetrics) OperationFailed(string)                   {}
