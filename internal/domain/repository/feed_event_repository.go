package repository

import (
	"context"
	"time"

	"github.com/jhoicas/dairy-ledger/internal/domain/entity"
)

// FeedEventFilter filtros comunes para compras y consumos.
type FeedEventFilter struct {
	FarmID string
	ItemID string
	CowID  string // solo consumos
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// PurchaseRepository puerto de persistencia para compras de alimento.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.FeedPurchase) error
	List(ctx context.Context, filter FeedEventFilter) ([]*entity.FeedPurchase, error)
}

// UsageRepository puerto de persistencia para consumos de alimento.
type UsageRepository interface {
	Create(ctx context.Context, usage *entity.FeedUsage) error
	List(ctx context.Context, filter FeedEventFilter) ([]*entity.FeedUsage, error)
}
