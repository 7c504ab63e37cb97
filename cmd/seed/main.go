// seed crea un insumo de ejemplo (Dairy Meal, reorden 100 kg) con una compra inicial de 500 kg
// en la granja indicada. Pensado para entornos locales.
//
// Uso: go run ./cmd/seed [farm_id]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jhoicas/dairy-ledger/internal/application/dto"
	"github.com/jhoicas/dairy-ledger/internal/application/inventory"
	"github.com/jhoicas/dairy-ledger/internal/application/usecase"
	"github.com/jhoicas/dairy-ledger/internal/domain"
	"github.com/jhoicas/dairy-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/dairy-ledger/pkg/config"
	"github.com/jhoicas/dairy-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

const seedUser = "seed"

func main() {
	farmID := "demo-farm"
	if len(os.Args) > 1 {
		farmID = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("crear esquema del libro")
	}

	itemRepo := postgres.NewStockItemRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	ledger := inventory.NewLedger(inventory.LedgerDeps{
		TxRunner:    txRunner,
		ItemRepo:    itemRepo,
		BalanceRepo: postgres.NewBalanceRepository(pool),
		MovRepo:     postgres.NewMovementRepository(pool),
		Policy:      inventory.DefaultPolicy(),
		Log:         log,
	})
	items := usecase.NewStockItemUseCase(itemRepo, ledger)
	purchases := inventory.NewPurchaseUseCase(txRunner, ledger, postgres.NewPurchaseRepository(pool))

	item, err := items.Create(ctx, farmID, dto.CreateStockItemRequest{
		Name:         "Dairy Meal",
		Category:     "concentrate",
		Unit:         "kg",
		ReorderLevel: decimal.NewFromInt(100),
	})
	if errors.Is(err, domain.ErrDuplicate) {
		log.Info().Str("farm_id", farmID).Msg("Dairy Meal ya existe, nada que sembrar")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("crear insumo")
	}

	price := decimal.RequireFromString("0.65")
	out, err := purchases.Create(ctx, farmID, seedUser, dto.CreatePurchaseRequest{
		ItemID:    item.ID,
		Quantity:  decimal.NewFromInt(500),
		UnitPrice: &price,
		Supplier:  "Proveedor demo",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("registrar compra inicial")
	}
	log.Info().
		Str("farm_id", farmID).
		Str("item_id", item.ID).
		Str("balance", out.Movement.BalanceAfter.String()).
		Msg("semilla creada")
}
