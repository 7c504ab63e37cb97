package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/dairy-ledger/internal/application/dto"
	"github.com/jhoicas/dairy-ledger/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// idealStockFactor nivel objetivo tras reponer, como múltiplo del nivel de reorden.
var idealStockFactor = decimal.NewFromFloat(1.5)

// ReplenishmentUseCase genera la lista de reposición de alimento de una granja.
// Parte de los saldos en o por debajo del nivel de reorden y prioriza por días restantes.
type ReplenishmentUseCase struct {
	ledger *Ledger
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(ledger *Ledger) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{ledger: ledger}
}

// GenerateReplenishmentList devuelve los insumos con stock bajo, la cantidad sugerida de compra
// (reorden * 1.5 - saldo) y su costo estimado. Orden: menos días restantes primero; los insumos
// sin consumo reciente van al final; empate por mayor déficit.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, farmID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	pairs, err := uc.ledger.farmBalances(ctx, farmID)
	if err != nil {
		return nil, err
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0)
	for _, p := range pairs {
		onHand := p.balance.QuantityOnHand
		if !inventory.IsLowStock(onHand, p.item.ReorderLevel) {
			continue
		}
		ideal := p.item.ReorderLevel.Mul(idealStockFactor)
		suggested := ideal.Sub(onHand)
		if suggested.LessThan(decimal.Zero) {
			suggested = decimal.Zero
		}
		days, err := uc.ledger.daysRemaining(ctx, p.item, p.balance)
		if err != nil {
			return nil, err
		}
		s := dto.ReplenishmentSuggestionDTO{
			ItemID:            p.item.ID,
			ItemName:          p.item.Name,
			Category:          p.item.Category,
			Unit:              p.balance.Unit,
			CurrentStock:      onHand,
			ReorderLevel:      p.item.ReorderLevel,
			IdealStock:        ideal,
			SuggestedOrderQty: suggested,
			DaysRemaining:     days,
		}
		if p.item.CostPerUnit.Valid {
			cost := p.item.CostPerUnit.Decimal
			est := suggested.Mul(cost).Round(2)
			s.UnitCost = &cost
			s.EstimatedOrderCost = &est
		}
		suggestions = append(suggestions, s)
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if (a.DaysRemaining == nil) != (b.DaysRemaining == nil) {
			return a.DaysRemaining != nil
		}
		if a.DaysRemaining != nil && *a.DaysRemaining != *b.DaysRemaining {
			return *a.DaysRemaining < *b.DaysRemaining
		}
		defA := a.ReorderLevel.Sub(a.CurrentStock)
		defB := b.ReorderLevel.Sub(b.CurrentStock)
		return defA.GreaterThan(defB)
	})

	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
