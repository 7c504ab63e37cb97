// Package inventory contiene las reglas puras del libro de inventario: aplicación de
// movimientos, verificación del historial y proyecciones de stock.
package inventory

import (
	"fmt"
	"sort"

	"github.com/jhoicas/dairy-ledger/internal/domain"
	"github.com/jhoicas/dairy-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Apply devuelve el saldo antes y después de aplicar delta.
func Apply(onHand, delta decimal.Decimal) (before, after decimal.Decimal) {
	return onHand, onHand.Add(delta)
}

// CheckMovement verifica after = before + delta para un movimiento.
func CheckMovement(m *entity.InventoryMovement) error {
	if !m.BalanceBefore.Add(m.Quantity).Equal(m.BalanceAfter) {
		return fmt.Errorf("%w: movimiento %s: %s + %s != %s", domain.ErrConsistency,
			m.ID, m.BalanceBefore, m.Quantity, m.BalanceAfter)
	}
	return nil
}

// Replay reproduce el saldo desde cero aplicando los movimientos en orden de creación (Seq).
// Cada movimiento debe encadenar con el anterior: su BalanceBefore es el saldo acumulado.
func Replay(movements []*entity.InventoryMovement) (decimal.Decimal, error) {
	ordered := make([]*entity.InventoryMovement, len(movements))
	copy(ordered, movements)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Seq < ordered[j].Seq })

	running := decimal.Zero
	for _, m := range ordered {
		if !m.BalanceBefore.Equal(running) {
			return decimal.Zero, fmt.Errorf("%w: movimiento %s (seq %d) parte de %s, se esperaba %s",
				domain.ErrConsistency, m.ID, m.Seq, m.BalanceBefore, running)
		}
		if err := CheckMovement(m); err != nil {
			return decimal.Zero, err
		}
		running = running.Add(m.Quantity)
	}
	return running, nil
}

// IsLowStock es verdadero cuando el saldo está en o por debajo del nivel de reorden.
func IsLowStock(onHand, reorderLevel decimal.Decimal) bool {
	return onHand.LessThanOrEqual(reorderLevel)
}

// DaysRemaining estima los días de stock con el consumo promedio diario de la ventana.
// Devuelve nil si no hubo consumo en la ventana. floor(saldo / (consumo / días)).
func DaysRemaining(onHand, usageInWindow decimal.Decimal, windowDays int) *int64 {
	if windowDays <= 0 || usageInWindow.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	// saldo * días / consumo evita redondear el promedio diario
	days := onHand.Mul(decimal.NewFromInt(int64(windowDays))).Div(usageInWindow).Floor().IntPart()
	return &days
}
