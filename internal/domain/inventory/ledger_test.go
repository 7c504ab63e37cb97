package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dairy-ledger/internal/domain"
	"github.com/jhoicas/dairy-ledger/internal/domain/entity"
	"github.com/jhoicas/dairy-ledger/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mov(seq int64, before, delta string) *entity.InventoryMovement {
	b := d(before)
	q := d(delta)
	return &entity.InventoryMovement{Seq: seq, BalanceBefore: b, Quantity: q, BalanceAfter: b.Add(q)}
}

func TestIsLowStock_IgualdadCuentaComoBajo(t *testing.T) {
	assert.True(t, inventory.IsLowStock(d("100"), d("100")), "saldo == reorden debe ser bajo")
	assert.True(t, inventory.IsLowStock(d("99.99"), d("100")))
	assert.False(t, inventory.IsLowStock(d("100.01"), d("100")))
	assert.True(t, inventory.IsLowStock(d("-30"), d("0")))
}

func TestDaysRemaining_SinConsumoDevuelveNil(t *testing.T) {
	assert.Nil(t, inventory.DaysRemaining(d("500"), decimal.Zero, 30))
	assert.Nil(t, inventory.DaysRemaining(d("0"), decimal.Zero, 30))
}

func TestDaysRemaining_Floor(t *testing.T) {
	// 500 kg consumidos en 30 días -> 16.67 kg/día; 100 kg alcanzan 6 días
	days := inventory.DaysRemaining(d("100"), d("500"), 30)
	require.NotNil(t, days)
	assert.Equal(t, int64(6), *days)

	// 1500 kg / 30 = 50 kg/día; 100 kg -> exactamente 2
	days = inventory.DaysRemaining(d("100"), d("1500"), 30)
	require.NotNil(t, days)
	assert.Equal(t, int64(2), *days)
}

func TestDaysRemaining_SaldoNegativo(t *testing.T) {
	days := inventory.DaysRemaining(d("-30"), d("30"), 30)
	require.NotNil(t, days)
	assert.Equal(t, int64(-30), *days)
}

func TestReplay_ReproduceSaldo(t *testing.T) {
	// desordenados a propósito: Replay ordena por Seq
	movements := []*entity.InventoryMovement{
		mov(3, "450", "-50"),
		mov(1, "0", "500"),
		mov(2, "500", "-50"),
	}
	final, err := inventory.Replay(movements)
	require.NoError(t, err)
	assert.True(t, final.Equal(d("400")), "final = %s", final)
}

func TestReplay_DetectaCadenaRota(t *testing.T) {
	movements := []*entity.InventoryMovement{
		mov(1, "0", "500"),
		mov(2, "400", "-50"), // debería partir de 500
	}
	_, err := inventory.Replay(movements)
	assert.ErrorIs(t, err, domain.ErrConsistency)
}

func TestCheckMovement_DetectaAritmeticaIncorrecta(t *testing.T) {
	m := &entity.InventoryMovement{BalanceBefore: d("10"), Quantity: d("5"), BalanceAfter: d("16")}
	assert.ErrorIs(t, inventory.CheckMovement(m), domain.ErrConsistency)
}

func TestWeightedCost(t *testing.T) {
	cost := inventory.WeightedCost(d("100"), decimal.NewNullDecimal(d("50")), d("100"), d("70"))
	assert.True(t, cost.Equal(d("60")), "cost = %s", cost)

	// sin costo previo se toma el precio de compra
	cost = inventory.WeightedCost(d("100"), decimal.NullDecimal{}, d("10"), d("42"))
	assert.True(t, cost.Equal(d("42")))

	// saldo negativo: no se pondera
	cost = inventory.WeightedCost(d("-30"), decimal.NewNullDecimal(d("50")), d("100"), d("70"))
	assert.True(t, cost.Equal(d("70")))
}
