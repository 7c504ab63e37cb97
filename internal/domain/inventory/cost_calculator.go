package inventory

import "github.com/shopspring/decimal"

// WeightedCost implementa el costo promedio ponderado del insumo al recibir una compra.
// NuevoCosto = ((SaldoActual * CostoActual) + (CantEntrada * CostoEntrada)) / (SaldoActual + CantEntrada)
// Sin saldo positivo o sin costo previo conocido, el nuevo costo es el precio de la compra.
func WeightedCost(onHand decimal.Decimal, current decimal.NullDecimal, inQty, inCost decimal.Decimal) decimal.Decimal {
	if !current.Valid || onHand.LessThanOrEqual(decimal.Zero) {
		return inCost
	}
	sum := onHand.Add(inQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return inCost
	}
	num := onHand.Mul(current.Decimal).Add(inQty.Mul(inCost))
	return num.Div(sum).Round(4)
}
