package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

// EffectOf implementa el delta con signo de un movimiento sobre el stock
// (servicio de dominio, puro y determinista).
//
//	in, return  -> +cantidad
//	out, damage -> -cantidad
//	transfer    -> 0 (el efecto recae sobre el par de artículos, fuera del
//	               alcance mono-artículo de este núcleo; el caller emite dos
//	               movimientos si lo necesita)
//	adjustment  -> 0 (no es un delta: es una aserción de valor absoluto que
//	               el motor modela aparte, ver Movement.PreviousStock/NewStock)
func EffectOf(movementType string, quantity decimal.Decimal) decimal.Decimal {
	switch movementType {
	case entity.MovementTypeIn, entity.MovementTypeReturn:
		return quantity
	case entity.MovementTypeOut, entity.MovementTypeDamage:
		return quantity.Neg()
	}
	return decimal.Zero
}

// Replay reproduce una secuencia de movimientos (orden cronológico ascendente)
// partiendo de un stock inicial y devuelve el stock resultante. Los movimientos
// adjustment no aportan delta: reemplazan el valor acumulado por su NewStock.
func Replay(initial decimal.Decimal, movements []*entity.Movement) decimal.Decimal {
	stock := initial
	for _, m := range movements {
		if m.IsAdjustment() {
			if m.NewStock != nil {
				stock = *m.NewStock
			}
			continue
		}
		stock = stock.Add(EffectOf(m.Type, m.Quantity))
	}
	return stock
}
