package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

// StockPoint es un movimiento con el stock resultante después de aplicarlo.
type StockPoint struct {
	Movement   *entity.Movement
	StockAfter decimal.Decimal
}

// Reconstruct reconstruye el stock corriente en cada punto del historial.
//
// Recibe los movimientos en orden cronológico ascendente y el stock actual
// (valor presente). Recorre la lista en orden inverso: el stock *antes* de un
// movimiento es el stock después menos su efecto; para adjustment el "antes"
// es el PreviousStock registrado en el propio movimiento, no un delta
// calculado. Devuelve la lista en orden cronológico con el stock adjunto.
//
// Si la lista no cubre el historial completo (p. ej. paginación), los valores
// reconstruidos sólo son válidos relativos al extremo final de la rebanada:
// el valor anterior al primer movimiento de la rebanada no es verdad histórica
// absoluta. El valor reconstruido del movimiento más reciente siempre es
// currentStock.
func Reconstruct(movements []*entity.Movement, currentStock decimal.Decimal) []StockPoint {
	points := make([]StockPoint, len(movements))
	running := currentStock
	for i := len(movements) - 1; i >= 0; i-- {
		m := movements[i]
		points[i] = StockPoint{Movement: m, StockAfter: running}
		if m.IsAdjustment() {
			if m.PreviousStock != nil {
				running = *m.PreviousStock
			}
			continue
		}
		running = running.Sub(EffectOf(m.Type, m.Quantity))
	}
	return points
}
