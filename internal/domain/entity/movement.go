package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeIn         = "in"         // entrada
	MovementTypeOut        = "out"        // salida
	MovementTypeAdjustment = "adjustment" // ajuste a valor absoluto
	MovementTypeReturn     = "return"     // devolución (suma)
	MovementTypeDamage     = "damage"     // merma por daño (resta)
	MovementTypeTransfer   = "transfer"   // traslado; efecto cero sobre el artículo registrado
)

// KnownMovementType indica si el tipo es uno de los seis conocidos.
func KnownMovementType(t string) bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment,
		MovementTypeReturn, MovementTypeDamage, MovementTypeTransfer:
		return true
	}
	return false
}

// Movement representa un movimiento de stock. Una vez persistido es inmutable:
// las correcciones se expresan como nuevos movimientos de tipo adjustment con
// el stock anterior y el nuevo registrados en PreviousStock/NewStock.
type Movement struct {
	ID        string
	ItemID    string
	Type      string
	Quantity  decimal.Decimal // magnitud siempre positiva; el signo lo decide el tipo

	// Sólo para adjustment: aserción de valor absoluto (antes/después).
	PreviousStock *decimal.Decimal
	NewStock      *decimal.Decimal

	Reference string
	Notes     string
	Location  string
	CreatedBy string
	CreatedAt time.Time
}

// IsAdjustment indica si el movimiento es una aserción de valor absoluto.
func (m *Movement) IsAdjustment() bool {
	return m.Type == MovementTypeAdjustment
}
