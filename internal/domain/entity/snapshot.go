package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockSnapshot representa el stock actual materializado de un artículo.
// Se crea implícitamente la primera vez que el artículo se referencia y sólo
// lo actualiza el motor de ledger dentro de la misma transacción que inserta
// el movimiento.
type StockSnapshot struct {
	ItemID        string
	CurrentStock  decimal.Decimal // nunca negativo
	LastUpdatedAt time.Time
}

// Item es la identidad mínima de un artículo rastreado. El catálogo completo
// (categorías, QR, etc.) vive fuera de este subsistema.
type Item struct {
	ID        string
	Name      string
	SKU       string
	CreatedAt time.Time
}
