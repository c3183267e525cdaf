package entity

import "github.com/shopspring/decimal"

// StockAdjustment es una corrección "stock esperado → stock nuevo" dentro de
// un lote. ExpectedPreviousStock es el chequeo optimista: si no coincide con
// el valor vivo al momento de escribir, el ítem falla con ErrStaleAdjustment.
type StockAdjustment struct {
	ItemID                string
	ExpectedPreviousStock decimal.Decimal
	NewStock              decimal.Decimal
	Notes                 string
}

// AdjustmentResult resultado individual de un ítem del lote: o bien el ID del
// movimiento aplicado, o bien la razón del fallo.
type AdjustmentResult struct {
	ItemID     string
	MovementID string
	Err        error
}

// OK indica si el ajuste del ítem quedó aplicado de forma durable.
func (r AdjustmentResult) OK() bool { return r.Err == nil }

// BatchResult resultado agregado de un lote de ajustes. Los fallos son por
// ítem: un ítem fallido nunca aborta el resto del lote.
type BatchResult struct {
	BatchID      string
	Results      []AdjustmentResult
	SuccessCount int
	FailureCount int
}
