package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest body para POST /api/inventory/movements.
// expected_previous_stock y new_stock sólo aplican a type=adjustment.
type RecordMovementRequest struct {
	ItemID                string           `json:"item_id"`
	Type                  string           `json:"type"`
	Quantity              decimal.Decimal  `json:"quantity"`
	ExpectedPreviousStock *decimal.Decimal `json:"expected_previous_stock,omitempty"`
	NewStock              *decimal.Decimal `json:"new_stock,omitempty"`
	Reference             string           `json:"reference,omitempty"`
	Notes                 string           `json:"notes,omitempty"`
	Location              string           `json:"location,omitempty"`
}

// MovementResponse movimiento persistido.
type MovementResponse struct {
	ID            string           `json:"id"`
	ItemID        string           `json:"item_id"`
	Type          string           `json:"type"`
	Quantity      decimal.Decimal  `json:"quantity"`
	PreviousStock *decimal.Decimal `json:"previous_stock,omitempty"`
	NewStock      *decimal.Decimal `json:"new_stock,omitempty"`
	Reference     string           `json:"reference,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	Location      string           `json:"location,omitempty"`
	CreatedBy     string           `json:"created_by,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// StockResponse stock actual de un artículo.
type StockResponse struct {
	ItemID       string          `json:"item_id"`
	CurrentStock decimal.Decimal `json:"current_stock"`
}

// HistoryEntryResponse movimiento con el stock corriente reconstruido.
type HistoryEntryResponse struct {
	Movement   MovementResponse `json:"movement"`
	StockAfter decimal.Decimal  `json:"stock_after"`
}

// BatchAdjustmentRequest body para POST /api/inventory/adjustments/batch.
type BatchAdjustmentRequest struct {
	Adjustments []BatchAdjustmentItem `json:"adjustments"`
}

// BatchAdjustmentItem corrección individual dentro del lote.
type BatchAdjustmentItem struct {
	ItemID                string          `json:"item_id"`
	ExpectedPreviousStock decimal.Decimal `json:"expected_previous_stock"`
	NewStock              decimal.Decimal `json:"new_stock"`
	Notes                 string          `json:"notes,omitempty"`
}

// BatchResultResponse resultado del lote, ítem por ítem.
type BatchResultResponse struct {
	BatchID      string                `json:"batch_id"`
	SuccessCount int                   `json:"success_count"`
	FailureCount int                   `json:"failure_count"`
	Results      []BatchItemResultResp `json:"results"`
}

// BatchItemResultResp resultado de un ítem: movement_id si aplicó, error si no.
type BatchItemResultResp struct {
	ItemID     string `json:"item_id"`
	MovementID string `json:"movement_id,omitempty"`
	Error      string `json:"error,omitempty"`
}
