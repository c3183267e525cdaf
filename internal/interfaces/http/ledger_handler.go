package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ledger-api/internal/application/dto"
	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	domledger "github.com/jhoicas/ledger-api/internal/domain/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

// LedgerHandler maneja las peticiones HTTP del ledger de stock (protegido).
type LedgerHandler struct {
	engine *ledger.Engine
	reader *ledger.Reader
	bulk   *ledger.BulkAdjuster
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(engine *ledger.Engine, reader *ledger.Reader, bulk *ledger.BulkAdjuster) *LedgerHandler {
	return &LedgerHandler{engine: engine, reader: reader, bulk: bulk}
}

// RecordMovement registra un movimiento de stock.
// POST /api/inventory/movements
func (h *LedgerHandler) RecordMovement(c *fiber.Ctx) error {
	actor := GetActor(c)
	if actor == "" {
		return writeDomainError(c, domain.ErrUnauthorized)
	}
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.engine.Record(c.Context(), ledger.RecordInput{
		ItemID:                in.ItemID,
		Type:                  in.Type,
		Quantity:              in.Quantity,
		ExpectedPreviousStock: in.ExpectedPreviousStock,
		NewStock:              in.NewStock,
		Reference:             in.Reference,
		Notes:                 in.Notes,
		Location:              in.Location,
		Actor:                 actor,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// GetStock devuelve el stock actual. use_cache=false fuerza la lectura del
// snapshot durable.
// GET /api/inventory/items/:id/stock
func (h *LedgerHandler) GetStock(c *fiber.Ctx) error {
	itemID := c.Params("id")
	useCache := c.QueryBool("use_cache", true)
	stock, err := h.reader.GetCurrentStock(c.Context(), itemID, useCache)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.StockResponse{ItemID: itemID, CurrentStock: stock})
}

// GetHistory devuelve el historial del artículo con el stock corriente
// reconstruido en cada movimiento.
// GET /api/inventory/items/:id/history
func (h *LedgerHandler) GetHistory(c *fiber.Ctx) error {
	itemID := c.Params("id")
	filter, err := historyFilterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	points, err := h.reader.GetHistory(c.Context(), itemID, filter)
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]dto.HistoryEntryResponse, 0, len(points))
	for _, p := range points {
		out = append(out, toHistoryEntry(p))
	}
	return c.JSON(out)
}

// ApplyBatch aplica un lote de correcciones de stock con fallos aislados por
// ítem.
// POST /api/inventory/adjustments/batch
func (h *LedgerHandler) ApplyBatch(c *fiber.Ctx) error {
	actor := GetActor(c)
	if actor == "" {
		return writeDomainError(c, domain.ErrUnauthorized)
	}
	var in dto.BatchAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	adjustments := make([]entity.StockAdjustment, 0, len(in.Adjustments))
	for _, a := range in.Adjustments {
		adjustments = append(adjustments, entity.StockAdjustment{
			ItemID:                a.ItemID,
			ExpectedPreviousStock: a.ExpectedPreviousStock,
			NewStock:              a.NewStock,
			Notes:                 a.Notes,
		})
	}
	result, err := h.bulk.ApplyBatch(c.Context(), adjustments, actor)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(toBatchResponse(result))
}

// historyFilterFromQuery parsea from/to (RFC3339), type, limit y offset.
func historyFilterFromQuery(c *fiber.Ctx) (repository.HistoryFilter, error) {
	var filter repository.HistoryFilter
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("from debe ser RFC3339")
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("to debe ser RFC3339")
		}
		filter.To = &t
	}
	if raw := c.Query("type"); raw != "" {
		filter.Types = []string{raw}
	}
	var page dto.PageRequest
	page.Limit = c.QueryInt("limit")
	page.Offset = c.QueryInt("offset")
	page.DefaultPage()
	filter.Limit = page.Limit
	filter.Offset = page.Offset
	return filter, nil
}

// writeDomainError mapea los errores de dominio a estados HTTP.
func writeDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autorizado"})
	case errors.Is(err, domain.ErrInvalidMovement):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "movimiento inválido"})
	case errors.Is(err, domain.ErrItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrStaleAdjustment):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "STALE_ADJUSTMENT", Message: "el stock esperado no coincide con el actual"})
	case errors.Is(err, domain.ErrTransactionConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TX_CONFLICT", Message: "conflicto transaccional; reintente"})
	case errors.Is(err, domain.ErrBatchTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "BATCH_TOO_LARGE", Message: "lote demasiado grande"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		ItemID:        m.ItemID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		Reference:     m.Reference,
		Notes:         m.Notes,
		Location:      m.Location,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

func toHistoryEntry(p domledger.StockPoint) dto.HistoryEntryResponse {
	return dto.HistoryEntryResponse{
		Movement:   toMovementResponse(p.Movement),
		StockAfter: p.StockAfter,
	}
}

func toBatchResponse(r *entity.BatchResult) dto.BatchResultResponse {
	out := dto.BatchResultResponse{
		BatchID:      r.BatchID,
		SuccessCount: r.SuccessCount,
		FailureCount: r.FailureCount,
		Results:      make([]dto.BatchItemResultResp, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		item := dto.BatchItemResultResp{ItemID: res.ItemID, MovementID: res.MovementID}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		out.Results = append(out.Results, item)
	}
	return out
}
