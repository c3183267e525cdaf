package ledger

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/pkg/logger"
)

// BulkAdjuster aplica lotes de correcciones "stock esperado → stock nuevo".
// Cada ítem pasa por Engine.Record con type=adjustment bajo su propio chequeo
// optimista; un fallo en un ítem se registra en su slot de resultado y el
// procesamiento continúa: el lote nunca aborta por un solo ítem.
type BulkAdjuster struct {
	engine *Engine
	audit  AuditSink
	log    *logger.Logger

	maxBatchSize   int
	perItemTimeout time.Duration
}

// BulkConfig parámetros del lote.
type BulkConfig struct {
	MaxBatchSize   int           // default 100
	PerItemTimeout time.Duration // timeout por ítem, no por lote (default 5s)
}

// NewBulkAdjuster construye el aplicador de lotes.
func NewBulkAdjuster(engine *Engine, audit AuditSink, log *logger.Logger, cfg BulkConfig) *BulkAdjuster {
	size := cfg.MaxBatchSize
	if size <= 0 {
		size = 100
	}
	timeout := cfg.PerItemTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BulkAdjuster{
		engine:         engine,
		audit:          audit,
		log:            log,
		maxBatchSize:   size,
		perItemTimeout: timeout,
	}
}

// ApplyBatch aplica el lote y devuelve el resultado por ítem. Un lote que
// excede el tamaño máximo falla completo con ErrBatchTooLarge antes de tocar
// dato alguno. El resultado refleja exactamente lo aplicado de forma durable:
// ningún ítem se reporta exitoso sin que su transacción haya commiteado.
func (b *BulkAdjuster) ApplyBatch(ctx context.Context, adjustments []entity.StockAdjustment, actor string) (*entity.BatchResult, error) {
	if len(adjustments) > b.maxBatchSize {
		return nil, domain.ErrBatchTooLarge
	}

	result := &entity.BatchResult{
		BatchID: uuid.New().String(),
		Results: make([]entity.AdjustmentResult, 0, len(adjustments)),
	}

	for _, adj := range adjustments {
		// Timeout por ítem: un ítem lento no puede hacer que los demás se
		// reporten como vencidos.
		itemCtx, cancel := context.WithTimeout(ctx, b.perItemTimeout)
		expected := adj.ExpectedPreviousStock
		next := adj.NewStock
		mov, err := b.engine.Record(itemCtx, RecordInput{
			ItemID:                adj.ItemID,
			Type:                  entity.MovementTypeAdjustment,
			ExpectedPreviousStock: &expected,
			NewStock:              &next,
			Notes:                 adj.Notes,
			Reference:             "batch:" + result.BatchID,
			Actor:                 actor,
		})
		cancel()

		if err != nil {
			result.Results = append(result.Results, entity.AdjustmentResult{ItemID: adj.ItemID, Err: err})
			result.FailureCount++
			b.log.Debug().Err(err).
				Str("batch_id", result.BatchID).
				Str("item_id", adj.ItemID).
				Msg("ajuste de lote fallido; se continúa con el resto")
			continue
		}
		result.Results = append(result.Results, entity.AdjustmentResult{ItemID: adj.ItemID, MovementID: mov.ID})
		result.SuccessCount++
	}

	b.emitSummary(ctx, result, actor)
	return result, nil
}

// emitSummary emite el registro de auditoría resumen del lote, además de los
// registros por ítem que ya emitió cada Record exitoso.
func (b *BulkAdjuster) emitSummary(ctx context.Context, result *entity.BatchResult, actor string) {
	record := &entity.AuditRecord{
		Action:    "stock_batch_adjustment",
		Actor:     actor,
		Timestamp: time.Now(),
		Metadata: map[string]string{
			"batch_id":      result.BatchID,
			"success_count": strconv.Itoa(result.SuccessCount),
			"failure_count": strconv.Itoa(result.FailureCount),
		},
	}
	if err := b.audit.Emit(ctx, record); err != nil {
		b.log.Warn().Err(err).
			Str("batch_id", result.BatchID).
			Msg("fallo al emitir auditoría del lote")
	}
}
