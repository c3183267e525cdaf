package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	domledger "github.com/jhoicas/ledger-api/internal/domain/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
	"github.com/jhoicas/ledger-api/pkg/logger"
)

// Engine es el único camino de escritura del ledger: valida el movimiento,
// abre una transacción, inserta en el store append-only, actualiza el stock
// materializado, invalida la caché y emite auditoría tras el commit.
type Engine struct {
	txRunner TxRunner
	itemRepo repository.ItemRepository
	cache    StockCache
	audit    AuditSink
	log      *logger.Logger

	// Reintentos acotados sólo ante conflictos transaccionales transitorios
	// (serialization failure / deadlock). Todo lo demás se expone de inmediato.
	maxRetries int
}

// EngineConfig parámetros del motor.
type EngineConfig struct {
	MaxRetries int // reintentos ante ErrTransactionConflict (default 3)
}

// NewEngine construye el motor.
func NewEngine(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	cache StockCache,
	audit AuditSink,
	log *logger.Logger,
	cfg EngineConfig,
) *Engine {
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	return &Engine{
		txRunner:   txRunner,
		itemRepo:   itemRepo,
		cache:      cache,
		audit:      audit,
		log:        log,
		maxRetries: retries,
	}
}

// RecordInput entrada para registrar un movimiento.
// Para in/out/return/damage/transfer: ItemID, Type, Quantity > 0.
// Para adjustment: ItemID, ExpectedPreviousStock y NewStock (aserción de valor
// absoluto con chequeo optimista); Quantity se deriva como |new - expected|.
type RecordInput struct {
	ItemID                string
	Type                  string
	Quantity              decimal.Decimal
	ExpectedPreviousStock *decimal.Decimal
	NewStock              *decimal.Decimal
	Reference             string
	Notes                 string
	Location              string
	Actor                 string
}

// Record registra un movimiento de stock de forma atómica y devuelve el
// movimiento persistido. El chequeo de stock insuficiente (débitos) y el
// chequeo optimista (adjustment) ocurren dentro de la misma transacción que
// la escritura, con la fila del snapshot bloqueada (SELECT FOR UPDATE), de
// modo que dos débitos concurrentes sobre el mismo artículo quedan
// serializados y nunca pasan ambos el chequeo contra el mismo valor previo.
func (e *Engine) Record(ctx context.Context, input RecordInput) (*entity.Movement, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	// El artículo debe existir (colaborador externo de identidad).
	exists, err := e.itemRepo.Exists(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrItemNotFound
	}

	var (
		movement *entity.Movement
		before   decimal.Decimal
		after    decimal.Decimal
	)

	apply := func(movRepo repository.MovementRepository, snapRepo repository.SnapshotRepository) error {
		// Lectura no-cacheada del snapshot con bloqueo de fila: la caché
		// jamás decide correcciones.
		snap, err := snapRepo.GetForUpdate(ctx, input.ItemID)
		if err != nil {
			return err
		}
		before = snap.CurrentStock

		now := time.Now()
		mov := &entity.Movement{
			ID:        uuid.New().String(),
			ItemID:    input.ItemID,
			Type:      input.Type,
			Quantity:  input.Quantity,
			Reference: input.Reference,
			Notes:     input.Notes,
			Location:  input.Location,
			CreatedBy: input.Actor,
			CreatedAt: now,
		}

		switch input.Type {
		case entity.MovementTypeAdjustment:
			// Chequeo optimista: el stock esperado debe coincidir con el vivo.
			if !before.Equal(*input.ExpectedPreviousStock) {
				return domain.ErrStaleAdjustment
			}
			prev := before
			next := *input.NewStock
			mov.Quantity = next.Sub(prev).Abs()
			mov.PreviousStock = &prev
			mov.NewStock = &next
			after = next
		case entity.MovementTypeOut, entity.MovementTypeDamage:
			if before.LessThan(input.Quantity) {
				return domain.ErrInsufficientStock
			}
			after = before.Add(domledger.EffectOf(input.Type, input.Quantity))
		default:
			after = before.Add(domledger.EffectOf(input.Type, input.Quantity))
		}

		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		snap.CurrentStock = after
		snap.LastUpdatedAt = now
		if err := snapRepo.Upsert(ctx, snap); err != nil {
			return err
		}
		movement = mov
		return nil
	}

	if err := e.runWithRetry(ctx, apply); err != nil {
		return nil, err
	}

	// Tras el commit: invalidar (no repoblar; la próxima lectura rellena en
	// frío, evitando la carrera escribir-y-cachear-stale) y auditar.
	e.cache.Invalidate(input.ItemID)
	e.emitAudit(ctx, movement, before, after)
	return movement, nil
}

// runWithRetry ejecuta la transacción con reintentos acotados ante conflictos
// transitorios del store (lock wait / deadlock).
func (e *Engine) runWithRetry(ctx context.Context, apply func(repository.MovementRepository, repository.SnapshotRepository) error) error {
	var err error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		err = e.txRunner.Run(ctx, apply)
		if err == nil || !errors.Is(err, domain.ErrTransactionConflict) {
			return err
		}
		if attempt == e.maxRetries {
			break
		}
		e.log.Warn().
			Int("attempt", attempt).
			Msg("conflicto transaccional, reintentando movimiento")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 10 * time.Millisecond):
		}
	}
	return err
}

// emitAudit emite el registro de auditoría fuera de la transacción: una caída
// del sink no puede bloquear ni revertir un movimiento ya confirmado.
func (e *Engine) emitAudit(ctx context.Context, mov *entity.Movement, before, after decimal.Decimal) {
	itemName, err := e.itemRepo.Name(ctx, mov.ItemID)
	if err != nil {
		itemName = ""
	}
	record := &entity.AuditRecord{
		Action:    "stock_movement_" + mov.Type,
		ItemID:    mov.ItemID,
		ItemName:  itemName,
		Actor:     mov.CreatedBy,
		Before:    before,
		After:     after,
		Timestamp: mov.CreatedAt,
		Metadata: map[string]string{
			"movement_id": mov.ID,
			"quantity":    mov.Quantity.String(),
		},
	}
	if mov.Reference != "" {
		record.Metadata["reference"] = mov.Reference
	}
	if err := e.audit.Emit(ctx, record); err != nil {
		e.log.Warn().Err(err).
			Str("movement_id", mov.ID).
			Msg("fallo al emitir auditoría; el movimiento ya está confirmado")
	}
}

// validateInput rechaza el movimiento antes de abrir cualquier transacción.
func validateInput(input RecordInput) error {
	if input.ItemID == "" || !entity.KnownMovementType(input.Type) {
		return domain.ErrInvalidMovement
	}
	if input.Type == entity.MovementTypeAdjustment {
		if input.ExpectedPreviousStock == nil || input.NewStock == nil {
			return domain.ErrInvalidMovement
		}
		if input.NewStock.IsNegative() || input.ExpectedPreviousStock.IsNegative() {
			return domain.ErrInvalidMovement
		}
		return nil
	}
	if !input.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidMovement
	}
	return nil
}
