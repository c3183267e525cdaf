package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de ledger:
// inserción del movimiento + actualización del snapshot, todo o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		snapRepo repository.SnapshotRepository,
	) error) error
}

// AuditSink recibe registros estructurados de cada mutación confirmada.
// Es fire-and-forget desde la perspectiva del motor: un fallo del sink se
// loguea pero nunca se propaga ni invalida el movimiento ya commiteado.
type AuditSink interface {
	Emit(ctx context.Context, record *entity.AuditRecord) error
}

// StockCache es el acelerador de lectura item -> último stock conocido.
// Nunca se consulta en el camino de escritura para decisiones de corrección;
// ante cualquier ambigüedad gana el snapshot durable.
type StockCache interface {
	Get(itemID string) (decimal.Decimal, bool)
	Set(itemID string, stock decimal.Decimal)
	Invalidate(itemID string)
	InvalidateAll()
}
