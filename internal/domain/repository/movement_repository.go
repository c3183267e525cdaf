package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

// HistoryFilter filtros para listar el historial de movimientos de un artículo.
type HistoryFilter struct {
	From   *time.Time
	To     *time.Time
	Types  []string
	Limit  int
	Offset int
}

// MovementRepository define el puerto de persistencia append-only para
// movimientos: la fuente de verdad de "qué pasó". No hay Update ni Delete.
// Se propaga ctx para que un timeout del caller cancele la consulta en vuelo.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// ListByItem devuelve los movimientos en orden cronológico ascendente,
	// como los espera la reconstrucción de historial.
	ListByItem(ctx context.Context, itemID string, filter HistoryFilter) ([]*entity.Movement, error)
}
