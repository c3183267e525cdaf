package repository

import (
	"context"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

// SnapshotRepository define el puerto para consultar/actualizar el stock
// materializado de un artículo. Usado dentro de transacciones para garantizar
// consistencia con el movimiento insertado.
type SnapshotRepository interface {
	Get(ctx context.Context, itemID string) (*entity.StockSnapshot, error)
	Upsert(ctx context.Context, snapshot *entity.StockSnapshot) error
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) para serializar
	// escritores concurrentes sobre el mismo artículo.
	GetForUpdate(ctx context.Context, itemID string) (*entity.StockSnapshot, error)
}
