package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

var _ repository.SnapshotRepository = (*SnapshotRepo)(nil)

// SnapshotRepo implementación de SnapshotRepository sobre PostgreSQL (usable
// con pool o tx).
type SnapshotRepo struct {
	q Querier
}

// NewSnapshotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSnapshotRepository(q Querier) *SnapshotRepo {
	return &SnapshotRepo{q: q}
}

// Get obtiene el snapshot de stock de un artículo. Si no existe fila devuelve
// un snapshot en cero: el snapshot se crea implícitamente en la primera
// referencia al artículo.
func (r *SnapshotRepo) Get(ctx context.Context, itemID string) (*entity.StockSnapshot, error) {
	query := `
		SELECT item_id, current_stock, last_updated_at
		FROM stock_snapshots WHERE item_id = $1`
	var s entity.StockSnapshot
	err := r.q.QueryRow(ctx, query, itemID).Scan(&s.ItemID, &s.CurrentStock, &s.LastUpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockSnapshot{ItemID: itemID, CurrentStock: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock snapshot: %w", err)
	}
	return &s, nil
}

// GetForUpdate obtiene el snapshot y bloquea la fila (SELECT FOR UPDATE) para
// serializar escritores concurrentes sobre el mismo artículo.
//
// Si el artículo aún no tiene fila, la crea en cero antes de bloquear: un
// SELECT FOR UPDATE sin fila no bloquea nada, y dos primeros movimientos
// concurrentes sobre un artículo nuevo pasarían ambos con before=0, pisándose
// el snapshot entre sí. Con el INSERT previo, el primero en llegar crea la
// fila y el segundo queda bloqueado en ella hasta el commit.
func (r *SnapshotRepo) GetForUpdate(ctx context.Context, itemID string) (*entity.StockSnapshot, error) {
	ensure := `
		INSERT INTO stock_snapshots (item_id)
		VALUES ($1)
		ON CONFLICT (item_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, ensure, itemID); err != nil {
		return nil, fmt.Errorf("ensure stock snapshot: %w", err)
	}

	query := `
		SELECT item_id, current_stock, last_updated_at
		FROM stock_snapshots WHERE item_id = $1
		FOR UPDATE`
	var s entity.StockSnapshot
	err := r.q.QueryRow(ctx, query, itemID).Scan(&s.ItemID, &s.CurrentStock, &s.LastUpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get stock snapshot for update: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza el stock materializado del artículo.
func (r *SnapshotRepo) Upsert(ctx context.Context, snapshot *entity.StockSnapshot) error {
	query := `
		INSERT INTO stock_snapshots (item_id, current_stock, last_updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (item_id)
		DO UPDATE SET current_stock = EXCLUDED.current_stock, last_updated_at = now()`
	_, err := r.q.Exec(ctx, query, snapshot.ItemID, snapshot.CurrentStock)
	if err != nil {
		return fmt.Errorf("upsert stock snapshot: %w", err)
	}
	return nil
}
