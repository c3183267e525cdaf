package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación mínima del colaborador de identidad de artículos
// sobre PostgreSQL. El catálogo completo (categorías, QR) vive en otro
// servicio; aquí sólo existencia y nombre.
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Exists indica si el artículo existe.
func (r *ItemRepo) Exists(ctx context.Context, itemID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`
	if err := r.q.QueryRow(ctx, query, itemID).Scan(&exists); err != nil {
		return false, fmt.Errorf("item exists: %w", err)
	}
	return exists, nil
}

// Name devuelve el nombre del artículo (para legibilidad de auditoría).
func (r *ItemRepo) Name(ctx context.Context, itemID string) (string, error) {
	var name string
	query := `SELECT name FROM items WHERE id = $1`
	err := r.q.QueryRow(ctx, query, itemID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("item name: %w", err)
	}
	return name, nil
}

// GetByID obtiene la identidad mínima del artículo.
func (r *ItemRepo) GetByID(ctx context.Context, itemID string) (*entity.Item, error) {
	query := `SELECT id, name, sku, created_at FROM items WHERE id = $1`
	var it entity.Item
	err := r.q.QueryRow(ctx, query, itemID).Scan(&it.ID, &it.Name, &it.SKU, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}
