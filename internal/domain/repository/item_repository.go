package repository

import (
	"context"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

// ItemRepository es el colaborador externo de identidad de artículos: el
// núcleo sólo necesita saber si el artículo existe y su nombre (para
// legibilidad de auditoría). El catálogo completo vive en otro subsistema.
type ItemRepository interface {
	Exists(ctx context.Context, itemID string) (bool, error)
	Name(ctx context.Context, itemID string) (string, error)
	GetByID(ctx context.Context, itemID string) (*entity.Item, error)
}
