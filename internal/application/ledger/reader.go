package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/domain"
	domledger "github.com/jhoicas/ledger-api/internal/domain/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

// Reader es el camino de lectura: stock actual (con o sin caché) e historial
// con reconstrucción del stock corriente. No muta nada.
type Reader struct {
	movRepo  repository.MovementRepository
	snapRepo repository.SnapshotRepository
	itemRepo repository.ItemRepository
	cache    StockCache
}

// NewReader construye el servicio de lectura (repos atados al pool, no a una tx).
func NewReader(
	movRepo repository.MovementRepository,
	snapRepo repository.SnapshotRepository,
	itemRepo repository.ItemRepository,
	cache StockCache,
) *Reader {
	return &Reader{
		movRepo:  movRepo,
		snapRepo: snapRepo,
		itemRepo: itemRepo,
		cache:    cache,
	}
}

// GetCurrentStock devuelve el stock actual del artículo. Con useCache, un hit
// vigente (no expirado) se devuelve directo; en miss se consulta el snapshot
// durable y se repobla la caché de forma perezosa.
func (r *Reader) GetCurrentStock(ctx context.Context, itemID string, useCache bool) (decimal.Decimal, error) {
	if useCache {
		if stock, ok := r.cache.Get(itemID); ok {
			return stock, nil
		}
	}

	exists, err := r.itemRepo.Exists(ctx, itemID)
	if err != nil {
		return decimal.Zero, err
	}
	if !exists {
		return decimal.Zero, domain.ErrItemNotFound
	}

	snap, err := r.snapRepo.Get(ctx, itemID)
	if err != nil {
		return decimal.Zero, err
	}
	stock := decimal.Zero
	if snap != nil {
		stock = snap.CurrentStock
	}
	r.cache.Set(itemID, stock)
	return stock, nil
}

// GetHistory devuelve los movimientos del artículo (orden cronológico
// ascendente, paginación delegada al store) con el stock corriente
// reconstruido en cada punto, anclado en el stock actual.
//
// Si el filtro no cubre el historial completo, los valores reconstruidos sólo
// son válidos relativos al extremo final de la rebanada (ver
// ledger.Reconstruct).
func (r *Reader) GetHistory(ctx context.Context, itemID string, filter repository.HistoryFilter) ([]domledger.StockPoint, error) {
	exists, err := r.itemRepo.Exists(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrItemNotFound
	}

	movements, err := r.movRepo.ListByItem(ctx, itemID, filter)
	if err != nil {
		return nil, err
	}
	current, err := r.GetCurrentStock(ctx, itemID, false)
	if err != nil {
		return nil, err
	}
	return domledger.Reconstruct(movements, current), nil
}
