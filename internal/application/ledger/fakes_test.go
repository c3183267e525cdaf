package ledger_test

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. memStore emula el store transaccional: Run toma un mutex
// único (equivalente al bloqueo de fila: serializa escritores) y revierte los
// cambios si el callback falla, como haría el Rollback real.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	movements []*entity.Movement
	snapshots map[string]entity.StockSnapshot
}

func newMemStore() *memStore {
	return &memStore{snapshots: make(map[string]entity.StockSnapshot)}
}

func (s *memStore) seed(itemID string, stock int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[itemID] = entity.StockSnapshot{ItemID: itemID, CurrentStock: decimal.NewFromInt(stock)}
}

func (s *memStore) stockOf(itemID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[itemID].CurrentStock
}

func (s *memStore) movementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

var _ ledger.TxRunner = (*memStore)(nil)

func (s *memStore) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	snapRepo repository.SnapshotRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	// Copias para el rollback.
	movLen := len(s.movements)
	snapCopy := make(map[string]entity.StockSnapshot, len(s.snapshots))
	for k, v := range s.snapshots {
		snapCopy[k] = v
	}

	err := fn(&memMovementRepo{s: s}, &memSnapshotRepo{s: s})
	if err != nil {
		s.movements = s.movements[:movLen]
		s.snapshots = snapCopy
		return err
	}
	if err := ctx.Err(); err != nil {
		// Cancelado antes del commit: como si nunca hubiera ocurrido.
		s.movements = s.movements[:movLen]
		s.snapshots = snapCopy
		return err
	}
	return nil
}

// memMovementRepo y memSnapshotRepo operan con el lock del store ya tomado
// (sólo viven dentro de Run).

type memMovementRepo struct{ s *memStore }

var _ repository.MovementRepository = (*memMovementRepo)(nil)

func (r *memMovementRepo) Create(_ context.Context, movement *entity.Movement) error {
	cp := *movement
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *memMovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) ListByItem(_ context.Context, itemID string, filter repository.HistoryFilter) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.s.movements {
		if m.ItemID == itemID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memSnapshotRepo struct{ s *memStore }

var _ repository.SnapshotRepository = (*memSnapshotRepo)(nil)

func (r *memSnapshotRepo) Get(_ context.Context, itemID string) (*entity.StockSnapshot, error) {
	if snap, ok := r.s.snapshots[itemID]; ok {
		cp := snap
		return &cp, nil
	}
	return &entity.StockSnapshot{ItemID: itemID, CurrentStock: decimal.Zero}, nil
}

func (r *memSnapshotRepo) GetForUpdate(ctx context.Context, itemID string) (*entity.StockSnapshot, error) {
	return r.Get(ctx, itemID)
}

func (r *memSnapshotRepo) Upsert(_ context.Context, snapshot *entity.StockSnapshot) error {
	r.s.snapshots[snapshot.ItemID] = *snapshot
	return nil
}

// poolMovementRepo / poolSnapshotRepo emulan repos atados al pool (fuera de
// tx): toman el lock por llamada. Para el camino de lectura del Reader.

type poolMovementRepo struct{ s *memStore }

var _ repository.MovementRepository = (*poolMovementRepo)(nil)

func (r *poolMovementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&memMovementRepo{s: r.s}).Create(ctx, movement)
}

func (r *poolMovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&memMovementRepo{s: r.s}).GetByID(ctx, id)
}

func (r *poolMovementRepo) ListByItem(ctx context.Context, itemID string, filter repository.HistoryFilter) ([]*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&memMovementRepo{s: r.s}).ListByItem(ctx, itemID, filter)
}

type poolSnapshotRepo struct {
	s    *memStore
	gets int
}

var _ repository.SnapshotRepository = (*poolSnapshotRepo)(nil)

func (r *poolSnapshotRepo) Get(ctx context.Context, itemID string) (*entity.StockSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.gets++
	return (&memSnapshotRepo{s: r.s}).Get(ctx, itemID)
}

func (r *poolSnapshotRepo) GetForUpdate(ctx context.Context, itemID string) (*entity.StockSnapshot, error) {
	return r.Get(ctx, itemID)
}

func (r *poolSnapshotRepo) Upsert(ctx context.Context, snapshot *entity.StockSnapshot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&memSnapshotRepo{s: r.s}).Upsert(ctx, snapshot)
}

// conflictRunner envuelve un TxRunner y falla las primeras n llamadas con
// ErrTransactionConflict, para ejercitar el reintento del motor.
type conflictRunner struct {
	inner     ledger.TxRunner
	mu        sync.Mutex
	conflicts int
	calls     int
}

var _ ledger.TxRunner = (*conflictRunner)(nil)

func (r *conflictRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	snapRepo repository.SnapshotRepository,
) error) error {
	r.mu.Lock()
	r.calls++
	fail := r.calls <= r.conflicts
	r.mu.Unlock()
	if fail {
		return domain.ErrTransactionConflict
	}
	return r.inner.Run(ctx, fn)
}

// stallRunner envuelve un TxRunner y bloquea la llamada n-ésima hasta que su
// ctx expire, para ejercitar el timeout por ítem de los lotes.
type stallRunner struct {
	inner ledger.TxRunner
	mu    sync.Mutex
	calls int
	stall int // llamada (1-based) que se queda colgada hasta ctx.Done
}

var _ ledger.TxRunner = (*stallRunner)(nil)

func (r *stallRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	snapRepo repository.SnapshotRepository,
) error) error {
	r.mu.Lock()
	r.calls++
	blocked := r.calls == r.stall
	r.mu.Unlock()
	if blocked {
		<-ctx.Done()
		return ctx.Err()
	}
	return r.inner.Run(ctx, fn)
}

// fakeItems colaborador de identidad de artículos.
type fakeItems struct {
	names map[string]string
}

var _ repository.ItemRepository = (*fakeItems)(nil)

func newFakeItems(ids ...string) *fakeItems {
	f := &fakeItems{names: make(map[string]string)}
	for _, id := range ids {
		f.names[id] = "artículo " + id
	}
	return f
}

func (f *fakeItems) Exists(_ context.Context, itemID string) (bool, error) {
	_, ok := f.names[itemID]
	return ok, nil
}

func (f *fakeItems) Name(_ context.Context, itemID string) (string, error) {
	return f.names[itemID], nil
}

func (f *fakeItems) GetByID(_ context.Context, itemID string) (*entity.Item, error) {
	name, ok := f.names[itemID]
	if !ok {
		return nil, nil
	}
	return &entity.Item{ID: itemID, Name: name}, nil
}

// fakeCache caché mínima con contador de invalidaciones.
type fakeCache struct {
	mu            sync.Mutex
	entries       map[string]decimal.Decimal
	invalidations int
}

var _ ledger.StockCache = (*fakeCache)(nil)

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]decimal.Decimal)}
}

func (c *fakeCache) Get(itemID string) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[itemID]
	return v, ok
}

func (c *fakeCache) Set(itemID string, stock decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[itemID] = stock
}

func (c *fakeCache) Invalidate(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, itemID)
	c.invalidations++
}

func (c *fakeCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]decimal.Decimal)
}

// recordingSink acumula los registros de auditoría emitidos; puede forzarse a
// fallar para verificar que la emisión es fire-and-forget.
type recordingSink struct {
	mu      sync.Mutex
	records []*entity.AuditRecord
	err     error
}

var _ ledger.AuditSink = (*recordingSink)(nil)

func (s *recordingSink) Emit(_ context.Context, record *entity.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

func (s *recordingSink) byAction(action string) []*entity.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.AuditRecord
	for _, r := range s.records {
		if r.Action == action {
			out = append(out, r)
		}
	}
	return out
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
