package cache

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
)

// Ensure StockCache implements ledger.StockCache.
var _ ledger.StockCache = (*StockCache)(nil)

type entry struct {
	stock    decimal.Decimal
	cachedAt time.Time
}

// StockCache caché en memoria item -> último stock conocido, con TTL fijo y
// desalojo del más antiguo al superar el tamaño máximo. Es un acelerador de
// lectura: nunca es autoritativo, ante cualquier ambigüedad gana el snapshot
// durable. Nadie fuera de este tipo toca el map interno.
type StockCache struct {
	mu      sync.RWMutex
	entries map[string]entry

	ttl        time.Duration
	maxEntries int

	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
}

// Config parámetros de la caché.
type Config struct {
	TTL        time.Duration // default 60s
	MaxEntries int           // default 10000; el desalojo no es load-bearing, sólo acota memoria
	Registerer prometheus.Registerer
}

// New construye la caché y registra los contadores hit/miss/eviction.
func New(cfg Config) *StockCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	max := cfg.MaxEntries
	if max <= 0 {
		max = 10000
	}
	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &StockCache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: max,
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger", Subsystem: "stock_cache", Name: "hits_total",
			Help: "Lecturas de stock servidas desde la caché.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger", Subsystem: "stock_cache", Name: "misses_total",
			Help: "Lecturas de stock que fueron al snapshot durable.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger", Subsystem: "stock_cache", Name: "evictions_total",
			Help: "Entradas desalojadas por tamaño máximo.",
		}),
	}
	reg.MustRegister(c.hits, c.misses, c.evictions)
	return c
}

// Get devuelve el stock cacheado del artículo. Miss si la entrada no existe o
// su edad supera el TTL: una entrada expirada jamás se devuelve como hit.
func (c *StockCache) Get(itemID string) (decimal.Decimal, bool) {
	c.mu.RLock()
	e, ok := c.entries[itemID]
	c.mu.RUnlock()
	if !ok || time.Since(e.cachedAt) > c.ttl {
		c.misses.Inc()
		return decimal.Zero, false
	}
	c.hits.Inc()
	return e.stock, true
}

// Set guarda el stock del artículo. Si la caché está al tope y la clave es
// nueva, desaloja primero la entrada más antigua.
func (c *StockCache) Set(itemID string, stock decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[itemID]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[itemID] = entry{stock: stock, cachedAt: time.Now()}
}

// Invalidate elimina la entrada del artículo. Idempotente: invalidar dos
// veces seguidas es observacionalmente igual a invalidar una.
func (c *StockCache) Invalidate(itemID string) {
	c.mu.Lock()
	delete(c.entries, itemID)
	c.mu.Unlock()
}

// InvalidateAll vacía la caché completa.
func (c *StockCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len devuelve el número de entradas (incluidas expiradas aún no desalojadas).
func (c *StockCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictOldestLocked desaloja la entrada con cachedAt más antiguo. Requiere
// c.mu tomado en escritura.
func (c *StockCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.cachedAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.cachedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
		c.evictions.Inc()
	}
}
