package cache_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ledger-api/internal/infrastructure/cache"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newCache(t *testing.T, ttl time.Duration, max int) *cache.StockCache {
	t.Helper()
	// Registro propio por test: evita colisiones de métricas entre tests.
	return cache.New(cache.Config{TTL: ttl, MaxEntries: max, Registerer: prometheus.NewRegistry()})
}

// TestGetSet: hit vigente devuelve el valor cacheado.
func TestGetSet(t *testing.T) {
	c := newCache(t, time.Minute, 0)
	c.Set("A", d(15))

	stock, ok := c.Get("A")
	require.True(t, ok)
	assert.True(t, stock.Equal(d(15)))
}

// TestGet_MissAusente: clave ausente es miss.
func TestGet_MissAusente(t *testing.T) {
	c := newCache(t, time.Minute, 0)
	_, ok := c.Get("nadie")
	assert.False(t, ok)
}

// TestGet_MissExpirado: una entrada cuya edad supera el TTL jamás se devuelve
// como hit.
func TestGet_MissExpirado(t *testing.T) {
	c := newCache(t, 10*time.Millisecond, 0)
	c.Set("A", d(5))
	time.Sleep(25 * time.Millisecond)

	_, ok := c.Get("A")
	assert.False(t, ok, "entrada expirada no puede ser hit")
}

// TestInvalidate_Idempotente: invalidar dos veces seguidas es
// observacionalmente igual a invalidar una.
func TestInvalidate_Idempotente(t *testing.T) {
	c := newCache(t, time.Minute, 0)
	c.Set("A", d(5))

	c.Invalidate("A")
	_, ok := c.Get("A")
	require.False(t, ok)

	c.Invalidate("A") // segunda invalidación: sin efecto observable distinto
	_, ok = c.Get("A")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

// TestInvalidateAll vacía la caché completa.
func TestInvalidateAll(t *testing.T) {
	c := newCache(t, time.Minute, 0)
	c.Set("A", d(1))
	c.Set("B", d(2))

	c.InvalidateAll()
	assert.Equal(t, 0, c.Len())
}

// TestEviccion_MasAntiguoPrimero: al superar el tope se desaloja la entrada
// más antigua. La evicción sólo acota memoria, no afecta corrección.
func TestEviccion_MasAntiguoPrimero(t *testing.T) {
	c := newCache(t, time.Minute, 2)
	c.Set("vieja", d(1))
	time.Sleep(2 * time.Millisecond)
	c.Set("media", d(2))
	time.Sleep(2 * time.Millisecond)
	c.Set("nueva", d(3))

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("vieja")
	assert.False(t, ok, "la más antigua debe desalojarse")
	_, ok = c.Get("media")
	assert.True(t, ok)
	_, ok = c.Get("nueva")
	assert.True(t, ok)
}

// TestSet_SobreescrituraNoDesaloja: sobreescribir una clave existente con la
// caché llena no desaloja a nadie.
func TestSet_SobreescrituraNoDesaloja(t *testing.T) {
	c := newCache(t, time.Minute, 2)
	c.Set("a", d(1))
	c.Set("b", d(2))
	c.Set("a", d(9))

	assert.Equal(t, 2, c.Len())
	stock, ok := c.Get("a")
	require.True(t, ok)
	assert.True(t, stock.Equal(d(9)))
}

// TestContadores: los contadores hit/miss reflejan el tráfico.
func TestContadores(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := cache.New(cache.Config{TTL: time.Minute, Registerer: reg})

	c.Set("A", d(1))
	c.Get("A")      // hit
	c.Get("A")      // hit
	c.Get("nadie")  // miss
	c.Invalidate("A")
	c.Get("A") // miss

	metrics, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, metrics)

	assert.Equal(t, float64(2), counterValue(t, reg, "ledger_stock_cache_hits_total"))
	assert.Equal(t, float64(2), counterValue(t, reg, "ledger_stock_cache_misses_total"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() == name {
			require.Len(t, fam.GetMetric(), 1)
			return fam.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("métrica %s no registrada", name)
	return 0
}
