package audit_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/infrastructure/audit"
	"github.com/jhoicas/ledger-api/pkg/logger"
)

type countingSink struct {
	mu    sync.Mutex
	count int
	err   error
}

func (s *countingSink) Emit(_ context.Context, _ *entity.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.count++
	return nil
}

func record(action string) *entity.AuditRecord {
	return &entity.AuditRecord{
		Action: action,
		ItemID: "A",
		Actor:  "ana",
		Before: decimal.NewFromInt(1),
		After:  decimal.NewFromInt(2),
	}
}

// TestFanout_IntentaTodosAunqueFalleUno: un sink caído no impide la entrega a
// los demás; el error acumulado se devuelve al caller.
func TestFanout_IntentaTodosAunqueFalleUno(t *testing.T) {
	ok := &countingSink{}
	broken := &countingSink{err: assert.AnError}
	fanout := audit.Fanout{broken, ok}

	err := fanout.Emit(context.Background(), record("stock_movement_in"))
	require.Error(t, err)
	assert.Equal(t, 1, ok.count, "el sink sano debe recibir el registro")
}

// TestZerologSink_NoFalla: el sink de logs siempre emite sin error.
func TestZerologSink_NoFalla(t *testing.T) {
	sink := audit.NewZerologSink(logger.Nop())
	err := sink.Emit(context.Background(), record("stock_movement_out"))
	assert.NoError(t, err)
}

// TestMetricsSink_CuentaPorAccion.
func TestMetricsSink_CuentaPorAccion(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := audit.NewMetricsSink(reg)
	ctx := context.Background()

	require.NoError(t, sink.Emit(ctx, record("stock_movement_in")))
	require.NoError(t, sink.Emit(ctx, record("stock_movement_in")))
	require.NoError(t, sink.Emit(ctx, record("stock_batch_adjustment")))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "ledger_mutations_total", families[0].GetName())
	total := 0.0
	for _, m := range families[0].GetMetric() {
		total += m.GetCounter().GetValue()
	}
	assert.Equal(t, 3.0, total)
}

// TestWebhookSink_Publica: POST JSON al endpoint con 2xx no devuelve error.
func TestWebhookSink_Publica(t *testing.T) {
	var received int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received++
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sink := audit.NewWebhookSink(srv.URL)
	err := sink.Emit(context.Background(), record("stock_movement_in"))
	require.NoError(t, err)
	assert.Equal(t, 1, received)
}

// TestWebhookSink_AbreBreaker: tras fallos consecutivos el breaker se abre y
// las emisiones siguientes fallan rápido, sin golpear el endpoint.
func TestWebhookSink_AbreBreaker(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := audit.NewWebhookSink(srv.URL)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.Error(t, sink.Emit(ctx, record("stock_movement_in")))
	}
	hitsBefore := hits
	require.Error(t, sink.Emit(ctx, record("stock_movement_in")))
	assert.Equal(t, hitsBefore, hits, "con el breaker abierto no se golpea el endpoint")
}

var _ ledger.AuditSink = (*countingSink)(nil)
