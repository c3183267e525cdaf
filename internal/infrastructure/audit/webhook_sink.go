package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

var _ ledger.AuditSink = (*WebhookSink)(nil)

// WebhookSink envía cada registro de auditoría como POST JSON a un endpoint
// externo, detrás de un circuit breaker: si el sink remoto cae, el breaker se
// abre y deja de pagar el timeout en cada movimiento. El motor ya trata la
// emisión como fire-and-forget, así que un breaker abierto sólo produce un
// warning por registro.
type WebhookSink struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewWebhookSink construye el sink hacia url.
func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: 3 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "audit-webhook",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Emit publica el registro. Devuelve error si el breaker está abierto o el
// endpoint responde distinto de 2xx; el caller decide si sólo loguearlo.
func (s *WebhookSink) Emit(ctx context.Context, record *entity.AuditRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("serializar registro de auditoría: %w", err)
	}
	_, err = s.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("audit webhook status %d", resp.StatusCode)
		}
		return nil, nil
	})
	return err
}
