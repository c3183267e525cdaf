package audit

import (
	"context"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/pkg/logger"
)

// Ensure ZerologSink implements ledger.AuditSink.
var _ ledger.AuditSink = (*ZerologSink)(nil)

// ZerologSink emite los registros de auditoría como eventos estructurados del
// logger. El formato durable de la bitácora es asunto del colaborador que
// consuma estos eventos (agregador de logs), no de este núcleo.
type ZerologSink struct {
	log *logger.Logger
}

// NewZerologSink construye el sink sobre el logger de la aplicación.
func NewZerologSink(log *logger.Logger) *ZerologSink {
	return &ZerologSink{log: log}
}

// Emit escribe el registro como evento info con campos estructurados.
func (s *ZerologSink) Emit(_ context.Context, record *entity.AuditRecord) error {
	ev := s.log.Info().
		Str("audit_action", record.Action).
		Str("actor", record.Actor).
		Time("at", record.Timestamp)
	if record.ItemID != "" {
		ev = ev.Str("item_id", record.ItemID).
			Str("before", record.Before.String()).
			Str("after", record.After.String())
	}
	if record.ItemName != "" {
		ev = ev.Str("item_name", record.ItemName)
	}
	for k, v := range record.Metadata {
		ev = ev.Str(k, v)
	}
	ev.Msg("auditoría")
	return nil
}
