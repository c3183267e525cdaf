package audit

import (
	"context"
	"errors"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

var _ ledger.AuditSink = (Fanout)(nil)

// Fanout reparte cada registro a varios sinks. Intenta todos aunque alguno
// falle y devuelve los errores acumulados.
type Fanout []ledger.AuditSink

// Emit envía el registro a cada sink del grupo.
func (f Fanout) Emit(ctx context.Context, record *entity.AuditRecord) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Emit(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
