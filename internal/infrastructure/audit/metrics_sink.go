package audit

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

var _ ledger.AuditSink = (*MetricsSink)(nil)

// MetricsSink cuenta las mutaciones confirmadas por acción (movimientos por
// tipo, lotes). Se cuelga del mismo fanout de auditoría: cada registro
// emitido es, por construcción, una mutación ya commiteada.
type MetricsSink struct {
	mutations *prometheus.CounterVec
}

// NewMetricsSink construye el sink y registra el contador.
func NewMetricsSink(reg prometheus.Registerer) *MetricsSink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &MetricsSink{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger", Name: "mutations_total",
			Help: "Mutaciones de stock confirmadas, por acción.",
		}, []string{"action"}),
	}
	reg.MustRegister(s.mutations)
	return s
}

// Emit incrementa el contador de la acción.
func (s *MetricsSink) Emit(_ context.Context, record *entity.AuditRecord) error {
	s.mutations.WithLabelValues(record.Action).Inc()
	return nil
}
