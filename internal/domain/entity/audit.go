package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditRecord es el registro estructurado que el motor emite al sink de
// auditoría después de cada mutación confirmada. El formato de persistencia
// del sink es asunto del colaborador externo, no de este núcleo.
type AuditRecord struct {
	Action    string            `json:"action"`
	ItemID    string            `json:"item_id"`
	ItemName  string            `json:"item_name,omitempty"`
	Actor     string            `json:"actor"`
	Before    decimal.Decimal   `json:"before"`
	After     decimal.Decimal   `json:"after"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
