package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

// Ensure TxRunner implements ledger.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Los fallos transitorios (serialización, deadlock) salen
// mapeados a domain.ErrTransactionConflict para el reintento del motor; un
// ctx cancelado antes del commit deja la operación como si nunca hubiera
// ocurrido (pgx revierte la tx).
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	snapRepo repository.SnapshotRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	movRepo := NewMovementRepository(tx)
	snapRepo := NewSnapshotRepository(tx)

	if err := fn(movRepo, snapRepo); err != nil {
		return mapTxError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		if mapped := mapTxError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
