package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/ledger-api/internal/domain"
)

// Códigos de error de PostgreSQL que este adaptador interpreta. El resto del
// sistema sólo ve los errores de dominio: ningún código de driver cruza esta
// frontera.
const (
	pgCodeUniqueViolation      = "23505"
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
	pgCodeLockNotAvailable     = "55P03"
)

// isUniqueViolation verifica si un error es una violación de constraint único.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCodeUniqueViolation
}

// mapTxError traduce fallos transitorios del store (serialización, deadlock,
// lock no disponible) a ErrTransactionConflict, elegible para reintento
// acotado en el motor. Cualquier otro error se devuelve tal cual.
func mapTxError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeSerializationFailure, pgCodeDeadlockDetected, pgCodeLockNotAvailable:
			return domain.ErrTransactionConflict
		}
	}
	return err
}
