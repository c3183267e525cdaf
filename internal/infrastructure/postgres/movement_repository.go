package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación append-only sobre PostgreSQL (usable con pool o
// tx). La tabla movements no tiene UPDATE ni DELETE: las correcciones entran
// como movimientos nuevos de tipo adjustment.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, item_id, type, quantity, previous_stock, new_stock,
	reference, notes, location, created_by, created_at`

// Create persiste un movimiento de stock.
func (r *MovementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (id, item_id, type, quantity, previous_stock, new_stock, reference, notes, location, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	createdBy := (*string)(nil)
	if movement.CreatedBy != "" {
		createdBy = &movement.CreatedBy
	}
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.ItemID, movement.Type, movement.Quantity,
		movement.PreviousStock, movement.NewStock,
		nullable(movement.Reference), nullable(movement.Notes), nullable(movement.Location),
		createdBy, movement.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("movement id duplicado: %w", err)
		}
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByItem lista los movimientos de un artículo en orden cronológico
// ascendente (el orden que espera la reconstrucción), con filtros de fecha,
// tipo y paginación.
func (r *MovementRepo) ListByItem(ctx context.Context, itemID string, filter repository.HistoryFilter) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE item_id = $1`
	args := []any{itemID}
	pos := 2
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	if len(filter.Types) > 0 {
		query += fmt.Sprintf(" AND type = ANY($%d)", pos)
		args = append(args, filter.Types)
		pos++
	}
	query += " ORDER BY created_at ASC, id ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements by item: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var reference, notes, location, createdBy *string
	err := row.Scan(
		&m.ID, &m.ItemID, &m.Type, &m.Quantity, &m.PreviousStock, &m.NewStock,
		&reference, &notes, &location, &createdBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reference != nil {
		m.Reference = *reference
	}
	if notes != nil {
		m.Notes = *notes
	}
	if location != nil {
		m.Location = *location
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}

// nullable convierte "" en NULL para columnas de metadatos opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
