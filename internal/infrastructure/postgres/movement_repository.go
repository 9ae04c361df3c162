package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/almacen-escolar/internal/domain/entity"
	"github.com/tu-usuario/almacen-escolar/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Solo inserta y lee: el libro es append-only.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento.
func (r *MovementRepo) Create(movement *entity.Movement) error {
	query := `
		INSERT INTO movements (id, item_id, size_key, direction, quantity, requester, observation, loan_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	loanID := (*string)(nil)
	if movement.LoanID != "" {
		loanID = &movement.LoanID
	}
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ItemID, movement.SizeKey, movement.Direction,
		movement.Quantity, movement.Requester, movement.Observation, loanID,
		movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// ListByItem lista movimientos de un artículo en orden (created_at, id)
// descendente, con cursor compuesto y filtro opcional por talla. La comparación
// por fila incluye el id: un corte de página entre movimientos con el mismo
// timestamp no pierde los restantes.
func (r *MovementRepo) ListByItem(itemID, sizeKey string, cursor *repository.MovementCursor, limit int) ([]*entity.Movement, error) {
	query := `
		SELECT id, item_id, size_key, direction, quantity, requester, observation, loan_id, created_at
		FROM movements WHERE item_id = $1`
	args := []any{itemID}
	pos := 2
	if sizeKey != "" {
		query += fmt.Sprintf(" AND size_key = $%d", pos)
		args = append(args, sizeKey)
		pos++
	}
	if cursor != nil {
		if cursor.ID != "" {
			query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", pos, pos+1)
			args = append(args, cursor.CreatedAt, cursor.ID)
			pos += 2
		} else {
			// Cursor sin id de desempate: corte estricto por timestamp.
			query += fmt.Sprintf(" AND created_at < $%d", pos)
			args = append(args, cursor.CreatedAt)
			pos++
		}
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", pos)
	args = append(args, limit)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		var loanID *string
		if err := rows.Scan(&m.ID, &m.ItemID, &m.SizeKey, &m.Direction,
			&m.Quantity, &m.Requester, &m.Observation, &loanID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if loanID != nil {
			m.LoanID = *loanID
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// SumByItem recalcula la proyección por talla desde el libro completo
// (ENTRY suma, EXIT resta).
func (r *MovementRepo) SumByItem(itemID string) ([]repository.KeySum, error) {
	query := `
		SELECT size_key,
		       COALESCE(SUM(CASE WHEN direction = 'ENTRY' THEN quantity ELSE -quantity END), 0)
		FROM movements WHERE item_id = $1
		GROUP BY size_key`
	rows, err := r.q.Query(context.Background(), query, itemID)
	if err != nil {
		return nil, fmt.Errorf("sum movements: %w", err)
	}
	defer rows.Close()
	var sums []repository.KeySum
	for rows.Next() {
		var ks repository.KeySum
		if err := rows.Scan(&ks.SizeKey, &ks.Total); err != nil {
			return nil, fmt.Errorf("scan sum: %w", err)
		}
		sums = append(sums, ks)
	}
	return sums, rows.Err()
}

// CountByItem cuenta los movimientos que referencian un artículo.
func (r *MovementRepo) CountByItem(itemID string) (int64, error) {
	var count int64
	err := r.q.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM movements WHERE item_id = $1", itemID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return count, nil
}
