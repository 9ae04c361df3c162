package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/almacen-escolar/internal/domain/entity"
	"github.com/tu-usuario/almacen-escolar/internal/domain/repository"
)

var _ repository.LoanRepository = (*LoanRepo)(nil)

// LoanRepo implementación de LoanRepository sobre PostgreSQL (usable con pool o tx).
type LoanRepo struct {
	q Querier
}

// NewLoanRepository construye el adaptador de préstamos.
func NewLoanRepository(q Querier) *LoanRepo {
	return &LoanRepo{q: q}
}

const loanColumns = "id, item_id, holder, purpose, quantity, status, created_at, completed_at"

// Create persiste un préstamo nuevo.
func (r *LoanRepo) Create(loan *entity.Loan) error {
	query := `
		INSERT INTO loans (id, item_id, holder, purpose, quantity, status, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		loan.ID, loan.ItemID, loan.Holder, loan.Purpose, loan.Quantity,
		loan.Status, loan.CreatedAt, loan.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}
	return nil
}

// GetByID obtiene un préstamo por ID. Devuelve nil sin error si no existe.
func (r *LoanRepo) GetByID(id string) (*entity.Loan, error) {
	query := "SELECT " + loanColumns + " FROM loans WHERE id = $1"
	loan, err := scanLoan(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get loan: %w", err)
	}
	return loan, nil
}

// GetForUpdate obtiene el préstamo y bloquea la fila (SELECT FOR UPDATE) para
// serializar transiciones concurrentes sobre el mismo préstamo.
func (r *LoanRepo) GetForUpdate(id string) (*entity.Loan, error) {
	query := "SELECT " + loanColumns + " FROM loans WHERE id = $1 FOR UPDATE"
	loan, err := scanLoan(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get loan for update: %w", err)
	}
	return loan, nil
}

// Update persiste el estado y el timestamp de finalización.
func (r *LoanRepo) Update(loan *entity.Loan) error {
	query := `UPDATE loans SET status = $2, completed_at = $3 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, loan.ID, loan.Status, loan.CompletedAt)
	if err != nil {
		return fmt.Errorf("update loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update loan: fila inexistente %s", loan.ID)
	}
	return nil
}

// ListByItem lista préstamos de un artículo, más recientes primero.
func (r *LoanRepo) ListByItem(itemID string, limit, offset int) ([]*entity.Loan, error) {
	query := "SELECT " + loanColumns + ` FROM loans WHERE item_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(query, itemID, limit, offset)
}

// ListByStatus lista préstamos por estado, más recientes primero.
func (r *LoanRepo) ListByStatus(status string, limit, offset int) ([]*entity.Loan, error) {
	query := "SELECT " + loanColumns + ` FROM loans WHERE status = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(query, status, limit, offset)
}

// CountActiveByItem cuenta préstamos no terminales del artículo.
func (r *LoanRepo) CountActiveByItem(itemID string) (int64, error) {
	var count int64
	err := r.q.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM loans WHERE item_id = $1 AND status IN ($2, $3)",
		itemID, entity.LoanRequested, entity.LoanInUse).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active loans: %w", err)
	}
	return count, nil
}

func (r *LoanRepo) list(query string, key any, limit, offset int) ([]*entity.Loan, error) {
	rows, err := r.q.Query(context.Background(), query, key, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()
	var list []*entity.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		list = append(list, loan)
	}
	return list, rows.Err()
}

func scanLoan(row pgx.Row) (*entity.Loan, error) {
	var l entity.Loan
	if err := row.Scan(&l.ID, &l.ItemID, &l.Holder, &l.Purpose, &l.Quantity,
		&l.Status, &l.CreatedAt, &l.CompletedAt); err != nil {
		return nil, err
	}
	return &l, nil
}
