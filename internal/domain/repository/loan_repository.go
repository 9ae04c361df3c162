package repository

import "github.com/tu-usuario/almacen-escolar/internal/domain/entity"

// LoanRepository define el puerto de persistencia para préstamos de equipo.
type LoanRepository interface {
	Create(loan *entity.Loan) error
	GetByID(id string) (*entity.Loan, error)
	// GetForUpdate bloquea la fila del préstamo para serializar transiciones concurrentes.
	GetForUpdate(id string) (*entity.Loan, error)
	Update(loan *entity.Loan) error
	ListByItem(itemID string, limit, offset int) ([]*entity.Loan, error)
	ListByStatus(status string, limit, offset int) ([]*entity.Loan, error)
	// CountActiveByItem cuenta préstamos no terminales que referencian el artículo.
	CountActiveByItem(itemID string) (int64, error)
}
