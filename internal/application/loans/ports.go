package loans

import (
	"context"

	"github.com/tu-usuario/almacen-escolar/internal/domain/repository"
)

// LoanTxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios de préstamos e inventario atados a esa tx, para que el cambio de
// estado y los movimientos que genere (según política) sean una sola unidad
// atómica.
type LoanTxRunner interface {
	RunLoan(ctx context.Context, fn func(
		loanRepo repository.LoanRepository,
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) error) error
}
