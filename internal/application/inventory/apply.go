package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/almacen-escolar/internal/domain"
	"github.com/tu-usuario/almacen-escolar/internal/domain/entity"
	"github.com/tu-usuario/almacen-escolar/internal/domain/repository"
)

// ApplyInput parámetros de un movimiento ya validado, listo para aplicarse
// dentro de una transacción abierta.
type ApplyInput struct {
	ItemID      string
	SizeKey     string
	Direction   string // entity.MovementEntry | entity.MovementExit
	Quantity    decimal.Decimal
	Requester   string
	Observation string
	LoanID      string
	Now         time.Time
}

// ApplyMovement aplica un movimiento usando los repositorios proporcionados
// (misma transacción del caller): bloquea la fila de stock (SELECT FOR UPDATE),
// verifica que una salida no deje stock negativo, actualiza la proyección e
// inserta el movimiento. Lo usan Adjust, BulkSeed y las transiciones de
// préstamo que afectan stock, de modo que ningún movimiento entra al libro por
// otra vía. Devuelve la cantidad proyectada resultante.
func ApplyMovement(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	in ApplyInput,
) (decimal.Decimal, error) {
	stock, err := stockRepo.GetForUpdate(in.ItemID, in.SizeKey)
	if err != nil {
		return decimal.Zero, err
	}

	var newQty decimal.Decimal
	switch in.Direction {
	case entity.MovementEntry:
		newQty = stock.Quantity.Add(in.Quantity)
	case entity.MovementExit:
		if stock.Quantity.LessThan(in.Quantity) {
			return decimal.Zero, domain.ErrInsufficientStock
		}
		newQty = stock.Quantity.Sub(in.Quantity)
	default:
		return decimal.Zero, domain.ErrInvalidInput
	}

	stock.Quantity = newQty
	stock.UpdatedAt = in.Now
	if err := stockRepo.Upsert(stock); err != nil {
		return decimal.Zero, err
	}

	mov := &entity.Movement{
		ID:          uuid.New().String(),
		ItemID:      in.ItemID,
		SizeKey:     in.SizeKey,
		Direction:   in.Direction,
		Quantity:    in.Quantity,
		Requester:   in.Requester,
		Observation: in.Observation,
		LoanID:      in.LoanID,
		CreatedAt:   in.Now,
	}
	if err := movRepo.Create(mov); err != nil {
		return decimal.Zero, err
	}
	return newQty, nil
}
