package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/almacen-escolar/internal/domain/entity"
)

// KeySum suma neta del libro de movimientos para una talla (ENTRY − EXIT).
type KeySum struct {
	SizeKey string
	Total   decimal.Decimal
}

// MovementCursor posición de paginación en el libro: el par (created_at, id)
// del último movimiento devuelto. El id desempata movimientos con el mismo
// timestamp, que existen (una siembra de saldo escribe dos con el mismo now).
type MovementCursor struct {
	CreatedAt time.Time
	ID        string
}

// MovementRepository define el puerto del libro de movimientos. El libro es
// estrictamente append-only: no expone Update ni Delete.
type MovementRepository interface {
	Create(movement *entity.Movement) error
	// ListByItem devuelve los movimientos de un artículo en orden (created_at,
	// id) descendente. sizeKey vacío no filtra; cursor nil empieza del más
	// reciente.
	ListByItem(itemID, sizeKey string, cursor *MovementCursor, limit int) ([]*entity.Movement, error)
	// SumByItem recalcula la proyección por talla desde el libro completo.
	SumByItem(itemID string) ([]KeySum, error)
	CountByItem(itemID string) (int64, error)
}
