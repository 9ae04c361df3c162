package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direcciones de movimiento del libro de inventario.
const (
	MovementEntry = "ENTRY" // entrada: suma stock
	MovementExit  = "EXIT"  // salida: resta stock
)

// Movement es un hecho inmutable del libro de movimientos: una entrada o salida
// de cantidad para un artículo (y talla, si aplica). Nunca se actualiza ni se
// borra; las correcciones se registran como movimientos compensatorios.
// LoanID enlaza las salidas/entradas generadas por préstamos de equipo.
type Movement struct {
	ID          string
	ItemID      string
	SizeKey     string          // vacío para artículos scalar
	Direction   string          // ENTRY | EXIT
	Quantity    decimal.Decimal // siempre > 0; el signo lo da Direction
	Requester   string
	Observation string
	LoanID      string
	CreatedAt   time.Time
}

// Signed devuelve la cantidad con signo según la dirección.
func (m *Movement) Signed() decimal.Decimal {
	if m.Direction == MovementExit {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
