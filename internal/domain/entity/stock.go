package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock es la proyección materializada de la cantidad actual de un artículo
// por talla (SizeKey vacío para artículos scalar). Se escribe únicamente en la
// misma transacción que inserta el movimiento correspondiente, de modo que
// siempre equivale a la suma del libro de movimientos para esa clave.
type Stock struct {
	ItemID    string
	SizeKey   string
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}
