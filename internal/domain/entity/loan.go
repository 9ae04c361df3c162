package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del préstamo de equipo.
const (
	LoanRequested = "REQUESTED"
	LoanInUse     = "IN_USE"
	LoanReturned  = "RETURNED"
	LoanRejected  = "REJECTED"
)

// loanTransitions enumera las aristas legales del autómata de préstamos.
// RETURNED y REJECTED son terminales: no aparecen como origen.
var loanTransitions = map[string][]string{
	LoanRequested: {LoanInUse, LoanRejected},
	LoanInUse:     {LoanReturned, LoanRejected},
}

// Loan representa la reserva de unidades de un artículo de categoría equipment
// por un responsable (docente) para una clase/jornada. Es una reserva, no un
// consumo: su interacción con el libro de movimientos depende de la política
// configurada del almacén.
type Loan struct {
	ID          string
	ItemID      string
	Holder      string // responsable del préstamo
	Purpose     string // clase, grado o motivo
	Quantity    decimal.Decimal
	Status      string
	CreatedAt   time.Time
	CompletedAt *time.Time // solo al pasar a RETURNED
}

// ValidLoanStatus indica si el estado pertenece al conjunto enumerado.
func ValidLoanStatus(s string) bool {
	switch s {
	case LoanRequested, LoanInUse, LoanReturned, LoanRejected:
		return true
	}
	return false
}

// CanLoanTransition indica si la arista from→to es legal en el autómata.
func CanLoanTransition(from, to string) bool {
	for _, next := range loanTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// LoanTerminal indica si el estado es terminal (inmutable).
func LoanTerminal(s string) bool {
	return s == LoanReturned || s == LoanRejected
}
