// Package demand clasifica la oferta actual de un artículo frente a la demanda
// reportada externamente (matrículas por grado, aulas, etc.). Función pura:
// no persiste ni cachea la demanda.
package demand

import "github.com/shopspring/decimal"

// Status resultado de la comparación oferta vs demanda.
type Status string

const (
	StatusDeficit  Status = "DEFICIT"
	StatusAdequate Status = "ADEQUATE"
	StatusExcess   Status = "EXCESS"
)

// Classify compara la oferta actual contra la demanda reportada.
// Devuelve ok=false cuando la demanda es cero o negativa (desconocida): en ese
// caso la clasificación se suprime en lugar de reportar un estado falso.
func Classify(supply, demand decimal.Decimal) (Status, bool) {
	if demand.LessThanOrEqual(decimal.Zero) {
		return "", false
	}
	switch {
	case supply.LessThan(demand):
		return StatusDeficit, true
	case supply.GreaterThan(demand):
		return StatusExcess, true
	default:
		return StatusAdequate, true
	}
}
