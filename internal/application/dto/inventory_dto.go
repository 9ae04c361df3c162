package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustRequest body para POST /api/inventory/adjustments.
type AdjustRequest struct {
	ItemID      string          `json:"item_id" validate:"required"`
	SizeKey     string          `json:"size_key,omitempty"`
	Direction   string          `json:"direction" validate:"required,oneof=ENTRY EXIT"`
	Quantity    decimal.Decimal `json:"quantity" validate:"required,gt=0"`
	Requester   string          `json:"requester" validate:"required"`
	Observation string          `json:"observation,omitempty"`
}

// AdjustResponse cantidad proyectada tras aplicar el ajuste.
type AdjustResponse struct {
	ItemID   string          `json:"item_id"`
	SizeKey  string          `json:"size_key,omitempty"`
	NewStock decimal.Decimal `json:"new_stock"`
}

// BulkSeedRequest body para POST /api/inventory/seed: saldo inicial histórico
// (entradas y salidas acumuladas) al registrar un artículo existente.
type BulkSeedRequest struct {
	ItemID    string          `json:"item_id" validate:"required"`
	SizeKey   string          `json:"size_key,omitempty"`
	Entries   decimal.Decimal `json:"entries" validate:"required,gt=0"`
	Exits     decimal.Decimal `json:"exits" validate:"omitempty,min=0"`
	Requester string          `json:"requester" validate:"required"`
}

// MovementResponse representación de un movimiento en respuestas.
type MovementResponse struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"item_id"`
	SizeKey     string          `json:"size_key,omitempty"`
	Direction   string          `json:"direction"`
	Quantity    decimal.Decimal `json:"quantity"`
	Requester   string          `json:"requester"`
	Observation string          `json:"observation,omitempty"`
	LoanID      string          `json:"loan_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// MovementListResponse página de movimientos con cursor compuesto.
type MovementListResponse struct {
	Movements []MovementResponse `json:"movements"`
	// Cursor para la página siguiente: created_at + id de desempate del último
	// movimiento devuelto.
	NextBefore   *time.Time `json:"next_before,omitempty"`
	NextBeforeID string     `json:"next_before_id,omitempty"`
}

// StockResponse cantidad proyectada de un artículo (o de una talla).
type StockResponse struct {
	ItemID   string          `json:"item_id"`
	SizeKey  string          `json:"size_key,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
}

// SizeBreakdownResponse desglose por talla y total agregado (siempre recalculado).
type SizeBreakdownResponse struct {
	ItemID string                     `json:"item_id"`
	Sizes  map[string]decimal.Decimal `json:"sizes"`
	Total  decimal.Decimal            `json:"total"`
}

// AuditRow compara el libro de movimientos contra la proyección materializada.
type AuditRow struct {
	SizeKey   string          `json:"size_key,omitempty"`
	Ledger    decimal.Decimal `json:"ledger"`
	Projected decimal.Decimal `json:"projected"`
	Drift     bool            `json:"drift"`
}

// AuditResponse resultado del recalculo de auditoría por artículo.
type AuditResponse struct {
	ItemID     string     `json:"item_id"`
	Rows       []AuditRow `json:"rows"`
	Consistent bool       `json:"consistent"`
}
