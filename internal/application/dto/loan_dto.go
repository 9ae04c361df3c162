package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLoanRequest body para POST /api/loans.
type CreateLoanRequest struct {
	ItemID   string          `json:"item_id" validate:"required"`
	Holder   string          `json:"holder" validate:"required"`
	Purpose  string          `json:"purpose,omitempty"`
	Quantity decimal.Decimal `json:"quantity" validate:"required,gt=0"`
}

// TransitionLoanRequest body para POST /api/loans/:id/transition.
type TransitionLoanRequest struct {
	// Status estado destino. El caso de uso distingue estados desconocidos
	// (entrada inválida) de aristas ilegales del autómata (transición inválida).
	Status   string `json:"status" validate:"required"`
	Operator string `json:"operator" validate:"required"`
}

// LoanResponse representación de un préstamo en respuestas.
type LoanResponse struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"item_id"`
	Holder      string          `json:"holder"`
	Purpose     string          `json:"purpose,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// LoanListResponse listado paginado de préstamos.
type LoanListResponse struct {
	Loans []LoanResponse `json:"loans"`
	Page  PageResponse   `json:"page"`
}
