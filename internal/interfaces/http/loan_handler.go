package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/almacen-escolar/internal/application/dto"
	"github.com/tu-usuario/almacen-escolar/internal/application/loans"
)

// LoanHandler maneja las peticiones HTTP de préstamos de equipo.
type LoanHandler struct {
	uc *loans.LoanUseCase
}

// NewLoanHandler construye el handler.
func NewLoanHandler(uc *loans.LoanUseCase) *LoanHandler {
	return &LoanHandler{uc: uc}
}

// Create POST /api/loans
func (h *LoanHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLoanRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	loan, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(loan)
}

// GetByID GET /api/loans/:id
func (h *LoanHandler) GetByID(c *fiber.Ctx) error {
	loan, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(loan)
}

// Transition POST /api/loans/:id/transition
// Aplica una arista del autómata: IN_USE, RETURNED o REJECTED.
func (h *LoanHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionLoanRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	loan, err := h.uc.Transition(c.Context(), c.Params("id"), in.Status, in.Operator)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(loan)
}

// List GET /api/loans?item_id=&status=
func (h *LoanHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return domainError(c, err)
	}
	page.DefaultPage()
	if itemID := c.Query("item_id"); itemID != "" {
		list, err := h.uc.ListByItem(c.Context(), itemID, page.Limit, page.Offset)
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(list)
	}
	status := c.Query("status")
	if status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "se requiere item_id o status"})
	}
	list, err := h.uc.ListByStatus(c.Context(), status, page.Limit, page.Offset)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(list)
}
