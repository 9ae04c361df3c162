package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/almacen-escolar/internal/application/dto"
	"github.com/tu-usuario/almacen-escolar/internal/application/reports"
)

// ReportHandler maneja el reporte de conciliación oferta vs demanda.
type ReportHandler struct {
	uc *reports.DemandUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reports.DemandUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Demand GET /api/reports/demand?group=&item_id=
// Sin item_id concilia todo el catálogo contra la demanda del grupo.
func (h *ReportHandler) Demand(c *fiber.Ctx) error {
	group := c.Query("group")
	if group == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "se requiere el parámetro group"})
	}
	if itemID := c.Query("item_id"); itemID != "" {
		row, err := h.uc.Reconcile(c.Context(), itemID, group)
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(row)
	}
	resp, err := h.uc.ReconcileAll(c.Context(), group)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(resp)
}
