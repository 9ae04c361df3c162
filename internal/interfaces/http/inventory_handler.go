package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/almacen-escolar/internal/application/dto"
	"github.com/tu-usuario/almacen-escolar/internal/application/inventory"
	"github.com/tu-usuario/almacen-escolar/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP de movimientos y stock.
type InventoryHandler struct {
	uc *inventory.StockUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Adjust POST /api/inventory/adjustments
// Registra una entrada o salida y devuelve el stock proyectado resultante.
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	newQty, err := h.uc.Adjust(c.Context(), inventory.AdjustInput{
		ItemID:      in.ItemID,
		SizeKey:     in.SizeKey,
		Direction:   in.Direction,
		Quantity:    in.Quantity,
		Requester:   in.Requester,
		Observation: in.Observation,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AdjustResponse{
		ItemID: in.ItemID, SizeKey: in.SizeKey, NewStock: newQty,
	})
}

// BulkSeed POST /api/inventory/seed
// Registra el saldo de apertura (entradas y salidas históricas) de un artículo.
func (h *InventoryHandler) BulkSeed(c *fiber.Ctx) error {
	var in dto.BulkSeedRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	newQty, err := h.uc.BulkSeed(c.Context(), inventory.BulkSeedInput{
		ItemID:    in.ItemID,
		SizeKey:   in.SizeKey,
		Entries:   in.Entries,
		Exits:     in.Exits,
		Requester: in.Requester,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AdjustResponse{
		ItemID: in.ItemID, SizeKey: in.SizeKey, NewStock: newQty,
	})
}

// GetStock GET /api/items/:id/stock?size_key=M
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	resp, err := h.uc.GetProjectedStock(c.Context(), c.Params("id"), c.Query("size_key"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(resp)
}

// GetSizeBreakdown GET /api/items/:id/breakdown
func (h *InventoryHandler) GetSizeBreakdown(c *fiber.Ctx) error {
	resp, err := h.uc.GetSizeBreakdown(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(resp)
}

// ListMovements GET /api/items/:id/movements?size_key=&before=&before_id=&limit=
// before (RFC3339) y before_id forman el cursor compuesto; la respuesta incluye
// next_before y next_before_id para la página siguiente.
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var cursor *repository.MovementCursor
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code: "VALIDATION", Message: "cursor before inválido"})
		}
		cursor = &repository.MovementCursor{CreatedAt: t, ID: c.Query("before_id")}
	}
	resp, err := h.uc.ListMovements(c.Context(), c.Params("id"), c.Query("size_key"), cursor, c.QueryInt("limit"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(resp)
}

// Audit GET /api/items/:id/audit
// Recalcula la proyección desde el libro y reporta cualquier deriva.
func (h *InventoryHandler) Audit(c *fiber.Ctx) error {
	resp, err := h.uc.AuditProjection(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(resp)
}
