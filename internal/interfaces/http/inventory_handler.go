package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/dairy-ledger/internal/application/dto"
	"github.com/jhoicas/dairy-ledger/internal/application/inventory"
	"github.com/jhoicas/dairy-ledger/internal/domain"
)

// InventoryHandler maneja las peticiones HTTP de saldos y movimientos (protegido).
type InventoryHandler struct {
	ledger        *inventory.Ledger
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.Ledger, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, replenishment: replenishment}
}

// ListBalances godoc
// @Summary      Saldos de la granja
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BalanceResponse
// @Router       /api/inventory/balances [get]
func (h *InventoryHandler) ListBalances(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	out, err := h.ledger.ListBalances(c.UserContext(), farmID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Saldos en o por debajo del nivel de reorden
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BalanceResponse
// @Router       /api/inventory/balances/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	out, err := h.ledger.ListLowStock(c.UserContext(), farmID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen del inventario
// @Description  Total de insumos, cuántos están bajos, valor total y agrupación por categoría.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventorySummaryResponse
// @Router       /api/inventory/balances/summary [get]
func (h *InventoryHandler) Summary(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	out, err := h.ledger.Summary(c.UserContext(), farmID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetBalance godoc
// @Summary      Saldo de un insumo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id  path  string  true  "ID del insumo"
// @Success      200      {object}  dto.BalanceResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/inventory/balances/{item_id} [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	out, err := h.ledger.Balance(c.UserContext(), farmID, c.Params("item_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// VerifyBalance godoc
// @Summary      Verificar saldo contra el historial
// @Description  Reproduce los movimientos desde cero; 500 CONSISTENCY si no coincide con el saldo guardado.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id  path  string  true  "ID del insumo"
// @Success      200      {object}  dto.BalanceVerificationResponse
// @Failure      500      {object}  dto.BalanceVerificationResponse
// @Router       /api/inventory/balances/{item_id}/verify [get]
func (h *InventoryHandler) VerifyBalance(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	out, err := h.ledger.VerifyBalance(c.UserContext(), farmID, c.Params("item_id"))
	if err != nil {
		if out != nil && errors.Is(err, domain.ErrConsistency) {
			return c.Status(fiber.StatusInternalServerError).JSON(out)
		}
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateAdjustment godoc
// @Summary      Registrar ajuste, pérdida o traslado
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "item_id, type (adjustment|loss|transfer), quantity"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) CreateAdjustment(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.ledger.Adjust(c.UserContext(), farmID, GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id    query  string  false  "Insumo"
// @Param        type       query  string  false  "purchase_in | usage_out | adjustment | transfer | loss"
// @Param        date_from  query  string  false  "YYYY-MM-DD"
// @Param        date_to    query  string  false  "YYYY-MM-DD"
// @Success      200        {object}  dto.MovementListResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	q := dto.MovementQuery{
		ItemID:      c.Query("item_id"),
		Type:        c.Query("type"),
		DateFrom:    c.Query("date_from"),
		DateTo:      c.Query("date_to"),
		PageRequest: pageFromQuery(c),
	}
	out, err := h.ledger.ListMovements(c.UserContext(), farmID, q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Insumos en o por debajo del nivel de reorden con la cantidad sugerida de compra,
//
//	ordenados por días restantes.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	out, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), farmID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
