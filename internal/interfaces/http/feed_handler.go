package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/dairy-ledger/internal/application/dto"
	"github.com/jhoicas/dairy-ledger/internal/application/inventory"
)

// FeedHandler compras y consumos de alimento (protegido).
type FeedHandler struct {
	purchases *inventory.PurchaseUseCase
	usage     *inventory.UsageUseCase
}

// NewFeedHandler construye el handler.
func NewFeedHandler(purchases *inventory.PurchaseUseCase, usage *inventory.UsageUseCase) *FeedHandler {
	return &FeedHandler{purchases: purchases, usage: usage}
}

// CreatePurchase godoc
// @Summary      Registrar compra de alimento
// @Description  Inserta la compra y suma la cantidad al saldo en la misma transacción.
// @Tags         feeds
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseRequest  true  "Compra"
// @Success      201   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/feeds/purchases [post]
func (h *FeedHandler) CreatePurchase(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	var in dto.CreatePurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.purchases.Create(c.UserContext(), farmID, GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListPurchases godoc
// @Summary      Listar compras
// @Tags         feeds
// @Security     Bearer
// @Produce      json
// @Param        item_id    query  string  false  "Insumo"
// @Param        date_from  query  string  false  "YYYY-MM-DD"
// @Param        date_to    query  string  false  "YYYY-MM-DD"
// @Success      200        {object}  dto.PurchaseListResponse
// @Router       /api/feeds/purchases [get]
func (h *FeedHandler) ListPurchases(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	out, err := h.purchases.List(c.UserContext(), farmID, feedQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateUsage godoc
// @Summary      Registrar consumo de alimento
// @Description  Inserta el consumo y resta la cantidad del saldo en la misma transacción.
// @Tags         feeds
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUsageRequest  true  "Consumo"
// @Success      201   {object}  dto.UsageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/feeds/usage [post]
func (h *FeedHandler) CreateUsage(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	var in dto.CreateUsageRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.usage.Create(c.UserContext(), farmID, GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Scan godoc
// @Summary      Registrar consumo escaneando el QR del insumo
// @Tags         feeds
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.QRScanRequest  true  "Escaneo"
// @Success      201   {object}  dto.UsageResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/feeds/scan [post]
func (h *FeedHandler) Scan(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	var in dto.QRScanRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.usage.ScanQR(c.UserContext(), farmID, GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListUsage godoc
// @Summary      Listar consumos
// @Tags         feeds
// @Security     Bearer
// @Produce      json
// @Param        item_id    query  string  false  "Insumo"
// @Param        cow_id     query  string  false  "Vaca"
// @Param        date_from  query  string  false  "YYYY-MM-DD"
// @Param        date_to    query  string  false  "YYYY-MM-DD"
// @Success      200        {object}  dto.UsageListResponse
// @Router       /api/feeds/usage [get]
func (h *FeedHandler) ListUsage(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	out, err := h.usage.List(c.UserContext(), farmID, feedQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UsageToday godoc
// @Summary      Consumos de hoy
// @Tags         feeds
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UsageListResponse
// @Router       /api/feeds/usage/today [get]
func (h *FeedHandler) UsageToday(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	out, err := h.usage.Today(c.UserContext(), farmID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func feedQuery(c *fiber.Ctx) dto.FeedEventQuery {
	return dto.FeedEventQuery{
		ItemID:      c.Query("item_id"),
		CowID:       c.Query("cow_id"),
		DateFrom:    c.Query("date_from"),
		DateTo:      c.Query("date_to"),
		PageRequest: pageFromQuery(c),
	}
}
