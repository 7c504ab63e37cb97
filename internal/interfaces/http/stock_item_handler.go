package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/dairy-ledger/internal/application/dto"
	"github.com/jhoicas/dairy-ledger/internal/application/usecase"
)

// StockItemHandler maneja las peticiones HTTP del catálogo de insumos (protegido).
type StockItemHandler struct {
	uc *usecase.StockItemUseCase
}

// NewStockItemHandler construye el handler.
func NewStockItemHandler(uc *usecase.StockItemUseCase) *StockItemHandler {
	return &StockItemHandler{uc: uc}
}

// Create godoc
// @Summary      Crear insumo
// @Tags         feeds
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockItemRequest  true  "Datos del insumo"
// @Success      201   {object}  dto.StockItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/feeds/items [post]
func (h *StockItemHandler) Create(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	var in dto.CreateStockItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), farmID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener insumo con su stock actual
// @Tags         feeds
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del insumo"
// @Success      200  {object}  dto.StockItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/feeds/items/{id} [get]
func (h *StockItemHandler) GetByID(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	out, err := h.uc.GetByID(c.UserContext(), farmID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByQR godoc
// @Summary      Buscar insumo por código QR
// @Tags         feeds
// @Security     Bearer
// @Produce      json
// @Param        code  query  string  true  "Código QR"
// @Success      200   {object}  dto.StockItemResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/feeds/items/by-qr [get]
func (h *StockItemHandler) GetByQR(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	out, err := h.uc.GetByQR(c.UserContext(), farmID, c.Query("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar insumos
// @Tags         feeds
// @Security     Bearer
// @Produce      json
// @Param        category   query  string  false  "Categoría"
// @Param        is_active  query  string  false  "true | false"
// @Param        search     query  string  false  "Nombre o QR"
// @Param        limit      query  int     false  "Límite"  default(20)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Success      200        {object}  dto.StockItemListResponse
// @Router       /api/feeds/items [get]
func (h *StockItemHandler) List(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	q := dto.StockItemQuery{
		Category:    c.Query("category"),
		Active:      c.Query("is_active"),
		Search:      c.Query("search"),
		PageRequest: pageFromQuery(c),
	}
	out, err := h.uc.List(c.UserContext(), farmID, q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar insumo
// @Tags         feeds
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del insumo"
// @Param        body  body  dto.UpdateStockItemRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.StockItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/feeds/items/{id} [put]
func (h *StockItemHandler) Update(c *fiber.Ctx) error {
	farmID, ok := requireFarm(c)
	if !ok {
		return nil
	}
	var in dto.UpdateStockItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), farmID, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
