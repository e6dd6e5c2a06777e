package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/licoreria-api/internal/application/dto"
	"github.com/jhoicas/licoreria-api/internal/application/inventory"
)

// ProductHandler kardex y ajustes manuales de un producto.
type ProductHandler struct {
	uc *inventory.StockUseCase
}

func NewProductHandler(uc *inventory.StockUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// AdjustStock godoc
// @Summary      Ajuste manual de stock
// @Tags         productos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      int                     true  "id del producto"
// @Param        body  body      dto.AdjustStockRequest  true  "INCREASE | DECREASE, cantidad y motivo"
// @Success      201   {object}  dto.AdjustStockResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK"
// @Router       /api/productos/{id}/ajustar-stock [post]
func (h *ProductHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return err
	}
	var in dto.AdjustStockRequest
	if err := bindBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.AdjustStock(c.UserContext(), id, GetEmployeeID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *ProductHandler) Ledger(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.GetLedger(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *ProductHandler) Adjustments(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return err
	}
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return err
	}
	page.DefaultPage()
	items, err := h.uc.ListAdjustments(c.UserContext(), id, page)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"items": items,
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}
