package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/licoreria-api/internal/application/dto"
	"github.com/jhoicas/licoreria-api/internal/application/purchasing"
)

// PurchaseOrderHandler órdenes de compra (compra).
type PurchaseOrderHandler struct {
	uc *purchasing.PurchaseOrderUseCase
}

func NewPurchaseOrderHandler(uc *purchasing.PurchaseOrderUseCase) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{uc: uc}
}

// Create godoc
// @Summary      Emitir orden de compra
// @Tags         compras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreatePurchaseOrderRequest  true  "proveedor y líneas"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/compras [post]
func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if err := bindBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetEmployeeID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar órdenes de compra
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        state        query  string  false  "PEN | PAR | COM | ANU"
// @Param        supplier_id  query  int     false  "proveedor"
// @Param        limit        query  int     false  "1..100"
// @Param        offset       query  int     false  "desde"
// @Router       /api/compras [get]
func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	var in dto.ListPurchaseOrdersRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	in.DefaultPage()
	items, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"items": items,
		"page":  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	})
}

func (h *PurchaseOrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update reemplaza las líneas de una orden pendiente sin recepciones.
func (h *PurchaseOrderHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdatePurchaseOrderRequest
	if err := bindBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *PurchaseOrderHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
