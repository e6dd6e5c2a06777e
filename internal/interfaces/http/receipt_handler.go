package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/licoreria-api/internal/application/dto"
	"github.com/jhoicas/licoreria-api/internal/application/purchasing"
)

// ReceiptHandler recepciones de bodega contra órdenes de compra.
type ReceiptHandler struct {
	uc *purchasing.ReceiptUseCase
}

func NewReceiptHandler(uc *purchasing.ReceiptUseCase) *ReceiptHandler {
	return &ReceiptHandler{uc: uc}
}

// Open godoc
// @Summary      Abrir recepción de una orden de compra
// @Description  Sin líneas, la recepción se abre con la cantidad pendiente de cada línea.
// @Tags         recepciones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "id de la compra"
// @Param        body  body      dto.OpenReceiptRequest  false "notas y cantidades"
// @Success      201   {object}  dto.ReceiptResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/compras/{id}/recepciones [post]
func (h *ReceiptHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenReceiptRequest
	if len(c.Body()) > 0 {
		if err := bindBody(c, &in); err != nil {
			return err
		}
	}
	out, err := h.uc.Open(c.UserContext(), c.Params("id"), GetEmployeeID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *ReceiptHandler) ListByOrder(c *fiber.Ctx) error {
	items, err := h.uc.ListByOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *ReceiptHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *ReceiptHandler) AdjustLines(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return err
	}
	var in dto.AdjustReceiptLinesRequest
	if err := bindBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.AdjustLines(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar recepción
// @Description  Ingresa al stock las cantidades recibidas y actualiza el estado de la compra.
// @Tags         recepciones
// @Security     Bearer
// @Produce      json
// @Param        id               path    int     true   "id de la recepción"
// @Param        Idempotency-Key  header  string  false  "repite la primera respuesta"
// @Success      200  {object}  dto.ApproveReceiptResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/recepciones/{id}/aprobar [post]
func (h *ReceiptHandler) Approve(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return err
	}
	var in dto.ApproveReceiptRequest
	if len(c.Body()) > 0 {
		if err := bindBody(c, &in); err != nil {
			return err
		}
	}
	out, err := h.uc.Approve(c.UserContext(), id, GetEmployeeID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *ReceiptHandler) Cancel(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return err
	}
	var in dto.CancelRequest
	if len(c.Body()) > 0 {
		if err := bindBody(c, &in); err != nil {
			return err
		}
	}
	out, err := h.uc.Cancel(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
