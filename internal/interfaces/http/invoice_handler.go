package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/licoreria-api/internal/application/billing"
	"github.com/jhoicas/licoreria-api/internal/application/dto"
)

// InvoiceHandler facturación (POS y tienda en línea).
type InvoiceHandler struct {
	uc *billing.InvoiceUseCase
}

func NewInvoiceHandler(uc *billing.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Create godoc
// @Summary      Emitir factura
// @Description  Desde items o desde un carrito (cart_id). Descuenta stock en la misma transacción.
// @Tags         facturas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body             body    dto.CreateInvoiceRequest  true   "cliente, canal, forma de pago, IVA e items"
// @Param        Idempotency-Key  header  string                    false  "repite la primera respuesta"
// @Success      201  {object}  dto.InvoiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK"
// @Router       /api/facturas [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := bindBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.CreateInvoice(c.UserContext(), GetEmployeeID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetInvoice(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Cancel anula una factura emitida y devuelve su mercadería al stock.
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if len(c.Body()) > 0 {
		if err := bindBody(c, &in); err != nil {
			return err
		}
	}
	out, err := h.uc.CancelInvoice(c.UserContext(), c.Params("id"), GetEmployeeID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
