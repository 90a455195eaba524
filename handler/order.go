package handler

import (
	"vbtix/model"
	"vbtix/service"
	"vbtix/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type OrderHandler struct {
	db        *gorm.DB
	lifecycle *service.TicketLifecycle
}

func NewOrderHandler(db *gorm.DB, lifecycle *service.TicketLifecycle) *OrderHandler {
	return &OrderHandler{db: db, lifecycle: lifecycle}
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateOrderInput)

	order, err := h.lifecycle.CreateOrder(input)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, order)
}

// ConfirmPayment is the payment verifier's entry point. It never touches
// ticket status or stock; approval is a separate actor's call.
func (h *OrderHandler) ConfirmPayment(c *fiber.Ctx) error {
	orderCode := c.Params("orderCode")
	input := c.Locals("input").(model.ConfirmPaymentInput)

	order, err := h.lifecycle.ConfirmPayment(orderCode, input.Success)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

// Approve releases the paid order's inventory, issues QR credentials and
// emails them to the buyer. Email delivery is best-effort: a failure there
// leaves the approval standing.
func (h *OrderHandler) Approve(c *fiber.Ctx) error {
	orderCode := c.Params("orderCode")

	issued, err := h.lifecycle.ApproveOrder(orderCode)
	if err != nil {
		return respondError(c, err)
	}

	var order model.Order
	if err := h.db.Preload("Event").Where("public_code = ?", orderCode).First(&order).Error; err != nil {
		return respondError(c, err)
	}

	if order.BuyerEmail != "" {
		attachments := make([]utils.TicketAttachment, 0, len(issued))
		for _, cred := range issued {
			png, err := utils.RenderQR(cred.Encrypted, utils.ProfileScreen)
			if err != nil {
				continue
			}
			attachments = append(attachments, utils.TicketAttachment{
				TicketCode: cred.Ticket.PublicCode,
				PNG:        png,
			})
		}
		utils.SendOrderApprovedEmail(order.BuyerEmail, utils.OrderApprovedData{
			OrderCode:   order.PublicCode,
			EventName:   order.Event.Name,
			EventDate:   order.Event.StartsAt.Format("02/01/2006 15:04"),
			Venue:       order.Event.Venue,
			TicketCount: len(issued),
			TotalAmount: order.TotalAmount,
		}, attachments)
	}

	tickets := make([]model.Ticket, 0, len(issued))
	for _, cred := range issued {
		tickets = append(tickets, cred.Ticket)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"order":     order,
		"tickets":   tickets,
		"emailSent": order.BuyerEmail != "",
	})
}

func (h *OrderHandler) Reject(c *fiber.Ctx) error {
	orderCode := c.Params("orderCode")
	input := c.Locals("input").(model.RejectOrderInput)

	order, err := h.lifecycle.RejectOrder(orderCode, input.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

func (h *OrderHandler) Refund(c *fiber.Ctx) error {
	orderCode := c.Params("orderCode")

	order, err := h.lifecycle.RefundOrder(orderCode)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

func (h *OrderHandler) GetDetail(c *fiber.Ctx) error {
	orderCode := c.Params("orderCode")

	var order model.Order
	if err := h.db.
		Preload("Items").
		Preload("Tickets").
		Preload("Event").
		Where("public_code = ?", orderCode).
		First(&order).Error; err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, order)
}
