package handler

import (
	"vbtix/helper"
	"vbtix/model"
	"vbtix/service"
	"vbtix/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TicketHandler struct {
	db        *gorm.DB
	lifecycle *service.TicketLifecycle
}

func NewTicketHandler(db *gorm.DB, lifecycle *service.TicketLifecycle) *TicketHandler {
	return &TicketHandler{db: db, lifecycle: lifecycle}
}

// GetQRCode regenerates the ticket's credential and renders it as a PNG.
// `?profile=print` selects the high-resolution rendering; the payload is
// identical either way.
func (h *TicketHandler) GetQRCode(c *fiber.Ctx) error {
	claim, err := helper.GetOrganizerFromToken(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid token", err)
	}
	ticketId := c.Locals("inputId").(int)

	_, encrypted, err := h.lifecycle.TicketCredential(uint(ticketId), claim.OrganizerId)
	if err != nil {
		return respondError(c, err)
	}

	profile := utils.ProfileScreen
	if c.Query("profile") == "print" {
		profile = utils.ProfilePrint
	}
	png, err := utils.RenderQR(encrypted, profile)
	if err != nil {
		return respondError(c, err)
	}

	c.Set("Content-Type", "image/png")
	return c.Send(png)
}

func (h *TicketHandler) List(c *fiber.Ctx) error {
	filterInput := new(model.FilterTicketInput)
	if err := c.QueryParser(filterInput); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filter", err)
	}

	condition := h.db.Model(&model.Ticket{})
	if filterInput.EventId > 0 {
		condition = condition.Where("event_id = ?", filterInput.EventId)
	}
	if filterInput.Status != "" {
		condition = condition.Where("status = ?", filterInput.Status)
	}

	var totalCount int64
	if err := condition.Count(&totalCount).Error; err != nil {
		return respondError(c, err)
	}

	var tickets []model.Ticket
	condition = utils.ApplyPagination(condition, filterInput.Limit, filterInput.Page)
	if err := condition.Order("created_at desc").Find(&tickets).Error; err != nil {
		return respondError(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, &model.ResponseCustom{
		Rows:       tickets,
		Limit:      filterInput.Limit,
		Page:       filterInput.Page,
		TotalCount: totalCount,
	})
}
