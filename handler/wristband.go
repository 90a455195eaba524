package handler

import (
	"vbtix/helper"
	"vbtix/model"
	"vbtix/service"
	"vbtix/utils"

	"github.com/gofiber/fiber/v2"
)

type WristbandHandler struct {
	manager *service.WristbandManager
}

func NewWristbandHandler(manager *service.WristbandManager) *WristbandHandler {
	return &WristbandHandler{manager: manager}
}

func (h *WristbandHandler) Create(c *fiber.Ctx) error {
	claim, err := helper.GetOrganizerFromToken(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid token", err)
	}
	input := c.Locals("input").(model.CreateWristbandInput)

	band, err := h.manager.Create(claim.OrganizerId, input)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, band)
}

func (h *WristbandHandler) Update(c *fiber.Ctx) error {
	claim, err := helper.GetOrganizerFromToken(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid token", err)
	}
	wristbandId := c.Locals("inputId").(int)
	input := c.Locals("input").(model.UpdateWristbandInput)

	band, err := h.manager.Update(uint(wristbandId), claim.OrganizerId, input)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, band)
}

func (h *WristbandHandler) Revoke(c *fiber.Ctx) error {
	claim, err := helper.GetOrganizerFromToken(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid token", err)
	}
	wristbandId := c.Locals("inputId").(int)
	input := c.Locals("input").(model.RevokeWristbandInput)

	if err := h.manager.Revoke(uint(wristbandId), claim.OrganizerId, input.Reason); err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"revoked": true})
}

// Validate is the read-only eligibility probe; it records nothing.
func (h *WristbandHandler) Validate(c *fiber.Ctx) error {
	claim, err := helper.GetOrganizerFromToken(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid token", err)
	}
	wristbandId := c.Locals("inputId").(int)

	band, err := h.manager.Validate(uint(wristbandId), claim.OrganizerId)
	if err != nil {
		if band != nil && service.IsDomainError(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": service.ReasonMessage(err),
				"data":    band,
			})
		}
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, band)
}

func (h *WristbandHandler) ListScans(c *fiber.Ctx) error {
	claim, err := helper.GetOrganizerFromToken(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid token", err)
	}
	wristbandId := c.Locals("inputId").(int)

	var pg model.Pagination
	if err := c.QueryParser(&pg); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", err)
	}

	logs, total, err := h.manager.ListScans(uint(wristbandId), claim.OrganizerId, pg.Limit, pg.Page)
	if err != nil {
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, &model.ResponseCustom{
		Rows:       logs,
		Limit:      pg.Limit,
		Page:       pg.Page,
		TotalCount: total,
	})
}

// GetQRCode renders the wristband credential image.
func (h *WristbandHandler) GetQRCode(c *fiber.Ctx) error {
	claim, err := helper.GetOrganizerFromToken(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid token", err)
	}
	wristbandId := c.Locals("inputId").(int)

	_, encrypted, err := h.manager.Credential(uint(wristbandId), claim.OrganizerId)
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
