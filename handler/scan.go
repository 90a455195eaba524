package handler

import (
	"vbtix/helper"
	"vbtix/model"
	"vbtix/service"
	"vbtix/utils"

	"github.com/gofiber/fiber/v2"
)

type ScanHandler struct {
	dispatcher *service.ScanDispatcher
}

func NewScanHandler(dispatcher *service.ScanDispatcher) *ScanHandler {
	return &ScanHandler{dispatcher: dispatcher}
}

// Process is the venue entry point: one opaque scanned string in, a
// classified, authorized, recorded verdict out. Rejections come back with
// the scan result attached so the scanner UI can show the reason.
func (h *ScanHandler) Process(c *fiber.Ctx) error {
	claim, err := helper.GetOrganizerFromToken(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid token", err)
	}
	input := c.Locals("input").(model.ScanInput)

	result, err := h.dispatcher.Process(input.Credential, claim, input)
	if err != nil {
		if result != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": result.Message,
				"data":    result,
			})
		}
		return respondError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, result)
}
