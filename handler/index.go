package handler

import (
	"errors"

	"vbtix/credential"
	"vbtix/service"
	"vbtix/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// respondError maps the error taxonomy onto HTTP statuses: 400 for
// format errors, 422 for integrity failures, 409 for state conflicts, 404
// for unknown records, 500 for infrastructure. Venue staff always get the
// specific reason, never a generic failure.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Not found", err)
	case errors.Is(err, credential.ErrMalformedCredential),
		errors.Is(err, service.ErrUnrecognizedCredential):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, service.ReasonMessage(err), err)
	case errors.Is(err, credential.ErrChecksumMismatch),
		errors.Is(err, credential.ErrCredentialExpired):
		return utils.ErrorResponse(c, fiber.StatusUnprocessableEntity, service.ReasonMessage(err), err)
	case errors.Is(err, service.ErrWrongEvent):
		return utils.ErrorResponse(c, fiber.StatusForbidden, service.ReasonMessage(err), err)
	case service.IsDomainError(err):
		return utils.ErrorResponse(c, fiber.StatusConflict, service.ReasonMessage(err), err)
	default:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal error", err)
	}
}
