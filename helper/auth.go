package helper

import (
	"errors"

	"vbtix/model"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// GetOrganizerFromToken extracts the organizer claims middleware.Protected
// stored in Locals.
func GetOrganizerFromToken(c *fiber.Ctx) (model.TokenClaim, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return model.TokenClaim{}, errors.New("no token in context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.TokenClaim{}, errors.New("unexpected claims type")
	}
	id, ok := claims["organizerId"].(float64)
	if !ok || id <= 0 {
		return model.TokenClaim{}, errors.New("token has no organizer id")
	}
	email, _ := claims["email"].(string)
	return model.TokenClaim{OrganizerId: uint(id), Email: email}, nil
}
