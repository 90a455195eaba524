package validate

import (
	"vbtix/model"

	"github.com/gofiber/fiber/v2"
)

func CreateWristband() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseBody[model.CreateWristbandInput](c, "input")
	}
}

func UpdateWristband() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseBody[model.UpdateWristbandInput](c, "input")
	}
}

func RevokeWristband() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseBody[model.RevokeWristbandInput](c, "input")
	}
}

func Scan() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseBody[model.ScanInput](c, "input")
	}
}
