package validate

import (
	"vbtix/model"

	"github.com/gofiber/fiber/v2"
)

func CreateOrder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseBody[model.CreateOrderInput](c, "input")
	}
}

func ConfirmPayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseBody[model.ConfirmPaymentInput](c, "input")
	}
}

func RejectOrder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return parseBody[model.RejectOrderInput](c, "input")
	}
}
