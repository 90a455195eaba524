package router

import (
	"vbtix/handler"
	"vbtix/middleware"
	"vbtix/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

type Handlers struct {
	Order     *handler.OrderHandler
	Ticket    *handler.TicketHandler
	Wristband *handler.WristbandHandler
	Scan      *handler.ScanHandler
	Feed      *handler.ScanFeed
}

func SetupRoutes(app *fiber.App, h Handlers) {
	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1", logger.New())

	order := v1.Group("/order")
	order.Post("/", validate.CreateOrder(), h.Order.Create)
	order.Get("/:orderCode", h.Order.GetDetail)
	order.Post("/:orderCode/confirm-payment", validate.ConfirmPayment(), h.Order.ConfirmPayment)
	order.Post("/:orderCode/approve", middleware.Protected(), h.Order.Approve)
	order.Post("/:orderCode/reject", middleware.Protected(), validate.RejectOrder(), h.Order.Reject)
	order.Post("/:orderCode/refund", middleware.Protected(), h.Order.Refund)

	ticket := v1.Group("/ticket", middleware.Protected())
	ticket.Get("/", h.Ticket.List)
	ticket.Get("/:ticketId/qrcode", validate.GetById("ticketId"), h.Ticket.GetQRCode)

	wristband := v1.Group("/wristband", middleware.Protected())
	wristband.Post("/", validate.CreateWristband(), h.Wristband.Create)
	wristband.Put("/:wristbandId", validate.GetById("wristbandId"), validate.UpdateWristband(), h.Wristband.Update)
	wristband.Delete("/:wristbandId", validate.GetById("wristbandId"), validate.RevokeWristband(), h.Wristband.Revoke)
	wristband.Get("/:wristbandId/validate", validate.GetById("wristbandId"), h.Wristband.Validate)
	wristband.Get("/:wristbandId/scans", validate.GetById("wristbandId"), h.Wristband.ListScans)
	wristband.Get("/:wristbandId/qrcode", validate.GetById("wristbandId"), h.Wristband.GetQRCode)

	v1.Post("/scan", middleware.Protected(), validate.Scan(), h.Scan.Process)

	app.Get("/ws/event/:id/scans", websocket.New(h.Feed.Connection))
}
