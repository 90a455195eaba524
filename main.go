package main

import (
	"log"
	"time"

	"vbtix/config"
	"vbtix/credential"
	"vbtix/database"
	"vbtix/handler"
	"vbtix/router"
	"vbtix/service"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
)

// startTicketExpiryScheduler sweeps ACTIVE tickets whose event has ended
// into EXPIRED once a minute.
func startTicketExpiryScheduler(lifecycle *service.TicketLifecycle) func() {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("ticket expiry scheduler: %v", err)
		return func() {}
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(func() {
			expired, err := lifecycle.ExpireOverdue()
			if err != nil {
				log.Printf("expire tickets: %v", err)
				return
			}
			if expired > 0 {
				log.Printf("expired %d overdue tickets", expired)
			}
		}),
	)
	if err != nil {
		log.Printf("register expiry job: %v", err)
		return func() {}
	}

	scheduler.Start()
	return func() {
		if err := scheduler.Shutdown(); err != nil {
			log.Printf("stop expiry scheduler: %v", err)
		}
	}
}

func main() {
	config.Load()

	db, err := database.Connect()
	if err != nil {
		log.Fatal(err)
	}
	database.SeedData(db)

	codec := credential.NewCodec(config.Config("CREDENTIAL_SECRET"))
	lifecycle := service.NewTicketLifecycle(db, codec)
	wristbands := service.NewWristbandManager(db, codec)
	dispatcher := service.NewScanDispatcher(db, codec, lifecycle, wristbands)

	redisAddr := config.Config("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	feed := handler.NewScanFeed(redis.NewClient(&redis.Options{Addr: redisAddr}))
	dispatcher.SetPublisher(feed)

	stopScheduler := startTicketExpiryScheduler(lifecycle)
	defer stopScheduler()

	corsOrigin := config.Config("CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "http://localhost:5173"
	}

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigin,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept",
		AllowCredentials: true,
		MaxAge:           600,
	}))

	router.SetupRoutes(app, router.Handlers{
		Order:     handler.NewOrderHandler(db, lifecycle),
		Ticket:    handler.NewTicketHandler(db, lifecycle),
		Wristband: handler.NewWristbandHandler(wristbands),
		Scan:      handler.NewScanHandler(dispatcher),
		Feed:      feed,
	})

	port := config.Config("PORT")
	if port == "" {
		port = "8002"
	}
	log.Fatal(app.Listen(":" + port))
}
