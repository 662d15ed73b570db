package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	config "github.com/mwangikibui/cert_track/configs"
	"github.com/mwangikibui/cert_track/database"
	"github.com/mwangikibui/cert_track/jobs"
	"github.com/mwangikibui/cert_track/notifications"
	"github.com/mwangikibui/cert_track/routes"
	"github.com/mwangikibui/cert_track/websocket"
	"github.com/robfig/cron/v3"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	database.SeedAdmin()
	notifications.InitEmailService()

	c := cron.New()
	c.AddFunc("0 6 * * *", jobs.SendCertificateExpiryReminders)
	c.AddFunc("30 0 * * *", jobs.SweepExpiredEnrollments)
	go c.Start()
	log.Println("✅ Expiry cron jobs scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "CertTrack",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to CertTrack API",
		})
	})

	routes.PublicRoutes(app)
	routes.AuthRoutes(app)
	routes.AdminRoutes(app)
	routes.CertificationRoutes(app)
	routes.ExamRoutes(app)
	routes.PaymentRoutes(app)

	go websocket.RunHub()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	port := config.ConfigInt("PORT", 8080)
	log.Printf("✅ Server is running on port %d", port)
	err := app.Listen(fmt.Sprintf(":%d", port))
	if err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
