package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mwangikibui/cert_track/handlers"
	"github.com/mwangikibui/cert_track/middleware"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	payments := api.Group("/payments", middleware.Protected())
	payments.Get("", handlers.ListMyPayments)
	payments.Post("/addon-attempts", handlers.PurchaseAddonAttempts)
	payments.Post("/reissue", handlers.ReissueCertificate)
}
