package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mwangikibui/cert_track/handlers"
	"github.com/mwangikibui/cert_track/middleware"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.RegisterUser)
	auth.Post("/login", handlers.LoginUser)
	auth.Post("/forgot-password", handlers.ForgotPassword)
	auth.Post("/reset-password", handlers.ResetPassword)
	auth.Get("/me", middleware.Protected(), handlers.GetCurrentUser)
}
