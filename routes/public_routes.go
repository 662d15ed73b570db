package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/mwangikibui/cert_track/handlers"
)

func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Track catalog is browseable without an account.
	api.Get("/catalog/tracks", handlers.ListTracks)
	api.Get("/catalog/tracks/:trackId", handlers.GetTrack)

	// Employer-facing certificate verification.
	api.Get("/certificates/verify/:number", handlers.VerifyCertificate)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(handlers.ServeWs))
}
