package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mwangikibui/cert_track/handlers"
	"github.com/mwangikibui/cert_track/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	tracks := admin.Group("/tracks")
	tracks.Post("", handlers.CreateTrack)
	tracks.Get("", handlers.ListTracks)
	tracks.Get("/:trackId", handlers.GetTrack)
	tracks.Put("/:trackId", handlers.UpdateTrack)
	tracks.Post("/:trackId/modules", handlers.CreateModule)

	modules := admin.Group("/modules")
	modules.Put("/:moduleId", handlers.UpdateModule)
	modules.Delete("/:moduleId", handlers.DeleteModule)

	users := admin.Group("/users")
	users.Get("", handlers.ListUsers)
	users.Patch("/:userId", handlers.ManageUser)

	enrollments := admin.Group("/enrollments")
	enrollments.Get("", handlers.ListEnrollments)
	enrollments.Patch("/:enrollmentId", handlers.ManageEnrollment)

	admin.Post("/exam-results", handlers.RecordExamResult)
}
