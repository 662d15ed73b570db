package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mwangikibui/cert_track/handlers"
	"github.com/mwangikibui/cert_track/middleware"
)

func CertificationRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	tracks := api.Group("/tracks", middleware.Protected())
	tracks.Post("/:trackId/enroll", handlers.EnrollInTrack)
	tracks.Get("/:trackId/status", handlers.GetCertificationStatus)
	tracks.Get("/:trackId/eligibility", handlers.GetExamEligibility)
	tracks.Get("/:trackId/progress", handlers.GetTrackProgress)

	enrollments := api.Group("/enrollments", middleware.Protected())
	enrollments.Get("", handlers.ListMyEnrollments)

	modules := api.Group("/modules", middleware.Protected())
	modules.Get("/:moduleId/progress", handlers.GetModuleProgress)
	modules.Post("/:moduleId/complete", handlers.MarkModuleCompleted)
	modules.Patch("/:moduleId/progress", handlers.UpdateModuleProgress)

	certificates := api.Group("/certificates", middleware.Protected())
	certificates.Get("", handlers.ListMyCertificates)
}
