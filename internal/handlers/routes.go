package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the API under /api/v1.
func RegisterRoutes(app *fiber.App, candidates *CandidateHandler, jobs *JobHandler, matches *MatchHandler) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/resume/upload", candidates.HandleUpload)
	api.Get("/resume/all", candidates.HandleList)
	api.Get("/resume/:candidate_id/sort", candidates.HandleSort)

	api.Post("/jobs", jobs.HandleCreate)
	api.Get("/jobs/list", jobs.HandleList)
	api.Get("/jobs/:job_id", jobs.HandleGet)
	api.Get("/jobs/:job_id/candidates", jobs.HandleSuggest)

	api.Get("/match/all", matches.HandleList)
	api.Get("/match/:job_id/:candidate_id", matches.HandleGet)
}
