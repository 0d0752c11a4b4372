package routes

import (
	v1 "tabula-backend/internal/api/routes/v1"
	"tabula-backend/internal/handlers"

	"github.com/gofiber/fiber/v2"
)

func Register(app *fiber.App, deps v1.Deps) {
	// Question page
	page := handlers.NewPageHandler(deps.Dataset, deps.Workflow, deps.PreviewRows)
	app.Get("/", page.Index)
	app.Post("/", page.Answer)

	// API v1 group
	api := app.Group("/api")
	v1Group := api.Group("/v1")

	// Register v1 routes
	v1.RegisterRoutes(v1Group, deps)
}
