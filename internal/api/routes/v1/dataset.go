package v1

import (
	"tabula-backend/internal/handlers"

	"github.com/gofiber/fiber/v2"
)

func registerDataset(r fiber.Router, deps Deps) {
	datasetHandler := handlers.NewDatasetHandler(deps.Dataset, deps.PreviewRows)

	r.Get("/dataset/preview", datasetHandler.GetPreview)
}
