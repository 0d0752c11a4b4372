package handlers

import (
	"tabula-backend/internal/dataset"

	"github.com/gofiber/fiber/v2"
)

type DatasetHandler struct {
	dataset     *dataset.Dataset
	previewRows int
}

func NewDatasetHandler(ds *dataset.Dataset, previewRows int) *DatasetHandler {
	return &DatasetHandler{dataset: ds, previewRows: previewRows}
}

// GetPreview returns the first rows of the dataset, ?rows= overrides the default.
func (h *DatasetHandler) GetPreview(c *fiber.Ctx) error {
	rows := c.QueryInt("rows", h.previewRows)
	if rows < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid rows",
		})
	}

	columns, records := h.dataset.Preview(rows)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"columns": columns,
		"rows":    records,
		"total":   h.dataset.Nrow(),
	})
}
