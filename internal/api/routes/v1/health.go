package v1

import (
	"tabula-backend/internal/handlers"

	"github.com/gofiber/fiber/v2"
)

func registerHealth(r fiber.Router) {
	r.Get("/health", handlers.Health)
}
