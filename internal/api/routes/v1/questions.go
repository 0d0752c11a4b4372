package v1

import (
	"tabula-backend/internal/handlers"

	"github.com/gofiber/fiber/v2"
)

func registerQuestions(r fiber.Router, deps Deps) {
	questionHandler := handlers.NewQuestionHandler(deps.Questions)

	r.Get("/questions", questionHandler.GetQuestions)
}
