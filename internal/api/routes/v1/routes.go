package v1

import (
	"tabula-backend/internal/dataset"
	"tabula-backend/internal/repo"
	"tabula-backend/internal/tabula/workflow"

	"github.com/gofiber/fiber/v2"
)

// Deps is everything the routes need, built once in main.
type Deps struct {
	Dataset     *dataset.Dataset
	Workflow    *workflow.Workflow
	Questions   repo.QuestionRepoInterface // nil when history is disabled
	PreviewRows int
}

func RegisterRoutes(r fiber.Router, deps Deps) {
	registerHealth(r)
	registerDataset(r, deps)
	registerAnswer(r, deps)

	if deps.Questions != nil {
		registerQuestions(r, deps)
	}
}
