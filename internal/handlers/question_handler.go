package handlers

import (
	"log"

	"tabula-backend/internal/repo"

	"github.com/gofiber/fiber/v2"
)

type QuestionHandler struct {
	questionRepo repo.QuestionRepoInterface
}

func NewQuestionHandler(questionRepo repo.QuestionRepoInterface) *QuestionHandler {
	return &QuestionHandler{questionRepo: questionRepo}
}

// GetQuestions lists answered questions, newest first.
func (h *QuestionHandler) GetQuestions(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("pageSize", repo.DefaultPageSize)

	questions, total, err := h.questionRepo.GetQuestions(page, pageSize)
	if err != nil {
		log.Println(err, "Error getting questions")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get questions",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"questions": questions,
		"total":     total,
	})
}
