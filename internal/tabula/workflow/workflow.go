package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"tabula-backend/internal/libraries"
	"tabula-backend/internal/models"
	"tabula-backend/internal/repo"
	"tabula-backend/internal/tabula/agents"
	"tabula-backend/internal/tabula/prompts"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var ErrEmptyQuestion = errors.New("question cannot be empty")

// Answerer is the dataframe-reasoning capability.
type Answerer interface {
	Invoke(ctx context.Context, input string) (*agents.Response, error)
}

type Answer struct {
	ID       uuid.UUID     `json:"id"`
	Question string        `json:"question"`
	Output   string        `json:"output"`
	Steps    []agents.Step `json:"steps"`
}

type Workflow struct {
	agent       Answerer
	questions   repo.QuestionRepoInterface
	modelName   string
	datasetName string
}

type Option func(*Workflow)

// WithHistory stores every answered question in r.
func WithHistory(r repo.QuestionRepoInterface) Option {
	return func(w *Workflow) {
		w.questions = r
	}
}

// WithSource labels stored questions with the model and dataset used.
func WithSource(modelName, datasetName string) Option {
	return func(w *Workflow) {
		w.modelName = modelName
		w.datasetName = datasetName
	}
}

func NewWorkflow(agent Answerer, opts ...Option) *Workflow {
	w := &Workflow{agent: agent}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// BuildPrompt wraps question in the fixed instructions, in this order.
func BuildPrompt(question string) string {
	return prompts.CSV_PROMPT_PREFIX + question + prompts.CSV_PROMPT_SUFFIX
}

// Ask makes exactly one agent call for a non-blank question.
func (w *Workflow) Ask(ctx context.Context, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	resp, err := w.agent.Invoke(ctx, BuildPrompt(question))
	if err != nil {
		return nil, err
	}

	answer := &Answer{
		ID:       uuid.New(),
		Question: question,
		Output:   resp.Output,
		Steps:    resp.Steps,
	}
	if answer.Steps == nil {
		answer.Steps = []agents.Step{}
	}

	if w.questions != nil {
		if err := w.save(answer); err != nil {
			log.Printf("Error saving question %s: %v", answer.ID, err)
		}
	}

	return answer, nil
}

func (w *Workflow) save(answer *Answer) error {
	steps, err := json.Marshal(answer.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}
	return w.questions.CreateQuestion(&models.Question{
		UUID:     answer.ID,
		Question: answer.Question,
		Answer:   answer.Output,
		Steps:    steps,
		Model:    w.modelName,
		Dataset:  w.datasetName,
	})
}

func (w *Workflow) TriggerAnswerWorkflow(c *fiber.Ctx) error {
	var dto struct {
		Question string `json:"question"`
	}

	if err := c.BodyParser(&dto); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	answer, err := w.Ask(c.UserContext(), dto.Question)
	if errors.Is(err, ErrEmptyQuestion) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question cannot be empty",
		})
	}
	if err != nil {
		log.Printf("Error processing question: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to answer question",
		})
	}

	return c.JSON(answer)
}

// ProcessQuestionMessage answers a question received over a websocket.
func (w *Workflow) ProcessQuestionMessage(ctx context.Context, hub *libraries.Hub, client *libraries.Client, message *libraries.QuestionMessagePayload) {
	if strings.TrimSpace(message.Question) == "" {
		libraries.SendErrorMessage(hub, client, "Question cannot be empty")
		return
	}

	libraries.SendEventType(hub, client, libraries.WebSocketMessageTypeAnswerStarting)

	answer, err := w.Ask(ctx, message.Question)
	if err != nil {
		log.Printf("Error processing question: %v", err)
		libraries.SendErrorMessage(hub, client, "Failed to answer question")
		return
	}

	libraries.SendAnswerMessage(hub, client, &libraries.AnswerMessagePayload{
		ID:       answer.ID.String(),
		Question: answer.Question,
		Output:   answer.Output,
		Steps:    answer.Steps,
	})
	libraries.SendEventType(hub, client, libraries.WebSocketMessageTypeAnswerCompleted)
}
