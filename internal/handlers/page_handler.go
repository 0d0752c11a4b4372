package handlers

import (
	"context"
	"errors"
	"html/template"
	"log"

	"tabula-backend/internal/dataset"
	"tabula-backend/internal/tabula/prompts"
	"tabula-backend/internal/tabula/workflow"

	"github.com/gofiber/fiber/v2"
	"gitlab.com/golang-commonmark/markdown"
)

const PageTitle = "Database AI Agent with LangChain and OpenAI"

// Asker answers one question about the dataset.
type Asker interface {
	Ask(ctx context.Context, question string) (*workflow.Answer, error)
}

// PageHandler serves the question page.
type PageHandler struct {
	dataset     *dataset.Dataset
	asker       Asker
	previewRows int
	md          *markdown.Markdown
}

func NewPageHandler(ds *dataset.Dataset, asker Asker, previewRows int) *PageHandler {
	return &PageHandler{
		dataset:     ds,
		asker:       asker,
		previewRows: previewRows,
		md:          markdown.New(markdown.XHTMLOutput(true)),
	}
}

func (h *PageHandler) view(question string) fiber.Map {
	columns, rows := h.dataset.Preview(h.previewRows)
	return fiber.Map{
		"Title":    PageTitle,
		"Columns":  columns,
		"Rows":     rows,
		"Question": question,
	}
}

// Index renders the preview and the question form.
func (h *PageHandler) Index(c *fiber.Ctx) error {
	return c.Render("index", h.view(prompts.DEFAULT_QUESTION))
}

// Answer handles a "Get Answer" submission.
func (h *PageHandler) Answer(c *fiber.Ctx) error {
	question := c.FormValue("question")
	data := h.view(question)

	answer, err := h.asker.Ask(c.UserContext(), question)
	switch {
	case errors.Is(err, workflow.ErrEmptyQuestion):
		data["Message"] = "Please enter a question."
		return c.Render("index", data)
	case err != nil:
		log.Printf("Error answering question: %v", err)
		data["Error"] = "Failed to answer question: " + err.Error()
		return c.Status(fiber.StatusInternalServerError).Render("index", data)
	}

	data["Answer"] = template.HTML(h.md.RenderToString([]byte(answer.Output)))
	return c.Render("index", data)
}
