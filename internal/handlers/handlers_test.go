package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"tabula-backend/internal/dataset"
	"tabula-backend/internal/models"
	"tabula-backend/internal/tabula/workflow"
	"tabula-backend/internal/views"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAsker struct {
	questions []string
	output    string
	err       error
}

func (f *fakeAsker) Ask(_ context.Context, question string) (*workflow.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, workflow.ErrEmptyQuestion
	}
	f.questions = append(f.questions, question)
	if f.err != nil {
		return nil, f.err
	}
	return &workflow.Answer{Question: question, Output: f.output}, nil
}

type fakeQuestionRepo struct {
	page, pageSize int
	err            error
}

func (r *fakeQuestionRepo) CreateQuestion(*models.Question) error { return nil }

func (r *fakeQuestionRepo) GetQuestions(page, pageSize int) ([]models.Question, int64, error) {
	r.page, r.pageSize = page, pageSize
	if r.err != nil {
		return nil, 0, r.err
	}
	return []models.Question{{Question: "rows?", Answer: "3"}}, 1, nil
}

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load(strings.NewReader("grade,base_salary\nA,100\nB,\nC,300\n"))
	require.NoError(t, err)
	return ds
}

func newPageApp(t *testing.T, asker Asker) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{Views: views.Engine()})
	h := NewPageHandler(testDataset(t), asker, 2)
	app.Get("/", h.Index)
	app.Post("/", h.Answer)
	return app
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func submit(t *testing.T, app *fiber.App, question string) (*http.Response, string) {
	t.Helper()
	form := url.Values{"question": {question}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp, body(t, resp)
}

func TestPageHandler_Index(t *testing.T) {
	app := newPageApp(t, &fakeAsker{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	html := body(t, resp)
	assert.Contains(t, html, "<title>Database AI Agent with LangChain and OpenAI</title>")
	assert.Contains(t, html, "Dataset Preview")
	assert.Contains(t, html, "Ask a question about the dataset")
	assert.Contains(t, html, "Enter your question here:")
	assert.Contains(t, html, "Get Answer")
	assert.Contains(t, html, "Which grade has the highest average base salary")
	assert.Contains(t, html, "<td>B</td><td>0</td>")
	assert.NotContains(t, html, "<td>C</td>")
	assert.NotContains(t, html, "Answer:")
}

func TestPageHandler_EmptyQuestion(t *testing.T) {
	asker := &fakeAsker{}
	app := newPageApp(t, asker)

	resp, html := submit(t, app, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, html, "Please enter a question.")
	assert.NotContains(t, html, "Answer:")
	assert.Empty(t, asker.questions)
}

func TestPageHandler_RendersMarkdownAnswer(t *testing.T) {
	asker := &fakeAsker{output: "Grade **C** pays 1,300.\n\nExplanation:\nused `grade`"}
	app := newPageApp(t, asker)

	resp, html := submit(t, app, "Which grade pays most?")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Which grade pays most?"}, asker.questions)
	assert.Contains(t, html, "Answer:")
	assert.Contains(t, html, "<strong>C</strong>")
	assert.Contains(t, html, "<code>grade</code>")
	assert.Contains(t, html, `value="Which grade pays most?"`)
}

func TestPageHandler_AgentFailure(t *testing.T) {
	app := newPageApp(t, &fakeAsker{err: errors.New("quota exceeded")})

	resp, html := submit(t, app, "q")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, html, "quota exceeded")
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(body(t, resp)), &out))
	return out
}

func TestDatasetHandler_GetPreview(t *testing.T) {
	app := fiber.New()
	app.Get("/preview", NewDatasetHandler(testDataset(t), 2).GetPreview)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/preview", nil))
	require.NoError(t, err)
	out := decode(t, resp)
	assert.Equal(t, []any{"grade", "base_salary"}, out["columns"])
	assert.Len(t, out["rows"], 2)
	assert.EqualValues(t, 3, out["total"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/preview?rows=10", nil))
	require.NoError(t, err)
	assert.Len(t, decode(t, resp)["rows"], 3)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/preview?rows=-1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestQuestionHandler_GetQuestions(t *testing.T) {
	questions := &fakeQuestionRepo{}
	app := fiber.New()
	app.Get("/questions", NewQuestionHandler(questions).GetQuestions)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/questions?page=2&pageSize=5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode(t, resp)
	assert.EqualValues(t, 1, out["total"])
	assert.Len(t, out["questions"], 1)
	assert.Equal(t, 2, questions.page)
	assert.Equal(t, 5, questions.pageSize)

	questions.err = errors.New("db down")
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/questions", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	app := fiber.New()
	app.Get("/health", Health)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, "ok", decode(t, resp)["status"])
}
