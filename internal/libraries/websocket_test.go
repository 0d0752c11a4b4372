package libraries

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	questions []string
}

func (p *recordingProcessor) ProcessQuestionMessage(_ context.Context, hub *Hub, client *Client, message *QuestionMessagePayload) {
	p.questions = append(p.questions, message.Question)
	SendAnswerMessage(hub, client, &AnswerMessagePayload{Question: message.Question, Output: "42"})
}

func newTestClient() *Client {
	return &Client{ID: "test", Send: make(chan []byte, 8)}
}

func receive(t *testing.T, c *Client) WebSocketMessage {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	default:
		t.Fatal("expected a queued message")
		return WebSocketMessage{}
	}
}

func TestParseWebSocketMessage_Question(t *testing.T) {
	msg, err := parseWebSocketMessage([]byte(`{"type":"question","data":{"question":"how many rows?"}}`))
	require.NoError(t, err)
	assert.Equal(t, WebSocketMessageTypeQuestion, msg.Type)

	payload, ok := msg.Data.(*QuestionMessagePayload)
	require.True(t, ok)
	assert.Equal(t, "how many rows?", payload.Question)
}

func TestParseWebSocketMessage_Invalid(t *testing.T) {
	_, err := parseWebSocketMessage([]byte(`{not json`))
	require.Error(t, err)
}

func TestHandleMessage_Ping(t *testing.T) {
	hub := NewHub()
	client := newTestClient()
	questions := make(chan *QuestionMessagePayload, 1)

	handleMessage(hub, client, questions, []byte(`{"type":"ping"}`))

	assert.Equal(t, WebSocketMessageTypePong, receive(t, client).Type)
	assert.Empty(t, questions)
}

func TestHandleMessage_Question(t *testing.T) {
	hub := NewHub()
	client := newTestClient()
	p := &recordingProcessor{}
	questions := make(chan *QuestionMessagePayload, 1)

	handleMessage(hub, client, questions, []byte(`{"type":"question","data":{"question":"avg salary?"}}`))
	close(questions)
	processQuestions(context.Background(), hub, client, p, questions)

	require.Equal(t, []string{"avg salary?"}, p.questions)
	msg := receive(t, client)
	assert.Equal(t, WebSocketMessageTypeAnswer, msg.Type)
	data, ok := msg.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "42", data["output"])
}

func TestHandleMessage_QueueFull(t *testing.T) {
	hub := NewHub()
	client := newTestClient()
	questions := make(chan *QuestionMessagePayload, 1)

	handleMessage(hub, client, questions, []byte(`{"type":"question","data":{"question":"first"}}`))
	handleMessage(hub, client, questions, []byte(`{"type":"question","data":{"question":"second"}}`))

	assert.Equal(t, WebSocketMessageTypeError, receive(t, client).Type)
	require.Len(t, questions, 1)
	assert.Equal(t, "first", (<-questions).Question)
}

func TestHandleMessage_Errors(t *testing.T) {
	hub := NewHub()
	client := newTestClient()
	questions := make(chan *QuestionMessagePayload, 1)

	handleMessage(hub, client, questions, []byte(`garbage`))
	handleMessage(hub, client, questions, []byte(`{"type":"question"}`))
	handleMessage(hub, client, questions, []byte(`{"type":"unknown"}`))

	for i := 0; i < 3; i++ {
		assert.Equal(t, WebSocketMessageTypeError, receive(t, client).Type)
	}
	assert.Empty(t, questions)
}

// blockingProcessor holds each question until its context is cancelled.
type blockingProcessor struct {
	started chan struct{}
	err     chan error
}

func (p *blockingProcessor) ProcessQuestionMessage(ctx context.Context, _ *Hub, _ *Client, _ *QuestionMessagePayload) {
	close(p.started)
	<-ctx.Done()
	p.err <- ctx.Err()
}

func TestProcessQuestions_CancelStopsInFlightQuestion(t *testing.T) {
	hub := NewHub()
	client := newTestClient()
	p := &blockingProcessor{started: make(chan struct{}), err: make(chan error, 1)}
	questions := make(chan *QuestionMessagePayload, 1)
	questions <- &QuestionMessagePayload{Question: "slow"}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		processQuestions(ctx, hub, client, p, questions)
	}()

	<-p.started
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processQuestions did not return after cancel")
	}
	assert.ErrorIs(t, <-p.err, context.Canceled)
}

func TestSendMessage_ClosedClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient()
	client.close()

	assert.NotPanics(t, func() {
		SendEventType(hub, client, WebSocketMessageTypePong)
	})
}
