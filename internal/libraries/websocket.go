package libraries

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type WebSocketMessageType string

const (
	WebSocketMessageTypePing            WebSocketMessageType = "ping"
	WebSocketMessageTypePong            WebSocketMessageType = "pong"
	WebSocketMessageTypeError           WebSocketMessageType = "error"
	WebSocketMessageTypeQuestion        WebSocketMessageType = "question"
	WebSocketMessageTypeAnswerStarting  WebSocketMessageType = "answer_starting"
	WebSocketMessageTypeAnswer          WebSocketMessageType = "answer"
	WebSocketMessageTypeAnswerCompleted WebSocketMessageType = "answer_completed"
)

type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, 256),
	}
}

// enqueue drops the message once the client is gone or its buffer is full.
func (c *Client) enqueue(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

type Hub struct {
	Clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
}

type WebSocketMessage struct {
	Type WebSocketMessageType `json:"type"`
	Data interface{}          `json:"data,omitempty"`
}

type QuestionMessagePayload struct {
	Question string `json:"question"`
}

type AnswerMessagePayload struct {
	ID       string      `json:"id,omitempty"`
	Question string      `json:"question"`
	Output   string      `json:"output"`
	Steps    interface{} `json:"steps,omitempty"`
}

type ErrorMessagePayload struct {
	Message string `json:"message"`
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client.ID] = client
		case client := <-h.Unregister:
			if _, exists := h.Clients[client.ID]; exists {
				delete(h.Clients, client.ID)
				client.close()
			}
		}
	}
}

func (h *Hub) SendMessage(client *Client, message []byte) {
	if !client.enqueue(message) {
		log.Printf("dropping message for closed client %s", client.ID)
	}
}

func send(hub *Hub, client *Client, message WebSocketMessage) {
	b, err := json.Marshal(message)
	if err != nil {
		log.Printf("failed to marshal %s message: %v", message.Type, err)
		return
	}
	hub.SendMessage(client, b)
}

// SendErrorMessage sends a standardized error message to a client
func SendErrorMessage(hub *Hub, client *Client, errorMsg string) {
	send(hub, client, WebSocketMessage{
		Type: WebSocketMessageTypeError,
		Data: &ErrorMessagePayload{Message: errorMsg},
	})
}

// SendEventType sends a message carrying only its type.
func SendEventType(hub *Hub, client *Client, eventType WebSocketMessageType) {
	send(hub, client, WebSocketMessage{Type: eventType})
}

func SendAnswerMessage(hub *Hub, client *Client, answer *AnswerMessagePayload) {
	send(hub, client, WebSocketMessage{
		Type: WebSocketMessageTypeAnswer,
		Data: answer,
	})
}

// parseWebSocketMessage parses incoming websocket message and returns the message structure
func parseWebSocketMessage(msg []byte) (*WebSocketMessage, error) {
	var rawMessage struct {
		Type WebSocketMessageType `json:"type"`
		Data json.RawMessage      `json:"data,omitempty"`
	}
	if err := json.Unmarshal(msg, &rawMessage); err != nil {
		return nil, err
	}

	message := &WebSocketMessage{
		Type: rawMessage.Type,
	}

	if len(rawMessage.Data) > 0 {
		switch rawMessage.Type {
		case WebSocketMessageTypeQuestion:
			var payload QuestionMessagePayload
			if err := json.Unmarshal(rawMessage.Data, &payload); err != nil {
				return nil, err
			}
			message.Data = &payload
		default:
			var data interface{}
			if err := json.Unmarshal(rawMessage.Data, &data); err != nil {
				return nil, err
			}
			message.Data = data
		}
	}

	return message, nil
}

// QuestionMessageProcessor answers questions received over a websocket.
type QuestionMessageProcessor interface {
	ProcessQuestionMessage(ctx context.Context, hub *Hub, client *Client, message *QuestionMessagePayload)
}

// maxPendingQuestions bounds the questions queued behind the one being
// answered on a connection.
const maxPendingQuestions = 4

// handleMessage dispatches one raw frame from client. Questions are queued
// for processQuestions.
func handleMessage(hub *Hub, client *Client, questions chan<- *QuestionMessagePayload, msg []byte) {
	message, err := parseWebSocketMessage(msg)
	if err != nil {
		log.Println("failed to parse JSON:", err)
		SendErrorMessage(hub, client, "Invalid JSON format")
		return
	}

	switch message.Type {
	case WebSocketMessageTypePing:
		SendEventType(hub, client, WebSocketMessageTypePong)
	case WebSocketMessageTypeQuestion:
		payload, ok := message.Data.(*QuestionMessagePayload)
		if !ok {
			SendErrorMessage(hub, client, "Question payload is required")
			return
		}
		select {
		case questions <- payload:
		default:
			SendErrorMessage(hub, client, "Too many questions in flight, try again once an answer arrives")
		}
	default:
		SendErrorMessage(hub, client, "Type is invalid or not provided")
	}
}

// processQuestions answers queued questions one at a time until ctx is
// cancelled or the queue is closed.
func processQuestions(ctx context.Context, hub *Hub, client *Client, processor QuestionMessageProcessor, questions <-chan *QuestionMessagePayload) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-questions:
			if !ok {
				return
			}
			processor.ProcessQuestionMessage(ctx, hub, client, payload)
		}
	}
}

func WebSocketHandler(hub *Hub, processor QuestionMessageProcessor) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client := NewClient(conn)
		hub.Register <- client

		// cancelled once the peer goes away so in-flight agent runs stop
		ctx, cancel := context.WithCancel(context.Background())
		questions := make(chan *QuestionMessagePayload, maxPendingQuestions)
		done := make(chan struct{})
		go func() {
			defer close(done)
			processQuestions(ctx, hub, client, processor, questions)
		}()

		// Write loop
		go func() {
			for msg := range client.Send {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					log.Println("write error:", err)
					return
				}
			}
		}()

		// Read loop
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				log.Println("read error:", err)
				break
			}
			handleMessage(hub, client, questions, msg)
		}

		cancel()
		close(questions)
		<-done

		hub.Unregister <- client
		conn.Close()
	})
}

// UpgradeRequired rejects plain HTTP requests on websocket routes.
func UpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
