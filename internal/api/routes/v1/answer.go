package v1

import (
	"tabula-backend/internal/libraries"

	"github.com/gofiber/fiber/v2"
)

var hub *libraries.Hub

func init() {
	// Initialize the Hub once
	hub = libraries.NewHub()
	// Start the Hub in a goroutine
	go hub.Run()
}

func registerAnswer(r fiber.Router, deps Deps) {
	r.Post("/answer", deps.Workflow.TriggerAnswerWorkflow)

	// Use the Hub-based WebSocket handler
	r.Get("/ws", libraries.WebSocketHandler(hub, deps.Workflow))
}
