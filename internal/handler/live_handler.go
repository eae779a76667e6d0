package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/livetest-app/livetest/internal/service"
)

// LiveHandler streams graded-sheet events to dashboard websockets. A
// dashboard holding the socket open sees each sheet land as it is graded;
// on receipt it refetches the analytics payload.
type LiveHandler struct {
	hub    *service.ResultHub
	logger zerolog.Logger
}

// NewLiveHandler builds a live results handler instance.
func NewLiveHandler(hub *service.ResultHub, logger zerolog.Logger) *LiveHandler {
	return &LiveHandler{
		hub:    hub,
		logger: logger.With().Str("component", "live_handler").Logger(),
	}
}

// Register attaches the websocket route to the provided router group.
func (h *LiveHandler) Register(router fiber.Router) {
	router.Use("/results", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/results", websocket.New(h.results))
}

func (h *LiveHandler) results(conn *websocket.Conn) {
	events, cancel := h.hub.Subscribe()
	defer cancel()
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.Debug().Int("subscribers", h.hub.Subscribers()).Msg("dashboard attached")

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug().Err(err).Msg("dashboard write failed")
				return
			}
		case <-done:
			return
		}
	}
}
