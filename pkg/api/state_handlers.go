// Package api serves the read-only diagnostics endpoints of the steering
// controller.
package api

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	customlog "github.com/open-teleop/steering/pkg/log"
)

// DefaultStreamInterval is the push period of /ws/state.
const DefaultStreamInterval = 200 * time.Millisecond

// StateHandler holds dependencies for the steering state endpoints.
type StateHandler struct {
	provider       StateProvider
	logger         customlog.Logger
	streamInterval time.Duration
}

// NewStateHandler creates a new handler for state endpoints.
func NewStateHandler(provider StateProvider, logger customlog.Logger) *StateHandler {
	if provider == nil {
		panic("StateProvider cannot be nil in NewStateHandler")
	}
	if logger == nil {
		panic("Logger cannot be nil in NewStateHandler")
	}
	return &StateHandler{
		provider:       provider,
		logger:         logger,
		streamInterval: DefaultStreamInterval,
	}
}

// RegisterStateRoutes registers the diagnostics endpoints with the Fiber app.
func RegisterStateRoutes(app *fiber.App, provider StateProvider, logger customlog.Logger) *StateHandler {
	h := NewStateHandler(provider, logger)

	app.Get("/health", h.handleHealth)

	apiGroup := app.Group("/api/v1/steering")
	apiGroup.Get("/state", h.handleGetState)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/state", websocket.New(h.StreamState))

	logger.Infof("Registered steering state API endpoints under /api/v1/steering and /ws/state")
	return h
}

// SetStreamInterval overrides the /ws/state push period.
func (h *StateHandler) SetStreamInterval(d time.Duration) {
	if d > 0 {
		h.streamInterval = d
	}
}

func (h *StateHandler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":     "healthy",
		"session_id": h.provider.SessionID(),
	})
}

// handleGetState handles GET requests for the current steering state.
func (h *StateHandler) handleGetState(c *fiber.Ctx) error {
	h.logger.Debugf("Handling GET request for /api/v1/steering/state")
	return c.JSON(NewStateResponse(h.provider))
}
