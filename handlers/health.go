package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vidcourse/api/database"
	"github.com/vidcourse/api/utils/response"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	store database.Storage
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store database.Storage) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check reports service and database health
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := h.store.HealthCheck(); err != nil {
		dbStatus = "unavailable"
	}

	status := fiber.Map{
		"status":    "ok",
		"database":  dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if dbStatus != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(response.Response{
			Success: false,
			Data:    status,
		})
	}

	return response.Success(c, status)
}
