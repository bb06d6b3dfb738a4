package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Root handles GET /.
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(dto.StatusResponse{
		Status:  "ok",
		Message: "SpySignal backend running",
	})
}

// Liveness handles GET /health. It does not touch the store.
func (h *HealthHandler) Liveness(c *fiber.Ctx) error {
	return c.JSON(dto.StatusResponse{Status: "ok"})
}

// Check handles GET /api/health and reports store reachability.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}
