package signaling

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/retention"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SignalingPlugin relays WebRTC offers, answers and ICE candidates through a
// consume-once queue. Its routes are unauthenticated.
type SignalingPlugin struct {
	service *SignalService
}

func New(db *gorm.DB, publisher events.Publisher) *SignalingPlugin {
	return &SignalingPlugin{service: NewSignalService(db, publisher)}
}

func (p *SignalingPlugin) ID() string { return "call" }

func (p *SignalingPlugin) Models() []interface{} {
	return []interface{}{
		&CallSignal{},
	}
}

func (p *SignalingPlugin) Service() *SignalService { return p.service }

func (p *SignalingPlugin) RegisterRoutes(router fiber.Router) {
	handler := NewSignalHandler(p.service)

	router.Post("/offer", handler.Offer)
	router.Post("/answer", handler.Answer)
	router.Post("/candidate", handler.Candidate)
	router.Get("/poll/:user_id", handler.Poll)
}

func (p *SignalingPlugin) RetentionTasks(cfg *config.Config) []retention.Task {
	if cfg.SignalMaxAge <= 0 {
		return nil
	}
	maxAge := cfg.SignalMaxAge
	return []retention.Task{{
		Name: "call_signals",
		Run: func(ctx context.Context) (int64, error) {
			return p.service.PurgeStale(ctx, maxAge)
		},
	}}
}
