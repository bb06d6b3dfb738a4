package apps

import (
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/retention"
	"github.com/gofiber/fiber/v2"
)

// Plugin defines the interface every feature module must implement.
type Plugin interface {
	// ID returns the unique module identifier. Routes are mounted under "/<ID>".
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts module routes on the given Fiber group.
	RegisterRoutes(router fiber.Router)
}

// MaintainedPlugin extends Plugin with housekeeping run by the retention sweeper.
type MaintainedPlugin interface {
	Plugin

	// RetentionTasks returns the tasks enabled by cfg; it may return none.
	RetentionTasks(cfg *config.Config) []retention.Task
}
