package apps

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/retention"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModel struct{}

type stubPlugin struct{ id string }

func (p stubPlugin) ID() string                  { return p.id }
func (p stubPlugin) Models() []interface{}       { return []interface{}{&stubModel{}} }
func (p stubPlugin) RegisterRoutes(fiber.Router) {}

type maintainedStub struct{ stubPlugin }

func (maintainedStub) RetentionTasks(cfg *config.Config) []retention.Task {
	if cfg.SignalMaxAge <= 0 {
		return nil
	}
	return []retention.Task{{Name: "stub", Run: func(context.Context) (int64, error) { return 0, nil }}}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubPlugin{id: "a"}, maintainedStub{stubPlugin{id: "b"}}))

	err := r.Register(stubPlugin{id: "a"})
	assert.ErrorContains(t, err, `"a" already registered`)

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID())
	assert.Equal(t, "b", all[1].ID())
	assert.Equal(t, "b", r.Get("b").ID())
	assert.Nil(t, r.Get("missing"))

	assert.Len(t, r.Models(), 2)
	assert.Empty(t, r.RetentionTasks(&config.Config{}))

	tasks := r.RetentionTasks(&config.Config{SignalMaxAge: 1})
	require.Len(t, tasks, 1)
	assert.Equal(t, "stub", tasks[0].Name)
}
