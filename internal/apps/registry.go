package apps

import (
	"fmt"
	"sync"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/retention"
)

// Registry holds the enabled plugins in registration order.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	byID    map[string]Plugin
}

func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]Plugin),
	}
}

// Register adds plugins, rejecting an ID that is already taken.
func (r *Registry) Register(plugins ...Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range plugins {
		if _, ok := r.byID[p.ID()]; ok {
			return fmt.Errorf("plugin %q already registered", p.ID())
		}
		r.byID[p.ID()] = p
		r.plugins = append(r.plugins, p)
	}
	return nil
}

func (r *Registry) Get(id string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

func (r *Registry) All() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Models collects every plugin's models for AutoMigrate.
func (r *Registry) Models() []interface{} {
	var models []interface{}
	for _, p := range r.All() {
		models = append(models, p.Models()...)
	}
	return models
}

// RetentionTasks collects the tasks of every MaintainedPlugin.
func (r *Registry) RetentionTasks(cfg *config.Config) []retention.Task {
	var tasks []retention.Task
	for _, p := range r.All() {
		if mp, ok := p.(MaintainedPlugin); ok {
			tasks = append(tasks, mp.RetentionTasks(cfg)...)
		}
	}
	return tasks
}
