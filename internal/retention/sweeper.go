// Package retention runs periodic housekeeping deletes against the store.
package retention

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/models"
	"gorm.io/gorm"
)

// Task deletes rows that are past their retention and reports how many.
type Task struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

type Sweeper struct {
	interval time.Duration
	tasks    []Task
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewSweeper(interval time.Duration, tasks ...Task) *Sweeper {
	return &Sweeper{
		interval: interval,
		tasks:    tasks,
		done:     make(chan struct{}),
	}
}

// Add registers more tasks. It must be called before Start.
func (s *Sweeper) Add(tasks ...Task) {
	s.tasks = append(s.tasks, tasks...)
}

func (s *Sweeper) Tasks() []Task {
	return s.tasks
}

// Start runs every task once per interval until Stop is called.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.RunOnce(context.Background())
			case <-s.done:
				return
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

// RunOnce executes each task in order. A failing task is logged and does not
// prevent the others from running.
func (s *Sweeper) RunOnce(ctx context.Context) map[string]int64 {
	deleted := make(map[string]int64, len(s.tasks))
	for _, task := range s.tasks {
		n, err := task.Run(ctx)
		if err != nil {
			slog.Error("retention task failed", "action", task.Name, "error", err)
			continue
		}
		deleted[task.Name] = n
		if n > 0 {
			slog.Info("retention task completed", "action", task.Name, "deleted", n)
		}
	}
	return deleted
}

// SystemLogTask deletes system_logs older than maxAge.
func SystemLogTask(db *gorm.DB, maxAge time.Duration) Task {
	return Task{
		Name: "system_logs",
		Run: func(ctx context.Context) (int64, error) {
			cutoff := time.Now().UTC().Add(-maxAge)
			result := db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
			return result.RowsAffected, result.Error
		},
	}
}
