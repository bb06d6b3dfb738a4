package signaling

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/events"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInvalidSignal = errors.New("invalid signal")

var (
	ErrUnknownKind     = fmt.Errorf("%w: unknown signal type", ErrInvalidSignal)
	ErrSenderRequired  = fmt.Errorf("%w: from_id is required", ErrInvalidSignal)
	ErrTargetRequired  = fmt.Errorf("%w: to_id is required", ErrInvalidSignal)
	ErrContentRequired = fmt.Errorf("%w: content is required", ErrInvalidSignal)
)

type SignalService struct {
	db        *gorm.DB
	publisher events.Publisher
	now       func() time.Time
}

func NewSignalService(db *gorm.DB, publisher events.Publisher) *SignalService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &SignalService{
		db:        db,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit queues a signal of the given kind for req.ToID.
func (s *SignalService) Submit(ctx context.Context, kind Kind, req *SubmitRequest) (*CallSignal, error) {
	if !kind.Valid() {
		return nil, ErrUnknownKind
	}
	if req.FromID == nil {
		return nil, ErrSenderRequired
	}
	if req.ToID == nil {
		return nil, ErrTargetRequired
	}
	content, err := decodeContent(req.Content)
	if err != nil {
		return nil, err
	}

	signal := CallSignal{
		FromID:    *req.FromID,
		ToID:      *req.ToID,
		Kind:      kind,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&signal).Error; err != nil {
		return nil, fmt.Errorf("failed to queue %s: %w", kind, err)
	}

	evt := events.Event{
		Type:      "call." + string(kind),
		ID:        signal.ID,
		FromID:    signal.FromID,
		ToID:      signal.ToID,
		CreatedAt: signal.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		slog.Warn("failed to publish signal event", "signal_id", signal.ID, "error", err)
	}

	return &signal, nil
}

// Poll takes every signal queued for toID, oldest first, and removes them
// in the same transaction. The selected rows are locked so that concurrent
// polls for the same recipient never return the same signal; rows queued
// while the poll runs are left for the next one.
func (s *SignalService) Poll(ctx context.Context, toID uint) ([]CallSignal, error) {
	signals := make([]CallSignal, 0)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("to_id = ?", toID).
			Order("created_at asc, id asc").
			Find(&signals).Error; err != nil {
			return fmt.Errorf("failed to select signals: %w", err)
		}
		if len(signals) == 0 {
			return nil
		}

		ids := make([]uint, len(signals))
		for i := range signals {
			ids[i] = signals[i].ID
		}
		if err := tx.Where("id IN ?", ids).Delete(&CallSignal{}).Error; err != nil {
			return fmt.Errorf("failed to delete signals: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return signals, nil
}

// PurgeStale deletes signals nobody polled within maxAge.
func (s *SignalService) PurgeStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge)
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&CallSignal{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge stale signals: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// decodeContent stores JSON strings verbatim and any other JSON value as its
// compact JSON text.
func decodeContent(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", ErrContentRequired
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidSignal, err)
		}
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignal, err)
	}
	return buf.String(), nil
}
