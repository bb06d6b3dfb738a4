package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/models"
	"gorm.io/gorm"
)

const purgeBatchSize = 500

type MessageService struct {
	db        *gorm.DB
	publisher events.Publisher
	now       func() time.Time
}

func NewMessageService(db *gorm.DB, publisher events.Publisher) *MessageService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &MessageService{
		db:        db,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create stores an encrypted message from senderID. The recipient must be a
// registered user.
func (s *MessageService) Create(ctx context.Context, senderID uint, req *dto.CreateMessageRequest) (*models.Message, error) {
	switch {
	case req.To == nil:
		return nil, ErrRecipientRequired
	case req.IV == nil:
		return nil, ErrIVRequired
	case req.Ciphertext == nil:
		return nil, ErrCiphertextRequired
	case req.TTLSec != nil && *req.TTLSec < 0:
		return nil, ErrInvalidTTL
	}

	msgType := models.DefaultMessageType
	if req.MsgType != nil && *req.MsgType != "" {
		msgType = *req.MsgType
	}

	msg := models.Message{
		FromID:     senderID,
		ToID:       *req.To,
		IV:         *req.IV,
		Ciphertext: *req.Ciphertext,
		MsgType:    msgType,
		TTLSec:     req.TTLSec,
		CreatedAt:  s.now(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", msg.ToID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to look up recipient: %w", err)
		}
		if count == 0 {
			return ErrRecipientNotFound
		}
		if err := tx.Create(&msg).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	evt := events.Event{
		Type:      events.TypeMessageCreated,
		ID:        msg.ID,
		FromID:    msg.FromID,
		ToID:      msg.ToID,
		CreatedAt: msg.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		slog.Warn("failed to publish message event", "message_id", msg.ID, "error", err)
	}

	return &msg, nil
}

// ListDialog returns the visible messages exchanged between userID and
// peerID in either direction, oldest first. Messages whose TTL has elapsed
// are left in storage but omitted.
func (s *MessageService) ListDialog(ctx context.Context, userID, peerID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Scopes(models.Dialog(userID, peerID)).
		Order("created_at asc, id asc").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	now := s.now()
	visible := make([]models.Message, 0, len(msgs))
	for i := range msgs {
		if msgs[i].VisibleAt(now) {
			visible = append(visible, msgs[i])
		}
	}
	return visible, nil
}

// PurgeExpired deletes messages that ListDialog would no longer return.
func (s *MessageService) PurgeExpired(ctx context.Context) (int64, error) {
	db := s.db.WithContext(ctx)
	now := s.now()

	var expired []uint
	var batch []models.Message
	err := db.Select("id", "ttl_sec", "created_at").
		Scopes(models.WithTTL).
		FindInBatches(&batch, purgeBatchSize, func(_ *gorm.DB, _ int) error {
			for i := range batch {
				if !batch[i].VisibleAt(now) {
					expired = append(expired, batch[i].ID)
				}
			}
			return nil
		}).Error
	if err != nil {
		return 0, fmt.Errorf("failed to scan expired messages: %w", err)
	}

	var deleted int64
	for start := 0; start < len(expired); start += purgeBatchSize {
		end := min(start+purgeBatchSize, len(expired))
		result := db.Where("id IN ?", expired[start:end]).Delete(&models.Message{})
		if result.Error != nil {
			return deleted, fmt.Errorf("failed to delete expired messages: %w", result.Error)
		}
		deleted += result.RowsAffected
	}
	return deleted, nil
}
