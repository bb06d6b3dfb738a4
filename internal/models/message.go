package models

import "time"

const DefaultMessageType = "text"

// Message is an encrypted message blob. IV and Ciphertext are produced by
// the client and never inspected here.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FromID     uint      `gorm:"not null;index:idx_messages_dialog,priority:1" json:"from_id"`
	ToID       uint      `gorm:"not null;index:idx_messages_dialog,priority:2;index" json:"to_id"`
	IV         string    `gorm:"column:iv;type:text;not null" json:"iv"`
	Ciphertext string    `gorm:"type:text;not null" json:"ciphertext"`
	MsgType    string    `gorm:"size:50;not null;default:'text'" json:"msg_type"`
	TTLSec     *int      `gorm:"column:ttl_sec" json:"ttl_sec"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
	From       User      `gorm:"foreignKey:FromID" json:"-"`
	To         User      `gorm:"foreignKey:ToID" json:"-"`
}

func (Message) TableName() string {
	return "messages"
}

// ExpiresAt returns the instant after which the message is hidden, and false
// for messages without a TTL.
func (m *Message) ExpiresAt() (time.Time, bool) {
	if m.TTLSec == nil {
		return time.Time{}, false
	}
	return m.CreatedAt.Add(time.Duration(*m.TTLSec) * time.Second), true
}

// VisibleAt reports whether the message is still readable at now.
// A message is visible up to and including the instant its TTL elapses.
func (m *Message) VisibleAt(now time.Time) bool {
	expiresAt, ok := m.ExpiresAt()
	if !ok {
		return true
	}
	return !expiresAt.Before(now)
}
