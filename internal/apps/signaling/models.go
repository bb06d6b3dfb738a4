package signaling

import (
	"encoding/json"
	"time"
)

type Kind string

const (
	KindOffer     Kind = "offer"
	KindAnswer    Kind = "answer"
	KindCandidate Kind = "candidate"
)

func (k Kind) Valid() bool {
	switch k {
	case KindOffer, KindAnswer, KindCandidate:
		return true
	}
	return false
}

// CallSignal is one queued WebRTC signaling payload. FromID and ToID are not
// checked against users.
type CallSignal struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FromID    uint      `gorm:"not null;index" json:"from_id"`
	ToID      uint      `gorm:"not null;index:idx_call_signals_to_created,priority:1" json:"to_id"`
	Kind      Kind      `gorm:"column:type;size:16;not null;index" json:"type"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"not null;index:idx_call_signals_to_created,priority:2" json:"created_at"`
}

func (CallSignal) TableName() string {
	return "call_signals"
}

// --- DTOs ---

type SDPRequest struct {
	FromID *uint           `json:"from_id"`
	ToID   *uint           `json:"to_id"`
	SDP    json.RawMessage `json:"sdp"`
}

type CandidateRequest struct {
	FromID    *uint           `json:"from_id"`
	ToID      *uint           `json:"to_id"`
	Candidate json.RawMessage `json:"candidate"`
}

// SubmitRequest is the kind-independent shape shared by offer, answer and
// candidate submissions.
type SubmitRequest struct {
	FromID  *uint
	ToID    *uint
	Content json.RawMessage
}
