// Package events fans out delivery notifications to other processes, such as
// push gateways that wake a client so it polls sooner. Payloads carry ids
// only; message ciphertext and signaling content never leave the store.
package events

import (
	"context"
	"fmt"
	"time"
)

const (
	TypeMessageCreated = "message.created"
	TypeCallOffer      = "call.offer"
	TypeCallAnswer     = "call.answer"
	TypeCallCandidate  = "call.candidate"
)

type Event struct {
	Type      string    `json:"type"`
	ID        uint      `json:"id"`
	FromID    uint      `json:"from_id"`
	ToID      uint      `json:"to_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Subject is the routing suffix for an event, addressed to its recipient.
func (e Event) Subject() string {
	switch e.Type {
	case TypeMessageCreated:
		return fmt.Sprintf("messages.%d", e.ToID)
	default:
		return fmt.Sprintf("calls.%d", e.ToID)
	}
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close()
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (Nop) Close() {}
