// Package store keeps per-session conversation history. The assistant never
// feeds history back into prompts; it exists for /history and auditing.
package store

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single recorded turn half.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Language  string    `json:"language"`
	Timestamp time.Time `json:"timestamp"`
}

// Store records and replays session history.
type Store interface {
	// Record appends messages to the session in order.
	Record(ctx context.Context, sessionID string, msgs ...Message) error
	// History returns at most limit of the most recent messages, oldest
	// first. limit <= 0 means all.
	History(ctx context.Context, sessionID string, limit int) ([]Message, error)
	Clear(ctx context.Context, sessionID string) error
}
