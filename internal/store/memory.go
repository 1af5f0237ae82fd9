package store

import (
	"context"
	"sync"
	"time"
)

type conversation struct {
	messages []Message
	mu       sync.Mutex
}

// Memory is an in-process Store with an optional per-session cap.
type Memory struct {
	conversations map[string]*conversation
	max           int
	mu            sync.RWMutex
}

// NewMemory creates a memory store. limit <= 0 keeps everything.
func NewMemory(limit int) *Memory {
	return &Memory{
		conversations: make(map[string]*conversation),
		max:           limit,
	}
}

func (s *Memory) Record(ctx context.Context, sessionID string, msgs ...Message) error {
	s.mu.Lock()
	conv, exists := s.conversations[sessionID]
	if !exists {
		conv = &conversation{}
		s.conversations[sessionID] = conv
	}
	s.mu.Unlock()

	conv.mu.Lock()
	defer conv.mu.Unlock()

	for _, m := range msgs {
		if m.Timestamp.IsZero() {
			m.Timestamp = time.Now()
		}
		conv.messages = append(conv.messages, m)
	}
	if s.max > 0 && len(conv.messages) > s.max {
		conv.messages = append([]Message(nil), conv.messages[len(conv.messages)-s.max:]...)
	}
	return nil
}

func (s *Memory) History(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	s.mu.RLock()
	conv, exists := s.conversations[sessionID]
	s.mu.RUnlock()
	if !exists {
		return []Message{}, nil
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	messages := conv.messages
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return append([]Message(nil), messages...), nil
}

func (s *Memory) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, sessionID)
	return nil
}

// Length returns the number of messages kept for a session.
func (s *Memory) Length(sessionID string) int {
	s.mu.RLock()
	conv, exists := s.conversations[sessionID]
	s.mu.RUnlock()
	if !exists {
		return 0
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	return len(conv.messages)
}
