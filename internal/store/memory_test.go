package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestMemoryRecordAndHistory(t *testing.T) {
	s := NewMemory(0)
	ctx := context.Background()

	err := s.Record(ctx, "s1",
		Message{Role: RoleUser, Content: "hostel fees?", Language: "en"},
		Message{Role: RoleAssistant, Content: "40000 per year.", Language: "en"},
	)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	history, err := s.History(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Role != RoleUser || history[1].Role != RoleAssistant {
		t.Fatalf("expected user then assistant, got %s then %s", history[0].Role, history[1].Role)
	}
	if history[0].Timestamp.IsZero() {
		t.Fatal("expected timestamp to be filled")
	}
}

func TestMemoryHistoryLimit(t *testing.T) {
	s := NewMemory(0)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s.Record(ctx, "s1", Message{Role: RoleUser, Content: fmt.Sprint(i)})
	}

	history, _ := s.History(ctx, "s1", 2)
	if len(history) != 2 || history[0].Content != "3" || history[1].Content != "4" {
		t.Fatalf("expected the two most recent messages, got %+v", history)
	}
}

func TestMemoryCapsSessionLength(t *testing.T) {
	s := NewMemory(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s.Record(ctx, "s1", Message{Role: RoleUser, Content: fmt.Sprint(i)})
	}

	if n := s.Length("s1"); n != 3 {
		t.Fatalf("expected 3 kept messages, got %d", n)
	}
	history, _ := s.History(ctx, "s1", 0)
	if history[0].Content != "2" {
		t.Fatalf("expected oldest kept message to be 2, got %s", history[0].Content)
	}
}

func TestMemoryClearAndUnknownSession(t *testing.T) {
	s := NewMemory(0)
	ctx := context.Background()

	s.Record(ctx, "s1", Message{Role: RoleUser, Content: "hi"})
	s.Record(ctx, "s2", Message{Role: RoleUser, Content: "hello"})
	s.Clear(ctx, "s1")

	if n := s.Length("s1"); n != 0 {
		t.Fatalf("expected cleared session to be empty, got %d", n)
	}
	if n := s.Length("s2"); n != 1 {
		t.Fatalf("expected other session untouched, got %d", n)
	}

	history, err := s.History(ctx, "missing", 10)
	if err != nil || len(history) != 0 {
		t.Fatalf("expected empty history, got %v, %v", history, err)
	}
}

func TestMemoryConcurrentSessions(t *testing.T) {
	s := NewMemory(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s.Record(ctx, fmt.Sprintf("s%d", id%3), Message{Role: RoleUser, Content: "x"})
			}
		}(i)
	}
	wg.Wait()

	total := s.Length("s0") + s.Length("s1") + s.Length("s2")
	if total != 200 {
		t.Fatalf("expected 200 messages across sessions, got %d", total)
	}
}
