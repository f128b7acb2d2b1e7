package message

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps messages in process memory. It is used when no durable backend is reachable.
type MemoryStore struct {
	mu       sync.RWMutex
	messages []Message
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append keeps the caller-assigned ID.
func (s *MemoryStore) Append(_ context.Context, m Message) (Message, error) {
	if m.Attachment != nil {
		att := *m.Attachment
		m.Attachment = &att
	}

	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()

	return m, nil
}

func (s *MemoryStore) History(_ context.Context, a, b string) ([]Message, error) {
	s.mu.RLock()
	out := make([]Message, 0)
	for _, m := range s.messages {
		if m.Involves(a, b) {
			out = append(out, m)
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(x, y Message) int {
		return x.CreatedAt.Compare(y.CreatedAt)
	})

	return out, nil
}

// Clear removes the conversation. Attachments are not cascaded for transient messages.
func (s *MemoryStore) Clear(_ context.Context, a, b string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.messages)
	s.messages = slices.DeleteFunc(s.messages, func(m Message) bool {
		return m.Involves(a, b)
	})

	return before - len(s.messages), nil
}

func (s *MemoryStore) Durable() bool { return false }
