package chat

import (
	"context"
	"sync"
)

// MemoryStore keeps chat messages in memory.
type MemoryStore struct {
	mu       sync.Mutex
	messages []*Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(_ context.Context, m *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.messages = append(s.messages, &cp)
	return nil
}

func (s *MemoryStore) ListByAccount(_ context.Context, accountID string) ([]*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Message
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].AccountID == accountID {
			cp := *s.messages[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}
