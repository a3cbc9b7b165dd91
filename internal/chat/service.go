package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store persists chat messages.
type Store interface {
	Insert(ctx context.Context, m *Message) error
	ListByAccount(ctx context.Context, accountID string) ([]*Message, error)
}

// Service generates responses and records the exchange.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Send answers the message and stores the exchange. An empty category
// defaults to general.
func (s *Service) Send(ctx context.Context, accountID, message string, category Category) (*Message, error) {
	if category == "" {
		category = CategoryGeneral
	}
	if !ValidCategory(category) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCategory, category)
	}

	m := &Message{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Message:   message,
		Response:  Respond(message, category),
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// History returns the account's messages, newest first.
func (s *Service) History(ctx context.Context, accountID string) ([]*Message, error) {
	return s.store.ListByAccount(ctx, accountID)
}
