package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"claimflow/internal/message/models"
	"claimflow/pkg/platform/sentinel"
	"claimflow/pkg/requestcontext"
)

// InMemoryStore keeps messages in insertion order. It ignores transactions,
// so a rolled back unit of work keeps whatever it enqueued.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages []models.Message
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Enqueue(ctx context.Context, t models.MessageType, payload any) (uuid.UUID, error) {
	msg, err := models.NewMessage(t, payload, requestcontext.Now(ctx))
	if err != nil {
		return uuid.Nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, *msg)
	return msg.ID, nil
}

func (s *InMemoryStore) FindPending(_ context.Context, t models.MessageType) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Message
	for _, m := range s.messages {
		if m.Type == t {
			msg := m
			msg.Payload = append([]byte(nil), m.Payload...)
			out = append(out, &msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedTimestamp.Before(out[j].CreatedTimestamp)
	})
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("message %s: %w", id, sentinel.ErrNotFound)
}

func (s *InMemoryStore) CountByType(_ context.Context) (map[models.MessageType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.MessageType]int)
	for _, m := range s.messages {
		counts[m.Type]++
	}
	return counts, nil
}
