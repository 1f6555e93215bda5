package payment

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"claimflow/internal/payment/models"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	payments []models.Payment
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Create(_ context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append(s.payments, *p)
	return nil
}

func (s *InMemoryStore) FindByPaymentCycle(_ context.Context, cycleID uuid.UUID) ([]*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Payment
	for _, p := range s.payments {
		if p.PaymentCycleID == cycleID {
			payment := p
			out = append(out, &payment)
		}
	}
	return out, nil
}
