package cycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	claimmodels "claimflow/internal/claim/models"
	"claimflow/internal/payment/models"
	"claimflow/pkg/platform/sentinel"
)

type claimFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*claimmodels.Claim, error)
}

// InMemoryStore mirrors PostgresStore for service tests. The claim finder
// stands in for the join on claims used by rollover.
type InMemoryStore struct {
	mu     sync.RWMutex
	cycles map[uuid.UUID]models.PaymentCycle
	claims claimFinder
}

func NewInMemory(claims claimFinder) *InMemoryStore {
	return &InMemoryStore{
		cycles: make(map[uuid.UUID]models.PaymentCycle),
		claims: claims,
	}
}

func (s *InMemoryStore) Create(_ context.Context, cycle *models.PaymentCycle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.cycles {
		if existing.ID == cycle.ID ||
			(existing.ClaimID == cycle.ClaimID && existing.CycleStartDate.Equal(cycle.CycleStartDate)) {
			return fmt.Errorf("insert payment cycle for claim %s starting %s: %w",
				cycle.ClaimID, cycle.CycleStartDate.Format(time.DateOnly), sentinel.ErrConflict)
		}
	}
	cycle.Version = 1
	s.cycles[cycle.ID] = *cycle
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, cycle *models.PaymentCycle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.cycles[cycle.ID]
	if !ok || existing.Version != cycle.Version {
		return fmt.Errorf("update payment cycle %s at version %d: %w", cycle.ID, cycle.Version, sentinel.ErrConflict)
	}
	cycle.Version++
	s.cycles[cycle.ID] = *cycle
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.PaymentCycle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cycle, ok := s.cycles[id]
	if !ok {
		return nil, fmt.Errorf("payment cycle %s: %w", id, sentinel.ErrNotFound)
	}
	return &cycle, nil
}

func (s *InMemoryStore) FindCurrentForClaim(ctx context.Context, claimID uuid.UUID) (*models.PaymentCycle, error) {
	cycles, _ := s.FindByClaim(ctx, claimID)
	if len(cycles) == 0 {
		return nil, fmt.Errorf("current payment cycle for claim %s: %w", claimID, sentinel.ErrNotFound)
	}
	return cycles[len(cycles)-1], nil
}

func (s *InMemoryStore) FindByClaim(_ context.Context, claimID uuid.UUID) ([]*models.PaymentCycle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.PaymentCycle
	for _, c := range s.cycles {
		if c.ClaimID == claimID {
			cycle := c
			out = append(out, &cycle)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CycleStartDate.Before(out[j].CycleStartDate)
	})
	return out, nil
}

func (s *InMemoryStore) FindCyclesDueForRollover(ctx context.Context, today time.Time) ([]*models.PaymentCycle, error) {
	s.mu.RLock()
	latest := make(map[uuid.UUID]models.PaymentCycle)
	for _, c := range s.cycles {
		if current, ok := latest[c.ClaimID]; !ok || c.CycleStartDate.After(current.CycleStartDate) {
			latest[c.ClaimID] = c
		}
	}
	s.mu.RUnlock()

	var out []*models.PaymentCycle
	for _, c := range latest {
		if !c.CycleEndDate.Before(today) {
			continue
		}
		if s.claims != nil {
			claim, err := s.claims.FindByID(ctx, c.ClaimID)
			if err != nil {
				return nil, fmt.Errorf("find payment cycles due for rollover: %w", err)
			}
			if claim.ClaimStatus != claimmodels.ClaimStatusActive && claim.ClaimStatus != claimmodels.ClaimStatusPendingExpiry {
				continue
			}
		}
		cycle := c
		out = append(out, &cycle)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CycleEndDate.Before(out[j].CycleEndDate)
	})
	return out, nil
}
