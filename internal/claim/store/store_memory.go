package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"claimflow/internal/claim/models"
	"claimflow/pkg/platform/sentinel"
)

// InMemoryStore mirrors PostgresStore for service tests. Claims are copied
// on the way in and out so callers cannot mutate stored state.
type InMemoryStore struct {
	mu     sync.RWMutex
	claims map[uuid.UUID]models.Claim
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{claims: make(map[uuid.UUID]models.Claim)}
}

func (s *InMemoryStore) Create(_ context.Context, claim *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[claim.ID]; ok {
		return fmt.Errorf("insert claim: %w", sentinel.ErrConflict)
	}
	if claim.ClaimStatus.IsLive() {
		for _, existing := range s.claims {
			if existing.Nino == claim.Nino && existing.ClaimStatus.IsLive() {
				return fmt.Errorf("insert claim: %w", sentinel.ErrConflict)
			}
		}
	}
	claim.Version = 1
	s.claims[claim.ID] = *claim
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, claim *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.claims[claim.ID]
	if !ok || existing.Version != claim.Version {
		return fmt.Errorf("update claim %s at version %d: %w", claim.ID, claim.Version, sentinel.ErrConflict)
	}
	claim.Version++
	s.claims[claim.ID] = *claim
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	claim, ok := s.claims[id]
	if !ok {
		return nil, fmt.Errorf("claim %s: %w", id, sentinel.ErrNotFound)
	}
	return &claim, nil
}

func (s *InMemoryStore) FindLiveClaimsWithNino(_ context.Context, nino string) ([]*models.Claim, error) {
	return s.filter(func(c models.Claim) bool {
		return c.Nino == nino && c.ClaimStatus.IsLive()
	}), nil
}

func (s *InMemoryStore) LiveClaimExistsForHousehold(_ context.Context, dwpHousehold, hmrcHousehold string) (bool, error) {
	matches := s.filter(func(c models.Claim) bool {
		if !c.ClaimStatus.IsLive() {
			return false
		}
		return (dwpHousehold != "" && c.DWPHouseholdIdentifier == dwpHousehold) ||
			(hmrcHousehold != "" && c.HMRCHouseholdIdentifier == hmrcHousehold)
	})
	return len(matches) > 0, nil
}

func (s *InMemoryStore) FindByCardStatus(_ context.Context, status models.CardStatus) ([]*models.Claim, error) {
	return s.filter(func(c models.Claim) bool {
		return c.CardStatus == status
	}), nil
}

func (s *InMemoryStore) FindByCardStatusChangedBefore(_ context.Context, status models.CardStatus, cutoff time.Time) ([]*models.Claim, error) {
	return s.filter(func(c models.Claim) bool {
		return c.CardStatus == status && c.CardStatusTimestamp != nil && !c.CardStatusTimestamp.After(cutoff)
	}), nil
}

func (s *InMemoryStore) filter(match func(models.Claim) bool) []*models.Claim {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Claim
	for _, c := range s.claims {
		if match(c) {
			claim := c
			out = append(out, &claim)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
