package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/liora-api/internal/domain"
)

type ScreeningStore struct {
	mu      sync.RWMutex
	results map[domain.UserID][]domain.ScreeningResult
}

func NewScreeningStore() *ScreeningStore {
	return &ScreeningStore{
		results: make(map[domain.UserID][]domain.ScreeningResult),
	}
}

func (s *ScreeningStore) AppendResult(_ context.Context, r domain.ScreeningResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results[r.UserID] = append(s.results[r.UserID], r)
	return nil
}

func (s *ScreeningStore) ListResults(_ context.Context, userID domain.UserID) ([]domain.ScreeningResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ScreeningResult, len(s.results[userID]))
	copy(out, s.results[userID])
	return out, nil
}
