package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/liora-api/internal/domain"
)

// ConversationStore keeps each user's turns in insertion order.
type ConversationStore struct {
	mu    sync.RWMutex
	turns map[domain.UserID][]domain.ConversationTurn
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		turns: make(map[domain.UserID][]domain.ConversationTurn),
	}
}

func (s *ConversationStore) AppendTurns(_ context.Context, turns ...domain.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range turns {
		s.turns[t.UserID] = append(s.turns[t.UserID], t)
	}
	return nil
}

func (s *ConversationStore) RecentTurns(_ context.Context, userID domain.UserID, limit int) ([]domain.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.turns[userID]
	if limit <= 0 || len(all) == 0 {
		return []domain.ConversationTurn{}, nil
	}
	if limit > len(all) {
		limit = len(all)
	}

	out := make([]domain.ConversationTurn, 0, limit)
	for i := len(all) - 1; i >= len(all)-limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// Count returns how many turns are stored for userID.
func (s *ConversationStore) Count(userID domain.UserID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns[userID])
}
