package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/PabloGalante/liora-api/internal/domain"
)

// CommunityStore is an in-memory domain.CommunityStore.
// Reaction increments happen under the write lock, so they never lose updates.
type CommunityStore struct {
	mu    sync.RWMutex
	posts map[domain.PostID]*domain.CommunityPost
	order []domain.PostID
}

func NewCommunityStore() *CommunityStore {
	return &CommunityStore{
		posts: make(map[domain.PostID]*domain.CommunityPost),
	}
}

func (s *CommunityStore) CreatePost(_ context.Context, post *domain.CommunityPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if post.ID == "" {
		post.ID = domain.PostID(uuid.NewString())
	}

	cp := *post
	s.posts[cp.ID] = &cp
	s.order = append(s.order, cp.ID)
	return nil
}

func (s *CommunityStore) ListPosts(_ context.Context) ([]*domain.CommunityPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.CommunityPost, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		cp := *s.posts[s.order[i]]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *CommunityStore) IncrementReaction(_ context.Context, id domain.PostID, kind domain.ReactionKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return domain.ErrPostNotFound
	}
	post.Reactions.Inc(kind)
	return nil
}
