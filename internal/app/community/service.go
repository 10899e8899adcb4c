package community

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/PabloGalante/liora-api/internal/domain"
	"github.com/PabloGalante/liora-api/internal/observability"
)

// Pseudonyms shown instead of the author's identity.
var Pseudonyms = []string{
	"Calm Leaf", "Kind Breeze", "Warm Sunset", "Quiet River", "Moon Glow",
	"Brave Lotus", "Soft Dawn", "Gentle Cloud", "Ocean Hush", "Silent Bloom",
}

type Service struct {
	store   domain.CommunityStore
	metrics *observability.Collector
	now     func() time.Time
	pick    func(n int) int
}

func NewService(store domain.CommunityStore, metrics *observability.Collector) *Service {
	return &Service{
		store:   store,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
		pick:    rand.IntN,
	}
}

// Post publishes message under a random pseudonym with zeroed reactions.
func (s *Service) Post(ctx context.Context, userID domain.UserID, message string) (*domain.CommunityPost, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.NewValidationError("message", "message required")
	}

	post := &domain.CommunityPost{
		UserID:    userID,
		Name:      Pseudonyms[s.pick(len(Pseudonyms))],
		Message:   message,
		Timestamp: s.now(),
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to create post", "error", err)
		return nil, domain.StoreError("create post", err)
	}
	return post, nil
}

// Feed returns every post, newest first.
func (s *Service) Feed(ctx context.Context) ([]*domain.CommunityPost, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, domain.StoreError("list posts", err)
	}
	return posts, nil
}

// React adds one reaction of kind to the post. The increment itself happens
// in the store.
func (s *Service) React(ctx context.Context, postID, kind string) error {
	rk, ok := domain.ParseReactionKind(kind)
	if strings.TrimSpace(postID) == "" || !ok {
		return domain.ErrInvalidReaction
	}

	err := s.store.IncrementReaction(ctx, domain.PostID(postID), rk)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrPostNotFound):
		return domain.ErrPostNotFound
	default:
		observability.LoggerFromContext(ctx).Error("failed to record reaction",
			"post_id", postID, "kind", kind, "error", err)
		return domain.StoreError("increment reaction", err)
	}

	if s.metrics != nil {
		s.metrics.ReactionsRecorded.WithLabelValues(string(rk)).Inc()
	}
	return nil
}
