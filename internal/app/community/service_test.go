package community_test

import (
	"context"
	"testing"

	"github.com/sourcegraph/conc/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/liora-api/internal/adapters/storage/memory"
	"github.com/PabloGalante/liora-api/internal/app/community"
	"github.com/PabloGalante/liora-api/internal/domain"
	"github.com/PabloGalante/liora-api/internal/observability"
)

func TestPostUsesPseudonym(t *testing.T) {
	svc := community.NewService(memory.NewCommunityStore(), nil)

	post, err := svc.Post(context.Background(), "u1", "  today was better  ")
	require.NoError(t, err)
	assert.Equal(t, "today was better", post.Message)
	assert.Contains(t, community.Pseudonyms, post.Name)
	assert.Equal(t, domain.Reactions{}, post.Reactions)
	assert.NotEmpty(t, post.ID)
}

func TestPostRejectsBlank(t *testing.T) {
	svc := community.NewService(memory.NewCommunityStore(), nil)
	_, err := svc.Post(context.Background(), "u1", "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFeedNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := community.NewService(memory.NewCommunityStore(), nil)

	for _, m := range []string{"one", "two", "three"} {
		_, err := svc.Post(ctx, "u1", m)
		require.NoError(t, err)
	}

	feed, err := svc.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, "three", feed[0].Message)
	assert.Equal(t, "one", feed[2].Message)
}

func TestReactValidation(t *testing.T) {
	ctx := context.Background()
	svc := community.NewService(memory.NewCommunityStore(), nil)
	post, err := svc.Post(ctx, "u1", "hi")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.React(ctx, "", "heart"), domain.ErrInvalidReaction)
	assert.ErrorIs(t, svc.React(ctx, string(post.ID), "thumbs"), domain.ErrInvalidReaction)
	assert.ErrorIs(t, svc.React(ctx, "missing", "hug"), domain.ErrPostNotFound)
}

func TestConcurrentHeartsAreNotLost(t *testing.T) {
	ctx := context.Background()
	metrics := observability.NewCollector("test")
	svc := community.NewService(memory.NewCommunityStore(), metrics)
	post, err := svc.Post(ctx, "u1", "hold on")
	require.NoError(t, err)

	const n = 500
	p := pool.New().WithErrors().WithMaxGoroutines(32)
	for i := 0; i < n; i++ {
		p.Go(func() error {
			return svc.React(ctx, string(post.ID), "heart")
		})
	}
	require.NoError(t, p.Wait())

	feed, err := svc.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, n, feed[0].Reactions.Heart)
}
