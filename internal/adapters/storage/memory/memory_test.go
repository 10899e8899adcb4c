package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/liora-api/internal/adapters/storage/memory"
	"github.com/PabloGalante/liora-api/internal/domain"
)

func TestConversationStoreRecentTurnsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := memory.NewConversationStore()
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	for i, msg := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.AppendTurns(ctx, domain.ConversationTurn{
			UserID: "u1", Role: domain.RoleUser, Message: msg, Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.AppendTurns(ctx, domain.ConversationTurn{UserID: "u2", Role: domain.RoleUser, Message: "other"}))

	got, err := s.RecentTurns(ctx, "u1", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "d", got[0].Message)
	assert.Equal(t, "c", got[1].Message)
	assert.Equal(t, "b", got[2].Message)

	empty, err := s.RecentTurns(ctx, "nobody", 8)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCommunityStoreConcurrentReactions(t *testing.T) {
	ctx := context.Background()
	s := memory.NewCommunityStore()

	post := &domain.CommunityPost{UserID: "u1", Name: "Calm Leaf", Message: "hello"}
	require.NoError(t, s.CreatePost(ctx, post))
	require.NotEmpty(t, post.ID)

	const n = 200
	var wg conc.WaitGroup
	for i := 0; i < n; i++ {
		wg.Go(func() {
			assert.NoError(t, s.IncrementReaction(ctx, post.ID, domain.ReactionHeart))
		})
	}
	wg.Wait()

	posts, err := s.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, n, posts[0].Reactions.Heart)
	assert.Zero(t, posts[0].Reactions.Hug)

	assert.ErrorIs(t, s.IncrementReaction(ctx, "missing", domain.ReactionHug), domain.ErrPostNotFound)
}

func TestJournalStoreNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := memory.NewJournalStore()

	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, s.AppendJournalEntry(ctx, &domain.JournalEntry{UserID: "u1", Text: text}))
	}

	all, err := s.ListJournalEntriesByUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "three", all[0].Text)
	assert.Equal(t, "one", all[2].Text)

	two, err := s.ListJournalEntriesByUser(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, "two", two[1].Text)
}
