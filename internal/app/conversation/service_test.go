package conversation_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/liora-api/internal/adapters/llm"
	"github.com/PabloGalante/liora-api/internal/adapters/storage/memory"
	"github.com/PabloGalante/liora-api/internal/app/conversation"
	"github.com/PabloGalante/liora-api/internal/domain"
	"github.com/PabloGalante/liora-api/internal/observability"
)

type recordingResponder struct {
	reply   string
	windows [][]domain.WindowTurn
}

func (r *recordingResponder) Respond(_ context.Context, window []domain.WindowTurn, _ string) string {
	r.windows = append(r.windows, window)
	return r.reply
}

type failingLLM struct{}

func (failingLLM) GenerateReply(context.Context, string, []domain.WindowTurn, string) (string, error) {
	return "", errors.New("upstream down")
}

type brokenStore struct{}

func (brokenStore) AppendTurns(context.Context, ...domain.ConversationTurn) error {
	return errors.New("connection refused")
}

func (brokenStore) RecentTurns(context.Context, domain.UserID, int) ([]domain.ConversationTurn, error) {
	return []domain.ConversationTurn{}, nil
}

func TestHandleTurnPersistsPairWithSharedTimestamp(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	resp := &recordingResponder{reply: "That sounds heavy. I'm here 💙"}

	svc := conversation.NewService(store, resp, conversation.WithClock(func() time.Time { return fixed }))

	reply, err := svc.HandleTurn(ctx, "u1", "  I feel stuck today  ")
	require.NoError(t, err)
	assert.Equal(t, "That sounds heavy. I'm here 💙", reply)

	turns, err := store.RecentTurns(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)

	// newest first: assistant, then user
	assert.Equal(t, domain.RoleAssistant, turns[0].Role)
	assert.Equal(t, reply, turns[0].Message)
	assert.Equal(t, domain.RoleUser, turns[1].Role)
	assert.Equal(t, "I feel stuck today", turns[1].Message)
	assert.True(t, turns[0].Timestamp.Equal(turns[1].Timestamp))
	assert.True(t, turns[0].Timestamp.Equal(fixed))
}

func TestHandleTurnRejectsBlankText(t *testing.T) {
	store := memory.NewConversationStore()
	resp := &recordingResponder{reply: "x"}
	svc := conversation.NewService(store, resp)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.HandleTurn(context.Background(), "u1", text)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assert.Zero(t, store.Count("u1"))
	assert.Empty(t, resp.windows, "responder must not be called")
}

func TestHandleTurnFallbackWhenGeneratorFails(t *testing.T) {
	store := memory.NewConversationStore()
	responder := llm.NewResponder(failingLLM{}, llm.ResponderConfig{
		Persona: llm.DefaultPersona(),
		Timeout: time.Second,
	})
	svc := conversation.NewService(store, responder)

	reply, err := svc.HandleTurn(context.Background(), "u1", "I feel stuck today")
	require.NoError(t, err)
	assert.Equal(t, llm.ErrorFallback, reply)
	assert.Equal(t, 2, store.Count("u1"))
}

func TestHandleTurnWindowGrowsAndIsBounded(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()
	resp := &recordingResponder{reply: "ok"}
	svc := conversation.NewService(store, resp, conversation.WithWindowSize(4))

	for i := 0; i < 4; i++ {
		_, err := svc.HandleTurn(ctx, "u1", "msg")
		require.NoError(t, err)
	}

	require.Len(t, resp.windows, 4)
	assert.Len(t, resp.windows[0], 0)
	assert.Len(t, resp.windows[1], 2)
	assert.Len(t, resp.windows[2], 4)
	assert.Len(t, resp.windows[3], 4)
	assert.Equal(t, domain.WindowRoleUser, resp.windows[3][0].Role)
	assert.Equal(t, domain.WindowRoleModel, resp.windows[3][3].Role)
}

func TestHandleTurnStoreFailureSurfaces(t *testing.T) {
	svc := conversation.NewService(brokenStore{}, &recordingResponder{reply: "hi"})

	_, err := svc.HandleTurn(context.Background(), "u1", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestHandleTurnPersistsAfterClientCancel(t *testing.T) {
	store := memory.NewConversationStore()
	svc := conversation.NewService(store, &recordingResponder{reply: "still here"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.HandleTurn(ctx, "u1", "hello")
	require.NoError(t, err)
	assert.Equal(t, 2, store.Count("u1"))
}

func TestHandleTurnLogsUserIDOnce(t *testing.T) {
	var buf bytes.Buffer
	observability.Init(&buf, "debug")
	t.Cleanup(func() { observability.Init(&bytes.Buffer{}, "info") })

	svc := conversation.NewService(memory.NewConversationStore(), &recordingResponder{reply: "ok"})
	ctx := observability.WithUserID(context.Background(), "u1")

	_, err := svc.HandleTurn(ctx, "u1", "hello")
	require.NoError(t, err)

	require.Contains(t, buf.String(), "chat turn completed")
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.Equal(t, 1, strings.Count(line, `"user_id"`), line)
	}
}

func TestHistoryOldestFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()
	svc := conversation.NewService(store, &recordingResponder{reply: "ok"})

	_, err := svc.HandleTurn(ctx, "u1", "first")
	require.NoError(t, err)
	_, err = svc.HandleTurn(ctx, "u1", "second")
	require.NoError(t, err)

	h, err := svc.History(ctx, "u1", 50)
	require.NoError(t, err)
	require.Len(t, h, 4)
	assert.Equal(t, "first", h[0].Message)
	assert.Equal(t, "ok", h[3].Message)
}
