package journal

import (
	"context"
	"strings"
	"time"

	"github.com/PabloGalante/liora-api/internal/domain"
	"github.com/PabloGalante/liora-api/internal/observability"
)

// Service holds the logic of writing and reading journal entries
type Service struct {
	store domain.JournalStore
	now   func() time.Time
}

// NewService creates a journal service from a JournalStore
func NewService(store domain.JournalStore) *Service {
	return &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Write saves a private entry for the user.
func (s *Service) Write(ctx context.Context, userID domain.UserID, text string) (*domain.JournalEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("text", "text required")
	}

	entry := &domain.JournalEntry{
		UserID:    userID,
		Text:      text,
		Timestamp: s.now(),
	}
	if err := s.store.AppendJournalEntry(ctx, entry); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to save journal entry", "error", err)
		return nil, domain.StoreError("save journal entry", err)
	}
	return entry, nil
}

// List returns the last `limit` journal entries for a user, newest first.
// If limit <= 0, every entry is returned.
func (s *Service) List(
	ctx context.Context,
	userID domain.UserID,
	limit int,
) ([]*domain.JournalEntry, error) {
	entries, err := s.store.ListJournalEntriesByUser(ctx, userID, limit)
	if err != nil {
		return nil, domain.StoreError("list journal entries", err)
	}
	return entries, nil
}
