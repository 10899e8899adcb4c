package conversation

import (
	"context"

	"github.com/PabloGalante/liora-api/internal/domain"
)

// WindowBuilder rebuilds the recent history for a user on every request.
type WindowBuilder struct {
	store domain.ConversationStore
}

func NewWindowBuilder(store domain.ConversationStore) *WindowBuilder {
	return &WindowBuilder{store: store}
}

// Build returns up to limit of the user's most recent turns, oldest first,
// with roles mapped to the generator's vocabulary. A user without history gets
// an empty window.
func (b *WindowBuilder) Build(ctx context.Context, userID domain.UserID, limit int) ([]domain.WindowTurn, error) {
	if limit <= 0 {
		return []domain.WindowTurn{}, nil
	}

	recent, err := b.store.RecentTurns(ctx, userID, limit)
	if err != nil {
		return nil, domain.StoreError("load recent turns", err)
	}
	if len(recent) > limit {
		recent = recent[:limit]
	}

	window := make([]domain.WindowTurn, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		t := recent[i]
		if t.UserID != userID {
			continue
		}
		window = append(window, domain.WindowTurn{
			Role: windowRole(t.Role),
			Text: t.Message,
		})
	}
	return window, nil
}

// Anything that is not the user is the model, whatever the stored label says.
func windowRole(r domain.Role) domain.WindowRole {
	if r == domain.RoleUser {
		return domain.WindowRoleUser
	}
	return domain.WindowRoleModel
}
