package domain

import "context"

// LLMClient defines how the core application talks to a text generation service.
// persona is the system instruction; window is oldest first and does not yet
// contain userText.
type LLMClient interface {
	GenerateReply(ctx context.Context, persona string, window []WindowTurn, userText string) (string, error)
}

// ConversationStore is the append-only per-user turn log.
type ConversationStore interface {
	// AppendTurns writes all turns or none.
	AppendTurns(ctx context.Context, turns ...ConversationTurn) error
	// RecentTurns returns at most limit turns for userID, newest first.
	// Turns sharing a timestamp come back in reverse insertion order.
	RecentTurns(ctx context.Context, userID UserID, limit int) ([]ConversationTurn, error)
}

// ScreeningStore persists questionnaire results.
type ScreeningStore interface {
	AppendResult(ctx context.Context, result ScreeningResult) error
	// ListResults returns every result for userID, oldest first.
	ListResults(ctx context.Context, userID UserID) ([]ScreeningResult, error)
}

// CommunityStore persists posts and reaction counters.
type CommunityStore interface {
	CreatePost(ctx context.Context, post *CommunityPost) error
	// ListPosts returns all posts, newest first.
	ListPosts(ctx context.Context) ([]*CommunityPost, error)
	// IncrementReaction must be a single atomic increment at the storage layer.
	// Returns ErrPostNotFound for unknown ids.
	IncrementReaction(ctx context.Context, id PostID, kind ReactionKind) error
}

// JournalStore defines the minimum operations to persist the journal
type JournalStore interface {
	AppendJournalEntry(ctx context.Context, entry *JournalEntry) error
	// ListJournalEntriesByUser returns newest first. limit <= 0 means all.
	ListJournalEntriesByUser(ctx context.Context, userID UserID, limit int) ([]*JournalEntry, error)
}

type AppointmentStore interface {
	CreateAppointment(ctx context.Context, appt *Appointment) error
}

// Stores bundles every persistence port a backend provides.
type Stores struct {
	Conversations ConversationStore
	Screenings    ScreeningStore
	Community     CommunityStore
	Journal       JournalStore
	Appointments  AppointmentStore
}
