package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/PabloGalante/liora-api/internal/domain"
	"github.com/PabloGalante/liora-api/internal/observability"
)

// DefaultWindowSize is how many prior turns are sent to the model.
const DefaultWindowSize = 8

// Responder produces a reply for every input; it never fails.
type Responder interface {
	Respond(ctx context.Context, window []domain.WindowTurn, userText string) string
}

type Service struct {
	store      domain.ConversationStore
	window     *WindowBuilder
	responder  Responder
	windowSize int
	metrics    *observability.Collector
	now        func() time.Time
}

type Option func(*Service)

// WithWindowSize overrides DefaultWindowSize. Zero sends no history.
func WithWindowSize(n int) Option {
	return func(s *Service) { s.windowSize = n }
}

func WithMetrics(m *observability.Collector) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock is used by tests to pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store domain.ConversationStore, responder Responder, opts ...Option) *Service {
	s := &Service{
		store:      store,
		window:     NewWindowBuilder(store),
		responder:  responder,
		windowSize: DefaultWindowSize,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleTurn runs one exchange: validate, build the window, ask the model and
// persist the user and assistant turns together. Model failures become a
// fallback reply; only validation and store errors are returned.
func (s *Service) HandleTurn(ctx context.Context, userID domain.UserID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.NewValidationError("text", "text required")
	}

	log := observability.LoggerFromContext(ctx)

	window, err := s.window.Build(ctx, userID, s.windowSize)
	if err != nil {
		log.Error("failed to build window", "error", err)
		s.storeFailure("recent_turns")
		return "", err
	}

	reply := s.responder.Respond(ctx, window, text)

	// A client that disconnects must not abandon a write that already started.
	now := s.now()
	err = s.store.AppendTurns(context.WithoutCancel(ctx),
		domain.ConversationTurn{UserID: userID, Role: domain.RoleUser, Message: text, Timestamp: now},
		domain.ConversationTurn{UserID: userID, Role: domain.RoleAssistant, Message: reply, Timestamp: now},
	)
	if err != nil {
		log.Error("failed to persist turns", "error", err)
		s.storeFailure("append_turns")
		return "", domain.StoreError("persist turns", err)
	}

	if s.metrics != nil {
		s.metrics.ChatTurns.Inc()
	}
	log.Info("chat turn completed", "window_len", len(window))

	return reply, nil
}

// History returns up to limit stored turns for userID, oldest first.
func (s *Service) History(ctx context.Context, userID domain.UserID, limit int) ([]domain.ConversationTurn, error) {
	recent, err := s.store.RecentTurns(ctx, userID, limit)
	if err != nil {
		s.storeFailure("recent_turns")
		return nil, domain.StoreError("load history", err)
	}

	out := make([]domain.ConversationTurn, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		out = append(out, recent[i])
	}
	return out, nil
}

func (s *Service) storeFailure(op string) {
	if s.metrics != nil {
		s.metrics.StoreFailures.WithLabelValues(op).Inc()
	}
}
