package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/PabloGalante/liora-api/internal/app/community"
	"github.com/PabloGalante/liora-api/internal/app/conversation"
	"github.com/PabloGalante/liora-api/internal/app/counselling"
	"github.com/PabloGalante/liora-api/internal/app/journal"
	"github.com/PabloGalante/liora-api/internal/app/screening"
	"github.com/PabloGalante/liora-api/internal/domain"
	"github.com/PabloGalante/liora-api/internal/observability"
)

const dateLayout = "2006-01-02"

// Deps are the services the HTTP surface exposes.
type Deps struct {
	Conversation *conversation.Service
	Screening    *screening.Service
	Community    *community.Service
	Journal      *journal.Service
	Counselling  *counselling.Service

	Metrics        *observability.Collector // optional
	AllowedOrigins []string
}

type Server struct {
	deps Deps
}

func NewServer(deps Deps) http.Handler {
	s := &Server{deps: deps}
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(withRequestID)
	r.Use(withLogging(deps.Metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", UserIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(withIdentity)

	r.Get("/health", s.handleHealth)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Post("/chat", s.handleChat)
	r.Get("/chat/history", s.handleChatHistory)

	r.Get("/get-questions", s.handleGetQuestions)
	r.Post("/submit-answers", s.handleSubmitAnswers)
	r.Get("/mood-history", s.handleMoodHistory)

	r.Post("/book-counselling", s.handleBookCounselling)

	r.Post("/community-post", s.handleCommunityPost)
	r.Get("/community-feed", s.handleCommunityFeed)
	r.Post("/react", s.handleReact)

	r.Post("/journal", s.handleJournalWrite)
	r.Get("/journal", s.handleJournalList)

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) { methodNotAllowed(w) })

	return r
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type chatRequest struct {
	Text string `json:"text" validate:"notblank"`
}

type chatResponse struct {
	Bot string `json:"bot"`
}

type turnResponse struct {
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type questionsResponse struct {
	Questions []string `json:"questions"`
}

type submitAnswersRequest struct {
	Answers  []answerValue `json:"answers" validate:"min=1"`
	TestType string        `json:"test_type"`
}

type submitAnswersResponse struct {
	Score    int    `json:"score"`
	Category string `json:"category"`
}

type moodHistoryItem struct {
	Date     string `json:"date"`
	TestType string `json:"test_type"`
	Score    int    `json:"score"`
	Category string `json:"category"`
}

type bookCounsellingRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	CounsellorType string `json:"counsellor_type"`
	Date           string `json:"date"`
	Time           string `json:"time"`
}

type communityPostRequest struct {
	Message string `json:"message" validate:"notblank"`
}

type reactRequest struct {
	ID   string `json:"id" validate:"notblank"`
	Type string `json:"type" validate:"oneof=heart hug flower"`
}

type feedItem struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Message   string           `json:"message"`
	Reactions domain.Reactions `json:"reactions"`
	Date      string           `json:"date"`
}

type journalRequest struct {
	Text string `json:"text" validate:"notblank"`
}

type journalItem struct {
	Text string `json:"text"`
	Date string `json:"date"`
}

type statusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.bind(w, r, &req) {
		return
	}

	reply, err := s.deps.Conversation.HandleTurn(r.Context(), userIDFrom(r.Context()), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Bot: reply})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	turns, err := s.deps.Conversation.History(r.Context(), userIDFrom(r.Context()), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]turnResponse, 0, len(turns))
	for _, t := range turns {
		out = append(out, turnResponse{Role: string(t.Role), Message: t.Message, Timestamp: t.Timestamp})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, questionsResponse{
		Questions: s.deps.Screening.Questions(r.URL.Query().Get("test_type")),
	})
}

func (s *Server) handleSubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req submitAnswersRequest
	if !s.bind(w, r, &req) {
		return
	}

	score, err := s.deps.Screening.Submit(r.Context(), userIDFrom(r.Context()), req.TestType, answersToInts(req.Answers))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, submitAnswersResponse{
		Score:    score.RawScore,
		Category: score.Category.String(),
	})
}

func (s *Server) handleMoodHistory(w http.ResponseWriter, r *http.Request) {
	results, err := s.deps.Screening.History(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]moodHistoryItem, 0, len(results))
	for _, res := range results {
		out = append(out, moodHistoryItem{
			Date:     res.Timestamp.UTC().Format(dateLayout),
			TestType: string(res.InstrumentID),
			Score:    res.RawScore,
			Category: res.Category.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBookCounselling(w http.ResponseWriter, r *http.Request) {
	var req bookCounsellingRequest
	if !s.bind(w, r, &req) {
		return
	}

	_, err := s.deps.Counselling.Book(r.Context(), userIDFrom(r.Context()), counselling.BookingRequest{
		Name:           req.Name,
		Email:          req.Email,
		CounsellorType: req.CounsellorType,
		Date:           req.Date,
		Time:           req.Time,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleCommunityPost(w http.ResponseWriter, r *http.Request) {
	var req communityPostRequest
	if !s.bind(w, r, &req) {
		return
	}

	post, err := s.deps.Community.Post(r.Context(), userIDFrom(r.Context()), req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "posted", ID: string(post.ID)})
}

func (s *Server) handleCommunityFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := s.deps.Community.Feed(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]feedItem, 0, len(posts))
	for _, p := range posts {
		out = append(out, feedItem{
			ID:        string(p.ID),
			Name:      p.Name,
			Message:   p.Message,
			Reactions: p.Reactions,
			Date:      p.Timestamp.UTC().Format(dateLayout),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReact(w http.ResponseWriter, r *http.Request) {
	var req reactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		writeError(w, r, domain.ErrInvalidReaction)
		return
	}

	if err := s.deps.Community.React(r.Context(), req.ID, req.Type); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "reacted"})
}

func (s *Server) handleJournalWrite(w http.ResponseWriter, r *http.Request) {
	var req journalRequest
	if !s.bind(w, r, &req) {
		return
	}

	entry, err := s.deps.Journal.Write(r.Context(), userIDFrom(r.Context()), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "saved", ID: string(entry.ID)})
}

func (s *Server) handleJournalList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.Journal.List(r.Context(), userIDFrom(r.Context()), 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]journalItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, journalItem{Text: e.Text, Date: e.Timestamp.UTC().Format(dateLayout)})
	}
	writeJSON(w, http.StatusOK, out)
}

// bind decodes and validates the request body, writing a 400 on failure.
func (s *Server) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		writeError(w, r, err)
		return false
	}
	if err := validateRequest(dst); err != nil {
		writeError(w, r, err)
		return false
	}
	return true
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes. Anything unrecognised is a
// server error and is logged, never echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		badRequest(w, ve.Message)
	case errors.Is(err, domain.ErrInvalidReaction):
		badRequest(w, "invalid reaction")
	case errors.Is(err, domain.ErrPostNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
	default:
		observability.LoggerFromContext(r.Context()).Error("request failed",
			"path", r.URL.Path,
			"error", err)
		internalError(w)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
