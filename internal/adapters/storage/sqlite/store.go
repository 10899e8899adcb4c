package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/liora-api/internal/domain"
)

// Store implements every domain store on one SQLite database.
type Store struct {
	db  *sql.DB
	seq atomic.Int64
}

// Open opens the database at path and makes sure the schema exists.
func Open(path string) (*Store, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return NewStore(db), nil
}

// NewStore wraps an already initialised database.
func NewStore(db *sql.DB) *Store {
	s := &Store{db: db}
	s.seq.Store(time.Now().UnixNano())
	return s
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Stores exposes s through every domain port.
func (s *Store) Stores() domain.Stores {
	return domain.Stores{
		Conversations: s,
		Screenings:    s,
		Community:     s,
		Journal:       s,
		Appointments:  s,
	}
}

func toNanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

// ─────────────────────────────────────────
// ConversationStore
// ─────────────────────────────────────────

func (s *Store) AppendTurns(ctx context.Context, turns ...domain.ConversationTurn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.StoreError("sqlite AppendTurns begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chat_messages (user_id, role, message, timestamp) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return domain.StoreError("sqlite AppendTurns prepare", err)
	}
	defer stmt.Close()

	for _, t := range turns {
		if _, err := stmt.ExecContext(ctx, string(t.UserID), string(t.Role), t.Message, toNanos(t.Timestamp)); err != nil {
			return domain.StoreError("sqlite AppendTurns insert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.StoreError("sqlite AppendTurns commit", err)
	}
	return nil
}

func (s *Store) RecentTurns(ctx context.Context, userID domain.UserID, limit int) ([]domain.ConversationTurn, error) {
	out := []domain.ConversationTurn{}
	if limit <= 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT role, message, timestamp FROM chat_messages
		 WHERE user_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		string(userID), limit,
	)
	if err != nil {
		return nil, domain.StoreError("sqlite RecentTurns", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			role, msg string
			ts        int64
		)
		if err := rows.Scan(&role, &msg, &ts); err != nil {
			return nil, domain.StoreError("sqlite RecentTurns scan", err)
		}
		out = append(out, domain.ConversationTurn{
			UserID:    userID,
			Role:      domain.Role(role),
			Message:   msg,
			Timestamp: fromNanos(ts),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError("sqlite RecentTurns rows", err)
	}
	return out, nil
}

// ─────────────────────────────────────────
// ScreeningStore
// ─────────────────────────────────────────

func (s *Store) AppendResult(ctx context.Context, r domain.ScreeningResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mood_results (user_id, test_type, score, category, timestamp) VALUES (?, ?, ?, ?, ?)`,
		string(r.UserID), string(r.InstrumentID), r.RawScore, r.Category.String(), toNanos(r.Timestamp),
	)
	if err != nil {
		return domain.StoreError("sqlite AppendResult", err)
	}
	return nil
}

func (s *Store) ListResults(ctx context.Context, userID domain.UserID) ([]domain.ScreeningResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT test_type, score, category, timestamp FROM mood_results
		 WHERE user_id = ? ORDER BY timestamp ASC, id ASC`,
		string(userID),
	)
	if err != nil {
		return nil, domain.StoreError("sqlite ListResults", err)
	}
	defer rows.Close()

	out := []domain.ScreeningResult{}
	for rows.Next() {
		var (
			testType, category string
			score              int
			ts                 int64
		)
		if err := rows.Scan(&testType, &score, &category, &ts); err != nil {
			return nil, domain.StoreError("sqlite ListResults scan", err)
		}
		cat, err := domain.ParseCategory(category)
		if err != nil {
			return nil, fmt.Errorf("sqlite ListResults: %w", err)
		}
		out = append(out, domain.ScreeningResult{
			UserID:       userID,
			InstrumentID: domain.InstrumentID(testType),
			RawScore:     score,
			Category:     cat,
			Timestamp:    fromNanos(ts),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError("sqlite ListResults rows", err)
	}
	return out, nil
}

// ─────────────────────────────────────────
// CommunityStore
// ─────────────────────────────────────────

func (s *Store) CreatePost(ctx context.Context, post *domain.CommunityPost) error {
	if post.ID == "" {
		post.ID = domain.PostID(uuid.NewString())
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO community_posts (id, seq, user_id, name, message, timestamp, heart, hug, flower)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(post.ID), s.seq.Add(1), string(post.UserID), post.Name, post.Message, toNanos(post.Timestamp),
		post.Reactions.Heart, post.Reactions.Hug, post.Reactions.Flower,
	)
	if err != nil {
		return domain.StoreError("sqlite CreatePost", err)
	}
	return nil
}

func (s *Store) ListPosts(ctx context.Context) ([]*domain.CommunityPost, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, message, timestamp, heart, hug, flower
		 FROM community_posts ORDER BY timestamp DESC, seq DESC`)
	if err != nil {
		return nil, domain.StoreError("sqlite ListPosts", err)
	}
	defer rows.Close()

	out := []*domain.CommunityPost{}
	for rows.Next() {
		var (
			p          domain.CommunityPost
			id, userID string
			ts         int64
		)
		if err := rows.Scan(&id, &userID, &p.Name, &p.Message, &ts,
			&p.Reactions.Heart, &p.Reactions.Hug, &p.Reactions.Flower); err != nil {
			return nil, domain.StoreError("sqlite ListPosts scan", err)
		}
		p.ID = domain.PostID(id)
		p.UserID = domain.UserID(userID)
		p.Timestamp = fromNanos(ts)
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError("sqlite ListPosts rows", err)
	}
	return out, nil
}

// reactionColumns maps each kind to a fixed column name; never build SQL from input.
var reactionColumns = map[domain.ReactionKind]string{
	domain.ReactionHeart:  "heart",
	domain.ReactionHug:    "hug",
	domain.ReactionFlower: "flower",
}

func (s *Store) IncrementReaction(ctx context.Context, id domain.PostID, kind domain.ReactionKind) error {
	col, ok := reactionColumns[kind]
	if !ok {
		return domain.ErrInvalidReaction
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE community_posts SET `+col+` = `+col+` + 1 WHERE id = ?`, string(id))
	if err != nil {
		return domain.StoreError("sqlite IncrementReaction", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.StoreError("sqlite IncrementReaction rows", err)
	}
	if n == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

// ─────────────────────────────────────────
// JournalStore
// ─────────────────────────────────────────

func (s *Store) AppendJournalEntry(ctx context.Context, entry *domain.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = domain.JournalEntryID(uuid.NewString())
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal_entries (id, seq, user_id, text, timestamp) VALUES (?, ?, ?, ?, ?)`,
		string(entry.ID), s.seq.Add(1), string(entry.UserID), entry.Text, toNanos(entry.Timestamp),
	)
	if err != nil {
		return domain.StoreError("sqlite AppendJournalEntry", err)
	}
	return nil
}

func (s *Store) ListJournalEntriesByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.JournalEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, timestamp FROM journal_entries
		 WHERE user_id = ? ORDER BY timestamp DESC, seq DESC LIMIT ?`,
		string(userID), limit,
	)
	if err != nil {
		return nil, domain.StoreError("sqlite ListJournalEntriesByUser", err)
	}
	defer rows.Close()

	out := []*domain.JournalEntry{}
	for rows.Next() {
		var (
			id, text string
			ts       int64
		)
		if err := rows.Scan(&id, &text, &ts); err != nil {
			return nil, domain.StoreError("sqlite ListJournalEntriesByUser scan", err)
		}
		out = append(out, &domain.JournalEntry{
			ID:        domain.JournalEntryID(id),
			UserID:    userID,
			Text:      text,
			Timestamp: fromNanos(ts),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError("sqlite ListJournalEntriesByUser rows", err)
	}
	return out, nil
}

// ─────────────────────────────────────────
// AppointmentStore
// ─────────────────────────────────────────

func (s *Store) CreateAppointment(ctx context.Context, appt *domain.Appointment) error {
	if appt.ID == "" {
		appt.ID = domain.AppointmentID(uuid.NewString())
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO appointments (id, user_id, name, email, counsellor_type, date, time, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(appt.ID), string(appt.UserID), appt.Name, appt.Email, appt.CounsellorType,
		appt.Date, appt.Time, toNanos(appt.Timestamp),
	)
	if err != nil {
		return domain.StoreError("sqlite CreateAppointment", err)
	}
	return nil
}
