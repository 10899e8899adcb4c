package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/liora-api/internal/domain"
)

const (
	colChatMessages   = "chat_messages"
	colMoodResults    = "mood_results"
	colCommunityPosts = "community_posts"
	colJournalEntries = "journal_entries"
	colAppointments   = "appointments"
)

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given project.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
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

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

// turnDoc.Seq orders turns that share a timestamp (user before assistant).
type turnDoc struct {
	UserID    string    `firestore:"user_id"`
	Role      string    `firestore:"role"`
	Message   string    `firestore:"message"`
	Timestamp time.Time `firestore:"timestamp"`
	Seq       int       `firestore:"seq"`
}

type moodDoc struct {
	UserID    string    `firestore:"user_id"`
	TestType  string    `firestore:"test_type"`
	Score     int       `firestore:"score"`
	Category  string    `firestore:"category"`
	Timestamp time.Time `firestore:"timestamp"`
}

type reactionsDoc struct {
	Heart  int `firestore:"heart"`
	Hug    int `firestore:"hug"`
	Flower int `firestore:"flower"`
}

type postDoc struct {
	UserID    string       `firestore:"user_id"`
	Name      string       `firestore:"name"`
	Message   string       `firestore:"message"`
	Timestamp time.Time    `firestore:"timestamp"`
	Reactions reactionsDoc `firestore:"reactions"`
}

type journalDoc struct {
	UserID    string    `firestore:"user_id"`
	Text      string    `firestore:"text"`
	Timestamp time.Time `firestore:"timestamp"`
}

type appointmentDoc struct {
	UserID         string    `firestore:"user_id"`
	Name           string    `firestore:"name"`
	Email          string    `firestore:"email"`
	CounsellorType string    `firestore:"counsellor_type"`
	Date           string    `firestore:"date"`
	Time           string    `firestore:"time"`
	Timestamp      time.Time `firestore:"timestamp"`
}

// ─────────────────────────────────────────
// ConversationStore implementation
// ─────────────────────────────────────────

// AppendTurns writes all turns in one transaction.
func (s *Store) AppendTurns(ctx context.Context, turns ...domain.ConversationTurn) error {
	col := s.client.Collection(colChatMessages)

	refs := make([]*firestore.DocumentRef, len(turns))
	for i := range turns {
		refs[i] = col.NewDoc()
	}

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for i, t := range turns {
			doc := turnDoc{
				UserID:    string(t.UserID),
				Role:      string(t.Role),
				Message:   t.Message,
				Timestamp: t.Timestamp,
				Seq:       i,
			}
			if err := tx.Create(refs[i], doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.StoreError("firestore AppendTurns", err)
	}
	return nil
}

func (s *Store) RecentTurns(ctx context.Context, userID domain.UserID, limit int) ([]domain.ConversationTurn, error) {
	out := []domain.ConversationTurn{}
	if limit <= 0 {
		return out, nil
	}

	q := s.client.Collection(colChatMessages).
		Where("user_id", "==", string(userID)).
		OrderBy("timestamp", firestore.Desc).
		OrderBy("seq", firestore.Desc).
		Limit(limit)

	iter := q.Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, domain.StoreError("firestore RecentTurns", err)
		}

		var doc turnDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode turnDoc: %w", err)
		}

		out = append(out, domain.ConversationTurn{
			UserID:    domain.UserID(doc.UserID),
			Role:      domain.Role(doc.Role),
			Message:   doc.Message,
			Timestamp: doc.Timestamp,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// ScreeningStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendResult(ctx context.Context, r domain.ScreeningResult) error {
	doc := moodDoc{
		UserID:    string(r.UserID),
		TestType:  string(r.InstrumentID),
		Score:     r.RawScore,
		Category:  r.Category.String(),
		Timestamp: r.Timestamp,
	}

	if _, _, err := s.client.Collection(colMoodResults).Add(ctx, doc); err != nil {
		return domain.StoreError("firestore AppendResult", err)
	}
	return nil
}

func (s *Store) ListResults(ctx context.Context, userID domain.UserID) ([]domain.ScreeningResult, error) {
	iter := s.client.Collection(colMoodResults).
		Where("user_id", "==", string(userID)).
		OrderBy("timestamp", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	out := []domain.ScreeningResult{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, domain.StoreError("firestore ListResults", err)
		}

		var doc moodDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode moodDoc: %w", err)
		}
		cat, err := domain.ParseCategory(doc.Category)
		if err != nil {
			return nil, fmt.Errorf("decode moodDoc %s: %w", snap.Ref.ID, err)
		}

		out = append(out, domain.ScreeningResult{
			UserID:       userID,
			InstrumentID: domain.InstrumentID(doc.TestType),
			RawScore:     doc.Score,
			Category:     cat,
			Timestamp:    doc.Timestamp,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// CommunityStore implementation
// ─────────────────────────────────────────

func (s *Store) CreatePost(ctx context.Context, post *domain.CommunityPost) error {
	doc := postDoc{
		UserID:    string(post.UserID),
		Name:      post.Name,
		Message:   post.Message,
		Timestamp: post.Timestamp,
		Reactions: reactionsDoc(post.Reactions),
	}

	ref := s.client.Collection(colCommunityPosts).NewDoc()
	if post.ID != "" {
		ref = s.client.Collection(colCommunityPosts).Doc(string(post.ID))
	}
	if _, err := ref.Create(ctx, doc); err != nil {
		return domain.StoreError("firestore CreatePost", err)
	}
	post.ID = domain.PostID(ref.ID)
	return nil
}

func (s *Store) ListPosts(ctx context.Context) ([]*domain.CommunityPost, error) {
	iter := s.client.Collection(colCommunityPosts).
		OrderBy("timestamp", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	out := []*domain.CommunityPost{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, domain.StoreError("firestore ListPosts", err)
		}

		var doc postDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode postDoc: %w", err)
		}

		out = append(out, &domain.CommunityPost{
			ID:        domain.PostID(snap.Ref.ID),
			UserID:    domain.UserID(doc.UserID),
			Name:      doc.Name,
			Message:   doc.Message,
			Timestamp: doc.Timestamp,
			Reactions: domain.Reactions(doc.Reactions),
		})
	}
	return out, nil
}

// IncrementReaction uses a server-side increment transform, so concurrent
// reactions never overwrite each other.
func (s *Store) IncrementReaction(ctx context.Context, id domain.PostID, kind domain.ReactionKind) error {
	ref := s.client.Collection(colCommunityPosts).Doc(string(id))

	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "reactions." + string(kind), Value: firestore.Increment(1)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrPostNotFound
		}
		return domain.StoreError("firestore IncrementReaction", err)
	}
	return nil
}

// ─────────────────────────────────────────
// JournalStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendJournalEntry(ctx context.Context, entry *domain.JournalEntry) error {
	doc := journalDoc{
		UserID:    string(entry.UserID),
		Text:      entry.Text,
		Timestamp: entry.Timestamp,
	}

	ref, _, err := s.client.Collection(colJournalEntries).Add(ctx, doc)
	if err != nil {
		return domain.StoreError("firestore AppendJournalEntry", err)
	}
	entry.ID = domain.JournalEntryID(ref.ID)
	return nil
}

func (s *Store) ListJournalEntriesByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.JournalEntry, error) {
	q := s.client.Collection(colJournalEntries).
		Where("user_id", "==", string(userID)).
		OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []*domain.JournalEntry{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, domain.StoreError("firestore ListJournalEntriesByUser", err)
		}

		var doc journalDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode journalDoc: %w", err)
		}

		out = append(out, &domain.JournalEntry{
			ID:        domain.JournalEntryID(snap.Ref.ID),
			UserID:    userID,
			Text:      doc.Text,
			Timestamp: doc.Timestamp,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// AppointmentStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateAppointment(ctx context.Context, appt *domain.Appointment) error {
	doc := appointmentDoc{
		UserID:         string(appt.UserID),
		Name:           appt.Name,
		Email:          appt.Email,
		CounsellorType: appt.CounsellorType,
		Date:           appt.Date,
		Time:           appt.Time,
		Timestamp:      appt.Timestamp,
	}

	ref, _, err := s.client.Collection(colAppointments).Add(ctx, doc)
	if err != nil {
		return domain.StoreError("firestore CreateAppointment", err)
	}
	appt.ID = domain.AppointmentID(ref.ID)
	return nil
}
