package screening

import (
	"context"
	"math"
	"time"

	"github.com/PabloGalante/liora-api/internal/domain"
	"github.com/PabloGalante/liora-api/internal/observability"
)

// Score is the outcome of one submission.
type Score struct {
	InstrumentID domain.InstrumentID
	RawScore     int
	Category     domain.Category
}

type Service struct {
	catalog *Catalog
	store   domain.ScreeningStore
	metrics *observability.Collector
	now     func() time.Time
}

func NewService(catalog *Catalog, store domain.ScreeningStore, metrics *observability.Collector) *Service {
	return &Service{
		catalog: catalog,
		store:   store,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Questions returns the question list for instrumentID (PHQ-9 when unknown).
func (s *Service) Questions(instrumentID string) []string {
	return s.catalog.Lookup(instrumentID).Questions()
}

// Submit sums the answers, categorizes the score and stores the result.
// Answers are not range checked.
func (s *Service) Submit(ctx context.Context, userID domain.UserID, instrumentID string, answers []int) (Score, error) {
	if len(answers) == 0 {
		return Score{}, domain.NewValidationError("answers", "answers required")
	}

	inst := s.catalog.Lookup(instrumentID)

	total, err := sumAnswers(answers)
	if err != nil {
		return Score{}, err
	}

	score := Score{
		InstrumentID: inst.ID(),
		RawScore:     total,
		Category:     Categorize(inst.ID(), total),
	}

	log := observability.LoggerFromContext(ctx).With("instrument", score.InstrumentID)

	err = s.store.AppendResult(ctx, domain.ScreeningResult{
		UserID:       userID,
		InstrumentID: score.InstrumentID,
		RawScore:     score.RawScore,
		Category:     score.Category,
		Timestamp:    s.now(),
	})
	if err != nil {
		log.Error("failed to store screening result", "error", err)
		if s.metrics != nil {
			s.metrics.StoreFailures.WithLabelValues("append_result").Inc()
		}
		return Score{}, domain.StoreError("store screening result", err)
	}

	if s.metrics != nil {
		s.metrics.ScreeningsScored.WithLabelValues(string(score.InstrumentID), score.Category.String()).Inc()
	}
	log.Info("screening scored", "score", score.RawScore, "category", score.Category.String())

	return score, nil
}

// History returns every stored result for userID, oldest first.
func (s *Service) History(ctx context.Context, userID domain.UserID) ([]domain.ScreeningResult, error) {
	results, err := s.store.ListResults(ctx, userID)
	if err != nil {
		return nil, domain.StoreError("list screening results", err)
	}
	return results, nil
}

// sumAnswers adds the answers, failing instead of wrapping on overflow.
func sumAnswers(answers []int) (int, error) {
	total := 0
	for _, a := range answers {
		if (a > 0 && total > math.MaxInt-a) || (a < 0 && total < math.MinInt-a) {
			return 0, domain.NewValidationError("answers", "answers out of range")
		}
		total += a
	}
	return total, nil
}
