package screening_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/liora-api/internal/adapters/storage/memory"
	"github.com/PabloGalante/liora-api/internal/app/screening"
	"github.com/PabloGalante/liora-api/internal/domain"
	"github.com/PabloGalante/liora-api/internal/observability"
)

func TestCategorizeBoundaries(t *testing.T) {
	cases := []struct {
		id    domain.InstrumentID
		score int
		want  domain.Category
	}{
		{domain.InstrumentPHQ9, 0, domain.CategoryMinimal},
		{domain.InstrumentPHQ9, 4, domain.CategoryMinimal},
		{domain.InstrumentPHQ9, 5, domain.CategoryMild},
		{domain.InstrumentPHQ9, 9, domain.CategoryMild},
		{domain.InstrumentPHQ9, 10, domain.CategoryModerate},
		{domain.InstrumentPHQ9, 14, domain.CategoryModerate},
		{domain.InstrumentPHQ9, 15, domain.CategoryModeratelySevere},
		{domain.InstrumentPHQ9, 19, domain.CategoryModeratelySevere},
		{domain.InstrumentPHQ9, 20, domain.CategorySevere},
		{domain.InstrumentPHQ9, 27, domain.CategorySevere},
		{domain.InstrumentGAD7, 4, domain.CategoryMinimal},
		{domain.InstrumentGAD7, 9, domain.CategoryMild},
		{domain.InstrumentGAD7, 14, domain.CategoryModerate},
		{domain.InstrumentGAD7, 15, domain.CategorySevere},
		{domain.InstrumentGAD7, 19, domain.CategorySevere},
		{domain.InstrumentGAD7, 21, domain.CategorySevere},
		{domain.InstrumentPHQ9, -3, domain.CategoryMinimal},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, screening.Categorize(tc.id, tc.score), "%s score=%d", tc.id, tc.score)
	}
}

func TestModeratelySevereOnlyForPHQ9(t *testing.T) {
	for score := -5; score <= 40; score++ {
		assert.NotEqual(t, domain.CategoryModeratelySevere, screening.Categorize(domain.InstrumentGAD7, score))
	}
}

func TestQuestions(t *testing.T) {
	svc := screening.NewService(screening.NewCatalog(), memory.NewScreeningStore(), nil)

	assert.Len(t, svc.Questions("phq9"), 9)
	assert.Len(t, svc.Questions("gad7"), 7)
	assert.Len(t, svc.Questions(""), 9)
	assert.Len(t, svc.Questions("bdi"), 9, "unknown ids fall back to phq9")

	q := svc.Questions("gad7")
	q[0] = "mutated"
	assert.Equal(t, "Feeling nervous or anxious?", svc.Questions("gad7")[0])
}

func TestSubmitScoresAndPersists(t *testing.T) {
	ctx := context.Background()
	store := memory.NewScreeningStore()
	svc := screening.NewService(screening.NewCatalog(), store, nil)

	got, err := svc.Submit(ctx, "u1", "phq9", []int{2, 2, 2, 2, 2, 2, 2, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, 15, got.RawScore)
	assert.Equal(t, domain.CategoryModeratelySevere, got.Category)

	got, err = svc.Submit(ctx, "u1", "gad7", []int{3, 3, 3, 3, 3, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 15, got.RawScore)
	assert.Equal(t, domain.CategorySevere, got.Category)

	history, err := svc.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.InstrumentPHQ9, history[0].InstrumentID)
	assert.Equal(t, domain.InstrumentGAD7, history[1].InstrumentID)
	assert.False(t, history[1].Timestamp.Before(history[0].Timestamp))
}

func TestSubmitIsDeterministic(t *testing.T) {
	svc := screening.NewService(screening.NewCatalog(), memory.NewScreeningStore(), nil)
	answers := []int{1, 3, 0, 2, 1, 2, 3}

	first, err := svc.Submit(context.Background(), "u1", "gad7", answers)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := svc.Submit(context.Background(), "u1", "gad7", answers)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSubmitDoesNotRangeCheckAnswers(t *testing.T) {
	svc := screening.NewService(screening.NewCatalog(), memory.NewScreeningStore(), nil)

	got, err := svc.Submit(context.Background(), "u1", "phq9", []int{10, 10})
	require.NoError(t, err)
	assert.Equal(t, 20, got.RawScore)
	assert.Equal(t, domain.CategorySevere, got.Category)
}

func TestSubmitRejectsOverflowingSum(t *testing.T) {
	store := memory.NewScreeningStore()
	svc := screening.NewService(screening.NewCatalog(), store, nil)

	for _, answers := range [][]int{{math.MaxInt, 1}, {math.MinInt, -1}} {
		_, err := svc.Submit(context.Background(), "u1", "phq9", answers)
		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, "answers out of range", err.Error())
	}

	history, err := svc.History(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSubmitLogsUserIDOnce(t *testing.T) {
	var buf bytes.Buffer
	observability.Init(&buf, "debug")
	t.Cleanup(func() { observability.Init(&bytes.Buffer{}, "info") })

	svc := screening.NewService(screening.NewCatalog(), memory.NewScreeningStore(), nil)
	ctx := observability.WithUserID(context.Background(), "u1")

	_, err := svc.Submit(ctx, "u1", "gad7", []int{1, 2})
	require.NoError(t, err)

	line := strings.TrimSpace(buf.String())
	require.Contains(t, line, "screening scored")
	assert.Equal(t, 1, strings.Count(line, `"user_id"`))
}

func TestSubmitRejectsEmptyAnswers(t *testing.T) {
	store := memory.NewScreeningStore()
	svc := screening.NewService(screening.NewCatalog(), store, nil)

	_, err := svc.Submit(context.Background(), "u1", "phq9", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	history, err := svc.History(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

type failingScreeningStore struct{}

func (failingScreeningStore) AppendResult(context.Context, domain.ScreeningResult) error {
	return errors.New("disk full")
}

func (failingScreeningStore) ListResults(context.Context, domain.UserID) ([]domain.ScreeningResult, error) {
	return nil, errors.New("disk full")
}

func TestSubmitStoreFailure(t *testing.T) {
	svc := screening.NewService(screening.NewCatalog(), failingScreeningStore{}, nil)

	_, err := svc.Submit(context.Background(), "u1", "phq9", []int{1})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	_, err = svc.History(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
