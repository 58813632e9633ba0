package service

import (
	"context"
	"testing"
	"time"

	"daily-digits/internal/cache"
	"daily-digits/internal/config"
	"daily-digits/internal/database"
	"daily-digits/internal/predictor"
	"daily-digits/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-03-31 星期一
var fixedNow = time.Date(2025, 3, 31, 10, 0, 0, 0, time.Local)

func newService(t *testing.T, store *testutil.MemoryStore) *PredictionService {
	t.Helper()
	cfg := config.Default().Prediction
	pm := predictor.NewPredictorManager(predictor.OptionsFromConfig(cfg), predictor.NewRandSource(1))
	hc := cache.NewHistoryCache(time.Minute)
	t.Cleanup(hc.Close)

	svc := NewPredictionService(store, pm, hc, nil, cfg)
	svc.Now = func() time.Time { return fixedNow }
	return svc
}

func intp(v int) *int { return &v }

func TestGetPredictions_NoHistory(t *testing.T) {
	svc := newService(t, testutil.NewMemoryStore())

	result, err := svc.GetPredictions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2025-03-31", result.Date)
	assert.Equal(t, 0, result.DataPoints)
	assert.True(t, result.Digit1 >= 201 && result.Digit1 <= 400)
	assert.True(t, result.Digit2 >= 201 && result.Digit2 <= 400)
	assert.Nil(t, result.Insights.RecentAvg1)
	assert.Equal(t, "Monday", result.Insights.DayOfWeek)
	assert.Equal(t, "No historical data available. Showing intelligent random predictions.", result.Message)
	assert.Equal(t, "uniform", result.Algorithm)
}

func TestGetPredictions_UsesTrailingSixMonths(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.Seed(
		database.DailyRecord{Date: fixedNow.AddDate(0, 0, -1), Digit1: 100, Digit2: 500},
		database.DailyRecord{Date: fixedNow.AddDate(0, 0, -2), Digit1: 200, Digit2: 700},
		database.DailyRecord{Date: fixedNow.AddDate(0, -7, 0), Digit1: 999, Digit2: 999},
	)
	svc := newService(t, store)

	result, err := svc.GetPredictions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.DataPoints)
	require.NotNil(t, result.Insights.RecentAvg1)
	assert.Equal(t, 150, *result.Insights.RecentAvg1)
	assert.Equal(t, 600, *result.Insights.RecentAvg2)
	assert.Equal(t, "AI predictions based on 2 days of data using 5 pattern analysis strategies.", result.Message)

	records, _ := store.GetRecordsSince(context.Background(), fixedNow.AddDate(0, -6, 0))
	pool := predictor.BuildCandidatePool(records, database.Digit1, time.Monday, predictor.DefaultOptions())
	assert.True(t, pool.Contains(result.Digit1))
}

func TestGetPredictions_StoreFailure(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.Fail()
	svc := newService(t, store)

	_, err := svc.GetPredictions(context.Background())
	assert.ErrorIs(t, err, testutil.ErrStoreDown)
}

func TestSaveResults_UpsertsByDate(t *testing.T) {
	store := testutil.NewMemoryStore()
	svc := newService(t, store)
	ctx := context.Background()

	first, err := svc.SaveResults(ctx, "2025-03-01", intp(150), intp(900))
	require.NoError(t, err)
	assert.Equal(t, 150, first.Digit1)

	history, err := svc.GetHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 900, history[0].Digit2)

	second, err := svc.SaveResults(ctx, "2025-03-01", intp(5), intp(5))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	history, err = svc.GetHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 5, history[0].Digit1)
	assert.Equal(t, 5, history[0].Digit2)
}

func TestSaveResults_Validation(t *testing.T) {
	svc := newService(t, testutil.NewMemoryStore())
	ctx := context.Background()

	cases := []struct {
		name   string
		date   string
		d1, d2 *int
		msg    string
	}{
		{"missing date", "", intp(1), intp(2), "Date, digit1, and digit2 are required"},
		{"missing digit", "2025-03-01", nil, intp(2), "Date, digit1, and digit2 are required"},
		{"bad date", "03/01/2025", intp(1), intp(2), "Invalid date format, expected YYYY-MM-DD"},
		{"negative", "2025-03-01", intp(-1), intp(5), "Digits must be between 0 and 1000"},
		{"too large", "2025-03-01", intp(1001), intp(5), "Digits must be between 0 and 1000"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SaveResults(ctx, tc.date, tc.d1, tc.d2)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, tc.msg, err.Error())
		})
	}
}

func TestSaveResults_BoundsInclusive(t *testing.T) {
	svc := newService(t, testutil.NewMemoryStore())

	_, err := svc.SaveResults(context.Background(), "2025-03-01", intp(0), intp(1000))
	assert.NoError(t, err)
}

func TestSaveResults_StoreErrorIsNotValidation(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.Fail()
	svc := newService(t, store)

	_, err := svc.SaveResults(context.Background(), "2025-03-01", intp(1), intp(2))
	require.Error(t, err)
	assert.False(t, IsValidationError(err))
}

func TestGetHistory_DefaultLimit(t *testing.T) {
	store := testutil.NewMemoryStore()
	for i := 0; i < 120; i++ {
		store.Seed(database.DailyRecord{Date: fixedNow.AddDate(0, 0, -i), Digit1: i, Digit2: i})
	}
	svc := newService(t, store)

	history, err := svc.GetHistory(context.Background(), -3)
	require.NoError(t, err)
	assert.Len(t, history, DefaultHistoryLimit)
	assert.Equal(t, 0, history[0].Digit1)
}
