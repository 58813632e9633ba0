package predictor

import (
	"testing"
	"time"

	"daily-digits/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqRand 依次返回预设值（对 n 取模）
type seqRand struct {
	values []int
	i      int
}

func (s *seqRand) Intn(n int) int {
	v := s.values[s.i%len(s.values)] % n
	s.i++
	return v
}

// history 最新一天为 2025-03-31（星期一），逐日向前
func history(digit1 ...int) []database.DailyRecord {
	newest := time.Date(2025, 3, 31, 0, 0, 0, 0, time.Local)
	records := make([]database.DailyRecord, len(digit1))
	for i, v := range digit1 {
		records[i] = database.DailyRecord{Date: newest.AddDate(0, 0, -i), Digit1: v, Digit2: 1000 - v}
	}
	return records
}

func TestBuildCandidatePool_Contributions(t *testing.T) {
	pool := BuildCandidatePool(history(100, 100, 200), database.Digit1, time.Monday, DefaultOptions())

	byStrategy := map[Strategy][]int{}
	for _, c := range pool.Contributions {
		byStrategy[c.Strategy] = c.Values
	}

	assert.Equal(t, []int{100}, byStrategy[StrategyHot])
	assert.Equal(t, []int{200, 100}, byStrategy[StrategyOverdue])
	assert.Equal(t, []int{133, 123, 143}, byStrategy[StrategyRecent])
	assert.Equal(t, []int{100, 85, 115}, byStrategy[StrategyDayOfWeek])
	assert.Equal(t, []int{133}, byStrategy[StrategyMonthly])

	assert.Equal(t, []int{100, 200, 133, 123, 143, 85, 115}, pool.Values)
}

func TestBuildCandidatePool_HotAndOverdueLimits(t *testing.T) {
	values := make([]int, 0, 12)
	for v := 1; v <= 12; v++ {
		values = append(values, v*10)
	}
	pool := BuildCandidatePool(history(values...), database.Digit1, time.Monday, DefaultOptions())

	for _, c := range pool.Contributions {
		switch c.Strategy {
		case StrategyHot:
			assert.Equal(t, []int{10, 20, 30}, c.Values)
		case StrategyOverdue:
			assert.Equal(t, []int{120, 110, 100, 90, 80}, c.Values)
		}
	}
}

func TestBuildCandidatePool_OffsetsStayInRange(t *testing.T) {
	pool := BuildCandidatePool(history(1000, 1000), database.Digit1, time.Monday, DefaultOptions())

	for _, v := range pool.Values {
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 1000)
	}
	assert.True(t, pool.Contains(990))
	assert.True(t, pool.Contains(985))
	assert.False(t, pool.Contains(1010))
}

func TestBuildCandidatePool_SubsetOfRangeAndNonEmpty(t *testing.T) {
	rng := NewRandSource(42)
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(60)
		values := make([]int, n)
		for i := range values {
			values[i] = rng.Intn(1001)
		}

		pool := BuildCandidatePool(history(values...), database.Digit1, time.Weekday(trial%7), DefaultOptions())
		require.False(t, pool.Empty())
		seen := map[int]bool{}
		for _, v := range pool.Values {
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, 1000)
			assert.False(t, seen[v], "duplicate candidate %d", v)
			seen[v] = true
		}
	}
}

func TestUniformPredictor_EmptyHistoryUsesFallbackRange(t *testing.T) {
	low := NewUniformPredictor(DefaultOptions(), &seqRand{values: []int{0}})
	assert.Equal(t, 201, low.Predict(nil, database.Digit1, time.Monday))

	high := NewUniformPredictor(DefaultOptions(), &seqRand{values: []int{199}})
	assert.Equal(t, 400, high.Predict(nil, database.Digit1, time.Monday))

	random := NewUniformPredictor(DefaultOptions(), NewRandSource(7))
	for i := 0; i < 500; i++ {
		v := random.Predict(nil, database.Digit2, time.Friday)
		assert.True(t, v >= 201 && v <= 400, "got %d", v)
	}
}

func TestUniformPredictor_PicksFromPool(t *testing.T) {
	records := history(100, 100, 200)
	want := BuildCandidatePool(records, database.Digit1, time.Monday, DefaultOptions()).Values

	p := NewUniformPredictor(DefaultOptions(), &seqRand{values: []int{2}})
	assert.Equal(t, want[2], p.Predict(records, database.Digit1, time.Monday))

	random := NewUniformPredictor(DefaultOptions(), NewRandSource(99))
	for i := 0; i < 200; i++ {
		assert.Contains(t, want, random.Predict(records, database.Digit1, time.Monday))
	}
}

func TestUniformPredictor_EmptyPoolFallsBack(t *testing.T) {
	opts := DefaultOptions()
	opts.MinDigit, opts.MaxDigit = 0, 100
	opts.FallbackMin, opts.FallbackMax = 10, 20

	p := NewUniformPredictor(opts, &seqRand{values: []int{5}})
	assert.Equal(t, 15, p.Predict(history(900, 950), database.Digit1, time.Monday))
}

func TestWeightedPredictor_SelectsStrategyByWeight(t *testing.T) {
	records := history(100, 100, 200)

	// 30 落入 overdue（hot 占 0-29），第二次抽取选择 overdue 的第 0 个值
	p := NewWeightedPredictor(DefaultOptions(), &seqRand{values: []int{30, 0}})
	assert.Equal(t, 200, p.Predict(records, database.Digit1, time.Monday))

	// 99 落入 monthly
	p = NewWeightedPredictor(DefaultOptions(), &seqRand{values: []int{99, 0}})
	assert.Equal(t, 133, p.Predict(records, database.Digit1, time.Monday))
}

func TestWeightedPredictor_EmptyHistory(t *testing.T) {
	p := NewWeightedPredictor(DefaultOptions(), &seqRand{values: []int{10}})
	assert.Equal(t, 211, p.Predict(nil, database.Digit1, time.Monday))
}

func TestPredictorManager(t *testing.T) {
	pm := NewPredictorManager(DefaultOptions(), NewRandSource(1))

	assert.Equal(t, "uniform", pm.GetCurrentPredictor().GetName())
	assert.Equal(t, []string{"uniform", "weighted"}, pm.GetAvailablePredictors())

	require.NoError(t, pm.SetCurrentPredictor("weighted"))
	assert.Equal(t, "weighted", pm.GetCurrentPredictor().GetName())

	assert.Error(t, pm.SetCurrentPredictor("neural"))
	assert.Equal(t, "weighted", pm.GetCurrentPredictor().GetName())
}
