package analyzer

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"daily-digits/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// records 从 newest 开始逐日向前，pairs 为 (digit1, digit2)
func records(newest time.Time, pairs ...[2]int) []database.DailyRecord {
	out := make([]database.DailyRecord, len(pairs))
	for i, p := range pairs {
		out[i] = database.DailyRecord{Date: newest.AddDate(0, 0, -i), Digit1: p[0], Digit2: p[1]}
	}
	return out
}

var newest = time.Date(2025, 3, 31, 0, 0, 0, 0, time.Local)

func TestAnalyze_Empty(t *testing.T) {
	report := Analyze(nil)
	assert.True(t, report.Empty())

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, report))
	assert.Contains(t, buf.String(), "No records to analyze")
}

func TestAnalyze_Frequency(t *testing.T) {
	data := records(newest, [2]int{5, 10}, [2]int{5, 20}, [2]int{7, 20}, [2]int{9, 30})
	report := Analyze(data)

	require.Len(t, report.Fields, 2)
	d1 := report.Fields[0]
	assert.Equal(t, database.Digit1, d1.Field)
	require.NotEmpty(t, d1.Top)
	assert.Equal(t, FrequencyEntry{Value: 5, Count: 2, Percent: 50}, d1.Top[0])
	assert.Equal(t, 9, d1.Cold[0].Value)
	assert.Equal(t, 7, d1.Cold[1].Value)
	assert.Equal(t, 5, d1.Cold[2].Value)

	assert.Equal(t, 20, report.Fields[1].Top[0].Value)
	assert.Equal(t, newest, report.To)
	assert.Equal(t, newest.AddDate(0, 0, -3), report.From)
}

func TestAnalyze_Sequential(t *testing.T) {
	// 较新 - 较旧：(10-10) + (10-4) = 6，两对平均 3
	data := records(newest, [2]int{10, 1}, [2]int{10, 1}, [2]int{4, 2})
	s := Analyze(data).Sequential

	assert.InDelta(t, 3.0, s.AvgDiff1, 1e-9)
	assert.InDelta(t, -0.5, s.AvgDiff2, 1e-9)
	assert.Equal(t, 1, s.Repeats1)
	assert.Equal(t, 1, s.Repeats2)
	assert.InDelta(t, 100.0/3, s.RepeatPct1, 1e-9)
}

func TestAnalyze_SingleRecordHasNoSequence(t *testing.T) {
	s := Analyze(records(newest, [2]int{1, 2})).Sequential
	assert.Zero(t, s.AvgDiff1)
	assert.Zero(t, s.Repeats1)
}

func TestAnalyze_RangesPoolBothFields(t *testing.T) {
	data := records(newest, [2]int{200, 201}, [2]int{0, 1000}, [2]int{600, 601})
	ranges := Analyze(data).Ranges

	counts := map[string]int{}
	for _, b := range ranges {
		counts[b.Label] = b.Count
	}
	assert.Equal(t, map[string]int{"0-200": 2, "201-400": 1, "401-600": 1, "601-800": 1, "801-1000": 1}, counts)
	assert.InDelta(t, 100.0*2/6, ranges[0].Percent, 1e-9)
}

func TestAnalyze_RangeBoundaryIsInclusive(t *testing.T) {
	ranges := Analyze(records(newest, [2]int{200, 200}, [2]int{200, 200}, [2]int{200, 200})).Ranges

	assert.Equal(t, "0-200", ranges[0].Label)
	assert.Equal(t, 6, ranges[0].Count)
	assert.InDelta(t, 100.0, ranges[0].Percent, 1e-9)
	for _, b := range ranges[1:] {
		assert.Zero(t, b.Count, b.Label)
	}
}

func TestAnalyze_Sums(t *testing.T) {
	data := records(newest, [2]int{1, 2}, [2]int{10, 20}, [2]int{3, 4}, [2]int{100, 0})
	sums := Analyze(data).Sums

	assert.Equal(t, 3, sums.Min)
	assert.Equal(t, 100, sums.Max)
	assert.InDelta(t, 35.0, sums.Avg, 1e-9)
	assert.InDelta(t, 18.5, sums.Median, 1e-9)

	odd := Analyze(records(newest, [2]int{1, 2}, [2]int{10, 20}, [2]int{3, 4})).Sums
	assert.InDelta(t, 7.0, odd.Median, 1e-9)
}

func TestAnalyze_ConsistentDaysOfMonth(t *testing.T) {
	var data []database.DailyRecord
	// 每月 1 号 Digit1 稳定，15 号波动很大
	for m := 0; m < 4; m++ {
		first := time.Date(2025, time.Month(4-m), 1, 0, 0, 0, 0, time.Local)
		fifteenth := first.AddDate(0, 0, 14)
		data = append(data,
			database.DailyRecord{Date: fifteenth, Digit1: (m % 2) * 900, Digit2: 1},
			database.DailyRecord{Date: first, Digit1: 100 + m, Digit2: 2},
		)
	}
	days := Analyze(data).Consistent

	require.Len(t, days, 1)
	assert.Equal(t, 1, days[0].Day)
	assert.Equal(t, 4, days[0].Count)
	assert.InDelta(t, 101.5, days[0].Avg1, 1e-9)
}

func TestAnalyze_MonthlyKeepsLastTwelve(t *testing.T) {
	var data []database.DailyRecord
	for m := 0; m < 14; m++ {
		data = append(data, database.DailyRecord{
			Date:   time.Date(2025, time.Month(3-m), 10, 0, 0, 0, 0, time.Local),
			Digit1: m,
			Digit2: 2 * m,
		})
	}
	monthly := Analyze(data).Monthly

	require.Len(t, monthly, 12)
	assert.Equal(t, "2024-04", monthly[0].Month)
	assert.Equal(t, "2025-03", monthly[11].Month)
	assert.InDelta(t, 0.0, monthly[11].Avg1, 1e-9)
}

func TestAnalyze_WeekdaysSkipEmptyDays(t *testing.T) {
	// 2025-03-31 星期一，2025-03-30 星期日
	weekdays := Analyze(records(newest, [2]int{10, 20}, [2]int{30, 40})).Weekdays

	require.Len(t, weekdays, 2)
	assert.Equal(t, time.Sunday, weekdays[0].Weekday)
	assert.Equal(t, time.Monday, weekdays[1].Weekday)
	assert.InDelta(t, 10.0, weekdays[1].Avg1, 1e-9)
}

func TestRender_Sections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Analyze(records(newest, [2]int{5, 10}, [2]int{5, 20}))))

	out := buf.String()
	for _, heading := range []string{
		"FREQUENCY DISTRIBUTION ANALYSIS",
		"DAY OF WEEK PATTERN ANALYSIS",
		"DATE PATTERNS (Day of Month)",
		"SEQUENTIAL PATTERN ANALYSIS",
		"GAP ANALYSIS (Overdue Numbers)",
		"RANGE PATTERN ANALYSIS",
		"SUM PATTERN ANALYSIS",
		"MONTHLY TRENDS",
	} {
		assert.True(t, strings.Contains(out, heading), heading)
	}
	assert.Contains(t, out, "Analyzing 2 records from 2025-03-30 to 2025-03-31")
	assert.Contains(t, out, "  5: 2 times (100.0%)")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestRender_PropagatesWriteError(t *testing.T) {
	assert.Error(t, Render(failingWriter{}, Analyze(nil)))
}
