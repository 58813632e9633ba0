// Package analyzer 对全部历史记录做离线模式分析，结果只用于控制台报告，不影响预测。
package analyzer

import (
	"sort"
	"time"

	"daily-digits/internal/database"
	"daily-digits/internal/stats"
)

const (
	topN              = 10
	overdueN          = 10
	consistentDaysN   = 5
	varianceThreshold = 5000
	trendMonths       = 12
	monthLayout       = "2006-01"
)

// FrequencyEntry 取值、次数及占记录数的百分比
type FrequencyEntry struct {
	Value   int
	Count   int
	Percent float64
}

// FieldReport 单个数字列的频次与遗漏
type FieldReport struct {
	Field   database.DigitField
	Top     []FrequencyEntry
	Cold    []stats.ValueCount
	Overdue []stats.Gap
}

// WeekdayStat 星期几的均值
type WeekdayStat struct {
	Weekday time.Weekday
	Avg1    float64
	Avg2    float64
	Count   int
}

// DayOfMonthStat 每月第几天的均值与 Digit1 方差
type DayOfMonthStat struct {
	Day      int
	Avg1     float64
	Avg2     float64
	Variance float64
	Count    int
}

// SequentialStat 相邻两天的差值与重复
type SequentialStat struct {
	AvgDiff1   float64
	AvgDiff2   float64
	Repeats1   int
	Repeats2   int
	RepeatPct1 float64
	RepeatPct2 float64
}

// RangeBucket 区间计数，两个数字列合并统计
type RangeBucket struct {
	Label   string
	Low     int
	High    int
	Count   int
	Percent float64
}

// SumStat Digit1+Digit2 的分布
type SumStat struct {
	Avg    float64
	Min    int
	Max    int
	Median float64
}

// MonthStat 月度均值
type MonthStat struct {
	Month string
	Avg1  float64
	Avg2  float64
}

// Report 八项分析结果
type Report struct {
	Records    int
	From       time.Time
	To         time.Time
	Fields     []FieldReport
	Weekdays   []WeekdayStat
	Consistent []DayOfMonthStat
	Sequential SequentialStat
	Ranges     []RangeBucket
	Sums       SumStat
	Monthly    []MonthStat
}

// Empty 没有任何记录
func (r *Report) Empty() bool {
	return r.Records == 0
}

// Analyze 分析按日期倒序排列的全部记录
func Analyze(records []database.DailyRecord) *Report {
	report := &Report{Records: len(records)}
	if len(records) == 0 {
		return report
	}

	report.To = records[0].Date
	report.From = records[len(records)-1].Date

	for _, field := range database.Fields {
		report.Fields = append(report.Fields, analyzeField(records, field))
	}
	report.Weekdays = analyzeWeekdays(records)
	report.Consistent = analyzeDaysOfMonth(records)
	report.Sequential = analyzeSequence(records)
	report.Ranges = analyzeRanges(records)
	report.Sums = analyzeSums(records)
	report.Monthly = analyzeMonths(records)
	return report
}

func analyzeField(records []database.DailyRecord, field database.DigitField) FieldReport {
	values := stats.Values(records, field)
	min, max := bounds(values)
	ranked := stats.NewFrequencyTable(records, field, min, max).Ranked()

	fr := FieldReport{Field: field, Overdue: stats.Overdue(records, field, overdueN)}
	for i, vc := range ranked {
		if i == topN {
			break
		}
		fr.Top = append(fr.Top, FrequencyEntry{
			Value:   vc.Value,
			Count:   vc.Count,
			Percent: percent(vc.Count, len(records)),
		})
	}
	for i := len(ranked) - 1; i >= 0 && len(fr.Cold) < topN; i-- {
		fr.Cold = append(fr.Cold, ranked[i])
	}
	return fr
}

func analyzeWeekdays(records []database.DailyRecord) []WeekdayStat {
	var buckets [7][]database.DailyRecord
	for _, r := range records {
		wd := r.Date.Weekday()
		buckets[wd] = append(buckets[wd], r)
	}

	var out []WeekdayStat
	for wd, group := range buckets {
		if len(group) == 0 {
			continue
		}
		out = append(out, WeekdayStat{
			Weekday: time.Weekday(wd),
			Avg1:    stats.Mean(stats.Values(group, database.Digit1)),
			Avg2:    stats.Mean(stats.Values(group, database.Digit2)),
			Count:   len(group),
		})
	}
	return out
}

// analyzeDaysOfMonth Digit1 方差低于阈值的日子，方差升序取前 5
func analyzeDaysOfMonth(records []database.DailyRecord) []DayOfMonthStat {
	groups := make(map[int][]database.DailyRecord)
	for _, r := range records {
		groups[r.Date.Day()] = append(groups[r.Date.Day()], r)
	}

	var out []DayOfMonthStat
	for day, group := range groups {
		d1 := stats.Values(group, database.Digit1)
		variance := stats.Variance(d1)
		if variance >= varianceThreshold {
			continue
		}
		out = append(out, DayOfMonthStat{
			Day:      day,
			Avg1:     stats.Mean(d1),
			Avg2:     stats.Mean(stats.Values(group, database.Digit2)),
			Variance: variance,
			Count:    len(group),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Variance != out[j].Variance {
			return out[i].Variance < out[j].Variance
		}
		return out[i].Day < out[j].Day
	})
	if len(out) > consistentDaysN {
		out = out[:consistentDaysN]
	}
	return out
}

// analyzeSequence 差值为 较新 - 较旧；重复百分比以记录总数为分母
func analyzeSequence(records []database.DailyRecord) SequentialStat {
	var s SequentialStat
	pairs := len(records) - 1
	if pairs < 1 {
		return s
	}

	sum1, sum2 := 0, 0
	for i := 0; i < pairs; i++ {
		cur, prev := records[i], records[i+1]
		sum1 += cur.Digit1 - prev.Digit1
		sum2 += cur.Digit2 - prev.Digit2
		if cur.Digit1 == prev.Digit1 {
			s.Repeats1++
		}
		if cur.Digit2 == prev.Digit2 {
			s.Repeats2++
		}
	}

	s.AvgDiff1 = float64(sum1) / float64(pairs)
	s.AvgDiff2 = float64(sum2) / float64(pairs)
	s.RepeatPct1 = percent(s.Repeats1, len(records))
	s.RepeatPct2 = percent(s.Repeats2, len(records))
	return s
}

func analyzeRanges(records []database.DailyRecord) []RangeBucket {
	buckets := []RangeBucket{
		{Label: "0-200", Low: 0, High: 200},
		{Label: "201-400", Low: 201, High: 400},
		{Label: "401-600", Low: 401, High: 600},
		{Label: "601-800", Low: 601, High: 800},
		{Label: "801-1000", Low: 801, High: 1000},
	}

	for _, r := range records {
		for _, v := range []int{r.Digit1, r.Digit2} {
			idx := len(buckets) - 1
			for i, b := range buckets {
				if v <= b.High {
					idx = i
					break
				}
			}
			buckets[idx].Count++
		}
	}

	for i := range buckets {
		buckets[i].Percent = percent(buckets[i].Count, len(records)*2)
	}
	return buckets
}

func analyzeSums(records []database.DailyRecord) SumStat {
	sums := make([]int, len(records))
	for i, r := range records {
		sums[i] = r.Digit1 + r.Digit2
	}
	min, max := bounds(sums)
	return SumStat{
		Avg:    stats.Mean(sums),
		Min:    min,
		Max:    max,
		Median: stats.Median(sums),
	}
}

// analyzeMonths 按月份升序，只保留最近 12 个月
func analyzeMonths(records []database.DailyRecord) []MonthStat {
	groups := make(map[string][]database.DailyRecord)
	for _, r := range records {
		key := r.Date.Format(monthLayout)
		groups[key] = append(groups[key], r)
	}

	months := make([]string, 0, len(groups))
	for m := range groups {
		months = append(months, m)
	}
	sort.Strings(months)
	if len(months) > trendMonths {
		months = months[len(months)-trendMonths:]
	}

	out := make([]MonthStat, 0, len(months))
	for _, m := range months {
		group := groups[m]
		out = append(out, MonthStat{
			Month: m,
			Avg1:  stats.Mean(stats.Values(group, database.Digit1)),
			Avg2:  stats.Mean(stats.Values(group, database.Digit2)),
		})
	}
	return out
}

func bounds(values []int) (int, int) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
