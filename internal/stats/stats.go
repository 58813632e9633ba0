// Package stats 对按日期倒序排列的历史记录做描述性统计，全部为纯函数。
package stats

import (
	"math"
	"sort"
	"time"

	"daily-digits/internal/database"
)

// FrequencyTable 数字取值 [Min, Max] 上的出现次数，稠密存储
type FrequencyTable struct {
	Min    int
	Max    int
	counts []int
}

// NewFrequencyTable 统计 records 中 field 列各取值出现次数，超出范围的值不计入
func NewFrequencyTable(records []database.DailyRecord, field database.DigitField, min, max int) *FrequencyTable {
	ft := &FrequencyTable{Min: min, Max: max, counts: make([]int, max-min+1)}
	for _, r := range records {
		v := field.Of(r)
		if v >= min && v <= max {
			ft.counts[v-min]++
		}
	}
	return ft
}

// Count 取值 v 的出现次数
func (ft *FrequencyTable) Count(v int) int {
	if v < ft.Min || v > ft.Max {
		return 0
	}
	return ft.counts[v-ft.Min]
}

// Total 全部计数之和
func (ft *FrequencyTable) Total() int {
	total := 0
	for _, c := range ft.counts {
		total += c
	}
	return total
}

// HotSet 出现次数最多的全部取值（并列全部返回，升序）；没有任何出现时为空
func (ft *FrequencyTable) HotSet() []int {
	maxFreq := 0
	var hot []int
	for i, c := range ft.counts {
		switch {
		case c > maxFreq:
			maxFreq = c
			hot = []int{ft.Min + i}
		case c == maxFreq && c > 0:
			hot = append(hot, ft.Min+i)
		}
	}
	return hot
}

// ValueCount 取值及其出现次数
type ValueCount struct {
	Value int
	Count int
}

// Ranked 出现过的取值按次数倒序排列，次数相同按取值升序
func (ft *FrequencyTable) Ranked() []ValueCount {
	var ranked []ValueCount
	for i, c := range ft.counts {
		if c > 0 {
			ranked = append(ranked, ValueCount{Value: ft.Min + i, Count: c})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}

// Gap 取值距最近一次出现的记录条数
type Gap struct {
	Value int
	Index int
}

// Overdue 从最新记录向前扫描，记录每个取值首次出现的位置，按位置倒序取前 limit 个。
// 从未出现的取值不参与排名；位置相同按取值升序。
func Overdue(records []database.DailyRecord, field database.DigitField, limit int) []Gap {
	lastSeen := make(map[int]int)
	for idx, r := range records {
		v := field.Of(r)
		if _, ok := lastSeen[v]; !ok {
			lastSeen[v] = idx
		}
	}

	gaps := make([]Gap, 0, len(lastSeen))
	for v, idx := range lastSeen {
		gaps = append(gaps, Gap{Value: v, Index: idx})
	}
	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].Index != gaps[j].Index {
			return gaps[i].Index > gaps[j].Index
		}
		return gaps[i].Value < gaps[j].Value
	})

	if limit >= 0 && len(gaps) > limit {
		gaps = gaps[:limit]
	}
	return gaps
}

// RecentAverage 最近 min(window, n) 条记录的均值；无记录时为 0
func RecentAverage(records []database.DailyRecord, field database.DigitField, window int) float64 {
	if window > len(records) {
		window = len(records)
	}
	return fieldMean(records[:window], field)
}

// DayOfWeekAverage 星期与 weekday 相同的记录均值；没有匹配记录时退回 RecentAverage
func DayOfWeekAverage(records []database.DailyRecord, field database.DigitField, weekday time.Weekday, window int) float64 {
	sum, n := 0, 0
	for _, r := range records {
		if r.Date.Weekday() == weekday {
			sum += field.Of(r)
			n++
		}
	}
	if n == 0 {
		return RecentAverage(records, field, window)
	}
	return float64(sum) / float64(n)
}

// MonthlyAverage 月度均值。沿用最近 window 条记录而不是自然月，结果与 RecentAverage 相同。
func MonthlyAverage(records []database.DailyRecord, field database.DigitField, window int) float64 {
	n := len(records)
	if n == 0 {
		return 0
	}
	sum := 0
	for i := 0; i < n && i < window; i++ {
		sum += field.Of(records[i])
	}
	if window > n {
		window = n
	}
	return float64(sum) / float64(window)
}

func fieldMean(records []database.DailyRecord, field database.DigitField) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0
	for _, r := range records {
		sum += field.Of(r)
	}
	return float64(sum) / float64(len(records))
}

// Values 取出 field 列的全部值，顺序与 records 一致
func Values(records []database.DailyRecord, field database.DigitField) []int {
	values := make([]int, len(records))
	for i, r := range records {
		values[i] = field.Of(r)
	}
	return values
}

// Mean 算术平均；空切片为 0
func Mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// Variance 总体方差
func Variance(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sq float64
	for _, v := range values {
		d := float64(v) - mean
		sq += d * d
	}
	return sq / float64(len(values))
}

// Median 中位数，偶数个取中间两数均值
func Median(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

// Round 四舍五入（.5 向上）
func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}
