package predictor

import (
	"time"

	"daily-digits/internal/config"
	"daily-digits/internal/database"
	"daily-digits/internal/stats"
)

// Strategy 候选来源
type Strategy string

const (
	StrategyHot       Strategy = "hot"
	StrategyOverdue   Strategy = "overdue"
	StrategyRecent    Strategy = "recent"
	StrategyDayOfWeek Strategy = "day_of_week"
	StrategyMonthly   Strategy = "monthly"
)

// strategyWeights 各来源的权重（百分比），仅 WeightedPredictor 使用
var strategyWeights = map[Strategy]int{
	StrategyHot:       30,
	StrategyOverdue:   25,
	StrategyRecent:    20,
	StrategyDayOfWeek: 15,
	StrategyMonthly:   10,
}

// Options 候选生成参数
type Options struct {
	MinDigit        int
	MaxDigit        int
	FallbackMin     int
	FallbackMax     int
	HotLimit        int
	OverdueLimit    int
	OverdueRankSize int
	RecentWindow    int
	RecentSpread    int
	DaySpread       int
}

// DefaultOptions 默认参数：0-1000，空数据时在 201-400 内随机
func DefaultOptions() Options {
	return Options{
		MinDigit:        0,
		MaxDigit:        1000,
		FallbackMin:     201,
		FallbackMax:     400,
		HotLimit:        3,
		OverdueLimit:    5,
		OverdueRankSize: 20,
		RecentWindow:    30,
		RecentSpread:    10,
		DaySpread:       15,
	}
}

// OptionsFromConfig 由配置生成参数，未配置的项保持默认
func OptionsFromConfig(cfg config.Prediction) Options {
	opts := DefaultOptions()
	opts.MinDigit = cfg.MinDigit
	opts.MaxDigit = cfg.MaxDigit
	opts.FallbackMin = cfg.FallbackMin
	opts.FallbackMax = cfg.FallbackMax
	if cfg.RecentWindow > 0 {
		opts.RecentWindow = cfg.RecentWindow
	}
	return opts
}

func (o Options) inRange(v int) bool {
	return v >= o.MinDigit && v <= o.MaxDigit
}

// Contribution 单个来源贡献的候选值（已过滤到有效范围）
type Contribution struct {
	Strategy Strategy
	Weight   int
	Values   []int
}

// CandidatePool 候选池
type CandidatePool struct {
	Contributions []Contribution
	// Values 各来源候选值的并集，去重并保持首次出现顺序
	Values []int
}

// BuildCandidatePool 根据历史数据为 field 列构建候选池。history 为空时返回空池。
func BuildCandidatePool(history []database.DailyRecord, field database.DigitField, weekday time.Weekday, opts Options) *CandidatePool {
	pool := &CandidatePool{}
	if len(history) == 0 {
		return pool
	}

	ft := stats.NewFrequencyTable(history, field, opts.MinDigit, opts.MaxDigit)

	// 热号：出现次数最多的取值
	hot := ft.HotSet()
	if len(hot) > opts.HotLimit {
		hot = hot[:opts.HotLimit]
	}
	pool.add(StrategyHot, hot, opts)

	// 冷号：最久未出现的取值
	var overdue []int
	for i, gap := range stats.Overdue(history, field, opts.OverdueRankSize) {
		if i >= opts.OverdueLimit {
			break
		}
		overdue = append(overdue, gap.Value)
	}
	pool.add(StrategyOverdue, overdue, opts)

	recent := stats.RecentAverage(history, field, opts.RecentWindow)
	pool.add(StrategyRecent, around(stats.Round(recent), opts.RecentSpread, opts), opts)

	dayAvg := stats.DayOfWeekAverage(history, field, weekday, opts.RecentWindow)
	pool.add(StrategyDayOfWeek, around(stats.Round(dayAvg), opts.DaySpread, opts), opts)

	monthly := stats.MonthlyAverage(history, field, opts.RecentWindow)
	pool.add(StrategyMonthly, []int{stats.Round(monthly)}, opts)

	return pool
}

// around 中心值及其上下 spread 的值，只保留落在范围内的；中心值越界时为空
func around(center, spread int, opts Options) []int {
	if !opts.inRange(center) {
		return nil
	}
	values := []int{center}
	if opts.inRange(center - spread) {
		values = append(values, center-spread)
	}
	if opts.inRange(center + spread) {
		values = append(values, center+spread)
	}
	return values
}

func (p *CandidatePool) add(strategy Strategy, values []int, opts Options) {
	var valid []int
	for _, v := range values {
		if opts.inRange(v) {
			valid = append(valid, v)
		}
	}

	p.Contributions = append(p.Contributions, Contribution{
		Strategy: strategy,
		Weight:   strategyWeights[strategy],
		Values:   valid,
	})

	for _, v := range valid {
		if !p.Contains(v) {
			p.Values = append(p.Values, v)
		}
	}
}

// Contains 候选池中是否包含 v
func (p *CandidatePool) Contains(v int) bool {
	for _, existing := range p.Values {
		if existing == v {
			return true
		}
	}
	return false
}

// Empty 候选池是否为空
func (p *CandidatePool) Empty() bool {
	return len(p.Values) == 0
}
