package predictor

import (
	"time"

	"daily-digits/internal/database"
	"daily-digits/internal/logger"
)

// generator 两种预测器共用的参数与随机源
type generator struct {
	opts Options
	rng  RandSource
}

// fallback 无历史数据或候选池为空时，在回退区间内均匀随机
func (g *generator) fallback() int {
	return g.opts.FallbackMin + g.rng.Intn(g.opts.FallbackMax-g.opts.FallbackMin+1)
}

// UniformPredictor 在候选并集中均匀抽取一个值
type UniformPredictor struct {
	generator
}

// NewUniformPredictor 创建均匀抽取预测器
func NewUniformPredictor(opts Options, rng RandSource) *UniformPredictor {
	return &UniformPredictor{generator{opts: opts, rng: rng}}
}

// GetName 获取算法名称
func (up *UniformPredictor) GetName() string {
	return "uniform"
}

// GetVersion 获取算法版本
func (up *UniformPredictor) GetVersion() string {
	return "v1.0"
}

// Predict 为 field 列预测一个值
func (up *UniformPredictor) Predict(history []database.DailyRecord, field database.DigitField, weekday time.Weekday) int {
	if len(history) == 0 {
		return up.fallback()
	}

	pool := BuildCandidatePool(history, field, weekday, up.opts)
	if pool.Empty() {
		logger.Debugf("Empty candidate pool for %s, using fallback range", field)
		return up.fallback()
	}

	value := pool.Values[up.rng.Intn(len(pool.Values))]
	logger.Debugf("Predicted %s=%d from %d candidates", field, value, len(pool.Values))
	return value
}

// WeightedPredictor 先按权重选择来源，再在该来源贡献的值中均匀抽取
type WeightedPredictor struct {
	generator
}

// NewWeightedPredictor 创建按来源加权的预测器
func NewWeightedPredictor(opts Options, rng RandSource) *WeightedPredictor {
	return &WeightedPredictor{generator{opts: opts, rng: rng}}
}

// GetName 获取算法名称
func (wp *WeightedPredictor) GetName() string {
	return "weighted"
}

// GetVersion 获取算法版本
func (wp *WeightedPredictor) GetVersion() string {
	return "v1.0"
}

// Predict 为 field 列预测一个值，只在有贡献的来源之间按权重分配
func (wp *WeightedPredictor) Predict(history []database.DailyRecord, field database.DigitField, weekday time.Weekday) int {
	if len(history) == 0 {
		return wp.fallback()
	}

	pool := BuildCandidatePool(history, field, weekday, wp.opts)

	total := 0
	for _, c := range pool.Contributions {
		if len(c.Values) > 0 {
			total += c.Weight
		}
	}
	if total == 0 {
		return wp.fallback()
	}

	r := wp.rng.Intn(total)
	for _, c := range pool.Contributions {
		if len(c.Values) == 0 {
			continue
		}
		if r < c.Weight {
			value := c.Values[wp.rng.Intn(len(c.Values))]
			logger.Debugf("Predicted %s=%d via %s", field, value, c.Strategy)
			return value
		}
		r -= c.Weight
	}

	return wp.fallback()
}
