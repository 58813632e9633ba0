package predictor

import (
	"fmt"
	"sort"
	"time"

	"daily-digits/internal/database"
)

// Predictor 预测算法接口
type Predictor interface {
	// Predict 根据倒序历史数据预测 field 列的下一个值
	Predict(history []database.DailyRecord, field database.DigitField, weekday time.Weekday) int

	// GetName 获取算法名称
	GetName() string

	// GetVersion 获取算法版本
	GetVersion() string
}

// PredictorManager 预测器管理器
type PredictorManager struct {
	predictors map[string]Predictor
	current    Predictor
}

// NewPredictorManager 创建预测器管理器，注册 uniform 与 weighted 两种算法，默认使用 uniform
func NewPredictorManager(opts Options, rng RandSource) *PredictorManager {
	manager := &PredictorManager{
		predictors: make(map[string]Predictor),
	}

	uniform := NewUniformPredictor(opts, rng)
	manager.RegisterPredictor(uniform)
	manager.RegisterPredictor(NewWeightedPredictor(opts, rng))
	manager.current = uniform

	return manager
}

// RegisterPredictor 注册预测器
func (pm *PredictorManager) RegisterPredictor(predictor Predictor) {
	pm.predictors[predictor.GetName()] = predictor
}

// SetCurrentPredictor 设置当前预测器
func (pm *PredictorManager) SetCurrentPredictor(name string) error {
	predictor, exists := pm.predictors[name]
	if !exists {
		return fmt.Errorf("predictor not found: %s", name)
	}
	pm.current = predictor
	return nil
}

// GetCurrentPredictor 获取当前预测器
func (pm *PredictorManager) GetCurrentPredictor() Predictor {
	return pm.current
}

// GetAvailablePredictors 获取可用的预测器列表
func (pm *PredictorManager) GetAvailablePredictors() []string {
	names := make([]string, 0, len(pm.predictors))
	for name := range pm.predictors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Predict 使用当前预测器进行预测
func (pm *PredictorManager) Predict(history []database.DailyRecord, field database.DigitField, weekday time.Weekday) int {
	return pm.current.Predict(history, field, weekday)
}
