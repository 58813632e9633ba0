package service

import (
	"context"
	"fmt"
	"time"

	"daily-digits/internal/cache"
	"daily-digits/internal/config"
	"daily-digits/internal/database"
	"daily-digits/internal/logger"
	"daily-digits/internal/metrics"
	"daily-digits/internal/predictor"
	"daily-digits/internal/stats"
)

// DefaultHistoryLimit GetHistory 未指定或指定非法 limit 时使用的条数
const DefaultHistoryLimit = 100

// RecordStore 预测服务依赖的存储操作，由 *database.MySQLDB 实现
type RecordStore interface {
	GetRecordsSince(ctx context.Context, since time.Time) ([]database.DailyRecord, error)
	GetHistory(ctx context.Context, limit int) ([]database.DailyRecord, error)
	UpsertRecord(ctx context.Context, date time.Time, digit1, digit2 int) (*database.DailyRecord, error)
}

// Insights 预测附带的参考信息
type Insights struct {
	RecentAvg1 *int   `json:"recentAvg1"`
	RecentAvg2 *int   `json:"recentAvg2"`
	DayOfWeek  string `json:"dayOfWeek"`
}

// PredictionResult 预测结果（不落库）
type PredictionResult struct {
	Date       string   `json:"date"`
	Digit1     int      `json:"digit1"`
	Digit2     int      `json:"digit2"`
	DataPoints int      `json:"dataPoints"`
	Insights   Insights `json:"insights"`
	Message    string   `json:"message"`
	Algorithm  string   `json:"algorithm"`
}

// PredictionService 串联存储、统计与候选生成
type PredictionService struct {
	store     RecordStore
	predictor *predictor.PredictorManager
	history   *cache.HistoryCache
	metrics   *metrics.Manager
	cfg       config.Prediction

	// Now 当前时间，测试中可替换
	Now func() time.Time
}

// NewPredictionService 创建预测服务；history 与 m 可以为 nil
func NewPredictionService(store RecordStore, pm *predictor.PredictorManager, history *cache.HistoryCache, m *metrics.Manager, cfg config.Prediction) *PredictionService {
	return &PredictionService{
		store:     store,
		predictor: pm,
		history:   history,
		metrics:   m,
		cfg:       cfg,
		Now:       time.Now,
	}
}

// DigitRange 当前生效的数字范围
func (s *PredictionService) DigitRange() (int, int) {
	return s.cfg.MinDigit, s.cfg.MaxDigit
}

// CacheStats 历史缓存统计，未启用缓存时为 nil
func (s *PredictionService) CacheStats() map[string]interface{} {
	if s.history == nil {
		return nil
	}
	return s.history.GetStats()
}

// GetPredictions 生成今天的预测
func (s *PredictionService) GetPredictions(ctx context.Context) (*PredictionResult, error) {
	today := s.Now()
	since := today.AddDate(0, -s.cfg.HistoryMonths, 0)

	history, err := s.store.GetRecordsSince(ctx, since)
	if err != nil {
		return nil, err
	}

	weekday := today.Weekday()
	current := s.predictor.GetCurrentPredictor()
	digit1 := current.Predict(history, database.Digit1, weekday)
	digit2 := current.Predict(history, database.Digit2, weekday)
	s.metrics.RecordPrediction(current.GetName())

	result := &PredictionResult{
		Date:       today.Format(database.DateLayout),
		Digit1:     digit1,
		Digit2:     digit2,
		DataPoints: len(history),
		Insights: Insights{
			DayOfWeek: weekday.String(),
		},
		Algorithm: current.GetName(),
	}

	if len(history) == 0 {
		result.Message = "No historical data available. Showing intelligent random predictions."
	} else {
		avg1 := stats.Round(stats.RecentAverage(history, database.Digit1, s.cfg.RecentWindow))
		avg2 := stats.Round(stats.RecentAverage(history, database.Digit2, s.cfg.RecentWindow))
		result.Insights.RecentAvg1 = &avg1
		result.Insights.RecentAvg2 = &avg2
		result.Message = fmt.Sprintf("AI predictions based on %d days of data using 5 pattern analysis strategies.", len(history))
	}

	logger.Debugf("Prediction for %s: %d, %d (%d data points)", result.Date, digit1, digit2, len(history))
	return result, nil
}

// SaveResults 校验并写入某天的实际结果，同一天重复提交会覆盖
func (s *PredictionService) SaveResults(ctx context.Context, date string, digit1, digit2 *int) (*database.DailyRecord, error) {
	if date == "" || digit1 == nil || digit2 == nil {
		return nil, &ValidationError{Message: "Date, digit1, and digit2 are required"}
	}

	day, err := database.ParseDate(date)
	if err != nil {
		return nil, &ValidationError{Message: "Invalid date format, expected YYYY-MM-DD"}
	}

	if err := s.ValidateDigits(*digit1, *digit2); err != nil {
		return nil, err
	}

	record, err := s.store.UpsertRecord(ctx, day, *digit1, *digit2)
	if err != nil {
		return nil, err
	}

	if s.history != nil {
		s.history.OnRecordSaved(day)
	}
	s.metrics.RecordResultSaved()

	logger.Infof("Results saved for %s: %d, %d", date, *digit1, *digit2)
	return record, nil
}

// ValidateDigits 检查两个数字是否都在配置范围内（含边界）
func (s *PredictionService) ValidateDigits(digit1, digit2 int) error {
	min, max := s.DigitRange()
	if digit1 < min || digit1 > max || digit2 < min || digit2 > max {
		return &ValidationError{Message: fmt.Sprintf("Digits must be between %d and %d", min, max)}
	}
	return nil
}

// GetHistory 最近 limit 条记录（倒序），limit <= 0 时取 100
func (s *PredictionService) GetHistory(ctx context.Context, limit int) ([]database.DailyRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	if s.history == nil {
		return s.store.GetHistory(ctx, limit)
	}
	return s.history.GetHistory(ctx, limit, s.store.GetHistory)
}
