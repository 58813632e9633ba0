package cache

import (
	"context"
	"fmt"
	"time"

	"daily-digits/internal/database"
	"daily-digits/internal/logger"
)

// HistoryLoader 缓存未命中时加载历史记录
type HistoryLoader func(ctx context.Context, limit int) ([]database.DailyRecord, error)

// HistoryCache 历史记录查询缓存，按 limit 分键，写入新结果时整体失效
type HistoryCache struct {
	memory *MemoryCache
	ttl    time.Duration
}

// NewHistoryCache 创建历史记录缓存，ttl 为 0 时不缓存
func NewHistoryCache(ttl time.Duration) *HistoryCache {
	return &HistoryCache{
		memory: NewMemoryCache(100, 5*time.Minute),
		ttl:    ttl,
	}
}

// GetHistory 获取最近 limit 条记录，未命中时调用 load 并回填
func (hc *HistoryCache) GetHistory(ctx context.Context, limit int, load HistoryLoader) ([]database.DailyRecord, error) {
	key := fmt.Sprintf("history:%d", limit)

	var records []database.DailyRecord
	if hc.ttl > 0 {
		if err := hc.memory.Get(key, &records); err == nil {
			return records, nil
		}
	}

	records, err := load(ctx, limit)
	if err != nil {
		return nil, err
	}

	if hc.ttl > 0 {
		if err := hc.memory.Set(key, records, hc.ttl); err != nil {
			logger.Warnf("Failed to cache history: %v", err)
		}
	}
	return records, nil
}

// OnRecordSaved 新结果写入后失效全部历史缓存
func (hc *HistoryCache) OnRecordSaved(date time.Time) {
	n := hc.memory.DeletePattern("history:*")
	logger.Debugf("History cache invalidated for %s (%d entries)", date.Format(database.DateLayout), n)
}

// GetStats 获取缓存统计信息
func (hc *HistoryCache) GetStats() map[string]interface{} {
	stats := hc.memory.Stats()
	stats["ttl"] = hc.ttl.String()
	return stats
}

// Close 关闭缓存
func (hc *HistoryCache) Close() {
	hc.memory.Close()
}
