package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"daily-digits/internal/logger"
)

// MemoryItem 内存缓存项
type MemoryItem struct {
	Value     []byte
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired 检查是否过期
func (item *MemoryItem) IsExpired(now time.Time) bool {
	return now.After(item.ExpiresAt)
}

// MemoryCache 内存缓存实现，值以JSON形式保存，读取时复制到目标对象
type MemoryCache struct {
	mutex   sync.RWMutex
	items   map[string]*MemoryItem
	maxSize int
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryCache 创建新的内存缓存，cleanupInterval 为 0 时不启动后台清理
func NewMemoryCache(maxSize int, cleanupInterval time.Duration) *MemoryCache {
	cache := &MemoryCache{
		items:   make(map[string]*MemoryItem),
		maxSize: maxSize,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go cache.startCleanup(cleanupInterval)
	}

	return cache
}

// Set 设置缓存值
func (m *MemoryCache) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	now := m.now()
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// 检查缓存大小限制
	if _, exists := m.items[key]; !exists && len(m.items) >= m.maxSize {
		m.evictOldestLocked()
	}

	m.items[key] = &MemoryItem{
		Value:     data,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	logger.Debugf("Memory cache set: %s", key)
	return nil
}

// Get 获取缓存值
func (m *MemoryCache) Get(key string, dest interface{}) error {
	m.mutex.RLock()
	item, exists := m.items[key]
	m.mutex.RUnlock()

	if !exists {
		return fmt.Errorf("cache miss: %s", key)
	}
	if item.IsExpired(m.now()) {
		m.Delete(key)
		return fmt.Errorf("cache expired: %s", key)
	}

	if err := json.Unmarshal(item.Value, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	logger.Debugf("Memory cache hit: %s", key)
	return nil
}

// Delete 删除缓存
func (m *MemoryCache) Delete(key string) {
	m.mutex.Lock()
	delete(m.items, key)
	m.mutex.Unlock()
}

// DeletePattern 删除匹配模式的缓存，支持末尾 * 前缀匹配
func (m *MemoryCache) DeletePattern(pattern string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	count := 0
	for key := range m.items {
		if matchPattern(pattern, key) {
			delete(m.items, key)
			count++
		}
	}

	if count > 0 {
		logger.Debugf("Memory cache deleted by pattern: %s, count: %d", pattern, count)
	}
	return count
}

// Size 获取缓存大小
func (m *MemoryCache) Size() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.items)
}

// Stats 获取缓存统计信息
func (m *MemoryCache) Stats() map[string]interface{} {
	now := m.now()
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var validItems, expiredItems int
	for _, item := range m.items {
		if item.IsExpired(now) {
			expiredItems++
		} else {
			validItems++
		}
	}

	return map[string]interface{}{
		"total_size":    len(m.items),
		"valid_items":   validItems,
		"expired_items": expiredItems,
		"max_size":      m.maxSize,
	}
}

// Close 停止后台清理
func (m *MemoryCache) Close() {
	m.once.Do(func() { close(m.stop) })
}

// startCleanup 启动定期清理过期缓存
func (m *MemoryCache) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanupExpired()
		case <-m.stop:
			return
		}
	}
}

// cleanupExpired 清理过期的缓存项
func (m *MemoryCache) cleanupExpired() int {
	now := m.now()
	m.mutex.Lock()
	defer m.mutex.Unlock()

	count := 0
	for key, item := range m.items {
		if item.IsExpired(now) {
			delete(m.items, key)
			count++
		}
	}

	if count > 0 {
		logger.Debugf("Memory cache cleanup: removed %d expired items", count)
	}
	return count
}

// evictOldestLocked 淘汰最旧的缓存项，调用方持有写锁
func (m *MemoryCache) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time

	for key, item := range m.items {
		if oldestKey == "" || item.CreatedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.CreatedAt
		}
	}

	if oldestKey != "" {
		delete(m.items, oldestKey)
		logger.Debugf("Memory cache evicted oldest: %s", oldestKey)
	}
}

// matchPattern 简单的模式匹配：* 匹配全部，末尾 * 匹配前缀，否则精确匹配
func matchPattern(pattern, str string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(str, prefix)
	}
	return pattern == str
}
