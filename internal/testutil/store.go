// Package testutil 各包测试共用的内存实现
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"daily-digits/internal/database"
)

// ErrStoreDown 调用 Fail 之后所有操作返回的错误
var ErrStoreDown = errors.New("store unavailable")

// MemoryStore 按日期存储的内存版 daily_digits 表
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]database.DailyRecord
	nextID  int64
	failing bool

	// Now 新增记录的 created_at
	Now func() time.Time
}

// NewMemoryStore 创建空存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]database.DailyRecord),
		Now:     time.Now,
	}
}

// Fail 之后的调用全部返回 ErrStoreDown
func (s *MemoryStore) Fail() {
	s.mu.Lock()
	s.failing = true
	s.mu.Unlock()
}

// Seed 直接写入记录，不做校验
func (s *MemoryStore) Seed(records ...database.DailyRecord) {
	for _, r := range records {
		_, _ = s.UpsertRecord(context.Background(), r.Date, r.Digit1, r.Digit2)
	}
}

// UpsertRecord 按日期插入或覆盖
func (s *MemoryStore) UpsertRecord(_ context.Context, date time.Time, digit1, digit2 int) (*database.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, ErrStoreDown
	}

	key := date.Format(database.DateLayout)
	record, ok := s.records[key]
	if !ok {
		s.nextID++
		day, _ := database.ParseDate(key)
		record = database.DailyRecord{ID: s.nextID, Date: day, CreatedAt: s.Now()}
	}
	record.Digit1 = digit1
	record.Digit2 = digit2
	s.records[key] = record

	out := record
	return &out, nil
}

// GetRecordsSince since 当天及之后的记录，按日期倒序
func (s *MemoryStore) GetRecordsSince(_ context.Context, since time.Time) ([]database.DailyRecord, error) {
	cutoff := since.Format(database.DateLayout)
	return s.sorted(func(r database.DailyRecord) bool {
		return r.Date.Format(database.DateLayout) >= cutoff
	}, -1)
}

// GetAllRecords 全部记录，按日期倒序
func (s *MemoryStore) GetAllRecords(_ context.Context) ([]database.DailyRecord, error) {
	return s.sorted(nil, -1)
}

// GetHistory 最近 limit 条记录
func (s *MemoryStore) GetHistory(_ context.Context, limit int) ([]database.DailyRecord, error) {
	return s.sorted(nil, limit)
}

// CountRecords 记录总数
func (s *MemoryStore) CountRecords(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return 0, ErrStoreDown
	}
	return len(s.records), nil
}

// Ping 调用 Fail 之后返回 ErrStoreDown
func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return ErrStoreDown
	}
	return nil
}

func (s *MemoryStore) sorted(keep func(database.DailyRecord) bool, limit int) ([]database.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, ErrStoreDown
	}

	out := make([]database.DailyRecord, 0, len(s.records))
	for _, r := range s.records {
		if keep == nil || keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
