package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daily-digits/internal/config"
	"daily-digits/internal/logger"

	_ "github.com/go-sql-driver/mysql"
)

const recordColumns = `id, date, digit1, digit2, created_at`

// MySQLDB MySQL数据库客户端
type MySQLDB struct {
	db *sql.DB
}

// NewMySQLDB 创建新的MySQL数据库连接
func NewMySQLDB(cfg *config.Database) (*MySQLDB, error) {
	db, err := sql.Open("mysql", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 设置连接池参数
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// 测试连接
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLDB{db: db}, nil
}

// NewWithDB 使用已有连接池创建客户端
func NewWithDB(db *sql.DB) *MySQLDB {
	return &MySQLDB{db: db}
}

// Close 关闭数据库连接
func (m *MySQLDB) Close() error {
	return m.db.Close()
}

// Ping 检查数据库连通性
func (m *MySQLDB) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// UpsertRecord 按日期写入结果，同一日期已存在时覆盖数字
func (m *MySQLDB) UpsertRecord(ctx context.Context, date time.Time, digit1, digit2 int) (*DailyRecord, error) {
	query := `INSERT INTO daily_digits (date, digit1, digit2)
			  VALUES (?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			  digit1 = VALUES(digit1),
			  digit2 = VALUES(digit2)`

	day := date.Format(DateLayout)
	if _, err := m.db.ExecContext(ctx, query, day, digit1, digit2); err != nil {
		return nil, fmt.Errorf("failed to upsert daily record: %w", err)
	}

	record, err := m.GetRecordByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("daily record %s missing after upsert", day)
	}

	logger.Debugf("Saved daily record: %s (%d, %d)", day, digit1, digit2)
	return record, nil
}

// GetRecordByDate 根据日期获取记录，不存在时返回 nil, nil
func (m *MySQLDB) GetRecordByDate(ctx context.Context, date time.Time) (*DailyRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM daily_digits WHERE date = ?`

	var record DailyRecord
	err := m.db.QueryRowContext(ctx, query, date.Format(DateLayout)).Scan(
		&record.ID, &record.Date, &record.Digit1, &record.Digit2, &record.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily record by date: %w", err)
	}

	return &record, nil
}

// GetRecordsSince 获取指定日期（含）之后的记录，按日期倒序
func (m *MySQLDB) GetRecordsSince(ctx context.Context, since time.Time) ([]DailyRecord, error) {
	query := `SELECT ` + recordColumns + `
			  FROM daily_digits
			  WHERE date >= ?
			  ORDER BY date DESC`

	return m.queryRecords(ctx, "records since", query, since.Format(DateLayout))
}

// GetAllRecords 获取全部历史记录，按日期倒序
func (m *MySQLDB) GetAllRecords(ctx context.Context) ([]DailyRecord, error) {
	query := `SELECT ` + recordColumns + `
			  FROM daily_digits
			  ORDER BY date DESC`

	return m.queryRecords(ctx, "all records", query)
}

// GetHistory 获取最近 limit 条记录，按日期倒序
func (m *MySQLDB) GetHistory(ctx context.Context, limit int) ([]DailyRecord, error) {
	query := `SELECT ` + recordColumns + `
			  FROM daily_digits
			  ORDER BY date DESC
			  LIMIT ?`

	return m.queryRecords(ctx, "history", query, limit)
}

// CountRecords 统计记录总数
func (m *MySQLDB) CountRecords(ctx context.Context) (int, error) {
	var count int
	if err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM daily_digits").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count daily records: %w", err)
	}
	return count, nil
}

func (m *MySQLDB) queryRecords(ctx context.Context, what, query string, args ...interface{}) ([]DailyRecord, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	defer rows.Close()

	records := make([]DailyRecord, 0)
	for rows.Next() {
		var record DailyRecord
		if err := rows.Scan(&record.ID, &record.Date, &record.Digit1, &record.Digit2, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan daily record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s rows: %w", what, err)
	}

	return records, nil
}
