// Package importer 电子表格历史数据导入与样例模板
package importer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"daily-digits/internal/database"
	"daily-digits/internal/logger"
	"daily-digits/internal/metrics"

	"github.com/xuri/excelize/v2"
)

// 行处理结果，同时作为 import_rows_total 的 outcome 标签
const (
	OutcomeImported = "imported"
	OutcomeSkipped  = "skipped"
	OutcomeError    = "error"
)

// ErrMissingColumns 表头中找不到 Date/Digit1/Digit2
var ErrMissingColumns = errors.New("sheet must have Date, Digit1 and Digit2 columns")

// stringDateLayouts 字符串日期依次尝试的格式
var stringDateLayouts = []string{
	database.DateLayout,
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"2006/1/2",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
}

// Upserter 导入需要的写操作
type Upserter interface {
	UpsertRecord(ctx context.Context, date time.Time, digit1, digit2 int) (*database.DailyRecord, error)
}

// Summary 导入统计
type Summary struct {
	Total    int `json:"total"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

// Importer 电子表格导入器
type Importer struct {
	store    Upserter
	minDigit int
	maxDigit int
	metrics  *metrics.Manager
}

// NewImporter 创建导入器，m 可以为 nil
func NewImporter(store Upserter, minDigit, maxDigit int, m *metrics.Manager) *Importer {
	return &Importer{
		store:    store,
		minDigit: minDigit,
		maxDigit: maxDigit,
		metrics:  m,
	}
}

// Import 读取工作簿第一个工作表并逐行写入
func (im *Importer) Import(ctx context.Context, path string) (*Summary, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	logger.Infof("Reading sheet %q from %s", sheets[0], path)
	return im.ImportRows(ctx, rows)
}

// ImportRows 第一行为表头，其余为数据行；单行失败只计数，不中断
func (im *Importer) ImportRows(ctx context.Context, rows [][]string) (*Summary, error) {
	summary := &Summary{}
	if len(rows) == 0 {
		logger.Infof("No data to import")
		return summary, nil
	}

	cols, err := locateColumns(rows[0])
	if err != nil {
		return nil, err
	}

	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		summary.Total++
		line := i + 2

		date, d1, d2, reason := im.parseRow(row, cols)
		if reason != "" {
			logger.Warnf("Skipping row %d: %s", line, reason)
			summary.Skipped++
			im.metrics.RecordImportRow(OutcomeSkipped)
			continue
		}

		if _, err := im.store.UpsertRecord(ctx, date, d1, d2); err != nil {
			logger.Errorf("Error importing row %d (%s): %v", line, date.Format(database.DateLayout), err)
			summary.Errors++
			im.metrics.RecordImportRow(OutcomeError)
			continue
		}

		logger.Debugf("Imported: %s - Digit1: %d, Digit2: %d", date.Format(database.DateLayout), d1, d2)
		summary.Imported++
		im.metrics.RecordImportRow(OutcomeImported)
	}

	logger.Infof("Import finished: total=%d imported=%d skipped=%d errors=%d",
		summary.Total, summary.Imported, summary.Skipped, summary.Errors)
	return summary, nil
}

// parseRow 返回非空 reason 表示该行应跳过
func (im *Importer) parseRow(row []string, cols columns) (time.Time, int, int, string) {
	rawDate := cell(row, cols.date)
	raw1 := cell(row, cols.digit1)
	raw2 := cell(row, cols.digit2)

	if rawDate == "" || raw1 == "" || raw2 == "" {
		return time.Time{}, 0, 0, fmt.Sprintf("missing data - Date: %q, Digit1: %q, Digit2: %q", rawDate, raw1, raw2)
	}

	date, err := ParseDateCell(rawDate)
	if err != nil {
		return time.Time{}, 0, 0, fmt.Sprintf("invalid date format - %s", rawDate)
	}

	d1, ok1 := parseIntPrefix(raw1)
	d2, ok2 := parseIntPrefix(raw2)
	if !ok1 || !ok2 || d1 < im.minDigit || d1 > im.maxDigit || d2 < im.minDigit || d2 > im.maxDigit {
		return time.Time{}, 0, 0, fmt.Sprintf("invalid digits - Digit1: %s, Digit2: %s", raw1, raw2)
	}

	return date, d1, d2, ""
}

type columns struct {
	date, digit1, digit2 int
}

// locateColumns 表头匹配忽略大小写、空格和下划线
func locateColumns(header []string) (columns, error) {
	cols := columns{date: -1, digit1: -1, digit2: -1}
	for i, name := range header {
		switch normalizeHeader(name) {
		case "date":
			if cols.date < 0 {
				cols.date = i
			}
		case "digit1":
			if cols.digit1 < 0 {
				cols.digit1 = i
			}
		case "digit2":
			if cols.digit2 < 0 {
				cols.digit2 = i
			}
		}
	}
	if cols.date < 0 || cols.digit1 < 0 || cols.digit2 < 0 {
		return cols, ErrMissingColumns
	}
	return cols, nil
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
}

// ParseDateCell 解析日期单元格：数值按 1900 日期系统的序列号处理，否则按字符串格式解析
func ParseDateCell(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), nil
	}

	for _, layout := range stringDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

// parseIntPrefix 读取开头的整数部分，"45.7" 为 45，"12abc" 为 12
func parseIntPrefix(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
