package database

import (
	"encoding/json"
	"time"
)

// DateLayout 日期列的文本格式
const DateLayout = "2006-01-02"

// DailyRecord 每日结果数据模型
type DailyRecord struct {
	ID        int64     `json:"id" db:"id"`
	Date      time.Time `json:"date" db:"date"`
	Digit1    int       `json:"digit1" db:"digit1"`
	Digit2    int       `json:"digit2" db:"digit2"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MarshalJSON 日期按 YYYY-MM-DD 输出
func (r DailyRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        int64     `json:"id"`
		Date      string    `json:"date"`
		Digit1    int       `json:"digit1"`
		Digit2    int       `json:"digit2"`
		CreatedAt time.Time `json:"created_at"`
	}{
		ID:        r.ID,
		Date:      r.Date.Format(DateLayout),
		Digit1:    r.Digit1,
		Digit2:    r.Digit2,
		CreatedAt: r.CreatedAt,
	})
}

// UnmarshalJSON 与 MarshalJSON 对应
func (r *DailyRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        int64     `json:"id"`
		Date      string    `json:"date"`
		Digit1    int       `json:"digit1"`
		Digit2    int       `json:"digit2"`
		CreatedAt time.Time `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	date, err := time.ParseInLocation(DateLayout, raw.Date, time.Local)
	if err != nil {
		return err
	}

	*r = DailyRecord{
		ID:        raw.ID,
		Date:      date,
		Digit1:    raw.Digit1,
		Digit2:    raw.Digit2,
		CreatedAt: raw.CreatedAt,
	}
	return nil
}

// DigitField 选择记录中的数字列
type DigitField int

const (
	Digit1 DigitField = iota + 1
	Digit2
)

// Fields 全部数字列，按列顺序
var Fields = []DigitField{Digit1, Digit2}

// Of 取出记录中对应列的值
func (f DigitField) Of(r DailyRecord) int {
	if f == Digit2 {
		return r.Digit2
	}
	return r.Digit1
}

func (f DigitField) String() string {
	if f == Digit2 {
		return "digit2"
	}
	return "digit1"
}

// Label 报表中使用的列名
func (f DigitField) Label() string {
	if f == Digit2 {
		return "Digit2"
	}
	return "Digit1"
}

// ParseDate 解析 YYYY-MM-DD 日期（本地时区零点）
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}
