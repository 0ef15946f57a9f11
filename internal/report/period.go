package report

import (
	"fmt"
	"time"
)

// Period 报表月份
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod 校验并构造报表月份：month ∈ [1,12]，year 为四位年份
func NewPeriod(month, year int) (Period, error) {
	p := Period{Year: year, Month: time.Month(month)}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate 校验月份与年份范围
func (p Period) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return fmt.Errorf("%w: month=%d", ErrInvalidPeriod, int(p.Month))
	}
	if p.Year < 1000 || p.Year > 9999 {
		return fmt.Errorf("%w: year=%d", ErrInvalidPeriod, p.Year)
	}
	return nil
}

// First 当月第一天（UTC 零点）
func (p Period) First() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Range 返回半开区间 [当月第一天, 下月第一天)
func (p Period) Range() (from, to time.Time) {
	from = p.First()
	return from, from.AddDate(0, 1, 0)
}

// DaysInMonth 当月天数
func (p Period) DaysInMonth() int {
	return p.First().AddDate(0, 1, -1).Day()
}

// Date 当月第 day 天
func (p Period) Date(day int) time.Time {
	return time.Date(p.Year, p.Month, day, 0, 0, 0, 0, time.UTC)
}

// DateKey 当月第 day 天的 DD.MM.YYYY 键
func (p Period) DateKey(day int) string {
	return fmt.Sprintf("%02d.%02d.%04d", day, int(p.Month), p.Year)
}

// Contains 日期 t 是否落在该月
func (p Period) Contains(t time.Time) bool {
	y, m, _ := t.Date()
	return y == p.Year && m == p.Month
}

// IsBusinessDay 第 day 天是否为工作日（非周六、周日）
func (p Period) IsBusinessDay(day int) bool {
	switch p.Date(day).Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// BusinessDays 当月全部工作日（升序）
func (p Period) BusinessDays() []int {
	n := p.DaysInMonth()
	days := make([]int, 0, n)
	for d := 1; d <= n; d++ {
		if p.IsBusinessDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// Label 表头展示文本 "MM / YYYY"
func (p Period) Label() string {
	return fmt.Sprintf("%02d / %04d", int(p.Month), p.Year)
}
