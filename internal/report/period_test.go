package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPeriod_Invalid(t *testing.T) {
	cases := []struct {
		name        string
		month, year int
	}{
		{"月份为 0", 0, 2026},
		{"月份为 13", 13, 2026},
		{"年份过小", 1, 999},
		{"年份过大", 1, 10000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPeriod(tc.month, tc.year)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPeriod))
		})
	}
}

func TestPeriod_BusinessDays_ExcludeExactlyWeekends(t *testing.T) {
	for year := 2023; year <= 2028; year++ {
		for month := 1; month <= 12; month++ {
			p, err := NewPeriod(month, year)
			require.NoError(t, err)

			weekends := 0
			for d := p.First(); d.Month() == p.Month; d = d.AddDate(0, 0, 1) {
				if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
					weekends++
				}
			}

			days := p.BusinessDays()
			assert.Len(t, days, p.DaysInMonth()-weekends, "%02d/%d", month, year)
			for _, d := range days {
				wd := p.Date(d).Weekday()
				assert.NotEqual(t, time.Saturday, wd)
				assert.NotEqual(t, time.Sunday, wd)
			}
		}
	}
}

func TestPeriod_February2026(t *testing.T) {
	p, err := NewPeriod(2, 2026)
	require.NoError(t, err)

	assert.Equal(t, 28, p.DaysInMonth())
	assert.Len(t, p.BusinessDays(), 20)
	assert.Equal(t, "02 / 2026", p.Label())
	assert.Equal(t, "05.02.2026", p.DateKey(5))
	assert.False(t, p.IsBusinessDay(1)) // 周日
	assert.True(t, p.IsBusinessDay(2))
}

func TestPeriod_LeapYear(t *testing.T) {
	p, err := NewPeriod(2, 2024)
	require.NoError(t, err)
	assert.Equal(t, 29, p.DaysInMonth())
}

func TestPeriod_RangeAndContains(t *testing.T) {
	p, err := NewPeriod(12, 2025)
	require.NoError(t, err)

	from, to := p.Range()
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), to)

	assert.True(t, p.Contains(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	// 日期 12 不能与月份 12 混淆
	assert.False(t, p.Contains(time.Date(2025, 11, 12, 0, 0, 0, 0, time.UTC)))
}
