package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestTradingCalendar(t *testing.T) {
	cal := NewTradingCalendar([]TradingCalendarEntry{
		{TradingDate: date(2020, 1, 15), Country: "US"},
		{TradingDate: date(2020, 1, 10), Country: "US"},
		{TradingDate: date(2020, 1, 15).Add(9 * time.Hour), Country: "US"},
		{TradingDate: date(2020, 1, 13), Country: "UK"},
		{Country: "UK"},
	})

	assert.Equal(t, []string{"UK", "US"}, cal.Countries())
	assert.Equal(t, []time.Time{date(2020, 1, 10), date(2020, 1, 15)}, cal.Dates("US"))
	assert.Equal(t, 3, cal.Len())

	tests := []struct {
		name    string
		country string
		from    time.Time
		want    time.Time
		wantOK  bool
	}{
		{name: "exact date", country: "US", from: date(2020, 1, 10), want: date(2020, 1, 10), wantOK: true},
		{name: "next date", country: "US", from: date(2020, 1, 11), want: date(2020, 1, 15), wantOK: true},
		{name: "before first", country: "US", from: date(2019, 6, 1), want: date(2020, 1, 10), wantOK: true},
		{name: "after last", country: "US", from: date(2020, 1, 16), wantOK: false},
		{name: "unknown country", country: "FR", from: date(2020, 1, 1), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cal.NextOnOrAfter(tt.country, tt.from)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 3, DaysBetween(date(2020, 1, 12), date(2020, 1, 15)))
	assert.Equal(t, 0, DaysBetween(date(2020, 1, 12), date(2020, 1, 12).Add(20*time.Hour)))
	assert.Equal(t, -5, DaysBetween(date(2020, 3, 6), date(2020, 3, 1)))
	assert.Equal(t, 366, DaysBetween(date(2020, 1, 1), date(2021, 1, 1)))
}

func TestIndicator(t *testing.T) {
	assert.Equal(t, "1", IndicatorTrue.String())
	assert.Equal(t, "0", IndicatorFalse.String())
	assert.Equal(t, "", IndicatorMissing.String())
	assert.Equal(t, IndicatorTrue, IndicatorOf(true))
	assert.Equal(t, IndicatorFalse, IndicatorOf(false))
}

func TestPrecision_IsPrecise(t *testing.T) {
	assert.True(t, PrecisionDay.IsPrecise())
	assert.True(t, PrecisionMonth.IsPrecise())
	assert.False(t, PrecisionYear.IsPrecise())
	assert.False(t, Precision(3).IsPrecise())
	assert.False(t, PrecisionUnknown.IsPrecise())
}

func TestCompanySet(t *testing.T) {
	set := NewCompanySet("b", "a")
	assert.True(t, set.Contains("a"))
	assert.False(t, set.Contains("c"))
	assert.Equal(t, []string{"a", "b"}, set.Names())
}
