package worktime

import (
	"testing"
	"time"

	"github.com/kintai-app/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundPunch(t *testing.T) {
	tests := []struct {
		minute int
		want   string
	}{
		{0, "09:00"},
		{7, "09:00"},
		{8, "09:15"},
		{22, "09:15"},
		{23, "09:30"},
		{37, "09:30"},
		{38, "09:45"},
		{52, "09:45"},
		{53, "10:00"},
		{59, "10:00"},
	}
	for _, tt := range tests {
		in := time.Date(2025, 7, 8, 9, tt.minute, 41, 0, JST)
		got := RoundPunch(in).Format("15:04")
		assert.Equal(t, tt.want, got, "minute %d", tt.minute)
	}
}

func TestRoundPunchMidnightRollover(t *testing.T) {
	in := time.Date(2025, 7, 8, 23, 55, 0, 0, JST)
	got := RoundPunch(in)
	assert.Equal(t, "00:00", got.Format("15:04"))
	assert.Equal(t, 9, got.Day())
}

func TestParseClock(t *testing.T) {
	m, ok := ParseClock("09:30")
	require.True(t, ok)
	assert.Equal(t, 570, m)

	_, ok = ParseClock("930")
	assert.False(t, ok)
	_, ok = ParseClock("aa:bb")
	assert.False(t, ok)
}

func TestBreakMinutes(t *testing.T) {
	assert.Equal(t, 60, BreakMinutes(""))
	assert.Equal(t, 60, BreakMinutes("one hour"))
	assert.Equal(t, 90, BreakMinutes("1.5"))
	assert.Equal(t, 30, BreakMinutes("0.5"))
	assert.Equal(t, 0, BreakMinutes("0"))
}

func TestWorkedMinutes(t *testing.T) {
	min, ok := WorkedMinutes(types.DayRecord{CheckIn: "09:00", CheckOut: "18:00"})
	require.True(t, ok)
	assert.Equal(t, 480, min, "default one hour break applies")

	min, ok = WorkedMinutes(types.DayRecord{CheckIn: "09:00", CheckOut: "17:30", BreakTime: "0.5"})
	require.True(t, ok)
	assert.Equal(t, 480, min)

	_, ok = WorkedMinutes(types.DayRecord{CheckIn: "09:00"})
	assert.False(t, ok, "missing check_out")

	_, ok = WorkedMinutes(types.DayRecord{CheckIn: "09:00", CheckOut: "09:30"})
	assert.False(t, ok, "negative result renders blank")

	_, ok = WorkedMinutes(types.DayRecord{CheckIn: "morning", CheckOut: "18:00"})
	assert.False(t, ok)
}

func TestMonthDays(t *testing.T) {
	days := MonthDays(2025, 2)
	require.Len(t, days, 28)
	assert.Equal(t, "2025-02-01", days[0].Format("2006-01-02"))
	assert.Equal(t, "2025-02-28", days[27].Format("2006-01-02"))

	days = MonthDays(2024, 2)
	assert.Len(t, days, 29)

	days = MonthDays(2025, 12)
	require.Len(t, days, 31)
	assert.Equal(t, "2025-12-31", days[30].Format("2006-01-02"))
}

func TestMonthTotals(t *testing.T) {
	data := types.UserAttendance{
		"2025-07-01": {CheckIn: "09:00", CheckOut: "18:00", TravelCost: "500"},
		"2025-07-02": {CheckIn: "10:00", CheckOut: "19:30", BreakTime: "0.5", TravelCost: "250.5"},
		"2025-07-03": {CheckIn: "09:00", TravelCost: "club pass"},
		"2025-07-04": {Notes: "vacation"},
	}

	worked, travel := MonthTotals(data, MonthDays(2025, 7))
	assert.Equal(t, 480+540, worked)
	assert.InDelta(t, 750.5, travel, 1e-9)
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "8.00", FormatHours(480))
	assert.Equal(t, "7.75", FormatHours(465))
	assert.Equal(t, "0.00", FormatHours(0))
}
