// Package worktime holds the clock arithmetic shared by the punch API
// and the report generator: JST "today", 15-minute punch rounding and
// worked-minutes computation.
package worktime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kintai-app/apiserver/types"
)

// JST is the fixed UTC+9 offset used to decide "today" and to stamp
// punches, independent of the server's locale.
var JST = time.FixedZone("JST", 9*60*60)

const defaultBreakMinutes = 60

// NowJST returns the current wall clock in JST.
func NowJST() time.Time {
	return time.Now().In(JST)
}

// Today returns the current JST calendar date as YYYY-MM-DD.
func Today() string {
	return NowJST().Format("2006-01-02")
}

// RoundPunch rounds t to the nearest 15-minute mark, half away from
// zero, discarding seconds. Minute 53 and later rolls into the next
// hour: 0-7 -> :00, 8-22 -> :15, 23-37 -> :30, 38-52 -> :45, 53-59 ->
// :00 of the following hour.
func RoundPunch(t time.Time) time.Time {
	m := t.Minute()
	r := int(15 * math.Round(float64(m)/15))
	base := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	if r == 60 {
		return base.Add(time.Hour)
	}
	return base.Add(time.Duration(r) * time.Minute)
}

// ParseClock parses "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return h*60 + m, true
}

// BreakMinutes interprets the record's break_time field (decimal hours)
// as minutes. Empty or unparseable values fall back to the one-hour
// default.
func BreakMinutes(breakTime string) int {
	s := strings.TrimSpace(breakTime)
	if s == "" {
		return defaultBreakMinutes
	}
	hours, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultBreakMinutes
	}
	return int(hours * 60)
}

// WorkedMinutes computes (check_out - check_in) - break for one day.
// The second return is false when either time is missing or malformed,
// or when the result would be negative; such days count as zero in
// totals and render blank.
func WorkedMinutes(rec types.DayRecord) (int, bool) {
	if rec.CheckIn == "" || rec.CheckOut == "" {
		return 0, false
	}
	in, ok := ParseClock(rec.CheckIn)
	if !ok {
		return 0, false
	}
	out, ok := ParseClock(rec.CheckOut)
	if !ok {
		return 0, false
	}
	worked := out - in - BreakMinutes(rec.BreakTime)
	if worked < 0 {
		return 0, false
	}
	return worked, true
}

// FormatHours renders minutes as decimal hours with two decimals.
func FormatHours(minutes int) string {
	return fmt.Sprintf("%.2f", float64(minutes)/60)
}

// MonthDays enumerates every calendar day of the month, handling month
// length and December rollover.
func MonthDays(year, month int) []time.Time {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, JST)
	next := first.AddDate(0, 1, 0)

	var days []time.Time
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// MonthTotals sums worked minutes and parseable travel costs across a
// month of records. Unparseable travel costs are skipped.
func MonthTotals(data types.UserAttendance, days []time.Time) (workedMinutes int, travelCost float64) {
	for _, d := range days {
		rec := data[d.Format("2006-01-02")]
		if min, ok := WorkedMinutes(rec); ok {
			workedMinutes += min
		}
		if rec.TravelCost != "" {
			if cost, err := strconv.ParseFloat(strings.TrimSpace(rec.TravelCost), 64); err == nil {
				travelCost += cost
			}
		}
	}
	return workedMinutes, travelCost
}
