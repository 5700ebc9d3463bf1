// Package holiday classifies calendar days for report coloring and the
// month view. Classification never affects a business rule.
package holiday

import (
	"time"

	holiday_jp "github.com/holiday-jp/holiday_jp-go"
)

// IsNationalHoliday reports whether the date is a Japanese national
// holiday per the bundled holiday calendar.
func IsNationalHoliday(t time.Time) bool {
	return holiday_jp.IsHoliday(t)
}

// IsWeekend reports Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsRestDay reports weekend or national holiday. Used for the red
// weekday label in exported reports.
func IsRestDay(t time.Time) bool {
	return IsWeekend(t) || IsNationalHoliday(t)
}
