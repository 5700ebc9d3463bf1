package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/kintai-app/apiserver/internal/holiday"
	"github.com/kintai-app/apiserver/internal/worktime"
	"github.com/kintai-app/apiserver/types"
)

var (
	// ErrInvalidField rejects updates to fields outside the attendance schema.
	ErrInvalidField = errors.New("invalid attendance field")

	// ErrInvalidDate rejects dates that are not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
)

// AttendanceStore defines the persistence operations the service needs.
// Satisfied by *store.Chain.
type AttendanceStore interface {
	Load(ctx context.Context, username string) (types.UserAttendance, error)
	Save(ctx context.Context, username string, data types.UserAttendance) error
	UpdateField(ctx context.Context, username, date, field, value string) error
}

// EventPublisher receives accepted attendance changes. Implementations
// must never fail the caller.
type EventPublisher interface {
	AttendanceChanged(ctx context.Context, username, date, field, value string)
}

// AttendanceService encapsulates attendance use-cases: punching, field
// edits, bulk form saves and month views.
type AttendanceService struct {
	store  AttendanceStore
	events EventPublisher
	now    func() time.Time
}

func NewAttendanceService(store AttendanceStore, events EventPublisher) *AttendanceService {
	return &AttendanceService{
		store:  store,
		events: events,
		now:    worktime.NowJST,
	}
}

// WithClock overrides the wall clock. Test hook.
func (s *AttendanceService) WithClock(now func() time.Time) *AttendanceService {
	s.now = now
	return s
}

// Punch records a check-in or check-out for the given date, stamping the
// current JST time rounded to the nearest 15 minutes. Returns the stored
// HH:MM string.
func (s *AttendanceService) Punch(ctx context.Context, username, date, field string) (string, error) {
	if field != types.FieldCheckIn && field != types.FieldCheckOut {
		return "", ErrInvalidField
	}
	if !validDate(date) {
		return "", ErrInvalidDate
	}

	timeStr := worktime.RoundPunch(s.now()).Format("15:04")
	if err := s.store.UpdateField(ctx, username, date, field, timeStr); err != nil {
		return "", err
	}
	s.publish(ctx, username, date, field, timeStr)
	return timeStr, nil
}

// UpdateField writes one field of one date verbatim.
func (s *AttendanceService) UpdateField(ctx context.Context, username, date, field, value string) error {
	if !types.IsKnownField(field) {
		return ErrInvalidField
	}
	if !validDate(date) {
		return ErrInvalidDate
	}
	if err := s.store.UpdateField(ctx, username, date, field, value); err != nil {
		return err
	}
	s.publish(ctx, username, date, field, value)
	return nil
}

// BulkSave applies a form submission whose keys encode field and date as
// "{field}_{date}". Unknown keys are skipped; per-field write failures
// have already been logged by the store and do not abort the rest.
// Returns the number of fields applied.
func (s *AttendanceService) BulkSave(ctx context.Context, username string, form url.Values) int {
	applied := 0
	for key, values := range form {
		field, date, ok := SplitFormKey(key)
		if !ok || len(values) == 0 {
			continue
		}
		if err := s.UpdateField(ctx, username, date, field, values[0]); err != nil {
			continue
		}
		applied++
	}
	return applied
}

// SplitFormKey resolves a bulk form key like "travel_cost_2025-07-08"
// into its field and date parts. Field names themselves contain
// underscores, so the longest known field name wins.
func SplitFormKey(key string) (field, date string, ok bool) {
	for _, f := range types.KnownFields {
		if strings.HasPrefix(key, f+"_") {
			date = key[len(f)+1:]
			if !validDate(date) {
				return "", "", false
			}
			return f, date, true
		}
	}
	return "", "", false
}

// TodayRecord returns the JST date and that day's record for the home
// punch screen.
func (s *AttendanceService) TodayRecord(ctx context.Context, username string) (string, types.DayRecord, error) {
	today := s.now().Format("2006-01-02")
	data, err := s.store.Load(ctx, username)
	if err != nil {
		return today, types.DayRecord{}, err
	}
	return today, data[today], nil
}

// MonthData returns the user's records for one month, keyed by date.
// Records with unparseable date keys are skipped.
func (s *AttendanceService) MonthData(ctx context.Context, username string, year, month int) (types.UserAttendance, error) {
	data, err := s.store.Load(ctx, username)
	if err != nil {
		return nil, err
	}

	monthly := types.UserAttendance{}
	for dateStr, rec := range data {
		d, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		if d.Year() == year && int(d.Month()) == month {
			monthly[dateStr] = rec
		}
	}
	return monthly, nil
}

// MonthDay is one row of the month view.
type MonthDay struct {
	Date      string          `json:"date"`
	Day       int             `json:"display_date"`
	Weekday   string          `json:"weekday"`
	IsHoliday bool            `json:"is_holiday"`
	Data      types.DayRecord `json:"data"`
}

// MonthView enumerates every calendar day of the month with its record
// and holiday flag.
func (s *AttendanceService) MonthView(ctx context.Context, username string, year, month int) ([]MonthDay, error) {
	data, err := s.MonthData(ctx, username, year, month)
	if err != nil {
		return nil, err
	}

	days := worktime.MonthDays(year, month)
	view := make([]MonthDay, 0, len(days))
	for _, d := range days {
		dateStr := d.Format("2006-01-02")
		view = append(view, MonthDay{
			Date:      dateStr,
			Day:       d.Day(),
			Weekday:   d.Weekday().String(),
			IsHoliday: holiday.IsNationalHoliday(d),
			Data:      data[dateStr],
		})
	}
	return view, nil
}

func (s *AttendanceService) publish(ctx context.Context, username, date, field, value string) {
	if s.events == nil {
		return
	}
	s.events.AttendanceChanged(ctx, username, date, field, value)
}

func validDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}
