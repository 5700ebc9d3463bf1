package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/kintai-app/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	data types.AttendanceStore
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: types.AttendanceStore{}}
}

func (s *fakeStore) Load(ctx context.Context, username string) (types.UserAttendance, error) {
	if d, ok := s.data[username]; ok {
		return d, nil
	}
	return types.UserAttendance{}, nil
}

func (s *fakeStore) Save(ctx context.Context, username string, data types.UserAttendance) error {
	s.data[username] = data
	return nil
}

func (s *fakeStore) UpdateField(ctx context.Context, username, date, field, value string) error {
	user := s.data[username]
	if user == nil {
		user = types.UserAttendance{}
	}
	rec := user[date]
	rec.SetField(field, value)
	user[date] = rec
	s.data[username] = user
	return nil
}

type recordedEvent struct {
	username, date, field, value string
}

type fakeEvents struct {
	events []recordedEvent
}

func (e *fakeEvents) AttendanceChanged(ctx context.Context, username, date, field, value string) {
	e.events = append(e.events, recordedEvent{username, date, field, value})
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestPunchStampsRoundedTime(t *testing.T) {
	st := newFakeStore()
	events := &fakeEvents{}
	svc := NewAttendanceService(st, events).
		WithClock(fixedClock(time.Date(2025, 7, 8, 9, 23, 12, 0, time.UTC)))

	got, err := svc.Punch(context.Background(), "alice", "2025-07-08", types.FieldCheckIn)
	require.NoError(t, err)
	assert.Equal(t, "09:30", got)
	assert.Equal(t, "09:30", st.data["alice"]["2025-07-08"].CheckIn)

	require.Len(t, events.events, 1)
	assert.Equal(t, recordedEvent{"alice", "2025-07-08", "check_in", "09:30"}, events.events[0])
}

func TestPunchRejectsNonPunchFields(t *testing.T) {
	svc := NewAttendanceService(newFakeStore(), nil)

	_, err := svc.Punch(context.Background(), "alice", "2025-07-08", types.FieldNotes)
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = svc.Punch(context.Background(), "alice", "July 8", types.FieldCheckIn)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestUpdateFieldValidation(t *testing.T) {
	st := newFakeStore()
	svc := NewAttendanceService(st, nil)

	err := svc.UpdateField(context.Background(), "alice", "2025-07-08", types.FieldNotes, "client visit")
	require.NoError(t, err)
	assert.Equal(t, "client visit", st.data["alice"]["2025-07-08"].Notes)

	err = svc.UpdateField(context.Background(), "alice", "2025-07-08", "salary", "1000000")
	assert.ErrorIs(t, err, ErrInvalidField)

	err = svc.UpdateField(context.Background(), "alice", "2025-13-40", types.FieldNotes, "x")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestSplitFormKey(t *testing.T) {
	tests := []struct {
		key   string
		field string
		date  string
		ok    bool
	}{
		{"check_in_2025-07-08", "check_in", "2025-07-08", true},
		{"check_out_2025-07-08", "check_out", "2025-07-08", true},
		{"travel_cost_2025-07-08", "travel_cost", "2025-07-08", true},
		{"travel_from_2025-07-08", "travel_from", "2025-07-08", true},
		{"break_time_2025-12-31", "break_time", "2025-12-31", true},
		{"notes_2025-07-08", "notes", "2025-07-08", true},
		{"csrf_token", "", "", false},
		{"check_in_yesterday", "", "", false},
		{"check_in_", "", "", false},
	}
	for _, tt := range tests {
		field, date, ok := SplitFormKey(tt.key)
		assert.Equal(t, tt.ok, ok, tt.key)
		assert.Equal(t, tt.field, field, tt.key)
		assert.Equal(t, tt.date, date, tt.key)
	}
}

func TestBulkSave(t *testing.T) {
	st := newFakeStore()
	svc := NewAttendanceService(st, nil)

	form := url.Values{}
	form.Set("check_in_2025-07-08", "09:00")
	form.Set("check_out_2025-07-08", "18:00")
	form.Set("travel_cost_2025-07-09", "500")
	form.Set("csrf_token", "abc123")

	applied := svc.BulkSave(context.Background(), "alice", form)
	assert.Equal(t, 3, applied)

	rec := st.data["alice"]["2025-07-08"]
	assert.Equal(t, "09:00", rec.CheckIn)
	assert.Equal(t, "18:00", rec.CheckOut)
	assert.Equal(t, "500", st.data["alice"]["2025-07-09"].TravelCost)
}

func TestTodayRecord(t *testing.T) {
	st := newFakeStore()
	st.data["alice"] = types.UserAttendance{
		"2025-07-08": {CheckIn: "09:00"},
	}
	svc := NewAttendanceService(st, nil).
		WithClock(fixedClock(time.Date(2025, 7, 8, 12, 0, 0, 0, time.UTC)))

	date, rec, err := svc.TodayRecord(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "2025-07-08", date)
	assert.Equal(t, "09:00", rec.CheckIn)
}

func TestMonthDataFiltersByMonth(t *testing.T) {
	st := newFakeStore()
	st.data["alice"] = types.UserAttendance{
		"2025-07-08": {CheckIn: "09:00"},
		"2025-06-30": {CheckIn: "10:00"},
		"not-a-date": {CheckIn: "11:00"},
	}
	svc := NewAttendanceService(st, nil)

	monthly, err := svc.MonthData(context.Background(), "alice", 2025, 7)
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.Equal(t, "09:00", monthly["2025-07-08"].CheckIn)
}

func TestMonthViewCoversEveryDay(t *testing.T) {
	st := newFakeStore()
	st.data["alice"] = types.UserAttendance{
		"2025-01-06": {CheckIn: "09:00", CheckOut: "18:00"},
	}
	svc := NewAttendanceService(st, nil)

	view, err := svc.MonthView(context.Background(), "alice", 2025, 1)
	require.NoError(t, err)
	require.Len(t, view, 31)

	assert.Equal(t, "2025-01-01", view[0].Date)
	assert.True(t, view[0].IsHoliday, "new year's day")
	assert.Equal(t, 6, view[5].Day)
	assert.Equal(t, "09:00", view[5].Data.CheckIn)
	assert.False(t, view[5].Data.IsZero())
	assert.True(t, view[10].Data.IsZero())
}
