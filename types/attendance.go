package types

// Attendance field names as they appear in request payloads, stored
// documents and bulk form keys.
const (
	FieldCheckIn    = "check_in"
	FieldCheckOut   = "check_out"
	FieldBreakTime  = "break_time"
	FieldTravelCost = "travel_cost"
	FieldTravelFrom = "travel_from"
	FieldTravelTo   = "travel_to"
	FieldNotes      = "notes"
)

// KnownFields lists every editable attendance field, longest name first so
// that bulk form keys like "travel_cost_2025-07-08" resolve unambiguously.
var KnownFields = []string{
	FieldTravelCost,
	FieldTravelFrom,
	FieldBreakTime,
	FieldCheckOut,
	FieldTravelTo,
	FieldCheckIn,
	FieldNotes,
}

// IsKnownField reports whether name is an editable attendance field.
func IsKnownField(name string) bool {
	for _, f := range KnownFields {
		if f == name {
			return true
		}
	}
	return false
}

// DayRecord holds one user's attendance fields for one calendar day.
// All values are stored verbatim as strings; numeric interpretation
// happens only when totals are computed.
type DayRecord struct {
	CheckIn    string `json:"check_in,omitempty"`
	CheckOut   string `json:"check_out,omitempty"`
	BreakTime  string `json:"break_time,omitempty"`
	TravelCost string `json:"travel_cost,omitempty"`
	TravelFrom string `json:"travel_from,omitempty"`
	TravelTo   string `json:"travel_to,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// SetField assigns the named field. Unknown names are ignored and
// reported as false.
func (r *DayRecord) SetField(name, value string) bool {
	switch name {
	case FieldCheckIn:
		r.CheckIn = value
	case FieldCheckOut:
		r.CheckOut = value
	case FieldBreakTime:
		r.BreakTime = value
	case FieldTravelCost:
		r.TravelCost = value
	case FieldTravelFrom:
		r.TravelFrom = value
	case FieldTravelTo:
		r.TravelTo = value
	case FieldNotes:
		r.Notes = value
	default:
		return false
	}
	return true
}

// IsZero reports whether every field is empty.
func (r DayRecord) IsZero() bool {
	return r == DayRecord{}
}

// UserAttendance maps an ISO date string (YYYY-MM-DD) to that day's record.
type UserAttendance map[string]DayRecord

// AttendanceStore is the whole-store document shape used by the gist and
// local-file backends: username -> date -> record.
type AttendanceStore map[string]UserAttendance
