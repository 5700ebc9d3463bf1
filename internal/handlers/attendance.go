package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kintai-app/apiserver/internal/logging"
	"github.com/kintai-app/apiserver/internal/report"
	"github.com/kintai-app/apiserver/internal/services"
	"github.com/kintai-app/apiserver/internal/storage"
	"github.com/kintai-app/apiserver/internal/store"
	"github.com/kintai-app/apiserver/internal/worktime"
	"github.com/kintai-app/apiserver/types"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AttendanceHandler provides punch, edit, month view and export endpoints.
type AttendanceHandler struct {
	attendance  *services.AttendanceService
	userService *services.UserService
	archive     *storage.Archive
}

// NewAttendanceHandler constructs an AttendanceHandler with the provided dependencies.
func NewAttendanceHandler(attendance *services.AttendanceService, userService *services.UserService, archive *storage.Archive) *AttendanceHandler {
	return &AttendanceHandler{
		attendance:  attendance,
		userService: userService,
		archive:     archive,
	}
}

// AttendanceRouter registers attendance routes on the given router. All
// routes require authentication.
func AttendanceRouter(r chi.Router, attendance *services.AttendanceService, userService *services.UserService, archive *storage.Archive, jwtSecret string) {
	handler := NewAttendanceHandler(attendance, userService, archive)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(jwtSecret))

		r.Get("/", handler.Today)
		r.Get("/attendance", handler.Month)
		r.Get("/attendance_info", handler.Month)
		r.Post("/save_attendance", handler.BulkSave)
		r.Post("/api/punch", handler.Punch)
		r.Post("/api/save_field", handler.SaveField)
		r.Post("/api/save_attendance", handler.SaveField)
		r.Get("/export_excel", handler.ExportExcel)
	})
}

// Today returns the current JST date and that day's record for the
// punch screen.
func (h *AttendanceHandler) Today(w http.ResponseWriter, r *http.Request) {
	username, err := usernameFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	date, rec, err := h.attendance.TodayRecord(r.Context(), username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load attendance")
		return
	}

	displayName := ""
	if user, err := h.userService.GetByUsername(r.Context(), username); err == nil {
		displayName = user.DisplayName
	}

	writeJSON(w, http.StatusOK, TodayResponse{Date: date, DisplayName: displayName, Data: rec})
}

// Month returns the month view: one entry per calendar day with record
// and holiday flag. Defaults to the current JST month.
func (h *AttendanceHandler) Month(w http.ResponseWriter, r *http.Request) {
	username, err := usernameFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	year, month, ok := yearMonthParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid year or month")
		return
	}

	days, err := h.attendance.MonthView(r.Context(), username, year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load attendance")
		return
	}

	writeJSON(w, http.StatusOK, MonthResponse{Year: year, Month: month, Days: days})
}

// BulkSave applies a whole-month form submission with "{field}_{date}"
// keys. Unknown keys are skipped.
func (h *AttendanceHandler) BulkSave(w http.ResponseWriter, r *http.Request) {
	username, err := usernameFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	applied := h.attendance.BulkSave(r.Context(), username, r.PostForm)
	writeJSON(w, http.StatusOK, BulkSaveResponse{Success: true, Applied: applied})
}

// Punch stamps the current rounded JST time into check_in or check_out.
func (h *AttendanceHandler) Punch(w http.ResponseWriter, r *http.Request) {
	username, err := usernameFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req PunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Date) == "" {
		req.Date = worktime.Today()
	}

	timeStr, err := h.attendance.Punch(r.Context(), username, req.Date, req.Field)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidField), errors.Is(err, services.ErrInvalidDate):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrUnavailable):
			writeError(w, http.StatusServiceUnavailable, "no storage backend available")
		default:
			writeError(w, http.StatusInternalServerError, "failed to save punch")
		}
		return
	}

	writeJSON(w, http.StatusOK, PunchResponse{Success: true, Time: timeStr})
}

// SaveField writes one field of one date verbatim.
func (h *AttendanceHandler) SaveField(w http.ResponseWriter, r *http.Request) {
	username, err := usernameFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SaveFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.attendance.UpdateField(r.Context(), username, req.Date, req.Field, req.Value); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidField), errors.Is(err, services.ErrInvalidDate):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrUnavailable):
			writeError(w, http.StatusServiceUnavailable, "no storage backend available")
		default:
			writeError(w, http.StatusInternalServerError, "failed to save field")
		}
		return
	}

	writeJSON(w, http.StatusOK, SaveFieldResponse{Success: true})
}

// ExportExcel renders the month's report workbook and streams it as a
// download. When an archive backend is configured the workbook is also
// uploaded; upload failures are logged and do not fail the download.
func (h *AttendanceHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	username, err := usernameFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	year, month, ok := yearMonthParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid year or month")
		return
	}

	displayName := ""
	if user, err := h.userService.GetByUsername(r.Context(), username); err == nil {
		displayName = user.DisplayName
	}

	data, err := h.attendance.MonthData(r.Context(), username, year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load attendance")
		return
	}

	workbook, err := report.Generate(year, month, data, displayName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate report")
		return
	}

	filename := report.Filename(year, month, displayName)
	if h.archive != nil {
		if err := h.archive.Store(r.Context(), username, filename, workbook, xlsxContentType); err != nil {
			logging.Warn().Err(err).
				Str("username", username).
				Str("filename", filename).
				Msg("report archive upload failed")
		}
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		"attachment; filename=\"report.xlsx\"; filename*=UTF-8''"+url.PathEscape(filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}

func yearMonthParams(r *http.Request) (year, month int, ok bool) {
	now := worktime.NowJST()
	year, month = now.Year(), int(now.Month())

	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		year = parsed
	}
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		month = parsed
	}
	if year < 2000 || year > 2100 || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

type TodayResponse struct {
	Date        string          `json:"date"`
	DisplayName string          `json:"display_name"`
	Data        types.DayRecord `json:"data"`
}

type MonthResponse struct {
	Year  int                 `json:"year"`
	Month int                 `json:"month"`
	Days  []services.MonthDay `json:"days"`
}

type BulkSaveResponse struct {
	Success bool `json:"success"`
	Applied int  `json:"applied"`
}

type PunchRequest struct {
	Date  string `json:"date"`
	Field string `json:"field"`
}

type PunchResponse struct {
	Success bool   `json:"success"`
	Time    string `json:"time"`
}

type SaveFieldRequest struct {
	Date  string `json:"date"`
	Field string `json:"field"`
	Value string `json:"value"`
}

type SaveFieldResponse struct {
	Success bool `json:"success"`
}
