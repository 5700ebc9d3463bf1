package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/kintai-app/apiserver/types"
)

const availabilityPingTimeout = 2 * time.Second

// AttendanceRepository is the primary document store: one JSONB document
// per user in Postgres, keyed by username and date inside the document.
type AttendanceRepository struct {
	db *sql.DB
}

func NewAttendanceRepository(db *sql.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Name() string { return "postgres" }

func (r *AttendanceRepository) Available(ctx context.Context) bool {
	if r.db == nil {
		return false
	}
	pingCtx, cancel := context.WithTimeout(ctx, availabilityPingTimeout)
	defer cancel()
	return r.db.PingContext(pingCtx) == nil
}

func (r *AttendanceRepository) Load(ctx context.Context, username string) (types.UserAttendance, error) {
	const query = `SELECT doc FROM user_attendance WHERE username = $1`
	var raw []byte
	err := r.db.QueryRowContext(ctx, query, username).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.UserAttendance{}, nil
		}
		return nil, err
	}

	data := types.UserAttendance{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (r *AttendanceRepository) Save(ctx context.Context, username string, data types.UserAttendance) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO user_attendance (username, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (username) DO UPDATE
		SET doc = EXCLUDED.doc, updated_at = now()`
	_, err = r.db.ExecContext(ctx, query, username, raw)
	return err
}

// UpdateField sets one field of one date atomically with jsonb_set, so two
// concurrent updates to different fields of the same date cannot clobber
// each other.
func (r *AttendanceRepository) UpdateField(ctx context.Context, username, date, field, value string) error {
	const query = `
		INSERT INTO user_attendance (username, doc, updated_at)
		VALUES ($1, jsonb_build_object($2::text, jsonb_build_object($3::text, to_jsonb($4::text))), now())
		ON CONFLICT (username) DO UPDATE
		SET doc = jsonb_set(
				jsonb_set(
					user_attendance.doc,
					ARRAY[$2::text],
					COALESCE(user_attendance.doc -> $2::text, '{}'::jsonb),
					true
				),
				ARRAY[$2::text, $3::text],
				to_jsonb($4::text),
				true
			),
			updated_at = now()`
	_, err := r.db.ExecContext(ctx, query, username, date, field, value)
	return err
}
