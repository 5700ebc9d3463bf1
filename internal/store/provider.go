package store

import (
	"context"

	"github.com/kintai-app/apiserver/types"
)

// Provider is one interchangeable attendance persistence backend.
//
// Load returns the user's full date-keyed mapping; a user with no data
// yields an empty mapping, not an error. UpdateField writes one field of
// one date; backends that support partial updates do so atomically,
// the rest fall back to read-modify-write of the whole document.
type Provider interface {
	Name() string
	Available(ctx context.Context) bool
	Load(ctx context.Context, username string) (types.UserAttendance, error)
	Save(ctx context.Context, username string, data types.UserAttendance) error
	UpdateField(ctx context.Context, username, date, field, value string) error
}
