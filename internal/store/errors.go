package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique key already exists.
var ErrDuplicate = errors.New("already exists")

// ErrUnavailable is returned when no storage backend can serve a call.
var ErrUnavailable = errors.New("no storage backend available")
