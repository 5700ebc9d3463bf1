package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kintai-app/apiserver/types"
)

// FileStore persists the whole attendance store as one local JSON file.
// It is the last fallback and doubles as the always-written backup copy
// when a remote backend is primary.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

func NewFileStore(path string) *FileStore {
	if path == "" {
		path = "attendance_data.json"
	}
	return &FileStore{path: path}
}

func (f *FileStore) Name() string { return "file" }

func (f *FileStore) Available(ctx context.Context) bool { return true }

func (f *FileStore) Load(ctx context.Context, username string) (types.UserAttendance, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	all, err := f.readLocked()
	if err != nil {
		return nil, err
	}
	data, ok := all[username]
	if !ok {
		return types.UserAttendance{}, nil
	}
	return data, nil
}

func (f *FileStore) Save(ctx context.Context, username string, data types.UserAttendance) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.readLocked()
	if err != nil {
		return err
	}
	all[username] = data
	return f.writeLocked(all)
}

func (f *FileStore) UpdateField(ctx context.Context, username, date, field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.readLocked()
	if err != nil {
		return err
	}
	user := all[username]
	if user == nil {
		user = types.UserAttendance{}
	}
	rec := user[date]
	if !rec.SetField(field, value) {
		return fmt.Errorf("unknown attendance field %q", field)
	}
	user[date] = rec
	all[username] = user
	return f.writeLocked(all)
}

func (f *FileStore) readLocked() (types.AttendanceStore, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.AttendanceStore{}, nil
		}
		return nil, fmt.Errorf("read attendance file: %w", err)
	}
	all := types.AttendanceStore{}
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("parse attendance file: %w", err)
	}
	return all, nil
}

func (f *FileStore) writeLocked(all types.AttendanceStore) error {
	raw, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write attendance file: %w", err)
	}
	return os.Rename(tmp, f.path)
}
