package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kintai-app/apiserver/types"
)

// FileUserStore is the account store used when the database is not
// reachable at startup: a JSON state file keyed by username.
type FileUserStore struct {
	path string

	mu    sync.RWMutex
	users map[string]types.User
}

func NewFileUserStore(path string) (*FileUserStore, error) {
	if path == "" {
		path = "users.json"
	}

	s := &FileUserStore{
		path:  path,
		users: make(map[string]types.User),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileUserStore) GetByUsername(ctx context.Context, username string) (types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return u, nil
}

func (s *FileUserStore) Create(ctx context.Context, user types.User) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return types.User{}, ErrDuplicate
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.Username] = user
	if err := s.persistLocked(); err != nil {
		delete(s.users, user.Username)
		return types.User{}, err
	}
	return user, nil
}

func (s *FileUserStore) UpdateDisplayName(ctx context.Context, username, displayName string) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return types.User{}, ErrNotFound
	}
	u.DisplayName = displayName
	u.UpdatedAt = time.Now()
	s.users[username] = u
	if err := s.persistLocked(); err != nil {
		return types.User{}, err
	}
	return u, nil
}

func (s *FileUserStore) Delete(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return ErrNotFound
	}
	delete(s.users, username)
	if err := s.persistLocked(); err != nil {
		s.users[username] = u
		return err
	}
	return nil
}

// storedUser is the on-disk shape; types.User never serializes its
// password hash, the state file must.
type storedUser struct {
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *FileUserStore) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read user store file: %w", err)
	}

	stored := map[string]storedUser{}
	if err := json.Unmarshal(raw, &stored); err != nil {
		return fmt.Errorf("parse user store file: %w", err)
	}
	for username, u := range stored {
		s.users[username] = types.User{
			Username:     u.Username,
			DisplayName:  u.DisplayName,
			PasswordHash: u.PasswordHash,
			CreatedAt:    u.CreatedAt,
			UpdatedAt:    u.UpdatedAt,
		}
	}
	return nil
}

func (s *FileUserStore) persistLocked() error {
	stored := make(map[string]storedUser, len(s.users))
	for username, u := range s.users {
		stored[username] = storedUser{
			Username:     u.Username,
			DisplayName:  u.DisplayName,
			PasswordHash: u.PasswordHash,
			CreatedAt:    u.CreatedAt,
			UpdatedAt:    u.UpdatedAt,
		}
	}
	raw, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write user store file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
