package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/kintai-app/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider is a scriptable in-memory provider for chain tests.
type stubProvider struct {
	name      string
	available bool
	failLoad  error
	failWrite error
	data      types.AttendanceStore
}

func newStubProvider(name string, available bool) *stubProvider {
	return &stubProvider{name: name, available: available, data: types.AttendanceStore{}}
}

func (s *stubProvider) Name() string                       { return s.name }
func (s *stubProvider) Available(ctx context.Context) bool { return s.available }

func (s *stubProvider) Load(ctx context.Context, username string) (types.UserAttendance, error) {
	if s.failLoad != nil {
		return nil, s.failLoad
	}
	if d, ok := s.data[username]; ok {
		return d, nil
	}
	return types.UserAttendance{}, nil
}

func (s *stubProvider) Save(ctx context.Context, username string, data types.UserAttendance) error {
	if s.failWrite != nil {
		return s.failWrite
	}
	s.data[username] = data
	return nil
}

func (s *stubProvider) UpdateField(ctx context.Context, username, date, field, value string) error {
	if s.failWrite != nil {
		return s.failWrite
	}
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

func TestChainSelectsFirstAvailable(t *testing.T) {
	ctx := context.Background()
	primary := newStubProvider("postgres", false)
	secondary := newStubProvider("gist", true)

	chain := NewChain(nil, primary, secondary)
	assert.Equal(t, "gist", chain.SelectedName(ctx))

	primary.available = true
	assert.Equal(t, "postgres", chain.SelectedName(ctx))
}

func TestChainSelectedNameWithNoProviders(t *testing.T) {
	chain := NewChain(nil, newStubProvider("postgres", false))
	assert.Equal(t, "none", chain.SelectedName(context.Background()))
}

func TestChainLoadFallsThroughOnError(t *testing.T) {
	ctx := context.Background()
	primary := newStubProvider("postgres", true)
	primary.failLoad = errors.New("connection reset")
	secondary := newStubProvider("gist", true)
	secondary.data["alice"] = types.UserAttendance{"2025-07-08": {CheckIn: "09:00"}}

	chain := NewChain(nil, primary, secondary)
	data, err := chain.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "09:00", data["2025-07-08"].CheckIn)
}

func TestChainLoadAllUnavailable(t *testing.T) {
	chain := NewChain(nil, newStubProvider("postgres", false))
	_, err := chain.Load(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestChainWriteMirrorsToBackupFile(t *testing.T) {
	ctx := context.Background()
	primary := newStubProvider("postgres", true)
	backup := NewFileStore(filepath.Join(t.TempDir(), "attendance_data.json"))

	chain := NewChain(backup, primary, backup)
	require.NoError(t, chain.UpdateField(ctx, "alice", "2025-07-08", "check_in", "09:00"))

	assert.Equal(t, "09:00", primary.data["alice"]["2025-07-08"].CheckIn)

	mirrored, err := backup.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "09:00", mirrored["2025-07-08"].CheckIn, "backup file mirrors the write")
}

func TestChainNoDoubleWriteWhenFileIsPrimary(t *testing.T) {
	ctx := context.Background()
	backup := NewFileStore(filepath.Join(t.TempDir(), "attendance_data.json"))

	chain := NewChain(backup, backup)
	require.NoError(t, chain.Save(ctx, "alice", types.UserAttendance{
		"2025-07-08": {CheckIn: "09:00"},
	}))

	data, err := backup.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "09:00", data["2025-07-08"].CheckIn)
}

func TestChainWriteFailureStillWritesBackup(t *testing.T) {
	ctx := context.Background()
	primary := newStubProvider("postgres", true)
	primary.failWrite = errors.New("disk full")
	backup := NewFileStore(filepath.Join(t.TempDir(), "attendance_data.json"))

	chain := NewChain(backup, primary, backup)
	err := chain.UpdateField(ctx, "alice", "2025-07-08", "check_in", "09:00")
	assert.Error(t, err, "primary failure is reported")

	mirrored, loadErr := backup.Load(ctx, "alice")
	require.NoError(t, loadErr)
	assert.Equal(t, "09:00", mirrored["2025-07-08"].CheckIn, "backup still captured the write")
}
