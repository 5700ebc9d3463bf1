package store

import (
	"context"

	"github.com/kintai-app/apiserver/internal/logging"
	"github.com/kintai-app/apiserver/types"
)

// Chain tries a fixed priority list of providers. Reads use the first
// available provider and silently degrade to the next on failure. Writes
// go to the first available provider once, unretried; when that provider
// is not the local file store, the backup file store is additionally
// written so a local copy always mirrors the last write.
type Chain struct {
	providers []Provider
	backup    *FileStore
}

func NewChain(backup *FileStore, providers ...Provider) *Chain {
	return &Chain{providers: providers, backup: backup}
}

// Selected returns the provider reads would currently use, or nil.
func (c *Chain) Selected(ctx context.Context) Provider {
	for _, p := range c.providers {
		if p.Available(ctx) {
			return p
		}
	}
	return nil
}

// SelectedName names the active provider for health reporting.
func (c *Chain) SelectedName(ctx context.Context) string {
	if p := c.Selected(ctx); p != nil {
		return p.Name()
	}
	return "none"
}

func (c *Chain) Load(ctx context.Context, username string) (types.UserAttendance, error) {
	for _, p := range c.providers {
		if !p.Available(ctx) {
			continue
		}
		data, err := p.Load(ctx, username)
		if err != nil {
			logging.Warn().Err(err).Str("backend", p.Name()).Str("user", username).
				Msg("attendance load failed, trying next backend")
			continue
		}
		return data, nil
	}
	return nil, ErrUnavailable
}

func (c *Chain) UpdateField(ctx context.Context, username, date, field, value string) error {
	p := c.Selected(ctx)
	if p == nil {
		return ErrUnavailable
	}

	err := p.UpdateField(ctx, username, date, field, value)
	if err != nil {
		logging.Error().Err(err).Str("backend", p.Name()).Str("user", username).
			Str("date", date).Str("field", field).Msg("attendance write failed")
	}
	c.writeBackup(ctx, p, func(f *FileStore) error {
		return f.UpdateField(ctx, username, date, field, value)
	})
	return err
}

func (c *Chain) Save(ctx context.Context, username string, data types.UserAttendance) error {
	p := c.Selected(ctx)
	if p == nil {
		return ErrUnavailable
	}

	err := p.Save(ctx, username, data)
	if err != nil {
		logging.Error().Err(err).Str("backend", p.Name()).Str("user", username).
			Msg("attendance save failed")
	}
	c.writeBackup(ctx, p, func(f *FileStore) error {
		return f.Save(ctx, username, data)
	})
	return err
}

func (c *Chain) writeBackup(ctx context.Context, primary Provider, write func(*FileStore) error) {
	if c.backup == nil || primary == Provider(c.backup) {
		return
	}
	if err := write(c.backup); err != nil {
		logging.Warn().Err(err).Msg("backup file write failed")
	}
}
