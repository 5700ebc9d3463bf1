/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/kintai-app/apiserver/config"
	"github.com/kintai-app/apiserver/internal/db"
	"github.com/kintai-app/apiserver/internal/logging"
	"github.com/kintai-app/apiserver/internal/store"
	"github.com/kintai-app/apiserver/types"
	"github.com/spf13/cobra"
)

// importCmd represents the import command.
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import an attendance JSON dump into the configured storage",
	Long: `Import an attendance JSON dump into the configured storage.

Accepts both orientations of the dump format: username -> date -> record
and the legacy date -> username -> record layout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logging.Init(logging.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read dump: %w", err)
		}

		data, err := parseAttendanceDump(raw)
		if err != nil {
			return fmt.Errorf("parse dump: %w", err)
		}

		chain, cleanup := buildStoreChain(cmd.Context(), cfg)
		defer cleanup()

		for username, records := range data {
			if err := chain.Save(cmd.Context(), username, records); err != nil {
				return fmt.Errorf("save %s: %w", username, err)
			}
			logging.Info().
				Str("username", username).
				Int("days", len(records)).
				Msg("imported attendance")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

// buildStoreChain assembles the same fallback chain the server uses:
// postgres when reachable, gist when configured, local file always.
func buildStoreChain(ctx context.Context, cfg config.Config) (*store.Chain, func()) {
	fileStore := store.NewFileStore(cfg.DataFile)
	var providers []store.Provider
	cleanup := func() {}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		logging.Warn().Err(err).Msg("postgres unavailable, importing into secondary storage")
	} else {
		providers = append(providers, store.NewAttendanceRepository(dbConn))
		cleanup = func() { _ = dbConn.Close() }
	}
	if cfg.Gist.Configured() {
		providers = append(providers, store.NewGistStore(cfg.Gist))
	}
	providers = append(providers, fileStore)

	return store.NewChain(fileStore, providers...), cleanup
}

// parseAttendanceDump decodes a dump in either orientation. The top
// level keys decide: date-shaped keys mean the legacy layout with
// usernames nested one level down.
func parseAttendanceDump(raw []byte) (types.AttendanceStore, error) {
	var doc map[string]map[string]types.DayRecord
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	dateKeyed := len(doc) > 0
	for key := range doc {
		if !isDateKey(key) {
			dateKeyed = false
			break
		}
	}

	out := types.AttendanceStore{}
	if !dateKeyed {
		for username, records := range doc {
			userData := types.UserAttendance{}
			for date, rec := range records {
				if isDateKey(date) {
					userData[date] = rec
				}
			}
			out[username] = userData
		}
		return out, nil
	}

	for date, byUser := range doc {
		for username, rec := range byUser {
			if out[username] == nil {
				out[username] = types.UserAttendance{}
			}
			out[username][date] = rec
		}
	}
	return out, nil
}

func isDateKey(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
