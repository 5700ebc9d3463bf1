/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/kintai-app/apiserver/config"
	"github.com/kintai-app/apiserver/internal/logging"
	"github.com/kintai-app/apiserver/internal/mq"
	"github.com/spf13/cobra"
)

// eventsCmd represents the events command.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Attendance event stream tools",
}

var eventsListenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Consume and log attendance change events",
	Long: `Consume attendance change events from the configured broker and log
them. Useful for verifying broker wiring and for ad hoc auditing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logging.Init(logging.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})

		backend, err := mq.NewBackendFromConfig(cmd.Context(), cfg.MQ)
		if err != nil {
			return err
		}
		if backend == nil {
			return errors.New("no message broker configured (set MQ_PROVIDER)")
		}
		queue := mq.New(backend)
		defer func() {
			_ = queue.Close()
		}()

		logging.Info().Str("channel", mq.ChannelAttendanceEvents).Msg("listening for attendance events")
		return queue.Subscribe(cmd.Context(), mq.ChannelAttendanceEvents, func(ctx context.Context, msg mq.Message) error {
			var event mq.AttendanceEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				logging.Warn().Err(err).Str("id", msg.ID).Msg("skipping malformed event")
				return nil
			}
			logging.Info().
				Str("username", event.Username).
				Str("date", event.Date).
				Str("field", event.Field).
				Str("value", event.Value).
				Time("at", event.At).
				Msg("attendance changed")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListenCmd)
}
