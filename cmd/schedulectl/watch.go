package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-schedule/internal/model"
	"github.com/jwalitptl/clinic-schedule/internal/service/notification"
	"github.com/jwalitptl/clinic-schedule/pkg/logger"
	"github.com/jwalitptl/clinic-schedule/pkg/messaging"
	"github.com/jwalitptl/clinic-schedule/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-schedule/pkg/metrics"
)

func newWatchCmd() *cobra.Command {
	var redisURL string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print schedule conflicts as the API announces them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := logger.NewLogger(&logger.Config{Level: logger.WarnLevel, Output: cmd.ErrOrStderr()})
			broker, err := redis.NewRedisBroker(ctx, redis.Config{URL: redisURL}, log, metrics.New("schedulectl"))
			if err != nil {
				return err
			}
			defer broker.Close()

			out := cmd.OutOrStdout()
			return messaging.Consume(ctx, broker, notification.ConflictChannel,
				func(_ context.Context, env messaging.Envelope) error {
					return printConflict(out, env)
				},
				func(raw []byte, err error) {
					log.Warn("skipping malformed message", "error", err.Error(), "message", string(raw))
				})
		},
	}

	cmd.Flags().StringVar(&redisURL, "redis-url", "redis://localhost:6379/0", "Redis the API publishes to")
	return cmd
}

func printConflict(w io.Writer, env messaging.Envelope) error {
	if env.Type != notification.MessageTypeConflict {
		return nil
	}
	var c model.Conflict
	if err := json.Unmarshal(env.Payload, &c); err != nil {
		return fmt.Errorf("invalid conflict payload: %w", err)
	}
	_, err := fmt.Fprintf(w, "%s %s %s-%s %s: %s\n",
		c.ClinicID, c.Date, c.Start, c.End, c.Provider, strings.Join(c.AppointmentIDs, ", "))
	return err
}
