package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-schedule/internal/config"
	"github.com/jwalitptl/clinic-schedule/pkg/auth"
)

func newTokenCmd() *cobra.Command {
	var (
		clinic  string
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token scoped to one clinic",
		Long:  "Issue an API token scoped to one clinic. The signing secret is read from SCHEDULE_JWT_SECRET.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			clinicID, err := uuid.Parse(clinic)
			if err != nil {
				return fmt.Errorf("invalid clinic ID: %w", err)
			}

			secret := os.Getenv(config.EnvPrefix + "_JWT_SECRET")
			if secret == "" {
				return fmt.Errorf("%s_JWT_SECRET is not set", config.EnvPrefix)
			}
			issuer := os.Getenv(config.EnvPrefix + "_JWT_ISSUER")
			if issuer == "" {
				issuer = config.DefaultIssuer
			}

			token, err := auth.NewJWTService(secret, issuer).GenerateToken(clinicID, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&clinic, "clinic", "", "clinic ID the token is scoped to")
	cmd.Flags().StringVar(&subject, "subject", "schedulectl", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("clinic")
	return cmd
}
