package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-schedule/internal/calendar"
	"github.com/jwalitptl/clinic-schedule/internal/schedule"
)

func newExportCmd() *cobra.Command {
	var (
		file   string
		date   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a day file as an iCalendar feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := readDayFile(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if date != "" {
				day.Date = date
			}
			if day.Date == "" {
				return fmt.Errorf("no date: set it in the file or pass --date")
			}

			loc := time.UTC
			if day.Timezone != "" {
				if loc, err = time.LoadLocation(day.Timezone); err != nil {
					return fmt.Errorf("invalid timezone: %w", err)
				}
			}

			pgs, err := schedule.GroupByProvider(day.appointments())
			if err != nil {
				return err
			}
			ics, err := calendar.Export(day.Date, pgs, loc, time.Now())
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), ics)
				return err
			}
			return os.WriteFile(output, []byte(ics), 0o644)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "day file, - for stdin")
	cmd.Flags().StringVar(&date, "date", "", "day to export, overrides the file (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	return cmd
}
