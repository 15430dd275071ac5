package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-schedule/internal/model"
	"github.com/jwalitptl/clinic-schedule/internal/schedule"
)

func newGroupCmd() *cobra.Command {
	var (
		file   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "group",
		Short: "Print the overlap groups of each provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := readDayFile(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			apts := day.appointments()
			pgs, err := schedule.GroupByProvider(apts)
			if err != nil {
				return err
			}

			result := &model.GroupResult{
				Providers: schedule.ToProviderSchedules(pgs),
				Stats:     schedule.Stats(apts, pgs),
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printGroups(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "day file, - for stdin")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}

func printGroups(w io.Writer, res *model.GroupResult) {
	for _, p := range res.Providers {
		fmt.Fprintf(w, "%s\n", p.Provider)
		for _, g := range p.Groups {
			marker := ""
			if g.Conflict {
				marker = "  [" + model.BadgeConflict.Style().Label + "]"
			}
			fmt.Fprintf(w, "  %s-%s%s\n", g.Start, g.End, marker)
			for _, m := range g.Members {
				fmt.Fprintf(w, "    %-8s %s-%s  %s\n", m.Appointment.ID, m.Start, m.End, badgeLabels(m.Appointment, g.Conflict))
			}
		}
	}
	s := res.Stats
	fmt.Fprintf(w, "\n%d appointments, %d confirmed, %d in %d conflict group(s)\n",
		s.Total, s.Confirmed, s.ConflictingAppointments, s.ConflictGroups)
}

func badgeLabels(a *model.Appointment, conflict bool) string {
	badges := a.Badges(conflict)
	labels := make([]string, len(badges))
	for i, b := range badges {
		labels[i] = b.Style().Label
	}
	return strings.Join(labels, ", ")
}
