package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/jwalitptl/clinic-schedule/internal/model"
)

// ParseRule reads an RRULE value, with or without the "RRULE:" prefix.
func ParseRule(s string) (*rrule.RRule, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimPrefix(strings.TrimPrefix(v, "RRULE:"), "rrule:")
	r, err := rrule.StrToRRule(v)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence rule %q: %w", s, err)
	}
	return r, nil
}

// ExpandSeries returns the occurrences of each series that fall on day.
// Wall-clock values are evaluated in UTC; only the calendar day matters.
func ExpandSeries(series []*model.AppointmentSeries, day time.Time) ([]*model.Appointment, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Second)
	date := dayStart.Format(model.DateLayout)

	out := make([]*model.Appointment, 0)
	for _, s := range series {
		r, err := ParseRule(s.RRule)
		if err != nil {
			return nil, err
		}
		first, err := model.ParseDate(s.StartDate)
		if err != nil {
			return nil, err
		}
		minutes, err := ParseClock(s.Time)
		if err != nil {
			return nil, err
		}
		r.DTStart(first.Add(time.Duration(minutes) * time.Minute))

		for _, occ := range r.Between(dayStart, dayEnd, true) {
			seriesID := s.ID
			out = append(out, &model.Appointment{
				ID:          fmt.Sprintf("series-%s-%s", s.ID, occ.UTC().Format("20060102T1504")),
				ClinicID:    s.ClinicID,
				Provider:    s.Provider,
				PatientName: s.PatientName,
				Date:        date,
				Time:        FormatClock(occ.Hour()*60 + occ.Minute()),
				Duration:    s.Duration,
				Type:        s.Type,
				SeriesID:    &seriesID,
			})
		}
	}
	return out, nil
}
