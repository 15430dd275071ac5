// Package calendar renders provider schedules as iCalendar feeds.
package calendar

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/jwalitptl/clinic-schedule/internal/model"
	"github.com/jwalitptl/clinic-schedule/internal/schedule"
)

const (
	productID        = "-//clinic-schedule//day export//EN"
	categoryConflict = "CONFLICT"
)

// Export builds a VCALENDAR with one VEVENT per appointment on date.
// Members of conflicting groups carry the CONFLICT category. loc places the
// wall-clock times; nil means UTC.
func Export(date string, pgs []schedule.ProviderGroups, loc *time.Location, now time.Time) (string, error) {
	day, err := model.ParseDate(date)
	if err != nil {
		return "", err
	}
	if loc == nil {
		loc = time.UTC
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, pg := range pgs {
		for _, g := range pg.Groups {
			for _, e := range g.Entries {
				apt := e.Appointment
				ev := cal.AddEvent(fmt.Sprintf("%s@clinic-schedule", apt.ID))
				ev.SetDtStampTime(now)
				ev.SetStartAt(midnight.Add(time.Duration(e.Start) * time.Minute))
				ev.SetEndAt(midnight.Add(time.Duration(e.End) * time.Minute))
				ev.SetSummary(summary(apt))
				ev.SetDescription(fmt.Sprintf("Provider: %s\nConfirmed: %t\nIntake complete: %t",
					apt.Provider, apt.Status.Confirmed, apt.Status.IntakeComplete))
				if g.Conflict() {
					ev.SetProperty(ical.ComponentPropertyCategories, categoryConflict)
				}
			}
		}
	}

	return cal.Serialize(), nil
}

func summary(apt *model.Appointment) string {
	if apt.PatientName == "" {
		return apt.Provider
	}
	return fmt.Sprintf("%s with %s", apt.PatientName, apt.Provider)
}
