package schedule

import "github.com/jwalitptl/clinic-schedule/internal/model"

// Stats computes the dashboard counters for a day. pgs must be the grouping
// of the same appointments; it only feeds the conflict counts.
func Stats(apts []*model.Appointment, pgs []ProviderGroups) model.DayStats {
	st := model.DayStats{ByProvider: make(map[string]int)}

	for _, apt := range apts {
		st.Total++
		st.ByProvider[apt.Provider]++
		if apt.Status.Confirmed {
			st.Confirmed++
		} else {
			st.Unconfirmed++
		}
		if apt.Status.IntakeComplete {
			st.IntakeComplete++
		} else {
			st.IntakePending++
		}
	}

	for _, pg := range pgs {
		for _, g := range pg.Groups {
			if g.Conflict() {
				st.ConflictGroups++
				st.ConflictingAppointments += g.Size()
			}
		}
	}
	return st
}
