package schedule

import (
	"sort"

	"github.com/jwalitptl/clinic-schedule/internal/model"
)

// ProviderGroups holds the overlap groups of a single provider.
type ProviderGroups struct {
	Provider string
	Groups   []Group
}

// SplitByProvider buckets appointments per provider, keeping the order in
// which providers first appear and the input order inside each bucket.
func SplitByProvider(apts []*model.Appointment) ([]string, map[string][]*model.Appointment) {
	providers := make([]string, 0)
	byProvider := make(map[string][]*model.Appointment)
	for _, apt := range apts {
		if _, seen := byProvider[apt.Provider]; !seen {
			providers = append(providers, apt.Provider)
		}
		byProvider[apt.Provider] = append(byProvider[apt.Provider], apt)
	}
	return providers, byProvider
}

// GroupByProvider runs the grouper once per provider. Appointments of
// different providers never share a group.
func GroupByProvider(apts []*model.Appointment) ([]ProviderGroups, error) {
	for i, apt := range apts {
		if apt == nil {
			return nil, &MissingRecordError{Index: i}
		}
	}
	providers, byProvider := SplitByProvider(apts)

	out := make([]ProviderGroups, 0, len(providers))
	for _, p := range providers {
		groups, err := GroupAppointments(byProvider[p])
		if err != nil {
			return nil, err
		}
		out = append(out, ProviderGroups{Provider: p, Groups: groups})
	}
	return out, nil
}

// AssignLanes gives each member of g a column so that members sharing a
// lane never overlap. Lanes are filled greedily by start time. The result
// is indexed like g.Entries; the second value is the number of lanes used.
func AssignLanes(g Group) ([]int, int) {
	idx := make([]int, len(g.Entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return g.Entries[idx[a]].Start < g.Entries[idx[b]].Start
	})

	lanes := make([]int, len(g.Entries))
	laneEnds := make([]int, 0)
	for _, i := range idx {
		e := g.Entries[i]
		placed := false
		for l, end := range laneEnds {
			if end <= e.Start {
				lanes[i] = l
				laneEnds[l] = e.End
				placed = true
				break
			}
		}
		if !placed {
			lanes[i] = len(laneEnds)
			laneEnds = append(laneEnds, e.End)
		}
	}
	return lanes, len(laneEnds)
}

// Conflicts lists every multi-appointment group across providers.
func Conflicts(pgs []ProviderGroups) []model.Conflict {
	out := make([]model.Conflict, 0)
	for _, pg := range pgs {
		for _, g := range pg.Groups {
			if !g.Conflict() {
				continue
			}
			out = append(out, model.Conflict{
				Provider:       pg.Provider,
				Start:          FormatClock(g.Start),
				End:            FormatClock(g.End),
				AppointmentIDs: g.IDs(),
			})
		}
	}
	return out
}

// ToProviderSchedules converts grouping output into the API view.
func ToProviderSchedules(pgs []ProviderGroups) []model.ProviderSchedule {
	out := make([]model.ProviderSchedule, 0, len(pgs))
	for _, pg := range pgs {
		ps := model.ProviderSchedule{Provider: pg.Provider, Groups: make([]model.OverlapGroup, 0, len(pg.Groups))}
		for _, g := range pg.Groups {
			lanes, n := AssignLanes(g)
			og := model.OverlapGroup{
				Start:    FormatClock(g.Start),
				End:      FormatClock(g.End),
				Lanes:    n,
				Conflict: g.Conflict(),
				Members:  make([]model.GroupMember, len(g.Entries)),
			}
			for i, e := range g.Entries {
				og.Members[i] = model.GroupMember{
					Appointment: e.Appointment,
					Start:       FormatClock(e.Start),
					End:         FormatClock(e.End),
					Lane:        lanes[i],
				}
			}
			ps.Groups = append(ps.Groups, og)
		}
		out = append(out, ps)
	}
	return out
}
