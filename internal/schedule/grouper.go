package schedule

import (
	"sort"

	"github.com/jwalitptl/clinic-schedule/internal/model"
)

// Entry is an appointment resolved to a half-open [Start, End) interval in
// minutes since midnight.
type Entry struct {
	Appointment *model.Appointment
	Start       int
	End         int
}

// Overlaps reports whether two half-open intervals share any minute.
// Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

func (e Entry) Overlaps(o Entry) bool {
	return Overlaps(e.Start, e.End, o.Start, o.End)
}

// Group is a maximal cluster of entries connected by a chain of pairwise
// overlaps. Start and End span the union of its members.
type Group struct {
	Start   int
	End     int
	Entries []Entry

	order []int
}

func (g Group) Size() int { return len(g.Entries) }

// Conflict reports whether the group holds more than one appointment.
func (g Group) Conflict() bool { return len(g.Entries) > 1 }

func (g Group) IDs() []string {
	ids := make([]string, len(g.Entries))
	for i, e := range g.Entries {
		ids[i] = e.Appointment.ID
	}
	return ids
}

// Resolve parses every appointment's start time and duration. It stops at
// the first malformed record.
func Resolve(apts []*model.Appointment) ([]Entry, error) {
	entries := make([]Entry, 0, len(apts))
	for i, apt := range apts {
		if apt == nil {
			return nil, &MissingRecordError{Index: i}
		}
		start, err := ParseClock(apt.Time)
		if err != nil {
			return nil, err
		}
		duration, err := ResolveDuration(apt.ID, apt.Duration)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Appointment: apt, Start: start, End: start + duration})
	}
	return entries, nil
}

// GroupOverlaps partitions entries into overlap groups.
//
// Each entry is tested against the union interval of every existing group.
// A group's members form one connected run, so its union has no gaps and an
// interval test against it is exact. When an entry bridges several groups
// they are merged, which makes the partition the transitive closure of the
// overlap relation regardless of input order. Groups come out in order of
// their first member; members keep input order.
func GroupOverlaps(entries []Entry) []Group {
	groups := make([]*Group, 0)

	for idx, e := range entries {
		var target *Group
		kept := groups[:0:0]

		for _, g := range groups {
			if !Overlaps(e.Start, e.End, g.Start, g.End) {
				kept = append(kept, g)
				continue
			}
			if target == nil {
				target = g
				kept = append(kept, g)
				continue
			}
			target.merge(g)
		}

		if target == nil {
			kept = append(kept, &Group{
				Start:   e.Start,
				End:     e.End,
				Entries: []Entry{e},
				order:   []int{idx},
			})
		} else {
			target.add(idx, e)
		}
		groups = kept
	}

	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = *g
		out[i].order = nil
	}
	return out
}

func (g *Group) add(idx int, e Entry) {
	g.Entries = append(g.Entries, e)
	g.order = append(g.order, idx)
	g.widen(e.Start, e.End)
}

// merge folds o into g, restoring input order across both member lists.
func (g *Group) merge(o *Group) {
	g.Entries = append(g.Entries, o.Entries...)
	g.order = append(g.order, o.order...)
	g.widen(o.Start, o.End)
	sort.Sort(byInputOrder{g})
}

func (g *Group) widen(start, end int) {
	if start < g.Start {
		g.Start = start
	}
	if end > g.End {
		g.End = end
	}
}

type byInputOrder struct{ g *Group }

func (s byInputOrder) Len() int           { return len(s.g.order) }
func (s byInputOrder) Less(i, j int) bool { return s.g.order[i] < s.g.order[j] }
func (s byInputOrder) Swap(i, j int) {
	s.g.order[i], s.g.order[j] = s.g.order[j], s.g.order[i]
	s.g.Entries[i], s.g.Entries[j] = s.g.Entries[j], s.g.Entries[i]
}

// GroupAppointments parses and groups one provider's appointments.
func GroupAppointments(apts []*model.Appointment) ([]Group, error) {
	entries, err := Resolve(apts)
	if err != nil {
		return nil, err
	}
	return GroupOverlaps(entries), nil
}
