package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-schedule/internal/model"
)

func providerApt(id, provider, clock string, duration int, confirmed, intake bool) *model.Appointment {
	return &model.Appointment{
		ID:       id,
		Provider: provider,
		Time:     clock,
		Duration: duration,
		Status:   model.AppointmentStatus{Confirmed: confirmed, IntakeComplete: intake},
	}
}

func TestGroupByProvider_ScopesOverlap(t *testing.T) {
	apts := []*model.Appointment{
		providerApt("1", "Dr. Chen", "9:00", 30, true, true),
		providerApt("2", "Dr. Okafor", "9:00", 30, false, false),
		providerApt("3", "Dr. Chen", "9:15", 30, true, false),
		providerApt("4", "Dr. Okafor", "10:00", 30, true, true),
	}

	pgs, err := GroupByProvider(apts)
	require.NoError(t, err)
	require.Len(t, pgs, 2)

	assert.Equal(t, "Dr. Chen", pgs[0].Provider)
	assert.Equal(t, [][]string{{"1", "3"}}, groupIDs(pgs[0].Groups))

	assert.Equal(t, "Dr. Okafor", pgs[1].Provider)
	assert.Equal(t, [][]string{{"2"}, {"4"}}, groupIDs(pgs[1].Groups))
}

func TestGroupByProvider_NilRecord(t *testing.T) {
	_, err := GroupByProvider([]*model.Appointment{nil, providerApt("1", "Dr. Chen", "9:00", 30, false, false)})
	var merr *MissingRecordError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, 0, merr.Index)
}

func TestGroupByProvider_PropagatesParseError(t *testing.T) {
	_, err := GroupByProvider([]*model.Appointment{
		providerApt("1", "Dr. Chen", "9:00", 30, false, false),
		providerApt("2", "Dr. Okafor", "25:00", 30, false, false),
	})
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "25:00", perr.Value)
}

func TestConflicts(t *testing.T) {
	pgs, err := GroupByProvider([]*model.Appointment{
		providerApt("1", "Dr. Chen", "9:00", 30, false, false),
		providerApt("2", "Dr. Chen", "9:10", 30, false, false),
		providerApt("3", "Dr. Chen", "11:00", 30, false, false),
		providerApt("4", "Dr. Okafor", "9:00", 30, false, false),
	})
	require.NoError(t, err)

	conflicts := Conflicts(pgs)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "Dr. Chen", conflicts[0].Provider)
	assert.Equal(t, "09:00", conflicts[0].Start)
	assert.Equal(t, "09:40", conflicts[0].End)
	assert.Equal(t, []string{"1", "2"}, conflicts[0].AppointmentIDs)
}

func TestAssignLanes(t *testing.T) {
	entries, err := Resolve([]*model.Appointment{
		apt("long", "9:00", 90),
		apt("early", "9:00", 30),
		apt("mid", "9:30", 30),
		apt("late", "9:45", 30),
	})
	require.NoError(t, err)

	groups := GroupOverlaps(entries)
	require.Len(t, groups, 1)

	lanes, n := AssignLanes(groups[0])
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{0, 1, 1, 2}, lanes)
}

func TestAssignLanes_Single(t *testing.T) {
	groups := mustGroup(t, []*model.Appointment{apt("a", "9:00", 30)})
	lanes, n := AssignLanes(groups[0])
	assert.Equal(t, 1, n)
	assert.Equal(t, []int{0}, lanes)
}

func TestToProviderSchedules(t *testing.T) {
	pgs, err := GroupByProvider([]*model.Appointment{
		providerApt("a", "Dr. Chen", "9:00", 30, true, false),
		providerApt("b", "Dr. Chen", "9:00", 30, false, false),
		providerApt("c", "Dr. Chen", "9:30", 0, false, true),
	})
	require.NoError(t, err)

	view := ToProviderSchedules(pgs)
	require.Len(t, view, 1)
	require.Len(t, view[0].Groups, 2)

	first := view[0].Groups[0]
	assert.True(t, first.Conflict)
	assert.Equal(t, 2, first.Lanes)
	assert.Equal(t, "09:00", first.Start)
	assert.Equal(t, "09:30", first.End)
	assert.Equal(t, 0, first.Members[0].Lane)
	assert.Equal(t, 1, first.Members[1].Lane)

	second := view[0].Groups[1]
	assert.False(t, second.Conflict)
	assert.Equal(t, "10:00", second.Members[0].End)
}

func TestStats(t *testing.T) {
	apts := []*model.Appointment{
		providerApt("1", "Dr. Chen", "9:00", 30, true, true),
		providerApt("2", "Dr. Chen", "9:15", 30, false, true),
		providerApt("3", "Dr. Chen", "9:20", 30, true, false),
		providerApt("4", "Dr. Okafor", "9:00", 30, false, false),
	}
	pgs, err := GroupByProvider(apts)
	require.NoError(t, err)

	st := Stats(apts, pgs)
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 2, st.Confirmed)
	assert.Equal(t, 2, st.Unconfirmed)
	assert.Equal(t, 2, st.IntakeComplete)
	assert.Equal(t, 2, st.IntakePending)
	assert.Equal(t, 1, st.ConflictGroups)
	assert.Equal(t, 3, st.ConflictingAppointments)
	assert.Equal(t, map[string]int{"Dr. Chen": 3, "Dr. Okafor": 1}, st.ByProvider)
}
