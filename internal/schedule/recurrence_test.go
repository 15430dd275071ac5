package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-schedule/internal/model"
)

func weeklySeries(rule string) *model.AppointmentSeries {
	return &model.AppointmentSeries{
		Base:        model.Base{ID: uuid.MustParse("6f1c1f2e-3a55-4a7e-9a51-0b1f6c2d9e11")},
		Provider:    "Dr. Chen",
		PatientName: "R. Alvarez",
		RRule:       rule,
		StartDate:   "2024-05-06",
		Time:        "2:30 PM",
		Duration:    45,
		Type:        model.AppointmentTypeFollowUp,
	}
}

func TestExpandSeries_Weekly(t *testing.T) {
	series := []*model.AppointmentSeries{weeklySeries("FREQ=WEEKLY;BYDAY=MO,WE")}

	// 2024-05-08 is a Wednesday.
	apts, err := ExpandSeries(series, time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, apts, 1)

	a := apts[0]
	assert.Equal(t, "14:30", a.Time)
	assert.Equal(t, 45, a.Duration)
	assert.Equal(t, "2024-05-08", a.Date)
	assert.Equal(t, "Dr. Chen", a.Provider)
	require.NotNil(t, a.SeriesID)
	assert.Equal(t, series[0].ID, *a.SeriesID)
	assert.Equal(t, "series-6f1c1f2e-3a55-4a7e-9a51-0b1f6c2d9e11-20240508T1430", a.ID)

	// Thursday has no occurrence.
	apts, err = ExpandSeries(series, time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, apts)
}

func TestExpandSeries_BeforeStart(t *testing.T) {
	series := []*model.AppointmentSeries{weeklySeries("RRULE:FREQ=DAILY")}
	apts, err := ExpandSeries(series, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, apts)
}

func TestExpandSeries_Count(t *testing.T) {
	series := []*model.AppointmentSeries{weeklySeries("FREQ=DAILY;COUNT=2")}

	apts, err := ExpandSeries(series, time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, apts, 1)

	apts, err = ExpandSeries(series, time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, apts)
}

func TestExpandSeries_InvalidRule(t *testing.T) {
	_, err := ExpandSeries([]*model.AppointmentSeries{weeklySeries("FREQ=SOMETIMES")}, time.Now())
	assert.Error(t, err)
}

func TestExpandSeries_InvalidClock(t *testing.T) {
	s := weeklySeries("FREQ=DAILY")
	s.Time = "half past two"
	_, err := ExpandSeries([]*model.AppointmentSeries{s}, time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}
