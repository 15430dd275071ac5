package model

import (
	"fmt"

	"github.com/google/uuid"
)

// GroupMember places an appointment inside its overlap group.
type GroupMember struct {
	Appointment *Appointment `json:"appointment"`
	Start       string       `json:"start"`
	End         string       `json:"end"`
	Lane        int          `json:"lane"`
}

// OverlapGroup is a maximal run of appointments connected by time overlap.
type OverlapGroup struct {
	Start    string        `json:"start"`
	End      string        `json:"end"`
	Lanes    int           `json:"lanes"`
	Conflict bool          `json:"conflict"`
	Members  []GroupMember `json:"members"`
}

type ProviderSchedule struct {
	Provider string         `json:"provider"`
	Groups   []OverlapGroup `json:"groups"`
}

type DayView struct {
	ClinicID  uuid.UUID          `json:"clinic_id"`
	Date      string             `json:"date"`
	Providers []ProviderSchedule `json:"providers"`
	Stats     DayStats           `json:"stats"`
}

// Conflict is an overlap group of two or more appointments for one provider.
type Conflict struct {
	ClinicID       uuid.UUID `json:"clinic_id"`
	Date           string    `json:"date"`
	Provider       string    `json:"provider"`
	Start          string    `json:"start"`
	End            string    `json:"end"`
	AppointmentIDs []string  `json:"appointment_ids"`
}

func (c Conflict) Key() string {
	return fmt.Sprintf("%s/%s/%s/%v", c.ClinicID, c.Date, c.Provider, c.AppointmentIDs)
}

type DayStats struct {
	Total                   int            `json:"total"`
	Confirmed               int            `json:"confirmed"`
	Unconfirmed             int            `json:"unconfirmed"`
	IntakeComplete          int            `json:"intake_complete"`
	IntakePending           int            `json:"intake_pending"`
	ConflictingAppointments int            `json:"conflicting_appointments"`
	ConflictGroups          int            `json:"conflict_groups"`
	ByProvider              map[string]int `json:"by_provider"`
}

type Badge string

const (
	BadgeConfirmed      Badge = "confirmed"
	BadgeUnconfirmed    Badge = "unconfirmed"
	BadgeIntakeComplete Badge = "intake_complete"
	BadgeIntakePending  Badge = "intake_pending"
	BadgeConflict       Badge = "conflict"
)

type BadgeStyle struct {
	Label string `json:"label"`
	Tone  string `json:"tone"`
}

var badgeStyles = map[Badge]BadgeStyle{
	BadgeConfirmed:      {Label: "Confirmed", Tone: "success"},
	BadgeUnconfirmed:    {Label: "Unconfirmed", Tone: "warning"},
	BadgeIntakeComplete: {Label: "Intake complete", Tone: "info"},
	BadgeIntakePending:  {Label: "Intake pending", Tone: "neutral"},
	BadgeConflict:       {Label: "Conflict", Tone: "danger"},
}

func ParseBadge(s string) (Badge, error) {
	b := Badge(s)
	if _, ok := badgeStyles[b]; !ok {
		return "", fmt.Errorf("unknown badge %q", s)
	}
	return b, nil
}

func (b Badge) Style() BadgeStyle {
	return badgeStyles[b]
}

// Badges lists the display badges for an appointment. conflict marks a
// member of a multi-appointment overlap group.
func (a *Appointment) Badges(conflict bool) []Badge {
	badges := make([]Badge, 0, 3)
	if a.Status.Confirmed {
		badges = append(badges, BadgeConfirmed)
	} else {
		badges = append(badges, BadgeUnconfirmed)
	}
	if a.Status.IntakeComplete {
		badges = append(badges, BadgeIntakeComplete)
	} else {
		badges = append(badges, BadgeIntakePending)
	}
	if conflict {
		badges = append(badges, BadgeConflict)
	}
	return badges
}

// GroupResult is the grouping of a caller-supplied list of appointments.
type GroupResult struct {
	Providers []ProviderSchedule `json:"providers"`
	Stats     DayStats           `json:"stats"`
}

// BookingResult is returned by writes; Conflicts lists the overlap groups
// the written appointment now belongs to.
type BookingResult struct {
	Appointment *Appointment `json:"appointment"`
	Conflicts   []Conflict   `json:"conflicts"`
}

// GroupRequest carries appointments to group without storing them. Times
// are checked by the grouper so a malformed value is reported by name.
type GroupRequest struct {
	Appointments []*Appointment `json:"appointments" binding:"required,dive,required"`
}
