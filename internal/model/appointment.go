package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-day format used on the wire and in storage.
const DateLayout = "2006-01-02"

type AppointmentType string

const (
	AppointmentTypeNewPatient   AppointmentType = "new_patient"
	AppointmentTypeFollowUp     AppointmentType = "follow_up"
	AppointmentTypeConsultation AppointmentType = "consultation"
	AppointmentTypeProcedure    AppointmentType = "procedure"
)

func (t AppointmentType) Valid() bool {
	switch t {
	case AppointmentTypeNewPatient, AppointmentTypeFollowUp, AppointmentTypeConsultation, AppointmentTypeProcedure:
		return true
	}
	return false
}

type AppointmentStatus struct {
	Confirmed      bool `json:"confirmed"`
	IntakeComplete bool `json:"intake_complete"`
}

// Appointment is one booking on a provider's day. Time holds the canonical
// HH:MM start; Duration is in minutes.
type Appointment struct {
	ID          string            `json:"id"`
	ClinicID    uuid.UUID         `json:"clinic_id,omitempty"`
	Provider    string            `json:"provider"`
	PatientName string            `json:"patient_name,omitempty"`
	Date        string            `json:"date,omitempty"`
	Time        string            `json:"time"`
	Duration    int               `json:"duration"`
	Type        AppointmentType   `json:"type,omitempty"`
	Status      AppointmentStatus `json:"status"`
	Notes       string            `json:"notes,omitempty"`
	SeriesID    *uuid.UUID        `json:"series_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at,omitempty"`
}

type CreateAppointmentRequest struct {
	Provider    string          `json:"provider" binding:"required,max=200"`
	PatientName string          `json:"patient_name" binding:"required,max=200"`
	Date        string          `json:"date" binding:"required,datetime=2006-01-02"`
	Time        string          `json:"time" binding:"required,clock"`
	Duration    int             `json:"duration" binding:"gte=0,lte=720"`
	Type        AppointmentType `json:"type" binding:"required,oneof=new_patient follow_up consultation procedure"`
	Confirmed   bool            `json:"confirmed"`
	Notes       string          `json:"notes" binding:"max=1000"`
}

type UpdateAppointmentRequest struct {
	Date           *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time           *string `json:"time" binding:"omitempty,clock"`
	Duration       *int    `json:"duration" binding:"omitempty,gte=0,lte=720"`
	Confirmed      *bool   `json:"confirmed"`
	IntakeComplete *bool   `json:"intake_complete"`
	Notes          *string `json:"notes" binding:"omitempty,max=1000"`
}

type AppointmentFilters struct {
	ClinicID  uuid.UUID
	Provider  string
	Date      string
	Confirmed *bool
}

// ParseDate reads a YYYY-MM-DD calendar day.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}
