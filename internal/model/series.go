package model

import (
	"github.com/google/uuid"
)

// AppointmentSeries is a recurring booking described by an RFC 5545 RRULE.
// The rule's DTSTART is the series' first day at Time.
type AppointmentSeries struct {
	Base
	ClinicID    uuid.UUID       `db:"clinic_id" json:"clinic_id"`
	Provider    string          `db:"provider" json:"provider"`
	PatientName string          `db:"patient_name" json:"patient_name"`
	RRule       string          `db:"rrule" json:"rrule"`
	StartDate   string          `db:"start_date" json:"start_date"`
	Time        string          `db:"start_time" json:"time"`
	Duration    int             `db:"duration_minutes" json:"duration"`
	Type        AppointmentType `db:"type" json:"type"`
}

type CreateSeriesRequest struct {
	Provider    string          `json:"provider" binding:"required,max=200"`
	PatientName string          `json:"patient_name" binding:"required,max=200"`
	RRule       string          `json:"rrule" binding:"required"`
	StartDate   string          `json:"start_date" binding:"required,datetime=2006-01-02"`
	Time        string          `json:"time" binding:"required,clock"`
	Duration    int             `json:"duration" binding:"gte=0,lte=720"`
	Type        AppointmentType `json:"type" binding:"required,oneof=new_patient follow_up consultation procedure"`
}
