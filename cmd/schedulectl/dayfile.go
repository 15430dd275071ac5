package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jwalitptl/clinic-schedule/internal/model"
)

// dayFile is the YAML description of one clinic day:
//
//	date: 2024-05-01
//	timezone: Europe/Berlin
//	appointments:
//	  - id: a
//	    provider: Dr. Chen
//	    time: "9:00"
//	    duration: 30
//	    confirmed: true
type dayFile struct {
	Date         string           `yaml:"date"`
	Timezone     string           `yaml:"timezone"`
	Appointments []dayAppointment `yaml:"appointments"`
}

type dayAppointment struct {
	ID             string `yaml:"id"`
	Provider       string `yaml:"provider"`
	Patient        string `yaml:"patient"`
	Time           string `yaml:"time"`
	Duration       int    `yaml:"duration"`
	Type           string `yaml:"type"`
	Confirmed      bool   `yaml:"confirmed"`
	IntakeComplete bool   `yaml:"intake_complete"`
}

func readDayFile(path string, stdin io.Reader) (*dayFile, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var day dayFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&day); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for i, a := range day.Appointments {
		if a.ID == "" {
			return nil, fmt.Errorf("appointment %d has no id", i+1)
		}
	}
	return &day, nil
}

func (d *dayFile) appointments() []*model.Appointment {
	apts := make([]*model.Appointment, 0, len(d.Appointments))
	for _, a := range d.Appointments {
		apts = append(apts, &model.Appointment{
			ID:          a.ID,
			Provider:    a.Provider,
			PatientName: a.Patient,
			Date:        d.Date,
			Time:        a.Time,
			Duration:    a.Duration,
			Type:        model.AppointmentType(a.Type),
			Status: model.AppointmentStatus{
				Confirmed:      a.Confirmed,
				IntakeComplete: a.IntakeComplete,
			},
		})
	}
	return apts
}
