package postgres

import (
	"github.com/jwalitptl/clinic-schedule/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

type seriesRepository struct {
	BaseRepository
}

type clinicRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func NewSeriesRepository(base BaseRepository) repository.SeriesRepository {
	return &seriesRepository{base}
}

func NewClinicRepository(base BaseRepository) repository.ClinicRepository {
	return &clinicRepository{base}
}
