package appointment

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-schedule/internal/middleware"
	"github.com/jwalitptl/clinic-schedule/internal/model"
	"github.com/jwalitptl/clinic-schedule/internal/service/appointment"
	apperrors "github.com/jwalitptl/clinic-schedule/pkg/errors"
	"github.com/jwalitptl/clinic-schedule/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the clinic-scoped routes on clinic, which must
// already carry the :clinic_id check, and the by-id routes on r.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, clinic *gin.RouterGroup) {
	clinic.POST("/appointments", h.CreateAppointment)
	clinic.GET("/appointments", h.ListAppointments)
	clinic.POST("/series", h.CreateSeries)

	appointments := r.Group("/appointments")
	{
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
		appointments.POST("/:id/confirm", h.ConfirmAppointment)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid clinic ID", err))
		return
	}

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	res, err := h.service.Create(c.Request.Context(), clinicID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithStatus(c, http.StatusCreated, res)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid clinic ID", err))
		return
	}

	filters := &model.AppointmentFilters{
		ClinicID: clinicID,
		Provider: c.Query("provider"),
		Date:     c.Query("date"),
	}
	if v := c.Query("confirmed"); v != "" {
		confirmed, err := strconv.ParseBool(v)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid confirmed filter", err))
			return
		}
		filters.Confirmed = &confirmed
	}

	apts, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apts)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	apt, ok := h.owned(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	apt, ok := h.owned(c)
	if !ok {
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	res, err := h.service.Update(c.Request.Context(), uuid.MustParse(apt.ID), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, res)
}

func (h *Handler) ConfirmAppointment(c *gin.Context) {
	apt, ok := h.owned(c)
	if !ok {
		return
	}

	res, err := h.service.Confirm(c.Request.Context(), uuid.MustParse(apt.ID))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, res)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	apt, ok := h.owned(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), uuid.MustParse(apt.ID)); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateSeries(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid clinic ID", err))
		return
	}

	var req model.CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	series, err := h.service.CreateSeries(c.Request.Context(), clinicID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithStatus(c, http.StatusCreated, series)
}

// owned loads the :id appointment and checks it belongs to the token's
// clinic. Appointments of other clinics are reported as missing.
func (h *Handler) owned(c *gin.Context) (*model.Appointment, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return nil, false
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return nil, false
	}

	if clinicID, ok := middleware.ClinicID(c); !ok || clinicID != apt.ClinicID {
		httputil.RespondWithError(c, apperrors.NotFound("appointment", nil))
		return nil, false
	}
	return apt, true
}
