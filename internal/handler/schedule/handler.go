package schedule

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-schedule/internal/model"
	"github.com/jwalitptl/clinic-schedule/internal/service/schedule"
	apperrors "github.com/jwalitptl/clinic-schedule/pkg/errors"
	"github.com/jwalitptl/clinic-schedule/pkg/httputil"
)

const contentTypeCalendar = "text/calendar; charset=utf-8"

type Handler struct {
	service *schedule.Service
}

func NewHandler(service *schedule.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the stateless grouping endpoint on public and the
// day views on clinic.
func (h *Handler) RegisterRoutes(public *gin.RouterGroup, clinic *gin.RouterGroup) {
	public.POST("/schedule/group", h.Group)

	day := clinic.Group("/schedule")
	{
		day.GET("", h.DayView)
		day.GET("/conflicts", h.Conflicts)
		day.GET("/stats", h.Stats)
		day.GET("/export.ics", h.Export)
	}
}

func (h *Handler) Group(c *gin.Context) {
	var req model.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	res, err := h.service.Group(c.Request.Context(), req.Appointments)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, res)
}

func (h *Handler) DayView(c *gin.Context) {
	clinicID, date, ok := dayParams(c)
	if !ok {
		return
	}

	view, err := h.service.DayView(c.Request.Context(), clinicID, date, c.Query("provider"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, view)
}

func (h *Handler) Conflicts(c *gin.Context) {
	clinicID, date, ok := dayParams(c)
	if !ok {
		return
	}

	conflicts, err := h.service.Conflicts(c.Request.Context(), clinicID, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, conflicts)
}

func (h *Handler) Stats(c *gin.Context) {
	clinicID, date, ok := dayParams(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), clinicID, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, stats)
}

func (h *Handler) Export(c *gin.Context) {
	clinicID, date, ok := dayParams(c)
	if !ok {
		return
	}

	ics, err := h.service.ExportICS(c.Request.Context(), clinicID, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="schedule-`+date+`.ics"`)
	c.Data(http.StatusOK, contentTypeCalendar, []byte(ics))
}

func dayParams(c *gin.Context) (uuid.UUID, string, bool) {
	clinicID, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid clinic ID", err))
		return uuid.Nil, "", false
	}

	date := c.Query("date")
	if date == "" {
		httputil.RespondWithError(c, apperrors.BadRequest("date query parameter is required", nil))
		return uuid.Nil, "", false
	}
	return clinicID, date, true
}
