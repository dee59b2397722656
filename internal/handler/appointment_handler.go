package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MathewAndreiAbao/eguidance-api/internal/service"
	appErrors "github.com/MathewAndreiAbao/eguidance-api/pkg/errors"
	"github.com/MathewAndreiAbao/eguidance-api/pkg/response"
)

// AppointmentHandler exposes the appointment scheduling endpoints.
type AppointmentHandler struct {
	service      *service.AppointmentService
	availability *service.AvailabilityService
	metrics      *service.MetricsService
}

// NewAppointmentHandler constructs an appointment handler. metrics may be nil.
func NewAppointmentHandler(svc *service.AppointmentService, availability *service.AvailabilityService, metrics *service.MetricsService) *AppointmentHandler {
	return &AppointmentHandler{service: svc, availability: availability, metrics: metrics}
}

// Create godoc
// @Summary Book an appointment
// @Description Creates a pending appointment between a student and a counselor
// @Tags Appointments
// @Accept json
// @Produce json
// @Param payload body service.CreateAppointmentRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	appointment, err := h.service.Create(c.Request.Context(), claims.Actor(), req)
	if err != nil {
		h.observeConflict(err)
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveAppointmentStatus(string(appointment.Status))
	}
	response.Created(c, appointment)
}

// List godoc
// @Summary List own appointments
// @Description Lists the caller's appointments joined with counterparty names
// @Tags Appointments
// @Produce json
// @Param search query string false "Substring match on the counterparty"
// @Param sortBy query string false "date|time|student_name|counselor_name|status"
// @Param sortOrder query string false "asc|desc"
// @Success 200 {object} response.Envelope
// @Router /appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req := service.ListAppointmentsRequest{
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sortBy", "date"),
		SortOrder: c.DefaultQuery("sortOrder", "asc"),
	}
	records, err := h.service.List(c.Request.Context(), claims.Actor(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// AvailableTimes godoc
// @Summary Free slots for a counselor on a date
// @Tags Appointments
// @Produce json
// @Param counselor_id query string true "Counselor ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /appointments/available [get]
func (h *AppointmentHandler) AvailableTimes(c *gin.Context) {
	availability, err := h.availability.GetAvailableTimes(c.Request.Context(), c.Query("counselor_id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, availability, nil)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus godoc
// @Summary Advance appointment status
// @Description Moves an appointment along the pending/approved/successful lifecycle
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body updateStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/status [put]
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	appointment, err := h.service.UpdateStatus(c.Request.Context(), claims.Actor(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveAppointmentStatus(string(appointment.Status))
	}
	response.JSON(c, http.StatusOK, appointment, nil)
}

type rescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Reschedule godoc
// @Summary Move an appointment to another slot
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body rescheduleRequest true "New date and time"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id} [put]
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	appointment, err := h.service.Reschedule(c.Request.Context(), claims.Actor(), c.Param("id"), req.Date, req.Time)
	if err != nil {
		h.observeConflict(err)
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointment, nil)
}

// Delete godoc
// @Summary Delete an appointment
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 204
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.Actor(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *AppointmentHandler) observeConflict(err error) {
	if h.metrics == nil {
		return
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) && appErr.Code == appErrors.ErrSlotConflict.Code {
		h.metrics.ObserveSlotConflict()
	}
}
