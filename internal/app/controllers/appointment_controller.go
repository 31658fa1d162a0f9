package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lsa-mis/student-visit-api/internal/app/models/dto"
	"github.com/lsa-mis/student-visit-api/internal/app/services"
	"github.com/lsa-mis/student-visit-api/internal/middleware"
)

// AppointmentController handles student appointment booking
type AppointmentController struct {
	bookingService *services.BookingService
}

// NewAppointmentController creates a new AppointmentController
func NewAppointmentController(bookingService *services.BookingService) *AppointmentController {
	return &AppointmentController{bookingService: bookingService}
}

// ListAvailable lists open slots in a program
// @Summary List available appointment slots
// @Description Lists open slots in a program the student is enrolled in, optionally filtered by VIP
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Param vipId query int false "Filter by VIP ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.AppointmentResponse} "Available slots"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not enrolled in this program"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /programs/{id}/appointments/available [get]
func (c *AppointmentController) ListAvailable(ctx *gin.Context) {
	programID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var vipID *int64
	if raw := ctx.Query("vipId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid vipId").
				WithField("vipId")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		vipID = &parsed
	}

	actor := middleware.ActorFromContext(ctx)
	appointments, err := c.bookingService.ListAvailable(ctx, actor, programID, vipID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, dto.FromAppointments(appointments))
}

// ListMine lists the slots the student currently holds in a program
// @Summary List my appointments
// @Description Lists the slots the authenticated student holds in a program
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.AppointmentResponse} "Selected slots"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /programs/{id}/appointments/mine [get]
func (c *AppointmentController) ListMine(ctx *gin.Context) {
	programID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	appointments, err := c.bookingService.ListMine(ctx, actor, programID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, dto.FromAppointments(appointments))
}

// Select books a slot for the student
// @Summary Select an appointment slot
// @Description Books the slot for the authenticated student. At most one student holds a slot; losing a race returns 409.
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} dto.APIResponse{data=dto.AppointmentResponse} "Slot booked"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not enrolled in this program"
// @Failure 404 {object} dto.ErrorResponse "Appointment not found"
// @Failure 409 {object} dto.ErrorResponse "Slot already taken or duplicate VIP booking"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /appointments/{id}/select [post]
func (c *AppointmentController) Select(ctx *gin.Context) {
	appointmentID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	appointment, err := c.bookingService.Select(ctx, actor, appointmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, dto.FromAppointment(appointment))
}

// Cancel releases a slot the student holds
// @Summary Cancel an appointment
// @Description Releases the slot back to available. Only the holding student may cancel.
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} dto.APIResponse{data=dto.AppointmentResponse} "Slot released"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not the holder of this appointment"
// @Failure 404 {object} dto.ErrorResponse "Appointment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /appointments/{id} [delete]
func (c *AppointmentController) Cancel(ctx *gin.Context) {
	appointmentID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	appointment, err := c.bookingService.Cancel(ctx, actor, appointmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, dto.FromAppointment(appointment))
}
