package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lsa-mis/student-visit-api/internal/app/models/dto"
	"github.com/lsa-mis/student-visit-api/internal/app/services"
	"github.com/lsa-mis/student-visit-api/internal/middleware"
)

// VIPController handles visiting faculty management and their slot schedules
type VIPController struct {
	vipService *services.VIPService
}

// NewVIPController creates a new VIPController
func NewVIPController(vipService *services.VIPService) *VIPController {
	return &VIPController{vipService: vipService}
}

// Create handles VIP creation
// @Summary Create a VIP
// @Description Adds a visiting faculty member to a program the actor administers
// @Tags vips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateVIPRequest true "VIP information"
// @Success 201 {object} dto.APIResponse{data=models.VIP} "VIP created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /vips [post]
func (c *VIPController) Create(ctx *gin.Context) {
	var req dto.CreateVIPRequest
	if !bindJSON(ctx, &req) {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	vip, err := c.vipService.Create(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusCreated, vip)
}

// ListForProgram lists a program's VIPs
// @Summary List program VIPs
// @Description Lists the visiting faculty in a program. Students must be enrolled, admins must manage the department.
// @Tags vips
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Success 200 {object} dto.APIResponse{data=[]models.VIP} "VIPs"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /programs/{id}/vips [get]
func (c *VIPController) ListForProgram(ctx *gin.Context) {
	programID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	vips, err := c.vipService.ListForProgram(ctx, actor, programID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, vips)
}

// Update modifies a VIP
// @Summary Update a VIP
// @Description Updates a visiting faculty member the actor administers
// @Tags vips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "VIP ID"
// @Param request body dto.UpdateVIPRequest true "VIP information"
// @Success 200 {object} dto.APIResponse{data=models.VIP} "VIP updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "VIP not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /vips/{id} [put]
func (c *VIPController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateVIPRequest
	if !bindJSON(ctx, &req) {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	vip, err := c.vipService.Update(ctx, actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, vip)
}

// Delete removes a VIP
// @Summary Delete a VIP
// @Description Deletes a visiting faculty member and their schedule
// @Tags vips
// @Produce json
// @Security BearerAuth
// @Param id path int true "VIP ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "VIP deleted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "VIP not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /vips/{id} [delete]
func (c *VIPController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	if err := c.vipService.Delete(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondMessage(ctx, http.StatusOK, "VIP deleted")
}

// CreateSlots bulk-creates appointment slots on a VIP's schedule
// @Summary Create appointment slots
// @Description Bulk-creates available slots on a VIP's schedule inside the program visit window
// @Tags vips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "VIP ID"
// @Param request body dto.CreateSlotsRequest true "Slots to create"
// @Success 201 {object} dto.APIResponse{data=[]dto.AppointmentResponse} "Slots created"
// @Failure 400 {object} dto.ErrorResponse "Invalid slot times"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "VIP not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /vips/{id}/slots [post]
func (c *VIPController) CreateSlots(ctx *gin.Context) {
	vipID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateSlotsRequest
	if !bindJSON(ctx, &req) {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	appointments, err := c.vipService.CreateSlots(ctx, actor, vipID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusCreated, dto.FromAppointments(appointments))
}

// ListSlots lists every slot on a VIP's schedule
// @Summary List a VIP's slots
// @Description Lists every slot on a VIP's schedule, held or not. Admin only.
// @Tags vips
// @Produce json
// @Security BearerAuth
// @Param id path int true "VIP ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.AppointmentResponse} "Slots"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "VIP not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /vips/{id}/slots [get]
func (c *VIPController) ListSlots(ctx *gin.Context) {
	vipID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	appointments, err := c.vipService.ListSlots(ctx, actor, vipID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, dto.FromAppointments(appointments))
}

// DeleteSlot removes an unselected slot
// @Summary Delete an appointment slot
// @Description Deletes an unselected slot from a VIP's schedule. Held slots cannot be deleted.
// @Tags vips
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Slot deleted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Appointment not found"
// @Failure 409 {object} dto.ErrorResponse "Slot is held by a student"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /slots/{id} [delete]
func (c *VIPController) DeleteSlot(ctx *gin.Context) {
	appointmentID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	if err := c.vipService.DeleteSlot(ctx, actor, appointmentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondMessage(ctx, http.StatusOK, "Slot deleted")
}
