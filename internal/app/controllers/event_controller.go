package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lsa-mis/student-visit-api/internal/app/models/dto"
	"github.com/lsa-mis/student-visit-api/internal/app/services"
	"github.com/lsa-mis/student-visit-api/internal/middleware"
)

// EventController handles the program calendar
type EventController struct {
	eventService *services.EventService
}

// NewEventController creates a new EventController
func NewEventController(eventService *services.EventService) *EventController {
	return &EventController{eventService: eventService}
}

// Create handles calendar event creation
// @Summary Create a calendar event
// @Description Adds an event to a program calendar the actor administers
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEventRequest true "Event information"
// @Success 201 {object} dto.APIResponse{data=models.CalendarEvent} "Event created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /events [post]
func (c *EventController) Create(ctx *gin.Context) {
	var req dto.CreateEventRequest
	if !bindJSON(ctx, &req) {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	event, err := c.eventService.Create(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusCreated, event)
}

// ListForProgram lists a program's calendar
// @Summary List program events
// @Description Lists the calendar events in a program, ordered by start time
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Success 200 {object} dto.APIResponse{data=[]models.CalendarEvent} "Events"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /programs/{id}/events [get]
func (c *EventController) ListForProgram(ctx *gin.Context) {
	programID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	events, err := c.eventService.ListForProgram(ctx, actor, programID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, events)
}

// Update modifies a calendar event
// @Summary Update a calendar event
// @Description Updates an event on a program calendar the actor administers
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.UpdateEventRequest true "Event information"
// @Success 200 {object} dto.APIResponse{data=models.CalendarEvent} "Event updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /events/{id} [put]
func (c *EventController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if !bindJSON(ctx, &req) {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	event, err := c.eventService.Update(ctx, actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, event)
}

// Delete removes a calendar event
// @Summary Delete a calendar event
// @Description Deletes an event from a program calendar the actor administers
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Event deleted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /events/{id} [delete]
func (c *EventController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	if err := c.eventService.Delete(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondMessage(ctx, http.StatusOK, "Event deleted")
}
