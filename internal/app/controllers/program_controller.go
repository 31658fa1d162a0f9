package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lsa-mis/student-visit-api/internal/app/models/dto"
	"github.com/lsa-mis/student-visit-api/internal/app/services"
	"github.com/lsa-mis/student-visit-api/internal/middleware"
	"github.com/lsa-mis/student-visit-api/internal/pkg/helpers"
)

// ProgramController handles visit program management and enrollment
type ProgramController struct {
	programService *services.ProgramService
}

// NewProgramController creates a new ProgramController
func NewProgramController(programService *services.ProgramService) *ProgramController {
	return &ProgramController{programService: programService}
}

// Create handles program creation
// @Summary Create a program
// @Description Creates a visit program under a department the actor administers
// @Tags programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProgramRequest true "Program information"
// @Success 201 {object} dto.APIResponse{data=models.Program} "Program created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Program code already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /programs [post]
func (c *ProgramController) Create(ctx *gin.Context) {
	var req dto.CreateProgramRequest
	if !bindJSON(ctx, &req) {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	program, err := c.programService.Create(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusCreated, program)
}

// Get retrieves a program
// @Summary Get a program
// @Description Retrieves a program. Admins see programs they manage, students see programs they are enrolled in.
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Success 200 {object} dto.APIResponse{data=models.Program} "Program"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /programs/{id} [get]
func (c *ProgramController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	program, err := c.programService.Get(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, program)
}

// ListForDepartment lists a department's programs
// @Summary List department programs
// @Description Lists the programs owned by a department the actor administers
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Program} "Programs"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /departments/{id}/programs [get]
func (c *ProgramController) ListForDepartment(ctx *gin.Context) {
	departmentID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	programs, err := c.programService.ListForDepartment(ctx, actor, departmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, programs)
}

// ListMine lists the acting student's programs
// @Summary List my programs
// @Description Lists the programs the authenticated student is enrolled in
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Program} "Programs"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /programs/mine [get]
func (c *ProgramController) ListMine(ctx *gin.Context) {
	actor := middleware.ActorFromContext(ctx)
	programs, err := c.programService.ListMine(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, programs)
}

// Update modifies a program
// @Summary Update a program
// @Description Updates a program the actor administers
// @Tags programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Param request body dto.UpdateProgramRequest true "Program information"
// @Success 200 {object} dto.APIResponse{data=models.Program} "Program updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /programs/{id} [put]
func (c *ProgramController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateProgramRequest
	if !bindJSON(ctx, &req) {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	program, err := c.programService.Update(ctx, actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, program)
}

// Delete removes a program
// @Summary Delete a program
// @Description Deletes a program the actor administers
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Program deleted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /programs/{id} [delete]
func (c *ProgramController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	if err := c.programService.Delete(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondMessage(ctx, http.StatusOK, "Program deleted")
}

// Enroll adds a student to a program
// @Summary Enroll a student
// @Description Enrolls a student into a program the actor administers
// @Tags programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Param request body dto.EnrollRequest true "Student to enroll"
// @Success 201 {object} dto.APIResponse{data=models.Enrollment} "Student enrolled"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Program or user not found"
// @Failure 409 {object} dto.ErrorResponse "Student already enrolled"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /programs/{id}/enrollments [post]
func (c *ProgramController) Enroll(ctx *gin.Context) {
	programID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.EnrollRequest
	if !bindJSON(ctx, &req) {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	enrollment, err := c.programService.Enroll(ctx, actor, programID, req.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusCreated, enrollment)
}

// Unenroll removes a student from a program
// @Summary Unenroll a student
// @Description Removes a student's enrollment from a program the actor administers
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Param userId path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Student unenrolled"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /programs/{id}/enrollments/{userId} [delete]
func (c *ProgramController) Unenroll(ctx *gin.Context) {
	programID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	if err := c.programService.Unenroll(ctx, actor, programID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondMessage(ctx, http.StatusOK, "Student unenrolled")
}

// ListEnrollments lists a program's roster
// @Summary List program enrollments
// @Description Lists the students enrolled in a program the actor administers
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Enrollment}} "Enrollments"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /programs/{id}/enrollments [get]
func (c *ProgramController) ListEnrollments(ctx *gin.Context) {
	programID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)

	actor := middleware.ActorFromContext(ctx)
	enrollments, pagination, err := c.programService.ListEnrollments(ctx, actor, programID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, dto.PaginatedResponse{
		Items:      enrollments,
		Pagination: pagination,
	})
}
