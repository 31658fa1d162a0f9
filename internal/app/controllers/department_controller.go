package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lsa-mis/student-visit-api/internal/app/models/dto"
	"github.com/lsa-mis/student-visit-api/internal/app/services"
	"github.com/lsa-mis/student-visit-api/internal/middleware"
)

// DepartmentController handles department management
type DepartmentController struct {
	departmentService *services.DepartmentService
}

// NewDepartmentController creates a new DepartmentController
func NewDepartmentController(departmentService *services.DepartmentService) *DepartmentController {
	return &DepartmentController{departmentService: departmentService}
}

// Create handles department creation
// @Summary Create a department
// @Description Creates a department. Super admin only.
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateDepartmentRequest true "Department information"
// @Success 201 {object} dto.APIResponse{data=models.Department} "Department created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Department already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /departments [post]
func (c *DepartmentController) Create(ctx *gin.Context) {
	var req dto.CreateDepartmentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	department, err := c.departmentService.Create(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusCreated, department)
}

// Get retrieves a department
// @Summary Get a department
// @Description Retrieves a department the actor administers
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Success 200 {object} dto.APIResponse{data=models.Department} "Department"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /departments/{id} [get]
func (c *DepartmentController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	department, err := c.departmentService.Get(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, department)
}

// List retrieves all departments
// @Summary List departments
// @Description Lists every department. Super admin only.
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Department} "Departments"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /departments [get]
func (c *DepartmentController) List(ctx *gin.Context) {
	actor := middleware.ActorFromContext(ctx)
	departments, err := c.departmentService.List(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, departments)
}

// Update modifies a department
// @Summary Update a department
// @Description Updates a department. Super admin only.
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Param request body dto.UpdateDepartmentRequest true "Department information"
// @Success 200 {object} dto.APIResponse{data=models.Department} "Department updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /departments/{id} [put]
func (c *DepartmentController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateDepartmentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	department, err := c.departmentService.Update(ctx, actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, department)
}

// Delete removes a department
// @Summary Delete a department
// @Description Deletes a department. Super admin only.
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Department deleted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /departments/{id} [delete]
func (c *DepartmentController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	if err := c.departmentService.Delete(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondMessage(ctx, http.StatusOK, "Department deleted")
}
