package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lsa-mis/student-visit-api/internal/app/services"
	"github.com/lsa-mis/student-visit-api/internal/middleware"
)

// ReportController handles CSV exports
type ReportController struct {
	reportService *services.ReportService
}

// NewReportController creates a new ReportController
func NewReportController(reportService *services.ReportService) *ReportController {
	return &ReportController{reportService: reportService}
}

// ScheduleCSV streams a program's appointment schedule as CSV
// @Summary Export the appointment schedule
// @Description Downloads the full appointment schedule for a program as CSV, one line per slot
// @Tags reports
// @Produce text/csv
// @Security BearerAuth
// @Param programId path int true "Program ID"
// @Success 200 {string} string "CSV file"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/programs/{programId}/appointments.csv [get]
func (c *ReportController) ScheduleCSV(ctx *gin.Context) {
	programID, ok := parseIDParam(ctx, "programId")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	data, filename, err := c.reportService.ScheduleCSV(ctx, actor, programID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, "text/csv", data)
}

// RosterCSV streams a program's enrolled students as CSV
// @Summary Export the student roster
// @Description Downloads the enrolled students of a program as CSV with their selected appointment counts
// @Tags reports
// @Produce text/csv
// @Security BearerAuth
// @Param programId path int true "Program ID"
// @Success 200 {string} string "CSV file"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/programs/{programId}/students.csv [get]
func (c *ReportController) RosterCSV(ctx *gin.Context) {
	programID, ok := parseIDParam(ctx, "programId")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	data, filename, err := c.reportService.RosterCSV(ctx, actor, programID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, "text/csv", data)
}
