// Package controllers contains the HTTP handlers. Controllers bind and
// validate input, pull the acting principal off the request, delegate to
// services, and translate errors through the central error handler.
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lsa-mis/student-visit-api/internal/app/models/dto"
)

// parseIDParam reads a path parameter as a positive int64. On failure it
// writes the 400 response and reports ok=false.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id < 1 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
			WithField(name).
			WithDetails(name + " must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// bindJSON binds the request body and writes the 400 response on failure
func bindJSON(ctx *gin.Context, obj interface{}) bool {
	if err := ctx.ShouldBindJSON(obj); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}

func respondData(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, dto.APIResponse{
		Data:      data,
		Timestamp: time.Now(),
	})
}

func respondMessage(ctx *gin.Context, status int, message string) {
	respondData(ctx, status, dto.SuccessResponse{Message: message})
}
