package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lsa-mis/student-visit-api/internal/app/models/dto"
	"github.com/lsa-mis/student-visit-api/internal/pkg/apperrors"
	"github.com/lsa-mis/student-visit-api/internal/pkg/errtrack"
	"github.com/lsa-mis/student-visit-api/internal/pkg/logger"
)

// HandleAPIError maps domain errors to HTTP responses. Controllers funnel
// every service error through here so the status/code mapping lives in one
// place. Booking errors get their own codes: conflicts over a slot are 409,
// acting on someone else's booking is 403, and a missing session always wins
// over a wrong role.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	// Authentication
	case errors.Is(err, apperrors.ErrUnauthenticated):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrTokenNotFound):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")

	// Authorization
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respondError(c, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied")

	// Booking
	case errors.Is(err, apperrors.ErrSlotAlreadyTaken):
		respondError(c, http.StatusConflict, dto.ErrorCodeSlotAlreadyTaken, "Appointment slot already taken")
	case errors.Is(err, apperrors.ErrDuplicateBooking):
		respondError(c, http.StatusConflict, dto.ErrorCodeDuplicateBooking, "You already hold an appointment with this person")
	case errors.Is(err, apperrors.ErrNotEnrolled):
		respondError(c, http.StatusForbidden, dto.ErrorCodeNotEnrolled, "You are not enrolled in this program")
	case errors.Is(err, apperrors.ErrNotOwner):
		respondError(c, http.StatusForbidden, dto.ErrorCodeNotOwner, "You do not hold this appointment")

	// Not found
	case apperrors.Is(err, apperrors.ErrResourceNotFound,
		apperrors.ErrAppointmentNotFound,
		apperrors.ErrUserNotFound,
		apperrors.ErrDepartmentNotFound,
		apperrors.ErrProgramNotFound,
		apperrors.ErrVIPNotFound,
		apperrors.ErrQuestionnaireNotFound,
		apperrors.ErrQuestionNotFound,
		apperrors.ErrEventNotFound,
		apperrors.ErrEnrollmentNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, notFoundMessage(err))

	// Conflicts
	case apperrors.Is(err, apperrors.ErrResourceAlreadyExists,
		apperrors.ErrConflict,
		apperrors.ErrEmailAlreadyExists,
		apperrors.ErrDepartmentAlreadyExists,
		apperrors.ErrProgramAlreadyExists,
		apperrors.ErrAlreadyEnrolled):
		respondError(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, conflictMessage(err))

	// Bad requests
	case apperrors.Is(err, apperrors.ErrBadRequest, apperrors.ErrValidationFailed):
		respondError(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, errorMessage(err, "Invalid request"))

	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		errtrack.Error(err, map[string]interface{}{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
		respondError(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "An unexpected error occurred")
	}
}

func respondError(c *gin.Context, status int, code dto.ErrorCode, message string) {
	c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}

// notFoundMessage keeps the concrete sentinel's wording when it carries more
// context than the generic line.
func notFoundMessage(err error) string {
	return errorMessage(err, "Resource not found")
}

func conflictMessage(err error) string {
	return errorMessage(err, "Resource already exists")
}

func errorMessage(err error, fallback string) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
