package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// checked in order; the first match wins
var errorMappings = []errorMapping{
	{apperrors.ErrQRTokenUnknown, http.StatusNotFound, dto.ErrorCodeQRTokenUnknown, "QR code is invalid or expired"},
	{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found"},
	{apperrors.ErrCourseNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Course not found"},
	{apperrors.ErrInterestNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Interest not found"},
	{apperrors.ErrCompanyNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Opening not found"},
	{apperrors.ErrMessageNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Message not found"},
	{apperrors.ErrSeminarNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Seminar not found"},
	{apperrors.ErrExamNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Exam not found"},
	{apperrors.ErrItemNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Item not found"},
	{apperrors.ErrRequestNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Request not found"},
	{apperrors.ErrStaffNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},

	{apperrors.ErrQRClosed, http.StatusForbidden, dto.ErrorCodeQRClosed, "Attendance is closed for this seminar"},
	{apperrors.ErrProfileIncomplete, http.StatusForbidden, dto.ErrorCodeProfileIncomplete, "Please complete your profile (caste and gender) first"},
	{apperrors.ErrNotTargeted, http.StatusForbidden, dto.ErrorCodeNotTargeted, "You are not eligible for this item"},
	{apperrors.ErrNotAttended, http.StatusForbidden, dto.ErrorCodeForbidden, "Only attendees can rate this seminar"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},

	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrInvalidFormat, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token format"},

	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},

	{apperrors.ErrAlreadyApplied, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "You have already applied to this opening"},
	{apperrors.ErrEnrollmentExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Enrollment number already exists"},
	{apperrors.ErrApplicationClosed, http.StatusConflict, dto.ErrorCodeApplicationClosed, "The application deadline has passed"},
	{apperrors.ErrInsufficientStock, http.StatusConflict, dto.ErrorCodeInsufficientStock, "Insufficient stock"},
	{apperrors.ErrInvalidTransition, http.StatusConflict, dto.ErrorCodeInvalidTransition, "Request cannot be moved to that status"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
}

// HandleAPIError maps a service error onto its HTTP status and error body
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ErrorDetailFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Unhandled API error")
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}

// ErrorDetailFor returns the status and body HandleAPIError would send
func ErrorDetailFor(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}

		detail := dto.NewErrorDetail(m.code, m.message)

		var custom *apperrors.CustomError
		if errors.As(err, &custom) {
			if custom.Message != "" {
				detail.Message = custom.Message
			}
			if custom.Details != nil {
				detail.Details = custom.Details
			}
		} else if m.status == http.StatusBadRequest || m.status == http.StatusConflict {
			// wrapped validation errors carry the reason after the sentinel
			detail.WithDetails(err.Error())
		}
		return m.status, detail
	}

	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}
