package apperrors

import "errors"

// Common errors
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidFormat      = errors.New("invalid token format")

	ErrPermissionDenied = errors.New("permission denied")

	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Placement domain errors
var (
	ErrStudentNotFound  = errors.New("student not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrInterestNotFound = errors.New("interest not found")
	ErrCompanyNotFound  = errors.New("company opening not found")
	ErrMessageNotFound  = errors.New("message not found")
	ErrSeminarNotFound  = errors.New("seminar not found")
	ErrExamNotFound     = errors.New("exam not found")
	ErrItemNotFound     = errors.New("stationery item not found")
	ErrRequestNotFound  = errors.New("stationery request not found")
	ErrStaffNotFound    = errors.New("staff user not found")

	ErrEnrollmentExists  = errors.New("enrollment number already exists")
	ErrAlreadyApplied    = errors.New("student already applied to this opening")
	ErrApplicationClosed = errors.New("application deadline has passed")
	ErrNotTargeted       = errors.New("student is not targeted by this resource")
	ErrProfileIncomplete = errors.New("profile incomplete: caste and gender are required")
	ErrNotAttended       = errors.New("only attendees can rate a seminar")

	ErrQRClosed       = errors.New("attendance is closed for this seminar")
	ErrQRTokenUnknown = errors.New("qr token is unknown or expired")

	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid request status transition")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}
