package dto

import (
	"time"

	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/pkg/targeting"
)

// CreateSeminarRequest creates seminars. SeminarDate accepts any of the
// forms ist.Normalize understands and is read as IST.
type CreateSeminarRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	SpeakerName string `json:"speaker_name"`
	SeminarDate string `json:"seminar_date" binding:"required"`
	targeting.Payload
}

// UpdateSeminarRequest edits the descriptive fields and date
type UpdateSeminarRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	SpeakerName string `json:"speaker_name"`
	SeminarDate string `json:"seminar_date" binding:"required"`
}

// SeminarResponse adds the IST date renderings and target summary
type SeminarResponse struct {
	models.Seminar
	SeminarDate        string            `json:"seminar_date" example:"2025-03-14T10:30:00"`
	SeminarDateIST     string            `json:"seminarDateIst" example:"2025-03-14T10:30:00+05:30"`
	SeminarDateDisplay string            `json:"seminarDateDisplay" example:"14 Mar 2025, 10:30 AM IST"`
	TargetSummary      targeting.Summary `json:"targetSummary"`
	TargetDisplay      string            `json:"targetDisplay"`
}

// AttendanceUpdateRequest is the manual attendance toggle
type AttendanceUpdateRequest struct {
	StudentID int64  `json:"student_id" binding:"required,gt=0"`
	Status    string `json:"status" binding:"required,oneof=Present Absent"`
}

// ScanRequest marks attendance from a scanned student code
type ScanRequest struct {
	Code string `json:"code" binding:"required"`
}

// AttendanceListResponse is the tab-filtered attendance sheet
type AttendanceListResponse struct {
	Tab          string                 `json:"tab"`
	Tabs         []targeting.Tab        `json:"tabs"`
	Students     []models.AttendanceRow `json:"students"`
	PresentCount int                    `json:"presentCount"`
	TotalCount   int                    `json:"totalCount"`
}

// RatingsResponse lists the ratings of a seminar
type RatingsResponse struct {
	Ratings []models.Rating `json:"ratings"`
	Average *float64        `json:"average"`
	Count   int             `json:"count"`
}

// QR attendance status values
const (
	QRStatusActive = "active"
	QRStatusClosed = "closed"
)

// QRResponse is the admin view of the current QR token
type QRResponse struct {
	SeminarID int64     `json:"seminarId"`
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	Active    bool      `json:"active"`
	Status    string    `json:"status"`
	RotatedAt time.Time `json:"rotatedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// QRStatusResponse is the read-only gate state
type QRStatusResponse struct {
	SeminarID int64  `json:"seminarId"`
	Active    bool   `json:"active"`
	Status    string `json:"status" example:"active"`
}

// QRToggleRequest opens or closes attendance
type QRToggleRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// AttendRequest is submitted by a student after scanning the seminar QR.
// One of EnrollmentNumber or UniqueCode identifies the student. Missing
// credentials are rejected after the gate check, not at binding.
type AttendRequest struct {
	EnrollmentNumber string `json:"enrollment_number"`
	UniqueCode       string `json:"unique_code"`
	Password         string `json:"password"`
}

// AttendResponse confirms a QR attendance
type AttendResponse struct {
	SeminarID int64  `json:"seminarId"`
	StudentID int64  `json:"studentId"`
	Status    string `json:"status"`
}
