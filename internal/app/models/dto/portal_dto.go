package dto

import (
	"time"

	"github.com/yigit/placement/internal/app/models"
)

// StudentProfileResponse is the student detail with the profile gate flags
type StudentProfileResponse struct {
	*models.Student
	ProfileComplete           bool `json:"profileComplete"`
	RequiresProfileCompletion bool `json:"requiresProfileCompletion"`
}

// ProfileUpdateRequest completes the mandatory profile fields
type ProfileUpdateRequest struct {
	Caste  string `json:"caste" binding:"required"`
	Gender string `json:"gender" binding:"required,oneof=Male Female Other"`
}

// ApplyRequest applies the calling student to an opening
type ApplyRequest struct {
	CompanyID int64 `json:"company_id" binding:"required,gt=0"`
}

// RatingRequest rates an attended seminar
type RatingRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// StudentCompanyResponse is an opening as seen by one student
type StudentCompanyResponse struct {
	CompanyResponse
	HasApplied bool `json:"hasApplied"`
}

// StudentSeminarResponse is a seminar as seen by one student
type StudentSeminarResponse struct {
	SeminarResponse
	AttendanceStatus string `json:"attendanceStatus"`
	MyRating         *int   `json:"myRating"`
}

// DashboardStats summarizes a student's activity
type DashboardStats struct {
	AttendancePercentage float64  `json:"attendancePercentage"`
	SeminarsAttended     int      `json:"seminarsAttended"`
	PastSeminars         int      `json:"pastSeminars"`
	AverageGivenRating   *float64 `json:"averageGivenRating"`
	ApplicationCount     int      `json:"applicationCount"`
}

// DashboardResponse aggregates every section of the student home page.
// Degraded names the sections that failed to load and were left empty.
type DashboardResponse struct {
	Profile    StudentProfileResponse   `json:"profile"`
	Messages   []MessageResponse        `json:"messages"`
	Companies  []StudentCompanyResponse `json:"companies"`
	Seminars   []StudentSeminarResponse `json:"seminars"`
	Broadcasts []models.Broadcast       `json:"broadcasts"`
	Stats      DashboardStats           `json:"stats"`
	Degraded   []string                 `json:"degraded"`
}

// ApplicationResponse confirms an application
type ApplicationResponse struct {
	CompanyID int64     `json:"companyId"`
	StudentID int64     `json:"studentId"`
	AppliedAt time.Time `json:"appliedAt"`
}
