package dto

import "github.com/yigit/placement/internal/app/models"

// StudentRequest creates or updates a student. Password is optional: on
// create a random one is generated when absent, on update it is re-hashed
// only when present.
type StudentRequest struct {
	FullName          string             `json:"full_name" binding:"required"`
	EnrollmentNumber  string             `json:"enrollment_number" binding:"required,enrollment"`
	CourseID          int64              `json:"course_id" binding:"required,gt=0"`
	Email             string             `json:"email" binding:"required,email"`
	PhoneNumber       string             `json:"phone_number" binding:"omitempty,phone"`
	ParentPhoneNumber string             `json:"parent_phone_number" binding:"omitempty,phone"`
	AdmissionSemester int                `json:"admission_semester" binding:"required,gte=1"`
	CurrentSemester   int                `json:"current_semester" binding:"required,gte=1"`
	ResumeLink        string             `json:"resume_link"`
	AgreementLink     string             `json:"agreement_link"`
	FeeCategory       models.FeeCategory `json:"fee_category"`
	InterestIDs       []int64            `json:"interest_ids" binding:"required,min=1,max=5"`
	Password          *string            `json:"password" binding:"omitempty,min=6"`
	Caste             *string            `json:"caste"`
	Gender            *string            `json:"gender"`
}

// StudentFilter narrows the admin student list
type StudentFilter struct {
	CourseID        *int64
	Semester        *int
	PlacementStatus string
	Search          string
	Page            int
	Size            int
}

// StudentCreatedResponse returns the new student and, once, its initial password
type StudentCreatedResponse struct {
	Student         *models.Student `json:"student"`
	InitialPassword string          `json:"initialPassword,omitempty"`
}

// PasswordResetResponse returns a freshly generated password once
type PasswordResetResponse struct {
	StudentID       int64  `json:"studentId"`
	InitialPassword string `json:"initialPassword"`
}

// StudentDetailsRequest is a batch id lookup
type StudentDetailsRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1,max=500"`
}
