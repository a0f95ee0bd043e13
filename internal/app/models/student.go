package models

import (
	"strings"
	"time"
)

// PlacementStatus of a student
type PlacementStatus string

const (
	PlacementActive PlacementStatus = "Active"
	PlacementPlaced PlacementStatus = "Placed"
)

// FeeCategory of a student
type FeeCategory string

const (
	FeeGeneral     FeeCategory = "GENERAL"
	FeeScholarship FeeCategory = "SCHOLARSHIP"
	FeeFreeship    FeeCategory = "FREESHIP"
	FeeEWS         FeeCategory = "EWS"
)

// Valid reports whether f is a known fee category
func (f FeeCategory) Valid() bool {
	switch f {
	case FeeGeneral, FeeScholarship, FeeFreeship, FeeEWS:
		return true
	}
	return false
}

// Allowed gender values for profile completion
var Genders = []string{"Male", "Female", "Other"}

// Student represents a student row joined with its course name.
// PasswordHash is never serialized.
type Student struct {
	ID                  int64           `json:"id"`
	FullName            string          `json:"full_name"`
	EnrollmentNumber    string          `json:"enrollment_number"`
	UniqueCode          *string         `json:"unique_code,omitempty"`
	CourseID            int64           `json:"course_id"`
	CourseName          string          `json:"course_name"`
	Email               string          `json:"email"`
	PhoneNumber         string          `json:"phone_number"`
	ParentPhoneNumber   string          `json:"parent_phone_number"`
	AdmissionSemester   int             `json:"admission_semester"`
	CurrentSemester     int             `json:"current_semester"`
	ResumeLink          string          `json:"resume_link"`
	AgreementLink       string          `json:"agreement_link"`
	PlacementStatus     PlacementStatus `json:"placement_status"`
	CompanyName         *string         `json:"company_name,omitempty"`
	PlacementTenureDays *int            `json:"placement_tenure_days,omitempty"`
	FeeCategory         FeeCategory     `json:"fee_category"`
	Caste               *string         `json:"caste"`
	Gender              *string         `json:"gender"`
	InterestIDs         []int64         `json:"interest_ids"`
	CreatedAt           time.Time       `json:"created_at"`

	PasswordHash string `json:"-"`
}

// HasCaste reports whether a non-blank caste is recorded
func (s *Student) HasCaste() bool {
	return s.Caste != nil && strings.TrimSpace(*s.Caste) != ""
}

// HasGender reports whether a non-blank gender is recorded
func (s *Student) HasGender() bool {
	return s.Gender != nil && strings.TrimSpace(*s.Gender) != ""
}

// StudentBrief is the compact row used by recipient, applicant and attendance lists
type StudentBrief struct {
	ID               int64  `json:"student_id"`
	FullName         string `json:"full_name"`
	EnrollmentNumber string `json:"enrollment_number"`
	CourseID         int64  `json:"course_id"`
	CourseName       string `json:"course_name"`
	CurrentSemester  int    `json:"current_semester"`
	Email            string `json:"email"`
}

// SemesterCount is the number of students in one (course, current semester) combination
type SemesterCount struct {
	CourseID   int64  `json:"course_id"`
	CourseName string `json:"course_name"`
	Semester   int    `json:"semester"`
	Count      int    `json:"count"`
}
