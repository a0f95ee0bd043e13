package models

import "github.com/yigit/placement/internal/pkg/targeting"

// Targeting is embedded by every fan-out entity (company, message, seminar)
type Targeting struct {
	TargetingMode targeting.Mode             `json:"targeting_mode"`
	InterestID    *int64                     `json:"interest_id,omitempty"`
	InterestName  *string                    `json:"interest_name,omitempty"`
	CourseTargets []targeting.CourseSemester `json:"course_targets"`
	StudentCount  int                        `json:"student_count"`
}

// Targets converts the stored targeting into the summarizer input
func (t Targeting) Targets() targeting.Targets {
	out := targeting.Targets{
		Mode:          t.TargetingMode,
		CourseTargets: t.CourseTargets,
		StudentCount:  t.StudentCount,
	}
	if t.InterestName != nil {
		out.InterestName = *t.InterestName
	}
	return out
}

// Recipient is a students-mode target with its course context
type Recipient struct {
	StudentID        int64  `json:"student_id"`
	StudentName      string `json:"student_name"`
	EnrollmentNumber string `json:"enrollment_number"`
	CourseName       string `json:"course_name"`
	FromSemester     int    `json:"from_semester"`
}
