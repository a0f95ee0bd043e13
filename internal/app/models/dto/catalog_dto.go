package dto

import (
	"time"

	"github.com/yigit/placement/internal/pkg/targeting"
)

// CreateCourseRequest creates a course
type CreateCourseRequest struct {
	Name           string `json:"name" binding:"required"`
	TotalSemesters int    `json:"total_semesters" binding:"required,min=1,max=16"`
}

// CreateInterestRequest creates an interest
type CreateInterestRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateSubjectRequest creates a subject in a course semester
type CreateSubjectRequest struct {
	Name     string `json:"name" binding:"required"`
	CourseID int64  `json:"course_id" binding:"required,gt=0"`
	Semester int    `json:"semester" binding:"required,gt=0"`
}

// ExamSubjectRequest schedules one subject of an exam
type ExamSubjectRequest struct {
	SubjectID  int64     `json:"subject_id" binding:"required,gt=0"`
	TotalMarks int       `json:"total_marks" binding:"required,gt=0"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
}

// CreateExamRequest creates an exam and its timetable together
type CreateExamRequest struct {
	ExamName string               `json:"exam_name" binding:"required"`
	CourseID int64                `json:"course_id" binding:"required,gt=0"`
	Semester int                  `json:"semester" binding:"required,gt=0"`
	Subjects []ExamSubjectRequest `json:"subjects" binding:"required,min=1,dive"`
}

// CreateBroadcastRequest posts a notice to all students
type CreateBroadcastRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// UploadResponse returns the public URL of an uploaded image
type UploadResponse struct {
	ImageURL string `json:"imageUrl"`
}

// PrefillResponse is a validated targeting payload decoded from a handoff link
type PrefillResponse struct {
	targeting.Payload
	RowsToCreate int `json:"rowsToCreate"`
}
