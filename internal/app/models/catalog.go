package models

import "time"

// Course is an academic program with a fixed number of semesters
type Course struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	TotalSemesters int    `json:"total_semesters"`
}

// Interest is a placement interest area students pick at registration
type Interest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Subject belongs to one semester of a course
type Subject struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	CourseID int64  `json:"course_id"`
	Semester int    `json:"semester"`
}

// Exam groups scheduled subjects for a course semester
type Exam struct {
	ID         int64         `json:"id"`
	ExamName   string        `json:"exam_name"`
	CourseID   int64         `json:"course_id"`
	CourseName string        `json:"course_name"`
	Semester   int           `json:"semester"`
	Subjects   []ExamSubject `json:"subjects"`
	CreatedAt  time.Time     `json:"created_at"`
}

// ExamSubject is one timetable entry of an exam
type ExamSubject struct {
	SubjectID   int64     `json:"subject_id"`
	SubjectName string    `json:"subject_name"`
	TotalMarks  int       `json:"total_marks"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// Broadcast is a notice shown to every student
type Broadcast struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
