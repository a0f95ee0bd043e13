package models

import "time"

// Attendance statuses
const (
	AttendancePresent = "Present"
	AttendanceAbsent  = "Absent"
)

// AttendanceSource records how attendance was marked
type AttendanceSource string

const (
	SourceManual  AttendanceSource = "manual"
	SourceQR      AttendanceSource = "qr"
	SourceScanner AttendanceSource = "scanner"
)

// Seminar is a scheduled talk. SeminarDate carries the IST wall clock as
// stored (zone-less); use ist.FromStored to get the real instant.
type Seminar struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	SpeakerName     string    `json:"speaker_name"`
	SeminarDate     time.Time `json:"-"`
	QRActive        bool      `json:"qr_active"`
	AttendanceCount int       `json:"attendance_count"`
	AverageRating   *float64  `json:"average_rating"`
	RatingCount     int       `json:"rating_count"`
	CreatedAt       time.Time `json:"created_at"`
	Targeting
}

// SeminarQR is the attendance gate of a seminar
type SeminarQR struct {
	SeminarID     int64     `json:"seminar_id"`
	Token         string    `json:"token"`
	PreviousToken *string   `json:"-"`
	Active        bool      `json:"active"`
	RotatedAt     time.Time `json:"rotated_at"`
}

// AttendanceRow is one targeted student with their attendance state
type AttendanceRow struct {
	StudentBrief
	Status   string            `json:"status"`
	Source   *AttendanceSource `json:"source,omitempty"`
	MarkedAt *time.Time        `json:"marked_at,omitempty"`
}

// Rating is a student's feedback on a seminar
type Rating struct {
	ID          int64     `json:"id"`
	SeminarID   int64     `json:"seminar_id"`
	StudentID   int64     `json:"student_id"`
	StudentName string    `json:"student_name,omitempty"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}
