package hallticket

import (
	"bytes"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placement/internal/app/models"
)

var pageObject = regexp.MustCompile(`/Type /Page\b[^s]`)

func sampleExam() *models.Exam {
	start := time.Date(2025, 5, 12, 4, 30, 0, 0, time.UTC)
	return &models.Exam{
		ID: 1, ExamName: "Mid Term", CourseID: 2, CourseName: "MCA", Semester: 3,
		Subjects: []models.ExamSubject{
			{SubjectID: 1, SubjectName: "Compilers", TotalMarks: 50, StartTime: start, EndTime: start.Add(2 * time.Hour)},
		},
	}
}

func TestRenderOnePagePerStudent(t *testing.T) {
	code := "STU1A2B3C4D"
	students := []*models.Student{
		{ID: 1, FullName: "Asha Rao", EnrollmentNumber: "EN1", CurrentSemester: 3, UniqueCode: &code},
		{ID: 2, FullName: "Vikram Singh", EnrollmentNumber: "EN2", CurrentSemester: 3},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Institution{Name: "Test College"}, sampleExam(), students, time.Now()))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Len(t, pageObject.FindAll(buf.Bytes(), -1), 2)
}

func TestRenderWithoutStudents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Institution{Name: "Test College"}, sampleExam(), nil, time.Now()))
	assert.Len(t, pageObject.FindAll(buf.Bytes(), -1), 1)
}
