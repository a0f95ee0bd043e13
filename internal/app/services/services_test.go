package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/ist"
	"github.com/yigit/placement/internal/pkg/targeting"
)

func strPtr(s string) *string { return &s }

func TestNextRequestStatus(t *testing.T) {
	tests := []struct {
		current models.RequestStatus
		action  string
		want    models.RequestStatus
		wantErr error
	}{
		{models.RequestPending, ActionForward, models.RequestForwarded, nil},
		{models.RequestPending, ActionApprove, models.RequestApproved, nil},
		{models.RequestPending, ActionReject, models.RequestRejected, nil},
		{models.RequestForwarded, ActionApprove, models.RequestApproved, nil},
		{models.RequestForwarded, ActionReject, models.RequestRejected, nil},
		{models.RequestForwarded, ActionForward, "", apperrors.ErrInvalidTransition},
		{models.RequestApproved, ActionApprove, "", apperrors.ErrInvalidTransition},
		{models.RequestApproved, ActionReject, "", apperrors.ErrInvalidTransition},
		{models.RequestRejected, ActionApprove, "", apperrors.ErrInvalidTransition},
		{models.RequestRejected, ActionForward, "", apperrors.ErrInvalidTransition},
		{models.RequestPending, "cancel", "", apperrors.ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(string(tt.current)+"/"+tt.action, func(t *testing.T) {
			got, err := NextRequestStatus(tt.current, tt.action)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNeedsProfileCompletion(t *testing.T) {
	assert.True(t, NeedsProfileCompletion(&models.Student{}))
	assert.True(t, NeedsProfileCompletion(&models.Student{Caste: strPtr("OBC")}))
	assert.True(t, NeedsProfileCompletion(&models.Student{Caste: strPtr("  "), Gender: strPtr("Female")}))
	assert.False(t, NeedsProfileCompletion(&models.Student{Caste: strPtr("OBC"), Gender: strPtr("Female")}))
}

func TestDashboardStats(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, ist.Location)
	seminar := func(at time.Time, status string, rating *int) dto.StudentSeminarResponse {
		se := dto.StudentSeminarResponse{AttendanceStatus: status, MyRating: rating}
		se.Seminar.SeminarDate = at
		return se
	}
	four, five := 4, 5

	t.Run("empty", func(t *testing.T) {
		stats := DashboardStats(nil, now)
		assert.Zero(t, stats.PastSeminars)
		assert.Zero(t, stats.AttendancePercentage)
		assert.Nil(t, stats.AverageGivenRating)
	})

	t.Run("counts past seminars only", func(t *testing.T) {
		stats := DashboardStats([]dto.StudentSeminarResponse{
			seminar(now.Add(-72*time.Hour), models.AttendancePresent, &four),
			seminar(now.Add(-48*time.Hour), models.AttendanceAbsent, nil),
			seminar(now.Add(-24*time.Hour), models.AttendancePresent, &five),
			seminar(now.Add(24*time.Hour), models.AttendancePresent, nil),
		}, now)

		assert.Equal(t, 3, stats.PastSeminars)
		assert.Equal(t, 2, stats.SeminarsAttended)
		assert.Equal(t, 66.7, stats.AttendancePercentage)
		require.NotNil(t, stats.AverageGivenRating)
		assert.Equal(t, 4.5, *stats.AverageGivenRating)
	})
}

func TestGenerateUniqueCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := GenerateUniqueCode()
		require.True(t, strings.HasPrefix(code, UniqueCodePrefix))
		assert.Len(t, code, len(UniqueCodePrefix)+8)
		assert.Equal(t, strings.ToUpper(code), code)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestValidateSemesters(t *testing.T) {
	assert.NoError(t, ValidateSemesters(1, 1, 8))
	assert.NoError(t, ValidateSemesters(1, 8, 8))
	assert.NoError(t, ValidateSemesters(3, 5, 8))

	for _, c := range [][3]int{{0, 1, 8}, {2, 1, 8}, {1, 9, 8}, {1, 0, 8}} {
		err := ValidateSemesters(c[0], c[1], c[2])
		require.Error(t, err, "%v", c)
		assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	}
}

func TestFanOut(t *testing.T) {
	rows := fanOut(targeting.Payload{Mode: targeting.ModeInterest, InterestIDs: []int64{3, 7}})
	require.Len(t, rows, 2)
	assert.Equal(t, int64(3), *rows[0].InterestID)
	assert.Equal(t, int64(7), *rows[1].InterestID)

	combos := []targeting.CourseSemester{{CourseID: 1, Semester: 2}, {CourseID: 2, Semester: 4}}
	rows = fanOut(targeting.Payload{Mode: targeting.ModeCourseSemester, CourseSemesters: combos})
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].InterestID)
	assert.Equal(t, combos, rows[0].CourseTargets)

	rows = fanOut(targeting.Payload{Mode: targeting.ModeStudents, StudentIDs: []int64{4, 5, 6}})
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].StudentCount)
}

func TestSingleRow(t *testing.T) {
	_, err := singleRow(targeting.Payload{Mode: targeting.ModeInterest, InterestIDs: []int64{3, 7}})
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	row, err := singleRow(targeting.Payload{Mode: targeting.ModeInterest, InterestIDs: []int64{3}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), *row.InterestID)
}

func TestTabsFor(t *testing.T) {
	tabs := tabsFor([]targeting.CourseSemester{{CourseID: 2, Semester: 1, CourseName: "MBA"}}, nil)
	require.Len(t, tabs, 2)
	assert.Equal(t, targeting.AllTab, tabs[0].Key)
	assert.Equal(t, "2-1", tabs[1].Key)

	students := []models.StudentBrief{
		{ID: 1, CourseID: 1, CourseName: "BCA", CurrentSemester: 3},
		{ID: 2, CourseID: 1, CourseName: "BCA", CurrentSemester: 3},
		{ID: 3, CourseID: 1, CourseName: "BCA", CurrentSemester: 1},
	}
	tabs = tabsFor(nil, students)
	require.Len(t, tabs, 3)
	assert.Equal(t, []string{targeting.AllTab, "1-1", "1-3"}, []string{tabs[0].Key, tabs[1].Key, tabs[2].Key})
}

func TestSeminarResponseIST(t *testing.T) {
	at, err := ist.Parse("2025-03-14T10:30")
	require.NoError(t, err)

	resp := seminarResponse(&models.Seminar{
		ID:          9,
		Title:       "Resume clinic",
		SeminarDate: at,
		Targeting:   models.Targeting{TargetingMode: targeting.ModeStudents, StudentCount: 2},
	})

	assert.Equal(t, "2025-03-14T10:30:00", resp.SeminarDate)
	assert.Equal(t, "2025-03-14T10:30:00+05:30", resp.SeminarDateIST)
	assert.Equal(t, "14 Mar 2025, 10:30 AM IST", resp.SeminarDateDisplay)
	assert.Equal(t, resp.TargetSummary.Label, resp.TargetDisplay)
}

func TestValidateExamSubjects(t *testing.T) {
	start := time.Date(2025, 5, 2, 10, 0, 0, 0, ist.Location)
	subjects := map[int64]models.Subject{
		1: {ID: 1, Name: "DBMS", CourseID: 1, Semester: 3},
		2: {ID: 2, Name: "Networks", CourseID: 1, Semester: 3},
		3: {ID: 3, Name: "Accounting", CourseID: 2, Semester: 3},
	}
	entry := func(id int64, marks int, hours int) dto.ExamSubjectRequest {
		return dto.ExamSubjectRequest{SubjectID: id, TotalMarks: marks, StartTime: start, EndTime: start.Add(time.Duration(hours) * time.Hour)}
	}

	assert.NoError(t, ValidateExamSubjects([]dto.ExamSubjectRequest{entry(1, 100, 3), entry(2, 50, 2)}, subjects, 1, 3))

	bad := map[string][]dto.ExamSubjectRequest{
		"empty":         nil,
		"unknown":       {entry(9, 100, 3)},
		"other course":  {entry(3, 100, 3)},
		"duplicate":     {entry(1, 100, 3), entry(1, 100, 3)},
		"zero marks":    {entry(1, 0, 3)},
		"ends at start": {entry(1, 100, 0)},
	}
	for name, entries := range bad {
		t.Run(name, func(t *testing.T) {
			err := ValidateExamSubjects(entries, subjects, 1, 3)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
		})
	}
}
