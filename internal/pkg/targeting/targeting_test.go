package targeting

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/placement/internal/pkg/apperrors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		wantErr bool
	}{
		{"interest ok", Payload{Mode: ModeInterest, InterestIDs: []int64{3, 7}}, false},
		{"interest empty", Payload{Mode: ModeInterest}, true},
		{"interest zero id", Payload{Mode: ModeInterest, InterestIDs: []int64{0}}, true},
		{"combo ok", Payload{Mode: ModeCourseSemester, CourseSemesters: []CourseSemester{{CourseID: 1, Semester: 2}}}, false},
		{"combo empty", Payload{Mode: ModeCourseSemester}, true},
		{"combo missing semester", Payload{Mode: ModeCourseSemester, CourseSemesters: []CourseSemester{{CourseID: 1}}}, true},
		{"combo missing course", Payload{Mode: ModeCourseSemester, CourseSemesters: []CourseSemester{{Semester: 3}}}, true},
		{"students ok", Payload{Mode: ModeStudents, StudentIDs: []int64{5}}, false},
		{"students empty", Payload{Mode: ModeStudents}, true},
		{"unknown mode", Payload{Mode: "everyone"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.payload)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNormalize(t *testing.T) {
	p := Normalize(Payload{
		Mode:            ModeCourseSemester,
		InterestIDs:     []int64{1},
		CourseSemesters: []CourseSemester{{CourseID: 1, Semester: 2}, {CourseID: 1, Semester: 2}, {CourseID: 2, Semester: 1}},
	})
	assert.Nil(t, p.InterestIDs)
	assert.Len(t, p.CourseSemesters, 2)
	assert.Equal(t, 1, RowCount(p))

	p = Normalize(Payload{Mode: ModeInterest, InterestIDs: []int64{3, 7, 3}})
	assert.Equal(t, []int64{3, 7}, p.InterestIDs)
	assert.Equal(t, 2, RowCount(p))
}

func TestValidateOpening(t *testing.T) {
	days := 90
	zero := 0

	assert.NoError(t, ValidateOpening(OpeningInternship, &days))
	assert.Error(t, ValidateOpening(OpeningInternship, nil))
	assert.Error(t, ValidateOpening(OpeningInternship, &zero))
	assert.NoError(t, ValidateOpening(OpeningJob, nil))
	assert.NoError(t, ValidateOpening(OpeningJob, &zero))
	assert.Error(t, ValidateOpening(OpeningJob, &days))
	assert.Error(t, ValidateOpening("freelance", nil))
}

func TestSummarize(t *testing.T) {
	combos := func(n int) []CourseSemester {
		out := make([]CourseSemester, n)
		for i := range out {
			out[i] = CourseSemester{CourseID: int64(i + 1), Semester: 1, CourseName: "BCA"}
		}
		return out
	}

	for n := 0; n <= 6; n++ {
		s := Summarize(Targets{Mode: ModeCourseSemester, CourseTargets: combos(n)})
		switch {
		case n > 1:
			assert.Equal(t, KindMultipleCourses, s.Kind, "n=%d", n)
			assert.Equal(t, n, s.Count)
			assert.True(t, s.Drilldown)
		case n == 1:
			assert.Equal(t, KindSingleCourse, s.Kind)
			assert.Equal(t, "BCA — Sem 1", s.Label)
			assert.False(t, s.Drilldown)
		default:
			assert.Equal(t, KindNone, s.Kind)
		}
	}

	assert.Equal(t, "Multiple Courses (3)", Summarize(Targets{CourseTargets: combos(3)}).Label)

	s := Summarize(Targets{Mode: ModeStudents, StudentCount: 4})
	assert.Equal(t, KindStudents, s.Kind)
	assert.Equal(t, "Selected Students", s.Label)
	assert.Equal(t, 4, s.Count)

	s = Summarize(Targets{Mode: ModeInterest, InterestName: "Data Science"})
	assert.Equal(t, KindInterest, s.Kind)
	assert.Equal(t, "Data Science", s.Label)
}

type attendanceRow struct {
	StudentID int64
	CourseID  int64
	Semester  int
}

func rowKey(r attendanceRow) (int64, int) { return r.CourseID, r.Semester }

func TestFilterByTab(t *testing.T) {
	rows := []attendanceRow{
		{1, 3, 2}, {2, 3, 4}, {3, 3, 2}, {4, 5, 2}, {5, 3, 2},
	}

	t.Run("all returns everything", func(t *testing.T) {
		for _, tab := range []string{"", "all", "ALL"} {
			got, err := FilterByTab(rows, tab, rowKey)
			require.NoError(t, err)
			assert.Equal(t, rows, got)
		}
	})

	t.Run("exact course and semester match", func(t *testing.T) {
		got, err := FilterByTab(rows, "3-2", rowKey)
		require.NoError(t, err)
		ids := []int64{}
		for _, r := range got {
			ids = append(ids, r.StudentID)
		}
		assert.Equal(t, []int64{1, 3, 5}, ids)
	})

	t.Run("no match is empty not nil", func(t *testing.T) {
		got, err := FilterByTab(rows, "9-9", rowKey)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("malformed tab", func(t *testing.T) {
		_, err := FilterByTab(rows, "3_2", rowKey)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})
}

func TestTabs(t *testing.T) {
	tabs := Tabs([]CourseSemester{
		{CourseID: 4, Semester: 1, CourseName: "MBA"},
		{CourseID: 2, Semester: 3, CourseName: "BCA"},
	})
	require.Len(t, tabs, 3)
	assert.Equal(t, Tab{Key: "all", Label: "All"}, tabs[0])
	assert.Equal(t, "2-3", tabs[1].Key)
	assert.Equal(t, "MBA — Sem 1", tabs[2].Label)
}

func TestParsePrefill(t *testing.T) {
	t.Run("course semester", func(t *testing.T) {
		p, err := ParsePrefill(url.Values{"prefill": {"course_semester"}, "cs": {"3-2, 3-4,3-2"}})
		require.NoError(t, err)
		assert.Equal(t, ModeCourseSemester, p.Mode)
		assert.Equal(t, []CourseSemester{{CourseID: 3, Semester: 2}, {CourseID: 3, Semester: 4}}, p.CourseSemesters)
		assert.NoError(t, Validate(p))
	})

	t.Run("students", func(t *testing.T) {
		p, err := ParsePrefill(url.Values{"prefill": {"students"}, "ids": {"11,12,,11"}})
		require.NoError(t, err)
		assert.Equal(t, []int64{11, 12}, p.StudentIDs)
	})

	t.Run("absent", func(t *testing.T) {
		_, err := ParsePrefill(url.Values{})
		assert.ErrorIs(t, err, ErrNoPrefill)
	})

	t.Run("malformed", func(t *testing.T) {
		cases := []url.Values{
			{"prefill": {"course_semester"}, "cs": {"3"}},
			{"prefill": {"course_semester"}, "cs": {"x-2"}},
			{"prefill": {"course_semester"}},
			{"prefill": {"students"}, "ids": {"1,abc"}},
			{"prefill": {"interest"}},
		}
		for _, v := range cases {
			_, err := ParsePrefill(v)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "%v", v)
		}
	})
}
