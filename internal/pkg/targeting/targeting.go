// Package targeting holds the contract shared by company openings, messages
// and seminars for choosing who a row is addressed to, validating that choice,
// and summarising it back into a single display label.
package targeting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yigit/placement/internal/pkg/apperrors"
)

// Mode selects which payload shape is active
type Mode string

const (
	ModeInterest       Mode = "interest"
	ModeCourseSemester Mode = "course_semester"
	ModeStudents       Mode = "students"
)

// Valid reports whether m is one of the known modes
func (m Mode) Valid() bool {
	switch m {
	case ModeInterest, ModeCourseSemester, ModeStudents:
		return true
	}
	return false
}

// CourseSemester is a single (course, semester) target
type CourseSemester struct {
	CourseID   int64  `json:"course_id"`
	Semester   int    `json:"semester"`
	CourseName string `json:"course_name,omitempty"`
}

// Key returns the "<courseId>-<semester>" form used by tabs and prefill links
func (cs CourseSemester) Key() string {
	return fmt.Sprintf("%d-%d", cs.CourseID, cs.Semester)
}

// Payload is what an admin submits when creating a targeted row
type Payload struct {
	Mode            Mode             `json:"targeting_mode"`
	InterestIDs     []int64          `json:"interest_ids,omitempty"`
	CourseSemesters []CourseSemester `json:"course_semesters,omitempty"`
	StudentIDs      []int64          `json:"student_ids,omitempty"`
}

// Validate checks the payload for the selected mode
func Validate(p Payload) error {
	switch p.Mode {
	case ModeInterest:
		if len(p.InterestIDs) == 0 {
			return fmt.Errorf("%w: select at least one interest", apperrors.ErrValidationFailed)
		}
		for _, id := range p.InterestIDs {
			if id <= 0 {
				return fmt.Errorf("%w: interest id %d is invalid", apperrors.ErrValidationFailed, id)
			}
		}
	case ModeCourseSemester:
		if len(p.CourseSemesters) == 0 {
			return fmt.Errorf("%w: add at least one course and semester", apperrors.ErrValidationFailed)
		}
		for i, cs := range p.CourseSemesters {
			if cs.CourseID <= 0 || cs.Semester <= 0 {
				return fmt.Errorf("%w: course and semester are both required for target %d", apperrors.ErrValidationFailed, i+1)
			}
		}
	case ModeStudents:
		if len(p.StudentIDs) == 0 {
			return fmt.Errorf("%w: no students selected", apperrors.ErrValidationFailed)
		}
		for _, id := range p.StudentIDs {
			if id <= 0 {
				return fmt.Errorf("%w: student id %d is invalid", apperrors.ErrValidationFailed, id)
			}
		}
	default:
		return fmt.Errorf("%w: unknown targeting mode %q", apperrors.ErrValidationFailed, p.Mode)
	}
	return nil
}

// Normalize drops duplicate ids and combos while keeping submission order,
// and clears the slices that do not belong to the active mode.
func Normalize(p Payload) Payload {
	out := Payload{Mode: p.Mode}
	switch p.Mode {
	case ModeInterest:
		out.InterestIDs = uniqueIDs(p.InterestIDs)
	case ModeCourseSemester:
		seen := make(map[string]bool, len(p.CourseSemesters))
		for _, cs := range p.CourseSemesters {
			if seen[cs.Key()] {
				continue
			}
			seen[cs.Key()] = true
			out.CourseSemesters = append(out.CourseSemesters, cs)
		}
	case ModeStudents:
		out.StudentIDs = uniqueIDs(p.StudentIDs)
	}
	return out
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// RowCount is the number of rows a fan-out create produces for p
func RowCount(p Payload) int {
	if p.Mode == ModeInterest {
		return len(p.InterestIDs)
	}
	return 1
}

// OpeningType distinguishes full-time jobs from internships
type OpeningType string

const (
	OpeningJob        OpeningType = "job"
	OpeningInternship OpeningType = "internship"
)

// ValidateOpening checks the opening type and internship tenure
func ValidateOpening(openingType OpeningType, tenureDays *int) error {
	switch openingType {
	case OpeningInternship:
		if tenureDays == nil || *tenureDays <= 0 {
			return fmt.Errorf("%w: internships require a positive tenure_days", apperrors.ErrValidationFailed)
		}
	case OpeningJob:
		if tenureDays != nil && *tenureDays != 0 {
			return fmt.Errorf("%w: tenure_days only applies to internships", apperrors.ErrValidationFailed)
		}
	default:
		return fmt.Errorf("%w: opening_type must be job or internship", apperrors.ErrValidationFailed)
	}
	return nil
}

// Targets is the resolved targeting of a stored row
type Targets struct {
	Mode          Mode
	InterestName  string
	CourseTargets []CourseSemester
	StudentCount  int
}

// SummaryKind identifies which badge a row renders as
type SummaryKind string

const (
	KindInterest        SummaryKind = "interest"
	KindSingleCourse    SummaryKind = "single_course"
	KindMultipleCourses SummaryKind = "multiple_courses"
	KindStudents        SummaryKind = "students"
	KindNone            SummaryKind = "none"
)

// Summary is the single display label for a row's targeting
type Summary struct {
	Kind  SummaryKind `json:"kind"`
	Label string      `json:"label"`
	Count int         `json:"count"`
	// Drilldown is set when the label stands for a list the client can open
	Drilldown bool `json:"drilldown"`
}

// Summarize collapses a row's targets into one label
func Summarize(t Targets) Summary {
	switch {
	case len(t.CourseTargets) > 1:
		return Summary{
			Kind:      KindMultipleCourses,
			Label:     fmt.Sprintf("Multiple Courses (%d)", len(t.CourseTargets)),
			Count:     len(t.CourseTargets),
			Drilldown: true,
		}
	case len(t.CourseTargets) == 1:
		return Summary{
			Kind:  KindSingleCourse,
			Label: CourseLabel(t.CourseTargets[0]),
			Count: 1,
		}
	case t.Mode == ModeStudents:
		return Summary{
			Kind:      KindStudents,
			Label:     "Selected Students",
			Count:     t.StudentCount,
			Drilldown: t.StudentCount > 0,
		}
	case t.InterestName != "":
		return Summary{Kind: KindInterest, Label: t.InterestName, Count: 1}
	default:
		return Summary{Kind: KindNone, Label: "Not targeted"}
	}
}

// CourseLabel renders "{course_name} — Sem {semester}"
func CourseLabel(cs CourseSemester) string {
	name := cs.CourseName
	if name == "" {
		name = fmt.Sprintf("Course %d", cs.CourseID)
	}
	return fmt.Sprintf("%s — Sem %d", name, cs.Semester)
}

// Tab is one entry of the applicant/attendee tab strip
type Tab struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// AllTab is the key of the unfiltered tab
const AllTab = "all"

// Tabs returns the "All" tab followed by one tab per course target, sorted by key
func Tabs(targets []CourseSemester) []Tab {
	tabs := []Tab{{Key: AllTab, Label: "All"}}
	sorted := append([]CourseSemester(nil), targets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CourseID != sorted[j].CourseID {
			return sorted[i].CourseID < sorted[j].CourseID
		}
		return sorted[i].Semester < sorted[j].Semester
	})
	for _, cs := range sorted {
		tabs = append(tabs, Tab{Key: cs.Key(), Label: CourseLabel(cs)})
	}
	return tabs
}

// ParseTab parses "<courseId>-<semester>"; ok is false for the all tab
func ParseTab(tab string) (cs CourseSemester, ok bool, err error) {
	tab = strings.TrimSpace(tab)
	if tab == "" || strings.EqualFold(tab, AllTab) {
		return CourseSemester{}, false, nil
	}
	cs, err = parseCombo(tab)
	if err != nil {
		return CourseSemester{}, false, err
	}
	return cs, true, nil
}

// FilterByTab keeps exactly the rows whose (course, semester) key matches tab.
// The empty tab and "all" return rows unchanged.
func FilterByTab[T any](rows []T, tab string, key func(T) (courseID int64, semester int)) ([]T, error) {
	want, ok, err := ParseTab(tab)
	if err != nil {
		return nil, err
	}
	if !ok {
		return rows, nil
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		courseID, semester := key(row)
		if courseID == want.CourseID && semester == want.Semester {
			out = append(out, row)
		}
	}
	return out, nil
}
