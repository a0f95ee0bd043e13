package targeting

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/yigit/placement/internal/pkg/apperrors"
)

// ErrNoPrefill is returned when the query carries no prefill parameter
var ErrNoPrefill = errors.New("no prefill requested")

// ParsePrefill decodes the cross-page handoff links produced from the
// students list:
//
//	?prefill=course_semester&cs=3-2,3-4
//	?prefill=students&ids=11,12
func ParsePrefill(values url.Values) (Payload, error) {
	kind := strings.TrimSpace(values.Get("prefill"))
	if kind == "" {
		return Payload{}, ErrNoPrefill
	}

	switch Mode(kind) {
	case ModeCourseSemester:
		raw := splitList(values.Get("cs"))
		if len(raw) == 0 {
			return Payload{}, fmt.Errorf("%w: cs is required for course_semester prefill", apperrors.ErrValidationFailed)
		}
		p := Payload{Mode: ModeCourseSemester}
		for _, item := range raw {
			cs, err := parseCombo(item)
			if err != nil {
				return Payload{}, err
			}
			p.CourseSemesters = append(p.CourseSemesters, cs)
		}
		return Normalize(p), nil

	case ModeStudents:
		raw := splitList(values.Get("ids"))
		if len(raw) == 0 {
			return Payload{}, fmt.Errorf("%w: ids is required for students prefill", apperrors.ErrValidationFailed)
		}
		p := Payload{Mode: ModeStudents}
		for _, item := range raw {
			id, err := strconv.ParseInt(item, 10, 64)
			if err != nil || id <= 0 {
				return Payload{}, fmt.Errorf("%w: invalid student id %q", apperrors.ErrValidationFailed, item)
			}
			p.StudentIDs = append(p.StudentIDs, id)
		}
		return Normalize(p), nil

	default:
		return Payload{}, fmt.Errorf("%w: unsupported prefill %q", apperrors.ErrValidationFailed, kind)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseCombo(s string) (CourseSemester, error) {
	courseStr, semStr, found := strings.Cut(strings.TrimSpace(s), "-")
	if !found {
		return CourseSemester{}, fmt.Errorf("%w: %q is not <courseId>-<semester>", apperrors.ErrValidationFailed, s)
	}
	courseID, err := strconv.ParseInt(courseStr, 10, 64)
	if err != nil || courseID <= 0 {
		return CourseSemester{}, fmt.Errorf("%w: invalid course id in %q", apperrors.ErrValidationFailed, s)
	}
	semester, err := strconv.Atoi(semStr)
	if err != nil || semester <= 0 {
		return CourseSemester{}, fmt.Errorf("%w: invalid semester in %q", apperrors.ErrValidationFailed, s)
	}
	return CourseSemester{CourseID: courseID, Semester: semester}, nil
}
