package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/repositories"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/deadline"
	"github.com/yigit/placement/internal/pkg/ist"
	"github.com/yigit/placement/internal/pkg/targeting"
)

// targetChecker validates a targeting payload against stored courses, interests and students
type targetChecker struct {
	courseRepo  *repositories.CourseRepository
	studentRepo *repositories.StudentRepository
}

// check normalizes p and verifies every referenced row exists. Course
// targets come back labelled with their course names.
func (t targetChecker) check(ctx context.Context, p targeting.Payload) (targeting.Payload, error) {
	p = targeting.Normalize(p)
	if err := targeting.Validate(p); err != nil {
		return p, err
	}

	switch p.Mode {
	case targeting.ModeInterest:
		n, err := t.courseRepo.CountInterests(ctx, p.InterestIDs)
		if err != nil {
			return p, fmt.Errorf("error checking interests: %w", err)
		}
		if n != len(p.InterestIDs) {
			return p, fmt.Errorf("%w: one or more interests do not exist", apperrors.ErrValidationFailed)
		}
	case targeting.ModeCourseSemester:
		for i, cs := range p.CourseSemesters {
			course, err := t.courseRepo.GetCourseByID(ctx, cs.CourseID)
			if errors.Is(err, apperrors.ErrCourseNotFound) {
				return p, fmt.Errorf("%w: course %d does not exist", apperrors.ErrValidationFailed, cs.CourseID)
			}
			if err != nil {
				return p, fmt.Errorf("error checking course: %w", err)
			}
			if cs.Semester > course.TotalSemesters {
				return p, fmt.Errorf("%w: %s has only %d semesters", apperrors.ErrValidationFailed, course.Name, course.TotalSemesters)
			}
			p.CourseSemesters[i].CourseName = course.Name
		}
	case targeting.ModeStudents:
		n, err := t.studentRepo.CountExisting(ctx, p.StudentIDs)
		if err != nil {
			return p, fmt.Errorf("error checking students: %w", err)
		}
		if n != len(p.StudentIDs) {
			return p, fmt.Errorf("%w: one or more students do not exist", apperrors.ErrValidationFailed)
		}
	}
	return p, nil
}

// fanOut returns the targeting of each row a create produces: one row per
// interest in interest mode, a single row otherwise.
func fanOut(p targeting.Payload) []models.Targeting {
	if p.Mode != targeting.ModeInterest {
		return []models.Targeting{{
			TargetingMode: p.Mode,
			CourseTargets: p.CourseSemesters,
			StudentCount:  len(p.StudentIDs),
		}}
	}

	rows := make([]models.Targeting, 0, len(p.InterestIDs))
	for _, id := range p.InterestIDs {
		id := id
		rows = append(rows, models.Targeting{TargetingMode: p.Mode, InterestID: &id})
	}
	return rows
}

// singleRow narrows an update payload to the one row being edited
func singleRow(p targeting.Payload) (models.Targeting, error) {
	rows := fanOut(p)
	if len(rows) != 1 {
		return models.Targeting{}, fmt.Errorf("%w: an existing row can target only one interest", apperrors.ErrValidationFailed)
	}
	return rows[0], nil
}

func companyResponse(c *models.Company, now time.Time, closingSoonDays int) dto.CompanyResponse {
	return dto.CompanyResponse{
		Company:        *c,
		TargetSummary:  targeting.Summarize(c.Targets()),
		DeadlineStatus: deadline.Status(c.ApplicationDeadline, now, closingSoonDays),
	}
}

func messageResponse(m *models.Message) dto.MessageResponse {
	resp := dto.MessageResponse{
		Message:       *m,
		TargetSummary: targeting.Summarize(m.Targets()),
		MappingCount:  len(m.CourseTargets),
	}
	if m.TargetingMode == targeting.ModeStudents {
		resp.RecipientCount = m.StudentCount
	}
	return resp
}

func seminarResponse(s *models.Seminar) dto.SeminarResponse {
	naive := ist.WallClock(s.SeminarDate)
	summary := targeting.Summarize(s.Targets())
	return dto.SeminarResponse{
		Seminar:            *s,
		SeminarDate:        naive,
		SeminarDateIST:     s.SeminarDate.In(ist.Location).Format(time.RFC3339),
		SeminarDateDisplay: ist.FormatDisplay(naive),
		TargetSummary:      summary,
		TargetDisplay:      summary.Label,
	}
}

// tabsFor returns the tab strip of a row. Rows without course targets get
// one tab per (course, semester) present in the listed students.
func tabsFor(courseTargets []targeting.CourseSemester, students []models.StudentBrief) []targeting.Tab {
	if len(courseTargets) > 0 {
		return targeting.Tabs(courseTargets)
	}

	seen := make(map[string]bool)
	var combos []targeting.CourseSemester
	for _, s := range students {
		cs := targeting.CourseSemester{CourseID: s.CourseID, Semester: s.CurrentSemester, CourseName: s.CourseName}
		if seen[cs.Key()] {
			continue
		}
		seen[cs.Key()] = true
		combos = append(combos, cs)
	}
	sort.Slice(combos, func(i, j int) bool { return combos[i].Key() < combos[j].Key() })
	return targeting.Tabs(combos)
}

func briefKey(s models.StudentBrief) (int64, int) {
	return s.CourseID, s.CurrentSemester
}
