package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/logger"
	"github.com/yigit/placement/internal/pkg/targeting"
)

// targetTables names the side tables holding the targeting of one fan-out entity
type targetTables struct {
	entity       string
	fk           string
	courseTable  string
	studentTable string
}

var (
	companyTargets = targetTables{"companies", "company_id", "company_course_targets", "company_students"}
	messageTargets = targetTables{"messages", "message_id", "message_course_targets", "message_recipients"}
	seminarTargets = targetTables{"seminars", "seminar_id", "seminar_course_targets", "seminar_students"}
)

// insertTargets writes the course or student rows of a freshly inserted entity
func insertTargets(ctx context.Context, q db.Querier, sb squirrel.StatementBuilderType, t targetTables, id int64, p targeting.Payload) error {
	var builder squirrel.InsertBuilder
	switch p.Mode {
	case targeting.ModeCourseSemester:
		builder = sb.Insert(t.courseTable).Columns(t.fk, "course_id", "semester")
		for _, cs := range p.CourseSemesters {
			builder = builder.Values(id, cs.CourseID, cs.Semester)
		}
	case targeting.ModeStudents:
		builder = sb.Insert(t.studentTable).Columns(t.fk, "student_id")
		for _, sid := range p.StudentIDs {
			builder = builder.Values(id, sid)
		}
	default:
		return nil
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", t.entity).Msg("Error building insert targets SQL")
		return err
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return translateWriteError(err, "target", nil)
	}
	return nil
}

// deleteTargets removes every course and student row of an entity
func deleteTargets(ctx context.Context, q db.Querier, sb squirrel.StatementBuilderType, t targetTables, id int64) error {
	for _, table := range []string{t.courseTable, t.studentTable} {
		sql, args, err := sb.Delete(table).Where(squirrel.Eq{t.fk: id}).ToSql()
		if err != nil {
			logger.Error().Err(err).Str("table", table).Msg("Error building delete targets SQL")
			return err
		}
		if _, err := q.Exec(ctx, sql, args...); err != nil {
			return err
		}
	}
	return nil
}

// loadCourseTargets returns the course targets of each entity id, labelled with course names
func loadCourseTargets(ctx context.Context, q db.Querier, sb squirrel.StatementBuilderType, t targetTables, ids []int64) (map[int64][]targeting.CourseSemester, error) {
	out := make(map[int64][]targeting.CourseSemester, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	sql, args, err := sb.Select("ct."+t.fk, "ct.course_id", "ct.semester", "c.name").
		From(t.courseTable + " ct").
		Join("courses c ON c.id = ct.course_id").
		Where(squirrel.Eq{"ct." + t.fk: ids}).
		OrderBy("c.name", "ct.semester").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", t.courseTable).Msg("Error building course targets SQL")
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ownerID int64
		var cs targeting.CourseSemester
		if err := rows.Scan(&ownerID, &cs.CourseID, &cs.Semester, &cs.CourseName); err != nil {
			return nil, err
		}
		out[ownerID] = append(out[ownerID], cs)
	}
	return out, rows.Err()
}

// loadStudentCounts returns the number of student recipients of each entity id
func loadStudentCounts(ctx context.Context, q db.Querier, sb squirrel.StatementBuilderType, t targetTables, ids []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	sql, args, err := sb.Select(t.fk, "COUNT(*)").
		From(t.studentTable).
		Where(squirrel.Eq{t.fk: ids}).
		GroupBy(t.fk).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", t.studentTable).Msg("Error building student counts SQL")
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ownerID int64
		var n int
		if err := rows.Scan(&ownerID, &n); err != nil {
			return nil, err
		}
		out[ownerID] = n
	}
	return out, rows.Err()
}

// attachTargets fills the course targets and student counts of a page of entities
func attachTargets(ctx context.Context, q db.Querier, sb squirrel.StatementBuilderType, t targetTables, ids []int64, targets []*models.Targeting) error {
	courseTargets, err := loadCourseTargets(ctx, q, sb, t, ids)
	if err != nil {
		return fmt.Errorf("error loading course targets: %w", err)
	}
	counts, err := loadStudentCounts(ctx, q, sb, t, ids)
	if err != nil {
		return fmt.Errorf("error loading student counts: %w", err)
	}
	for i, id := range ids {
		targets[i].CourseTargets = courseTargets[id]
		if targets[i].CourseTargets == nil {
			targets[i].CourseTargets = []targeting.CourseSemester{}
		}
		targets[i].StudentCount = counts[id]
	}
	return nil
}

// loadRecipients lists the students-mode recipients of an entity
func loadRecipients(ctx context.Context, q db.Querier, sb squirrel.StatementBuilderType, t targetTables, id int64) ([]models.Recipient, error) {
	sql, args, err := sb.Select("s.id", "s.full_name", "s.enrollment_number", "c.name", "s.current_semester").
		From(t.studentTable + " st").
		Join("students s ON s.id = st.student_id").
		Join("courses c ON c.id = s.course_id").
		Where(squirrel.Eq{"st." + t.fk: id}).
		OrderBy("s.full_name").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", t.studentTable).Msg("Error building recipients SQL")
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipients := []models.Recipient{}
	for rows.Next() {
		var r models.Recipient
		if err := rows.Scan(&r.StudentID, &r.StudentName, &r.EnrollmentNumber, &r.CourseName, &r.FromSemester); err != nil {
			return nil, err
		}
		recipients = append(recipients, r)
	}
	return recipients, rows.Err()
}

// targetsStudent builds the condition "entity alias targets student" for student-facing lists
func targetsStudent(t targetTables, alias string, student *models.Student) squirrel.Sqlizer {
	interestIDs := student.InterestIDs
	if interestIDs == nil {
		interestIDs = []int64{}
	}
	return squirrel.Or{
		squirrel.And{
			squirrel.Eq{alias + ".targeting_mode": string(targeting.ModeInterest)},
			squirrel.Eq{alias + ".interest_id": interestIDs},
		},
		squirrel.Expr(
			alias+".targeting_mode = 'course_semester' AND EXISTS (SELECT 1 FROM "+t.courseTable+
				" ct WHERE ct."+t.fk+" = "+alias+".id AND ct.course_id = ? AND ct.semester = ?)",
			student.CourseID, student.CurrentSemester,
		),
		squirrel.Expr(
			alias+".targeting_mode = 'students' AND EXISTS (SELECT 1 FROM "+t.studentTable+
				" st WHERE st."+t.fk+" = "+alias+".id AND st.student_id = ?)",
			student.ID,
		),
	}
}

// isTargeted reports whether entity id targets student
func isTargeted(ctx context.Context, q db.Querier, sb squirrel.StatementBuilderType, t targetTables, id int64, student *models.Student) (bool, error) {
	sql, args, err := sb.Select("1").
		From(t.entity + " e").
		Where(squirrel.Eq{"e.id": id}).
		Where(targetsStudent(t, "e", student)).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", t.entity).Msg("Error building is-targeted SQL")
		return false, err
	}

	var ok bool
	if err := q.QueryRow(ctx, sql, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// targetedStudentsQuery selects every student an entity targets
func targetedStudentsQuery(sb squirrel.StatementBuilderType, t targetTables, id int64, mode targeting.Mode, interestID *int64) squirrel.SelectBuilder {
	q := sb.Select(studentBriefColumns...).
		From("students s").
		Join("courses c ON c.id = s.course_id")

	switch mode {
	case targeting.ModeInterest:
		var interest int64
		if interestID != nil {
			interest = *interestID
		}
		q = q.Where(squirrel.Expr("EXISTS (SELECT 1 FROM student_interests si WHERE si.student_id = s.id AND si.interest_id = ?)", interest))
	case targeting.ModeCourseSemester:
		q = q.Where(squirrel.Expr("EXISTS (SELECT 1 FROM "+t.courseTable+" ct WHERE ct."+t.fk+
			" = ? AND ct.course_id = s.course_id AND ct.semester = s.current_semester)", id))
	case targeting.ModeStudents:
		q = q.Where(squirrel.Expr("EXISTS (SELECT 1 FROM "+t.studentTable+" st WHERE st."+t.fk+
			" = ? AND st.student_id = s.id)", id))
	default:
		q = q.Where("1 = 0")
	}
	return q.OrderBy("c.name", "s.current_semester", "s.full_name")
}
