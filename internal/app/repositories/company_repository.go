package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/dberrors"
	"github.com/yigit/placement/internal/pkg/helpers"
	"github.com/yigit/placement/internal/pkg/logger"
	"github.com/yigit/placement/internal/pkg/targeting"
)

var companyColumns = []string{
	"co.id", "co.name", "co.position", "co.description", "co.application_deadline", "co.opening_type",
	"co.tenure_days", "co.custom_link", "co.image_url", "co.created_at",
	"co.targeting_mode", "co.interest_id", "i.name",
	"(SELECT COUNT(*) FROM company_applications ca WHERE ca.company_id = co.id) AS application_count",
}

// CompanyRepository handles company openings and applications
type CompanyRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(db *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{db: db, sb: newStatementBuilder()}
}

func (r *CompanyRepository) selectCompanies() squirrel.SelectBuilder {
	return r.sb.Select(companyColumns...).
		From("companies co").
		LeftJoin("interests i ON i.id = co.interest_id")
}

func scanCompany(row pgx.Row) (*models.Company, error) {
	var c models.Company
	err := row.Scan(
		&c.ID, &c.Name, &c.Position, &c.Description, &c.ApplicationDeadline, &c.OpeningType,
		&c.TenureDays, &c.CustomLink, &c.ImageURL, &c.CreatedAt,
		&c.TargetingMode, &c.InterestID, &c.InterestName,
		&c.ApplicationCount,
	)
	if err != nil {
		return nil, err
	}
	c.CourseTargets = []targeting.CourseSemester{}
	return &c, nil
}

func (r *CompanyRepository) queryCompanies(ctx context.Context, sql string, args ...interface{}) ([]*models.Company, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []*models.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]int64, len(companies))
	targets := make([]*models.Targeting, len(companies))
	for i, c := range companies {
		ids[i] = c.ID
		targets[i] = &c.Targeting
	}
	if err := attachTargets(ctx, r.db, r.sb, companyTargets, ids, targets); err != nil {
		return nil, err
	}
	return companies, nil
}

// Insert writes one opening row and its course or student targets
func (r *CompanyRepository) Insert(ctx context.Context, q db.Querier, c *models.Company, p targeting.Payload) error {
	sql, args, err := r.sb.Insert("companies").
		Columns(
			"name", "position", "description", "application_deadline", "opening_type", "tenure_days",
			"targeting_mode", "interest_id", "custom_link", "image_url",
		).
		Values(
			c.Name, c.Position, c.Description, c.ApplicationDeadline, c.OpeningType, c.TenureDays,
			c.TargetingMode, c.InterestID, c.CustomLink, c.ImageURL,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building insert company SQL")
		return err
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		return translateWriteError(err, "company", apperrors.ErrInterestNotFound)
	}
	return insertTargets(ctx, q, r.sb, companyTargets, c.ID, p)
}

// Update rewrites the descriptive fields and replaces the targeting of one row
func (r *CompanyRepository) Update(ctx context.Context, q db.Querier, c *models.Company, p targeting.Payload) error {
	sql, args, err := r.sb.Update("companies").
		Set("name", c.Name).
		Set("position", c.Position).
		Set("description", c.Description).
		Set("application_deadline", c.ApplicationDeadline).
		Set("opening_type", c.OpeningType).
		Set("tenure_days", c.TenureDays).
		Set("custom_link", c.CustomLink).
		Set("image_url", c.ImageURL).
		Set("targeting_mode", c.TargetingMode).
		Set("interest_id", c.InterestID).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update company SQL")
		return err
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return translateWriteError(err, "company", apperrors.ErrInterestNotFound)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCompanyNotFound
	}

	if err := deleteTargets(ctx, q, r.sb, companyTargets, c.ID); err != nil {
		return err
	}
	return insertTargets(ctx, q, r.sb, companyTargets, c.ID, p)
}

// Delete removes an opening with its targets and applications
func (r *CompanyRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCompanyNotFound
	}
	return nil
}

// GetByID retrieves an opening with its targeting
func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	sql, args, err := r.selectCompanies().Where(squirrel.Eq{"co.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get company SQL")
		return nil, err
	}

	companies, err := r.queryCompanies(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, apperrors.ErrCompanyNotFound
	}
	return companies[0], nil
}

// List returns a filtered page of openings, newest first
func (r *CompanyRepository) List(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, int64, error) {
	where := squirrel.And{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"co.name": pattern},
			squirrel.ILike{"co.position": pattern},
		})
	}
	if filter.OpeningType != "" {
		where = append(where, squirrel.Eq{"co.opening_type": filter.OpeningType})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("companies co").Where(where).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count companies SQL")
		return nil, 0, err
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting companies: %w", err)
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
	sql, args, err := r.selectCompanies().
		Where(where).
		OrderBy("co.created_at DESC", "co.id DESC").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list companies SQL")
		return nil, 0, err
	}

	companies, err := r.queryCompanies(ctx, sql, args...)
	return companies, total, err
}

// ListForStudent returns the openings that target a student, nearest deadline first
func (r *CompanyRepository) ListForStudent(ctx context.Context, student *models.Student) ([]*models.Company, error) {
	sql, args, err := r.selectCompanies().
		Where(targetsStudent(companyTargets, "co", student)).
		OrderBy("co.application_deadline", "co.id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building student companies SQL")
		return nil, err
	}
	return r.queryCompanies(ctx, sql, args...)
}

// IsTargeted reports whether an opening targets a student
func (r *CompanyRepository) IsTargeted(ctx context.Context, companyID int64, student *models.Student) (bool, error) {
	return isTargeted(ctx, r.db, r.sb, companyTargets, companyID, student)
}

// Apply records an application
func (r *CompanyRepository) Apply(ctx context.Context, companyID, studentID int64) (time.Time, error) {
	var appliedAt time.Time
	err := r.db.QueryRow(ctx,
		`INSERT INTO company_applications (company_id, student_id) VALUES ($1, $2) RETURNING applied_at`,
		companyID, studentID,
	).Scan(&appliedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "company_applications_company_student_key") {
			return time.Time{}, apperrors.ErrAlreadyApplied
		}
		return time.Time{}, translateWriteError(err, "application", apperrors.ErrCompanyNotFound)
	}
	return appliedAt, nil
}

// AppliedCompanyIDs returns the set of openings a student applied to
func (r *CompanyRepository) AppliedCompanyIDs(ctx context.Context, studentID int64) (map[int64]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT company_id FROM company_applications WHERE student_id = $1`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		applied[id] = true
	}
	return applied, rows.Err()
}

// Applicants lists the applications of an opening with student details
func (r *CompanyRepository) Applicants(ctx context.Context, companyID int64) ([]models.Applicant, error) {
	columns := append(append([]string{}, studentBriefColumns...), "ca.applied_at", "s.placement_status")
	sql, args, err := r.sb.Select(columns...).
		From("company_applications ca").
		Join("students s ON s.id = ca.student_id").
		Join("courses c ON c.id = s.course_id").
		Where(squirrel.Eq{"ca.company_id": companyID}).
		OrderBy("ca.applied_at", "s.full_name").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building applicants SQL")
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applicants := []models.Applicant{}
	for rows.Next() {
		var a models.Applicant
		err := rows.Scan(
			&a.ID, &a.FullName, &a.EnrollmentNumber, &a.CourseID, &a.CourseName, &a.CurrentSemester, &a.Email,
			&a.AppliedAt, &a.PlacementStatus,
		)
		if err != nil {
			return nil, err
		}
		applicants = append(applicants, a)
	}
	return applicants, rows.Err()
}

// Recipients lists the students-mode recipients of an opening
func (r *CompanyRepository) Recipients(ctx context.Context, companyID int64) ([]models.Recipient, error) {
	return loadRecipients(ctx, r.db, r.sb, companyTargets, companyID)
}
