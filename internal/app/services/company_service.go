package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/repositories"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/events"
	"github.com/yigit/placement/internal/pkg/helpers"
	"github.com/yigit/placement/internal/pkg/metrics"
	"github.com/yigit/placement/internal/pkg/targeting"
)

// CompanyService manages job and internship openings
type CompanyService interface {
	ListCompanies(ctx context.Context, filter models.CompanyFilter) (*dto.PagedResponse[dto.CompanyResponse], error)
	CreateCompany(ctx context.Context, req *dto.CompanyRequest) (*dto.OpeningsCreatedResponse, error)
	UpdateCompany(ctx context.Context, id int64, req *dto.CompanyRequest) (*dto.CompanyResponse, error)
	DeleteCompany(ctx context.Context, id int64) error
	GetApplicants(ctx context.Context, id int64, tab string) (*dto.ApplicantsResponse, error)
	GetRecipients(ctx context.Context, id int64) ([]models.Recipient, error)
	MarkPlaced(ctx context.Context, companyID, studentID int64, req *dto.PlacementRequest) (*models.Student, error)
}

type companyServiceImpl struct {
	db              *db.PostgresDB
	companyRepo     *repositories.CompanyRepository
	studentRepo     *repositories.StudentRepository
	targets         targetChecker
	publisher       events.Publisher
	metrics         *metrics.Metrics
	closingSoonDays int
	now             func() time.Time
	logger          zerolog.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(
	database *db.PostgresDB,
	companyRepo *repositories.CompanyRepository,
	courseRepo *repositories.CourseRepository,
	studentRepo *repositories.StudentRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	closingSoonDays int,
	logger zerolog.Logger,
) CompanyService {
	return &companyServiceImpl{
		db:              database,
		companyRepo:     companyRepo,
		studentRepo:     studentRepo,
		targets:         targetChecker{courseRepo: courseRepo, studentRepo: studentRepo},
		publisher:       publisher,
		metrics:         m,
		closingSoonDays: closingSoonDays,
		now:             time.Now,
		logger:          logger,
	}
}

func (s *companyServiceImpl) validateRequest(ctx context.Context, req *dto.CompanyRequest) (targeting.Payload, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Position = strings.TrimSpace(req.Position)
	if req.Name == "" || req.Position == "" {
		return targeting.Payload{}, fmt.Errorf("%w: name and position are required", apperrors.ErrValidationFailed)
	}
	if req.ApplicationDeadline.IsZero() {
		return targeting.Payload{}, fmt.Errorf("%w: application_deadline is required", apperrors.ErrValidationFailed)
	}
	if req.OpeningType == "" {
		req.OpeningType = targeting.OpeningJob
	}
	if req.OpeningType == targeting.OpeningJob && req.TenureDays != nil && *req.TenureDays == 0 {
		req.TenureDays = nil
	}
	if err := targeting.ValidateOpening(req.OpeningType, req.TenureDays); err != nil {
		return targeting.Payload{}, err
	}
	return s.targets.check(ctx, req.Payload)
}

func companyFromRequest(req *dto.CompanyRequest) *models.Company {
	return &models.Company{
		Name:                req.Name,
		Position:            req.Position,
		Description:         strings.TrimSpace(req.Description),
		ApplicationDeadline: req.ApplicationDeadline,
		OpeningType:         req.OpeningType,
		TenureDays:          req.TenureDays,
		CustomLink:          strings.TrimSpace(req.CustomLink),
		ImageURL:            strings.TrimSpace(req.ImageURL),
	}
}

// ListCompanies returns one page of openings with summaries and deadline state
func (s *companyServiceImpl) ListCompanies(ctx context.Context, filter models.CompanyFilter) (*dto.PagedResponse[dto.CompanyResponse], error) {
	switch targeting.OpeningType(filter.OpeningType) {
	case "", targeting.OpeningJob, targeting.OpeningInternship:
	default:
		return nil, fmt.Errorf("%w: opening_type must be job or internship", apperrors.ErrValidationFailed)
	}

	companies, total, err := s.companyRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing companies: %w", err)
	}

	now := s.now()
	items := make([]dto.CompanyResponse, 0, len(companies))
	for _, c := range companies {
		items = append(items, companyResponse(c, now, s.closingSoonDays))
	}
	return &dto.PagedResponse[dto.CompanyResponse]{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.Size),
	}, nil
}

// CreateCompany inserts one opening per fanned-out target, all in one transaction
func (s *companyServiceImpl) CreateCompany(ctx context.Context, req *dto.CompanyRequest) (*dto.OpeningsCreatedResponse, error) {
	payload, err := s.validateRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	rows := fanOut(payload)
	ids := make([]int64, 0, len(rows))
	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, t := range rows {
			c := companyFromRequest(req)
			c.Targeting = t
			if err := s.companyRepo.Insert(ctx, tx, c, payload); err != nil {
				return err
			}
			ids = append(ids, c.ID)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("name", req.Name).Msg("Failed to create company openings")
		return nil, err
	}

	s.logger.Info().Str("name", req.Name).Int("rows", len(ids)).Str("mode", string(payload.Mode)).Msg("Company openings created")
	s.metrics.RecordOpeningsCreated(ctx, len(ids), string(payload.Mode))
	publish(ctx, s.publisher, s.logger, events.OpeningCreated, events.OpeningCreatedEvent{
		IDs:           ids,
		Name:          req.Name,
		Position:      req.Position,
		TargetingMode: string(payload.Mode),
	})

	return &dto.OpeningsCreatedResponse{OpeningsCreated: len(ids), IDs: ids}, nil
}

// UpdateCompany rewrites one opening and replaces its targeting
func (s *companyServiceImpl) UpdateCompany(ctx context.Context, id int64, req *dto.CompanyRequest) (*dto.CompanyResponse, error) {
	payload, err := s.validateRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	target, err := singleRow(payload)
	if err != nil {
		return nil, err
	}

	c := companyFromRequest(req)
	c.ID = id
	c.Targeting = target
	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.companyRepo.Update(ctx, tx, c, payload)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := companyResponse(updated, s.now(), s.closingSoonDays)
	return &resp, nil
}

// DeleteCompany removes an opening
func (s *companyServiceImpl) DeleteCompany(ctx context.Context, id int64) error {
	if err := s.companyRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("companyID", id).Msg("Company opening deleted")
	return nil
}

// GetApplicants lists the applicants of an opening filtered by tab
func (s *companyServiceImpl) GetApplicants(ctx context.Context, id int64, tab string) (*dto.ApplicantsResponse, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applicants, err := s.companyRepo.Applicants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading applicants: %w", err)
	}

	briefs := make([]models.StudentBrief, len(applicants))
	for i, a := range applicants {
		briefs[i] = a.StudentBrief
	}

	filtered, err := targeting.FilterByTab(applicants, tab, func(a models.Applicant) (int64, int) {
		return briefKey(a.StudentBrief)
	})
	if err != nil {
		return nil, err
	}

	if tab == "" {
		tab = targeting.AllTab
	}
	return &dto.ApplicantsResponse{
		Tab:        tab,
		Tabs:       tabsFor(company.CourseTargets, briefs),
		Applicants: filtered,
	}, nil
}

// GetRecipients lists the selected students of a students-mode opening
func (s *companyServiceImpl) GetRecipients(ctx context.Context, id int64) ([]models.Recipient, error) {
	if _, err := s.companyRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.companyRepo.Recipients(ctx, id)
}

// MarkPlaced records that an applicant was placed through an opening
func (s *companyServiceImpl) MarkPlaced(ctx context.Context, companyID, studentID int64, req *dto.PlacementRequest) (*models.Student, error) {
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	applicants, err := s.companyRepo.Applicants(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("error loading applicants: %w", err)
	}
	applied := false
	for _, a := range applicants {
		if a.ID == studentID {
			applied = true
			break
		}
	}
	if !applied {
		return nil, apperrors.NewResourceNotFoundError("student has not applied to this opening")
	}

	companyName := company.Name
	if req != nil && req.CompanyName != nil && strings.TrimSpace(*req.CompanyName) != "" {
		companyName = strings.TrimSpace(*req.CompanyName)
	}
	tenure := company.TenureDays
	if req != nil && req.TenureDays != nil {
		tenure = req.TenureDays
	}

	if err := s.studentRepo.MarkPlaced(ctx, studentID, companyName, tenure); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("studentID", studentID).Int64("companyID", companyID).Msg("Student marked as placed")
	return s.studentRepo.GetByID(ctx, studentID)
}
