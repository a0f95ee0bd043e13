package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/repositories"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/auth"
)

// AuthService handles authentication for staff and students
type AuthService interface {
	StaffLogin(ctx context.Context, req *dto.StaffLoginRequest) (*dto.TokenResponse, error)
	StudentLogin(ctx context.Context, req *dto.StudentLoginRequest) (*dto.TokenResponse, error)
	Me(ctx context.Context, session auth.Session) (*dto.SessionResponse, error)
}

type authServiceImpl struct {
	staffRepo   *repositories.StaffRepository
	studentRepo *repositories.StudentRepository
	jwtService  *auth.JWTService
	logger      zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	staffRepo *repositories.StaffRepository,
	studentRepo *repositories.StudentRepository,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		staffRepo:   staffRepo,
		studentRepo: studentRepo,
		jwtService:  jwtService,
		logger:      logger,
	}
}

// StaffLogin authenticates an admin, committee or technical user
func (s *authServiceImpl) StaffLogin(ctx context.Context, req *dto.StaffLoginRequest) (*dto.TokenResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", apperrors.ErrValidationFailed)
	}

	user, err := s.staffRepo.GetByUsername(ctx, username)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrStaffNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading staff user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Info().Str("username", username).Msg("Staff login rejected")
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.generateTokenResponse(auth.Session{UserID: user.ID, Kind: auth.KindStaff, Role: string(user.Role)})
}

// StudentLogin authenticates a student by enrollment number
func (s *authServiceImpl) StudentLogin(ctx context.Context, req *dto.StudentLoginRequest) (*dto.TokenResponse, error) {
	enrollment := strings.TrimSpace(req.EnrollmentNumber)
	if enrollment == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: enrollment number and password are required", apperrors.ErrValidationFailed)
	}

	student, err := s.studentRepo.GetByEnrollmentNumber(ctx, enrollment)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading student: %w", err)
	}

	if !auth.CheckPassword(student.PasswordHash, req.Password) {
		s.logger.Info().Str("enrollment", enrollment).Msg("Student login rejected")
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.generateTokenResponse(auth.Session{UserID: student.ID, Kind: auth.KindStudent, Role: string(models.RoleStudent)})
}

// Me describes the caller of a request
func (s *authServiceImpl) Me(ctx context.Context, session auth.Session) (*dto.SessionResponse, error) {
	resp := &dto.SessionResponse{UserID: session.UserID, Kind: string(session.Kind), Role: session.Role}

	if session.IsStudent() {
		student, err := s.studentRepo.GetByID(ctx, session.UserID)
		if err != nil {
			return nil, err
		}
		resp.Name = student.FullName
		return resp, nil
	}

	user, err := s.staffRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	resp.Name = user.Username
	return resp, nil
}

func (s *authServiceImpl) generateTokenResponse(session auth.Session) (*dto.TokenResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateToken(session)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", session.UserID).Msg("Failed to generate access token")
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		Role:        session.Role,
		UserID:      session.UserID,
	}, nil
}
