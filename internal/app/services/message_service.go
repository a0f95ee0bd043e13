package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/repositories"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/events"
	"github.com/yigit/placement/internal/pkg/metrics"
	"github.com/yigit/placement/internal/pkg/targeting"
)

// DefaultMessageType is used when a message is created without a type
const DefaultMessageType = "general"

// MessageService manages targeted announcements
type MessageService interface {
	ListMessages(ctx context.Context) ([]dto.MessageResponse, error)
	CreateMessage(ctx context.Context, req *dto.CreateMessageRequest) (*dto.CreatedResponse, error)
	UpdateMessage(ctx context.Context, id int64, req *dto.UpdateMessageRequest) (*dto.MessageResponse, error)
	DeleteMessage(ctx context.Context, id int64) error
	GetTargets(ctx context.Context, id int64) ([]targeting.CourseSemester, error)
	GetRecipients(ctx context.Context, id int64) ([]models.Recipient, error)
}

type messageServiceImpl struct {
	db          *db.PostgresDB
	messageRepo *repositories.MessageRepository
	targets     targetChecker
	publisher   events.Publisher
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(
	database *db.PostgresDB,
	messageRepo *repositories.MessageRepository,
	courseRepo *repositories.CourseRepository,
	studentRepo *repositories.StudentRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) MessageService {
	return &messageServiceImpl{
		db:          database,
		messageRepo: messageRepo,
		targets:     targetChecker{courseRepo: courseRepo, studentRepo: studentRepo},
		publisher:   publisher,
		metrics:     m,
		logger:      logger,
	}
}

// ListMessages returns every message with its target summary
func (s *messageServiceImpl) ListMessages(ctx context.Context) ([]dto.MessageResponse, error) {
	messages, err := s.messageRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	out := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, messageResponse(m))
	}
	return out, nil
}

// CreateMessage fans a message out over its targets in one transaction
func (s *messageServiceImpl) CreateMessage(ctx context.Context, req *dto.CreateMessageRequest) (*dto.CreatedResponse, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", apperrors.ErrValidationFailed)
	}
	messageType := strings.TrimSpace(req.MessageType)
	if messageType == "" {
		messageType = DefaultMessageType
	}

	payload, err := s.targets.check(ctx, req.Payload)
	if err != nil {
		return nil, err
	}

	rows := fanOut(payload)
	ids := make([]int64, 0, len(rows))
	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, t := range rows {
			m := &models.Message{
				Title:       title,
				Content:     content,
				MessageType: messageType,
				ImageURL:    strings.TrimSpace(req.ImageURL),
				Targeting:   t,
			}
			if err := s.messageRepo.Insert(ctx, tx, m, payload); err != nil {
				return err
			}
			ids = append(ids, m.ID)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("title", title).Msg("Failed to create messages")
		return nil, err
	}

	s.metrics.RecordMessagesCreated(ctx, len(ids), string(payload.Mode))
	publish(ctx, s.publisher, s.logger, events.MessageCreated, events.MessageCreatedEvent{
		IDs:           ids,
		Title:         title,
		TargetingMode: string(payload.Mode),
	})

	return &dto.CreatedResponse{Created: len(ids), IDs: ids}, nil
}

// UpdateMessage edits title, content and image
func (s *messageServiceImpl) UpdateMessage(ctx context.Context, id int64, req *dto.UpdateMessageRequest) (*dto.MessageResponse, error) {
	m := &models.Message{
		ID:       id,
		Title:    strings.TrimSpace(req.Title),
		Content:  strings.TrimSpace(req.Content),
		ImageURL: strings.TrimSpace(req.ImageURL),
	}
	if m.Title == "" || m.Content == "" {
		return nil, fmt.Errorf("%w: title and content are required", apperrors.ErrValidationFailed)
	}

	if err := s.messageRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	updated, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := messageResponse(updated)
	return &resp, nil
}

// DeleteMessage removes a message
func (s *messageServiceImpl) DeleteMessage(ctx context.Context, id int64) error {
	return s.messageRepo.Delete(ctx, id)
}

// GetTargets returns the course targets of a message
func (s *messageServiceImpl) GetTargets(ctx context.Context, id int64) ([]targeting.CourseSemester, error) {
	return s.messageRepo.CourseTargets(ctx, id)
}

// GetRecipients lists the selected students of a students-mode message
func (s *messageServiceImpl) GetRecipients(ctx context.Context, id int64) ([]models.Recipient, error) {
	if _, err := s.messageRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.messageRepo.Recipients(ctx, id)
}
