// Package services holds the placement business rules. Services validate
// input, run multi-row writes in one transaction, and publish domain events
// after a write commits.
//
// Services defined in this package:
//   - AuthService: staff and student login, session lookup
//   - CompanyService: openings, applicants, placements
//   - MessageService: targeted announcements
//   - SeminarService: seminars, attendance sheets, ratings
//   - QRService: the rotating QR attendance gate
//   - StudentService: admin student management
//   - PortalService: the student-facing dashboard, applications and ratings
//   - CatalogService: courses, interests, subjects, exams, hall tickets, broadcasts
//   - StationeryService: inventory and request review
//   - UploadService: image uploads
package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/pkg/events"
)

// publish sends an event and only logs on failure; the write it describes has already committed
func publish(ctx context.Context, publisher events.Publisher, lg zerolog.Logger, subject string, data interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, subject, data); err != nil {
		lg.Warn().Err(err).Str("subject", subject).Msg("Failed to publish event")
	}
}
