package dto

import (
	"time"

	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/pkg/deadline"
	"github.com/yigit/placement/internal/pkg/targeting"
)

// CompanyRequest creates or updates an opening. On create the targeting
// fans out; on update it replaces the targeting of the single row.
type CompanyRequest struct {
	Name                string                `json:"name" binding:"required"`
	Position            string                `json:"position" binding:"required"`
	Description         string                `json:"description"`
	ApplicationDeadline time.Time             `json:"application_deadline" binding:"required"`
	OpeningType         targeting.OpeningType `json:"opening_type"`
	TenureDays          *int                  `json:"tenure_days"`
	CustomLink          string                `json:"custom_link"`
	ImageURL            string                `json:"image_url"`
	targeting.Payload
}

// CompanyResponse is an opening with its derived summary and deadline state
type CompanyResponse struct {
	models.Company
	TargetSummary  targeting.Summary `json:"targetSummary"`
	DeadlineStatus deadline.Info     `json:"deadlineStatus"`
}

// ApplicantsResponse is the tab-filtered applicant list of an opening
type ApplicantsResponse struct {
	Tab        string             `json:"tab"`
	Tabs       []targeting.Tab    `json:"tabs"`
	Applicants []models.Applicant `json:"applicants"`
}

// PlacementRequest marks an applicant as placed
type PlacementRequest struct {
	CompanyName *string `json:"company_name"`
	TenureDays  *int    `json:"tenure_days" binding:"omitempty,gt=0"`
}
