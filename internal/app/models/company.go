package models

import (
	"time"

	"github.com/yigit/placement/internal/pkg/targeting"
)

// Company is a job or internship opening
type Company struct {
	ID                  int64                 `json:"id"`
	Name                string                `json:"name"`
	Position            string                `json:"position"`
	Description         string                `json:"description"`
	ApplicationDeadline time.Time             `json:"application_deadline"`
	OpeningType         targeting.OpeningType `json:"opening_type"`
	TenureDays          *int                  `json:"tenure_days,omitempty"`
	CustomLink          string                `json:"custom_link"`
	ImageURL            string                `json:"image_url"`
	ApplicationCount    int                   `json:"application_count"`
	CreatedAt           time.Time             `json:"created_at"`
	Targeting
}

// Applicant is an enriched application row
type Applicant struct {
	StudentBrief
	AppliedAt       time.Time       `json:"applied_at"`
	PlacementStatus PlacementStatus `json:"placement_status"`
}

// CompanyFilter narrows the admin opening list
type CompanyFilter struct {
	Search      string
	OpeningType string
	Page        int
	Size        int
}
