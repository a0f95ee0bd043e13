package dto

import (
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/pkg/targeting"
)

// CreateMessageRequest creates one or more messages depending on the targeting mode
type CreateMessageRequest struct {
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content" binding:"required"`
	MessageType string `json:"message_type"`
	ImageURL    string `json:"image_url"`
	targeting.Payload
}

// UpdateMessageRequest edits the descriptive fields of a message
type UpdateMessageRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	ImageURL string `json:"image_url"`
}

// MessageResponse is a message with its summary. MappingCount equals the
// number of course targets.
type MessageResponse struct {
	models.Message
	TargetSummary  targeting.Summary `json:"targetSummary"`
	MappingCount   int               `json:"mappingCount"`
	RecipientCount int               `json:"recipientCount"`
}
