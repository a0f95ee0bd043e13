package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
)

// MessageController handles admin messages
type MessageController struct {
	messageService services.MessageService
}

// NewMessageController creates a new MessageController
func NewMessageController(messageService services.MessageService) *MessageController {
	return &MessageController{messageService: messageService}
}

// ListMessages lists every message
// @Summary List messages
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.MessageResponse}
// @Router /admin/messages [get]
func (c *MessageController) ListMessages(ctx *gin.Context) {
	messages, err := c.messageService.ListMessages(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, messages)
}

// CreateMessage creates messages with fan-out targeting
// @Summary Create message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=dto.CreatedResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /admin/messages [post]
func (c *MessageController) CreateMessage(ctx *gin.Context) {
	var req dto.CreateMessageRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	result, err := c.messageService.CreateMessage(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, result, "Message created")
}

// UpdateMessage edits title, content and image
// @Summary Update message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Param request body dto.UpdateMessageRequest true "Message"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.ErrorResponse "Message not found"
// @Router /admin/messages/{id} [put]
func (c *MessageController) UpdateMessage(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateMessageRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	message, err := c.messageService.UpdateMessage(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, message)
}

// DeleteMessage deletes a message
// @Summary Delete message
// @Tags messages
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} dto.APIResponse
// @Router /admin/messages/{id} [delete]
func (c *MessageController) DeleteMessage(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.messageService.DeleteMessage(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondDeleted(ctx, "Message deleted")
}

// GetTargets returns the course targets of a message
// @Summary Message course targets
// @Tags messages
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} dto.APIResponse{data=[]targeting.CourseSemester}
// @Router /admin/messages/{id}/targets [get]
func (c *MessageController) GetTargets(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	targets, err := c.messageService.GetTargets(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, targets)
}

// GetRecipients lists the selected students of a message
// @Summary Message recipients
// @Tags messages
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Recipient}
// @Router /admin/messages/{id}/recipients [get]
func (c *MessageController) GetRecipients(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	recipients, err := c.messageService.GetRecipients(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, recipients)
}
