package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
)

// QRController handles the seminar QR attendance gate
type QRController struct {
	qrService services.QRService
	logger    zerolog.Logger
}

// NewQRController creates a new QRController
func NewQRController(qrService services.QRService, logger zerolog.Logger) *QRController {
	return &QRController{qrService: qrService, logger: logger}
}

// CurrentQR returns the current token, rotating it when stale
// @Summary Current seminar QR token
// @Tags qr
// @Produce json
// @Security BearerAuth
// @Param id path int true "Seminar ID"
// @Success 200 {object} dto.APIResponse{data=dto.QRResponse}
// @Failure 404 {object} dto.ErrorResponse "Seminar not found"
// @Router /seminars/{id}/qr [get]
func (c *QRController) CurrentQR(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	qr, err := c.qrService.CurrentQR(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, qr)
}

// SetActive opens or closes the attendance gate
// @Summary Toggle seminar QR
// @Tags qr
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Seminar ID"
// @Param request body dto.QRToggleRequest true "Gate state"
// @Success 200 {object} dto.APIResponse{data=dto.QRStatusResponse}
// @Router /seminars/{id}/qr [put]
func (c *QRController) SetActive(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.QRToggleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	status, err := c.qrService.SetActive(ctx, id, *req.Active)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, status)
}

// Status reports whether the gate is open
// @Summary Seminar QR status
// @Tags qr
// @Produce json
// @Security BearerAuth
// @Param id path int true "Seminar ID"
// @Success 200 {object} dto.APIResponse{data=dto.QRStatusResponse}
// @Router /seminars/{id}/qr/status [get]
func (c *QRController) Status(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	status, err := c.qrService.Status(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, status)
}

// Image renders the attend URL of the current token as a PNG
// @Summary Seminar QR image
// @Tags qr
// @Produce png
// @Security BearerAuth
// @Param id path int true "Seminar ID"
// @Success 200 {file} binary
// @Router /seminars/{id}/qr/image [get]
func (c *QRController) Image(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	png, err := c.qrService.QRImage(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, "image/png", png)
}

// Attend marks the scanning student present
// @Summary Attend seminar by QR
// @Description Closed gates answer 403 before credentials are checked
// @Tags qr
// @Accept json
// @Produce json
// @Param token path string true "QR token"
// @Param request body dto.AttendRequest true "Student credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AttendResponse}
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Attendance closed or student not targeted"
// @Failure 404 {object} dto.ErrorResponse "Unknown or expired token"
// @Router /qr/{token}/attend [post]
func (c *QRController) Attend(ctx *gin.Context) {
	token := ctx.Param("token")
	// an empty body still has to reach the gate check
	var req dto.AttendRequest
	if !middleware.BindOptionalJSON(ctx, &req) {
		return
	}
	result, err := c.qrService.Attend(ctx, token, &req)
	if err != nil {
		c.logger.Debug().Err(err).Msg("QR attendance rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result)
}
