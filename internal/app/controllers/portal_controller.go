package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
)

// PortalController serves the student-facing portal
type PortalController struct {
	portalService services.PortalService
}

// NewPortalController creates a new PortalController
func NewPortalController(portalService services.PortalService) *PortalController {
	return &PortalController{portalService: portalService}
}

// GetProfile returns the student with the profile gate flags
// @Summary Student profile
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentProfileResponse}
// @Failure 403 {object} dto.ErrorResponse "Not your record"
// @Router /student/{id} [get]
func (c *PortalController) GetProfile(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	profile, err := c.portalService.GetProfile(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, profile)
}

// UpdateProfile completes caste and gender for the calling student
// @Summary Complete profile
// @Tags student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProfileUpdateRequest true "Profile"
// @Success 200 {object} dto.APIResponse{data=dto.StudentProfileResponse}
// @Router /student/profile [post]
func (c *PortalController) UpdateProfile(ctx *gin.Context) {
	studentID, ok := sessionStudentID(ctx)
	if !ok {
		return
	}
	var req dto.ProfileUpdateRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	profile, err := c.portalService.UpdateProfile(ctx, studentID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, profile)
}

// ListMessages lists the messages targeting a student
// @Summary Student messages
// @Tags student
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.MessageResponse}
// @Router /student/{id}/messages [get]
func (c *PortalController) ListMessages(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	messages, err := c.portalService.ListMessages(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, messages)
}

// ListCompanies lists the openings targeting a student
// @Summary Student openings
// @Tags student
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentCompanyResponse}
// @Router /student/{id}/companies [get]
func (c *PortalController) ListCompanies(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	companies, err := c.portalService.ListCompanies(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, companies)
}

// ListSeminars lists the seminars targeting a student
// @Summary Student seminars
// @Tags student
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentSeminarResponse}
// @Router /student/{id}/seminars [get]
func (c *PortalController) ListSeminars(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	seminars, err := c.portalService.ListSeminars(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, seminars)
}

// ListBroadcasts lists the latest notices
// @Summary Broadcasts
// @Tags student
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Broadcast}
// @Router /student/broadcast [get]
func (c *PortalController) ListBroadcasts(ctx *gin.Context) {
	broadcasts, err := c.portalService.ListBroadcasts(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, broadcasts)
}

// Dashboard aggregates the student home page
// @Summary Student dashboard
// @Description Sections that fail to load are empty and named in degraded
// @Tags student
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.DashboardResponse}
// @Router /student/{id}/dashboard [get]
func (c *PortalController) Dashboard(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	dashboard, err := c.portalService.Dashboard(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dashboard)
}

// Apply applies the calling student to an opening
// @Summary Apply to opening
// @Tags student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ApplyRequest true "Opening"
// @Success 201 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 403 {object} dto.ErrorResponse "Profile incomplete or not eligible"
// @Failure 409 {object} dto.ErrorResponse "Already applied or deadline passed"
// @Router /student/companies/apply [post]
func (c *PortalController) Apply(ctx *gin.Context) {
	studentID, ok := sessionStudentID(ctx)
	if !ok {
		return
	}
	var req dto.ApplyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	application, err := c.portalService.Apply(ctx, studentID, req.CompanyID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, application, "Application submitted")
}

// RateSeminar rates an attended seminar
// @Summary Rate seminar
// @Tags student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Seminar ID"
// @Param request body dto.RatingRequest true "Rating"
// @Success 200 {object} dto.APIResponse{data=models.Rating}
// @Failure 403 {object} dto.ErrorResponse "Not attended"
// @Router /student/seminars/{id}/rating [post]
func (c *PortalController) RateSeminar(ctx *gin.Context) {
	studentID, ok := sessionStudentID(ctx)
	if !ok {
		return
	}
	seminarID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.RatingRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	rating, err := c.portalService.RateSeminar(ctx, studentID, seminarID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, rating)
}

// QRCode renders the student's personal code for the scanner
// @Summary Student QR code
// @Tags student
// @Produce png
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {file} binary
// @Router /student/{id}/qr-code [get]
func (c *PortalController) QRCode(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	png, err := c.portalService.StudentQRCode(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Data(http.StatusOK, "image/png", png)
}
