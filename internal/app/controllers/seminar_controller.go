package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
)

// SeminarController handles admin seminar operations
type SeminarController struct {
	seminarService services.SeminarService
}

// NewSeminarController creates a new SeminarController
func NewSeminarController(seminarService services.SeminarService) *SeminarController {
	return &SeminarController{seminarService: seminarService}
}

// ListSeminars lists every seminar with IST date fields
// @Summary List seminars
// @Tags seminars
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.SeminarResponse}
// @Router /admin/seminars [get]
func (c *SeminarController) ListSeminars(ctx *gin.Context) {
	seminars, err := c.seminarService.ListSeminars(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, seminars)
}

// CreateSeminar creates seminars with fan-out targeting and opens their QR gates
// @Summary Create seminar
// @Tags seminars
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSeminarRequest true "Seminar"
// @Success 201 {object} dto.APIResponse{data=dto.CreatedResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /admin/seminars [post]
func (c *SeminarController) CreateSeminar(ctx *gin.Context) {
	var req dto.CreateSeminarRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	result, err := c.seminarService.CreateSeminar(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, result, "Seminar created")
}

// UpdateSeminar updates a seminar
// @Summary Update seminar
// @Tags seminars
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Seminar ID"
// @Param request body dto.UpdateSeminarRequest true "Seminar"
// @Success 200 {object} dto.APIResponse{data=dto.SeminarResponse}
// @Failure 404 {object} dto.ErrorResponse "Seminar not found"
// @Router /admin/seminars/{id} [put]
func (c *SeminarController) UpdateSeminar(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateSeminarRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	seminar, err := c.seminarService.UpdateSeminar(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, seminar)
}

// DeleteSeminar deletes a seminar
// @Summary Delete seminar
// @Tags seminars
// @Security BearerAuth
// @Param id path int true "Seminar ID"
// @Success 200 {object} dto.APIResponse
// @Router /admin/seminars/{id} [delete]
func (c *SeminarController) DeleteSeminar(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.seminarService.DeleteSeminar(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondDeleted(ctx, "Seminar deleted")
}

// GetAttendance returns the attendance sheet
// @Summary Seminar attendance
// @Tags seminars
// @Produce json
// @Security BearerAuth
// @Param id path int true "Seminar ID"
// @Param tab query string false "all or <courseId>-<semester>"
// @Success 200 {object} dto.APIResponse{data=dto.AttendanceListResponse}
// @Router /admin/seminars/{id}/attendance [get]
func (c *SeminarController) GetAttendance(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	sheet, err := c.seminarService.GetAttendance(ctx, id, ctx.Query("tab"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, sheet)
}

// UpdateAttendance toggles a student's attendance
// @Summary Set attendance
// @Tags seminars
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Seminar ID"
// @Param request body dto.AttendanceUpdateRequest true "Attendance"
// @Success 200 {object} dto.APIResponse{data=dto.AttendResponse}
// @Failure 403 {object} dto.ErrorResponse "Student not targeted"
// @Router /admin/seminars/{id}/attendance [put]
func (c *SeminarController) UpdateAttendance(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AttendanceUpdateRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	result, err := c.seminarService.UpdateAttendance(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result)
}

// ScanAttendance marks a student present from a scanned code
// @Summary Scan attendance
// @Tags seminars
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Seminar ID"
// @Param request body dto.ScanRequest true "Scanned code"
// @Success 200 {object} dto.APIResponse{data=dto.AttendResponse}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /admin/seminars/{id}/attendance/scan [post]
func (c *SeminarController) ScanAttendance(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.ScanRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	result, err := c.seminarService.ScanAttendance(ctx, id, req.Code)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result)
}

// GetCourseSemesters returns the tab strip of a seminar
// @Summary Seminar tabs
// @Tags seminars
// @Security BearerAuth
// @Param id path int true "Seminar ID"
// @Success 200 {object} dto.APIResponse{data=[]targeting.Tab}
// @Router /admin/seminars/{id}/course-semesters [get]
func (c *SeminarController) GetCourseSemesters(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	tabs, err := c.seminarService.GetCourseSemesters(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, tabs)
}

// GetRatings returns the ratings of a seminar
// @Summary Seminar ratings
// @Tags seminars
// @Security BearerAuth
// @Param id path int true "Seminar ID"
// @Success 200 {object} dto.APIResponse{data=dto.RatingsResponse}
// @Router /admin/seminars/{id}/ratings [get]
func (c *SeminarController) GetRatings(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	ratings, err := c.seminarService.GetRatings(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, ratings)
}

// GetRecipients lists the selected students of a seminar
// @Summary Seminar recipients
// @Tags seminars
// @Security BearerAuth
// @Param id path int true "Seminar ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Recipient}
// @Router /admin/seminars/{id}/recipients [get]
func (c *SeminarController) GetRecipients(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	recipients, err := c.seminarService.GetRecipients(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, recipients)
}
