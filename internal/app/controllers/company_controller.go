package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
	"github.com/yigit/placement/internal/pkg/helpers"
)

// CompanyController handles company opening operations
type CompanyController struct {
	companyService services.CompanyService
}

// NewCompanyController creates a new CompanyController
func NewCompanyController(companyService services.CompanyService) *CompanyController {
	return &CompanyController{companyService: companyService}
}

// ListCompanies lists openings
// @Summary List company openings
// @Description Paginated openings with targeting summary and deadline status
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param search query string false "Search by name or position"
// @Param opening_type query string false "job or internship"
// @Success 200 {object} dto.APIResponse{data=dto.PagedResponse[dto.CompanyResponse]}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /admin/companies [get]
func (c *CompanyController) ListCompanies(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	result, err := c.companyService.ListCompanies(ctx, models.CompanyFilter{
		Search:      ctx.Query("search"),
		OpeningType: ctx.Query("opening_type"),
		Page:        page,
		Size:        size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result)
}

// CreateCompany creates openings, one per targeted interest
// @Summary Create company opening
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CompanyRequest true "Opening"
// @Success 201 {object} dto.APIResponse{data=dto.OpeningsCreatedResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /admin/companies [post]
func (c *CompanyController) CreateCompany(ctx *gin.Context) {
	var req dto.CompanyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.companyService.CreateCompany(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, result, "Company opening created")
}

// UpdateCompany updates one opening row and its targeting
// @Summary Update company opening
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opening ID"
// @Param request body dto.CompanyRequest true "Opening"
// @Success 200 {object} dto.APIResponse{data=dto.CompanyResponse}
// @Failure 404 {object} dto.ErrorResponse "Opening not found"
// @Router /admin/companies/{id} [put]
func (c *CompanyController) UpdateCompany(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CompanyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	company, err := c.companyService.UpdateCompany(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, company)
}

// DeleteCompany deletes an opening
// @Summary Delete company opening
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opening ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Opening not found"
// @Router /admin/companies/{id} [delete]
func (c *CompanyController) DeleteCompany(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.companyService.DeleteCompany(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondDeleted(ctx, "Company opening deleted")
}

// GetApplicants lists the applicants of an opening
// @Summary Opening applicants
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opening ID"
// @Param tab query string false "all or <courseId>-<semester>"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicantsResponse}
// @Router /admin/companies/{id}/applicants [get]
func (c *CompanyController) GetApplicants(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	result, err := c.companyService.GetApplicants(ctx, id, ctx.Query("tab"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result)
}

// GetRecipients lists the selected students of a students-mode opening
// @Summary Opening recipients
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opening ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Recipient}
// @Router /admin/companies/{id}/recipients [get]
func (c *CompanyController) GetRecipients(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	recipients, err := c.companyService.GetRecipients(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, recipients)
}

// MarkPlaced records that an applicant was placed by the company
// @Summary Mark applicant placed
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opening ID"
// @Param studentId path int true "Student ID"
// @Param request body dto.PlacementRequest false "Placement details"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /admin/companies/{id}/applicants/{studentId}/placement [put]
func (c *CompanyController) MarkPlaced(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}
	var req dto.PlacementRequest
	if ctx.Request.ContentLength > 0 && !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.companyService.MarkPlaced(ctx, id, studentID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, student)
}
