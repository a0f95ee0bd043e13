package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/helpers"
)

// CatalogController handles courses, interests, subjects, exams, broadcasts and uploads
type CatalogController struct {
	catalogService services.CatalogService
	uploadService  services.UploadService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalogService services.CatalogService, uploadService services.UploadService) *CatalogController {
	return &CatalogController{catalogService: catalogService, uploadService: uploadService}
}

// ListCourses lists courses
// @Summary List courses
// @Tags catalog
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Course}
// @Router /admin/courses [get]
func (c *CatalogController) ListCourses(ctx *gin.Context) {
	courses, err := c.catalogService.ListCourses(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, courses)
}

// CreateCourse creates a course
// @Summary Create course
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course"
// @Success 201 {object} dto.APIResponse{data=models.Course}
// @Failure 409 {object} dto.ErrorResponse "Course already exists"
// @Router /admin/courses [post]
func (c *CatalogController) CreateCourse(ctx *gin.Context) {
	var req dto.CreateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	course, err := c.catalogService.CreateCourse(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, course, "Course created")
}

// ListInterests lists interests
// @Summary List interests
// @Tags catalog
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Interest}
// @Router /admin/interests [get]
func (c *CatalogController) ListInterests(ctx *gin.Context) {
	interests, err := c.catalogService.ListInterests(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, interests)
}

// CreateInterest creates an interest
// @Summary Create interest
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateInterestRequest true "Interest"
// @Success 201 {object} dto.APIResponse{data=models.Interest}
// @Failure 409 {object} dto.ErrorResponse "Interest already exists"
// @Router /admin/interests [post]
func (c *CatalogController) CreateInterest(ctx *gin.Context) {
	var req dto.CreateInterestRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	interest, err := c.catalogService.CreateInterest(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, interest, "Interest created")
}

// ListSubjects lists subjects
// @Summary List subjects
// @Tags catalog
// @Security BearerAuth
// @Param course_id query int false "Course"
// @Param semester query int false "Semester"
// @Success 200 {object} dto.APIResponse{data=[]models.Subject}
// @Router /admin/subjects [get]
func (c *CatalogController) ListSubjects(ctx *gin.Context) {
	courseID, semester, ok := courseSemesterQuery(ctx)
	if !ok {
		return
	}
	subjects, err := c.catalogService.ListSubjects(ctx, courseID, semester)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, subjects)
}

// CreateSubject creates a subject
// @Summary Create subject
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSubjectRequest true "Subject"
// @Success 201 {object} dto.APIResponse{data=models.Subject}
// @Router /admin/subjects [post]
func (c *CatalogController) CreateSubject(ctx *gin.Context) {
	var req dto.CreateSubjectRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	subject, err := c.catalogService.CreateSubject(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, subject, "Subject created")
}

// ListExams lists exams with their timetables
// @Summary List exams
// @Tags exams
// @Security BearerAuth
// @Param course_id query int false "Course"
// @Param semester query int false "Semester"
// @Success 200 {object} dto.APIResponse{data=[]models.Exam}
// @Router /admin/exams [get]
func (c *CatalogController) ListExams(ctx *gin.Context) {
	courseID, semester, ok := courseSemesterQuery(ctx)
	if !ok {
		return
	}
	exams, err := c.catalogService.ListExams(ctx, courseID, semester)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, exams)
}

// CreateExam creates an exam and its timetable
// @Summary Create exam
// @Tags exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateExamRequest true "Exam"
// @Success 201 {object} dto.APIResponse{data=models.Exam}
// @Failure 400 {object} dto.ErrorResponse "Invalid timetable"
// @Router /admin/exams [post]
func (c *CatalogController) CreateExam(ctx *gin.Context) {
	var req dto.CreateExamRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	exam, err := c.catalogService.CreateExam(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, exam, "Exam created")
}

// DeleteExam deletes an exam
// @Summary Delete exam
// @Tags exams
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /admin/exams/{id} [delete]
func (c *CatalogController) DeleteExam(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.catalogService.DeleteExam(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondDeleted(ctx, "Exam deleted")
}

// HallTickets renders every hall ticket of an exam as one PDF
// @Summary Exam hall tickets
// @Tags exams
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Exam ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /admin/exams/{id}/hall-tickets-all [get]
func (c *CatalogController) HallTickets(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	pdf, _, err := c.catalogService.HallTickets(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=hall-tickets-%d.pdf", id))
	ctx.Data(http.StatusOK, "application/pdf", pdf)
}

// ResolvePrefill decodes a targeting handoff link from the students list
// @Summary Resolve targeting prefill
// @Tags targeting
// @Security BearerAuth
// @Param prefill query string true "course_semester or students"
// @Param cs query string false "Comma separated <courseId>-<semester> combos"
// @Param ids query string false "Comma separated student IDs"
// @Success 200 {object} dto.APIResponse{data=dto.PrefillResponse}
// @Failure 400 {object} dto.ErrorResponse "Malformed prefill"
// @Router /admin/targeting/prefill [get]
func (c *CatalogController) ResolvePrefill(ctx *gin.Context) {
	prefill, err := c.catalogService.ResolvePrefill(ctx, ctx.Request.URL.Query())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, prefill)
}

// ListBroadcasts lists every broadcast
// @Summary List broadcasts
// @Tags broadcasts
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Broadcast}
// @Router /admin/broadcasts [get]
func (c *CatalogController) ListBroadcasts(ctx *gin.Context) {
	broadcasts, err := c.catalogService.ListBroadcasts(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, broadcasts)
}

// CreateBroadcast posts a notice to every student
// @Summary Create broadcast
// @Tags broadcasts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateBroadcastRequest true "Broadcast"
// @Success 201 {object} dto.APIResponse{data=models.Broadcast}
// @Router /admin/broadcasts [post]
func (c *CatalogController) CreateBroadcast(ctx *gin.Context) {
	var req dto.CreateBroadcastRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	broadcast, err := c.catalogService.CreateBroadcast(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, broadcast, "Broadcast created")
}

// UploadImage stores an image for companies and messages
// @Summary Upload image
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Success 201 {object} dto.APIResponse{data=dto.UploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing or unsupported file"
// @Router /admin/uploads/images [post]
func (c *CatalogController) UploadImage(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		middleware.HandleAPIError(ctx, fmt.Errorf("%w: multipart field \"file\" is required", apperrors.ErrBadRequest))
		return
	}
	url, err := c.uploadService.UploadImage(file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, dto.UploadResponse{ImageURL: url}, "Image uploaded")
}

func courseSemesterQuery(ctx *gin.Context) (*int64, *int, bool) {
	courseID, err := helpers.OptionalInt64Query(ctx, "course_id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return nil, nil, false
	}
	semester, err := helpers.OptionalIntQuery(ctx, "semester")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return nil, nil, false
	}
	return courseID, semester, true
}
