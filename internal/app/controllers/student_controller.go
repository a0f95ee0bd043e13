package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
	"github.com/yigit/placement/internal/pkg/helpers"
)

// StudentController handles admin student management
type StudentController struct {
	studentService services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService) *StudentController {
	return &StudentController{studentService: studentService}
}

// ListStudents lists students
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param course_id query int false "Course"
// @Param semester query int false "Current semester"
// @Param placement_status query string false "Placement status"
// @Param search query string false "Name, enrollment number or email"
// @Success 200 {object} dto.APIResponse{data=dto.PagedResponse[models.Student]}
// @Router /admin/students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	courseID, err := helpers.OptionalInt64Query(ctx, "course_id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	semester, err := helpers.OptionalIntQuery(ctx, "semester")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.studentService.ListStudents(ctx, dto.StudentFilter{
		CourseID:        courseID,
		Semester:        semester,
		PlacementStatus: ctx.Query("placement_status"),
		Search:          ctx.Query("search"),
		Page:            page,
		Size:            size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result)
}

// GetStudent returns one student
// @Summary Get student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /admin/students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	student, err := c.studentService.GetStudent(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, student)
}

// CreateStudent registers a student
// @Summary Create student
// @Description The generated or supplied password is returned once as initialPassword
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StudentRequest true "Student"
// @Success 201 {object} dto.APIResponse{data=dto.StudentCreatedResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Enrollment number already exists"
// @Router /admin/students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.StudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	result, err := c.studentService.CreateStudent(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, result, "Student created")
}

// UpdateStudent updates a student
// @Summary Update student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.StudentRequest true "Student"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Router /admin/students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.StudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	student, err := c.studentService.UpdateStudent(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, student)
}

// DeleteStudent deletes a student
// @Summary Delete student
// @Tags students
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse
// @Router /admin/students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.studentService.DeleteStudent(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondDeleted(ctx, "Student deleted")
}

// GetStudentDetails looks students up by id in one call
// @Summary Batch student details
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StudentDetailsRequest true "Student IDs"
// @Success 200 {object} dto.APIResponse{data=[]models.Student}
// @Router /admin/students/details [post]
func (c *StudentController) GetStudentDetails(ctx *gin.Context) {
	var req dto.StudentDetailsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	students, err := c.studentService.GetStudentDetails(ctx, req.IDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, students)
}

// SemesterCounts counts students per course and current semester
// @Summary Students per semester
// @Tags students
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.SemesterCount}
// @Router /admin/students/semester-counts [get]
func (c *StudentController) SemesterCounts(ctx *gin.Context) {
	counts, err := c.studentService.SemesterCounts(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, counts)
}

// AssignCodesRetroactive gives a unique code to every student without one
// @Summary Assign missing unique codes
// @Tags students
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse}
// @Router /admin/students/assign-codes-retroactive [post]
func (c *StudentController) AssignCodesRetroactive(ctx *gin.Context) {
	result, err := c.studentService.AssignCodesRetroactive(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result)
}

// ResetPassword issues a new password
// @Summary Reset student password
// @Description The new password is returned once
// @Tags students
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.PasswordResetResponse}
// @Router /admin/students/{id}/reset-password [post]
func (c *StudentController) ResetPassword(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	result, err := c.studentService.ResetPassword(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, result)
}
