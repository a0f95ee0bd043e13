package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/controllers"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/middleware"
)

// Controllers groups every HTTP handler set mounted by SetupRouter
type Controllers struct {
	Auth       *controllers.AuthController
	Company    *controllers.CompanyController
	Message    *controllers.MessageController
	Seminar    *controllers.SeminarController
	QR         *controllers.QRController
	Live       *controllers.LiveController
	Student    *controllers.StudentController
	Portal     *controllers.PortalController
	Catalog    *controllers.CatalogController
	Stationery *controllers.StationeryController
	Health     *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/ping", ctrl.Health.Ping)

	api := router.Group("/api")
	api.GET("/health", ctrl.Health.Health)

	// --- Public routes ---
	auth := api.Group("/auth")
	{
		auth.POST("/login", ctrl.Auth.StaffLogin)
		auth.GET("/me", authMiddleware.JWTAuth(), ctrl.Auth.Me)
	}
	api.POST("/student/login", ctrl.Auth.StudentLogin)

	// Students scan the projected QR and post credentials here; the token is the credential for the seminar
	api.POST("/qr/:token/attend", ctrl.QR.Attend)

	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
	{
		companies := admin.Group("/companies")
		{
			companies.GET("", ctrl.Company.ListCompanies)
			companies.POST("", ctrl.Company.CreateCompany)
			companies.PUT("/:id", ctrl.Company.UpdateCompany)
			companies.DELETE("/:id", ctrl.Company.DeleteCompany)
			companies.GET("/:id/applicants", ctrl.Company.GetApplicants)
			companies.GET("/:id/recipients", ctrl.Company.GetRecipients)
			companies.PUT("/:id/applicants/:studentId/placement", ctrl.Company.MarkPlaced)
		}

		messages := admin.Group("/messages")
		{
			messages.GET("", ctrl.Message.ListMessages)
			messages.POST("", ctrl.Message.CreateMessage)
			messages.PUT("/:id", ctrl.Message.UpdateMessage)
			messages.DELETE("/:id", ctrl.Message.DeleteMessage)
			messages.GET("/:id/targets", ctrl.Message.GetTargets)
			messages.GET("/:id/recipients", ctrl.Message.GetRecipients)
		}

		seminars := admin.Group("/seminars")
		{
			seminars.GET("", ctrl.Seminar.ListSeminars)
			seminars.POST("", ctrl.Seminar.CreateSeminar)
			seminars.PUT("/:id", ctrl.Seminar.UpdateSeminar)
			seminars.DELETE("/:id", ctrl.Seminar.DeleteSeminar)
			seminars.GET("/:id/attendance", ctrl.Seminar.GetAttendance)
			seminars.PUT("/:id/attendance", ctrl.Seminar.UpdateAttendance)
			seminars.POST("/:id/attendance/scan", ctrl.Seminar.ScanAttendance)
			seminars.GET("/:id/course-semesters", ctrl.Seminar.GetCourseSemesters)
			seminars.GET("/:id/ratings", ctrl.Seminar.GetRatings)
			seminars.GET("/:id/recipients", ctrl.Seminar.GetRecipients)
			seminars.GET("/:id/live", ctrl.Live.Live)
		}

		students := admin.Group("/students")
		{
			students.GET("", ctrl.Student.ListStudents)
			students.POST("", ctrl.Student.CreateStudent)
			students.GET("/semester-counts", ctrl.Student.SemesterCounts)
			students.POST("/details", ctrl.Student.GetStudentDetails)
			students.POST("/assign-codes-retroactive", ctrl.Student.AssignCodesRetroactive)
			students.GET("/:id", ctrl.Student.GetStudent)
			students.PUT("/:id", ctrl.Student.UpdateStudent)
			students.DELETE("/:id", ctrl.Student.DeleteStudent)
			students.POST("/:id/reset-password", ctrl.Student.ResetPassword)
		}

		admin.GET("/courses", ctrl.Catalog.ListCourses)
		admin.POST("/courses", ctrl.Catalog.CreateCourse)
		admin.GET("/interests", ctrl.Catalog.ListInterests)
		admin.POST("/interests", ctrl.Catalog.CreateInterest)
		admin.GET("/subjects", ctrl.Catalog.ListSubjects)
		admin.POST("/subjects", ctrl.Catalog.CreateSubject)

		exams := admin.Group("/exams")
		{
			exams.GET("", ctrl.Catalog.ListExams)
			exams.POST("", ctrl.Catalog.CreateExam)
			exams.DELETE("/:id", ctrl.Catalog.DeleteExam)
			exams.DELETE("/:id/delete", ctrl.Catalog.DeleteExam)
			exams.GET("/:id/hall-tickets-all", ctrl.Catalog.HallTickets)
		}

		admin.GET("/targeting/prefill", ctrl.Catalog.ResolvePrefill)

		admin.GET("/broadcasts", ctrl.Catalog.ListBroadcasts)
		admin.POST("/broadcasts", ctrl.Catalog.CreateBroadcast)
		admin.POST("/uploads/images", ctrl.Catalog.UploadImage)
	}

	// QR gate management, admin only
	qr := authenticated.Group("/seminars/:id/qr")
	qr.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
	{
		qr.GET("", ctrl.QR.CurrentQR)
		qr.PUT("", ctrl.QR.SetActive)
		qr.GET("/status", ctrl.QR.Status)
		qr.GET("/image", ctrl.QR.Image)
	}

	// --- Student portal ---
	student := authenticated.Group("/student")
	{
		student.GET("/broadcast", ctrl.Portal.ListBroadcasts)
		student.POST("/profile", ctrl.Portal.UpdateProfile)
		student.POST("/companies/apply", ctrl.Portal.Apply)
		student.POST("/seminars/:id/rating", ctrl.Portal.RateSeminar)

		self := student.Group("/:id")
		self.Use(authMiddleware.SelfOrAdmin("id"))
		{
			self.GET("", ctrl.Portal.GetProfile)
			self.GET("/messages", ctrl.Portal.ListMessages)
			self.GET("/companies", ctrl.Portal.ListCompanies)
			self.GET("/seminars", ctrl.Portal.ListSeminars)
			self.GET("/dashboard", ctrl.Portal.Dashboard)
			self.GET("/qr-code", ctrl.Portal.QRCode)
		}
	}

	// --- Stationery ---
	committee := authenticated.Group("/committee/stationery")
	committee.Use(authMiddleware.RoleRequired(string(models.RoleCommittee)))
	{
		committee.GET("/items", ctrl.Stationery.ListItems)
		committee.GET("/requests", ctrl.Stationery.ListCommitteeRequests)
		committee.POST("/requests", ctrl.Stationery.CreateCommitteeRequest)
		committee.PUT("/requests/:id/forward", ctrl.Stationery.Forward)
	}

	technical := authenticated.Group("/technical/stationery")
	technical.Use(authMiddleware.RoleRequired(string(models.RoleTechnical)))
	{
		technical.GET("/items", ctrl.Stationery.ListItems)
		technical.POST("/items", ctrl.Stationery.CreateItem)
		technical.POST("/stock", ctrl.Stationery.AddStock)
		technical.GET("/stock-history", ctrl.Stationery.ListHistory)
		technical.GET("/requests", ctrl.Stationery.ListRequests)
		technical.POST("/requests", ctrl.Stationery.CreateTechnicalRequest)
		technical.PUT("/requests/:id/review", ctrl.Stationery.Review)
	}
}
