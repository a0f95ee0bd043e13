package services_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/placement/internal/app/controllers"
	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/repositories"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/db"
	"github.com/yigit/placement/internal/middleware"
	"github.com/yigit/placement/internal/pkg/apperrors"
	pkgauth "github.com/yigit/placement/internal/pkg/auth"
	"github.com/yigit/placement/internal/pkg/events"
	"github.com/yigit/placement/internal/pkg/hallticket"
	"github.com/yigit/placement/internal/pkg/metrics"
	"github.com/yigit/placement/internal/pkg/targeting"
	"github.com/yigit/placement/internal/testing/testdb"
)

type testEnv struct {
	db         *db.PostgresDB
	repos      *repositories.Repositories
	recorder   *events.Recorder
	catalog    services.CatalogService
	companies  services.CompanyService
	messages   services.MessageService
	students   services.StudentService
	seminars   services.SeminarService
	qr         services.QRService
	stationery services.StationeryService
}

func setupTest(t *testing.T) *testEnv {
	pg := testdb.SetupSharedPostgres(t)

	lgr := zerolog.Nop()
	repos := repositories.NewRepositories(pg.DB.Pool)
	recorder := &events.Recorder{}
	m := metrics.NewMock()

	return &testEnv{
		db:       pg.DB,
		repos:    repos,
		recorder: recorder,
		catalog:  services.NewCatalogService(pg.DB, repos, hallticket.Institution{Name: "Test College"}, lgr),
		companies: services.NewCompanyService(pg.DB, repos.CompanyRepository, repos.CourseRepository,
			repos.StudentRepository, recorder, m, 7, lgr),
		messages: services.NewMessageService(pg.DB, repos.MessageRepository, repos.CourseRepository,
			repos.StudentRepository, recorder, m, lgr),
		students: services.NewStudentService(pg.DB, repos.StudentRepository, repos.CourseRepository, nil, lgr),
		seminars: services.NewSeminarService(pg.DB, repos.SeminarRepository, repos.AttendanceRepository,
			repos.CourseRepository, repos.StudentRepository, nil, recorder, m, lgr),
		qr: services.NewQRService(repos.SeminarRepository, repos.AttendanceRepository, repos.StudentRepository,
			nil, recorder, m, services.QRConfig{RotationInterval: time.Minute, BaseURL: "http://test"}, lgr),
		stationery: services.NewStationeryService(pg.DB, repos.StationeryRepository, recorder, m, lgr),
	}
}

func (env *testEnv) createCourse(t *testing.T, name string, semesters int) *models.Course {
	t.Helper()
	course, err := env.catalog.CreateCourse(context.Background(), &dto.CreateCourseRequest{Name: name, TotalSemesters: semesters})
	require.NoError(t, err)
	return course
}

func (env *testEnv) createStudent(t *testing.T, enrollment string, courseID int64, semester int, interestID int64) *models.Student {
	t.Helper()
	password := "secret123"
	created, err := env.students.CreateStudent(context.Background(), &dto.StudentRequest{
		FullName:          "Student " + enrollment,
		EnrollmentNumber:  enrollment,
		CourseID:          courseID,
		Email:             strings.ToLower(enrollment) + "@example.com",
		AdmissionSemester: 1,
		CurrentSemester:   semester,
		InterestIDs:       []int64{interestID},
		Password:          &password,
	})
	require.NoError(t, err)
	student, err := env.repos.StudentRepository.GetByID(context.Background(), created.Student.ID)
	require.NoError(t, err)
	return student
}

func (env *testEnv) createInterests(t *testing.T, n int) []*models.Interest {
	t.Helper()
	out := make([]*models.Interest, 0, n)
	for i := 1; i <= n; i++ {
		in, err := env.catalog.CreateInterest(context.Background(), &dto.CreateInterestRequest{Name: fmt.Sprintf("Interest %d", i)})
		require.NoError(t, err)
		out = append(out, in)
	}
	return out
}

func TestCreateCompany_InterestFanOut(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	// identities restart after truncation, so these are ids 1..7
	interests := env.createInterests(t, 7)
	require.Equal(t, int64(7), interests[6].ID)

	created, err := env.companies.CreateCompany(ctx, &dto.CompanyRequest{
		Name:                "Acme",
		Position:            "Backend Engineer",
		ApplicationDeadline: time.Now().Add(10 * 24 * time.Hour),
		Payload: targeting.Payload{
			Mode:        targeting.ModeInterest,
			InterestIDs: []int64{3, 7},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created.OpeningsCreated)
	assert.Len(t, created.IDs, 2)
	assert.Equal(t, []string{events.OpeningCreated}, env.recorder.Subjects())

	list, err := env.companies.ListCompanies(ctx, models.CompanyFilter{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)

	seen := map[int64]bool{}
	for _, row := range list.Items {
		assert.Equal(t, targeting.KindInterest, row.TargetSummary.Kind)
		require.NotNil(t, row.InterestID)
		seen[*row.InterestID] = true
	}
	assert.Equal(t, map[int64]bool{3: true, 7: true}, seen)
}

func TestCreateCompany_UnknownInterest(t *testing.T) {
	env := setupTest(t)
	env.createInterests(t, 1)

	_, err := env.companies.CreateCompany(context.Background(), &dto.CompanyRequest{
		Name:                "Acme",
		Position:            "Intern",
		ApplicationDeadline: time.Now().Add(24 * time.Hour),
		Payload:             targeting.Payload{Mode: targeting.ModeInterest, InterestIDs: []int64{1, 99}},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Empty(t, env.recorder.Subjects())
}

func TestQRGate_ClosedRejectsAnyCredentials(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	interests := env.createInterests(t, 1)
	course, err := env.catalog.CreateCourse(ctx, &dto.CreateCourseRequest{Name: "BCA", TotalSemesters: 6})
	require.NoError(t, err)

	password := "secret123"
	st, err := env.students.CreateStudent(ctx, &dto.StudentRequest{
		FullName:          "Asha Rao",
		EnrollmentNumber:  "ENR001",
		CourseID:          course.ID,
		Email:             "asha@example.com",
		AdmissionSemester: 1,
		CurrentSemester:   3,
		InterestIDs:       []int64{interests[0].ID},
		Password:          &password,
	})
	require.NoError(t, err)
	assert.Equal(t, password, st.InitialPassword)

	sem, err := env.seminars.CreateSeminar(ctx, &dto.CreateSeminarRequest{
		Title:       "Resume Workshop",
		SeminarDate: "2025-03-14T10:30",
		Payload:     targeting.Payload{Mode: targeting.ModeInterest, InterestIDs: []int64{interests[0].ID}},
	})
	require.NoError(t, err)
	require.Len(t, sem.IDs, 1)
	seminarID := sem.IDs[0]

	current, err := env.qr.CurrentQR(ctx, seminarID)
	require.NoError(t, err)
	assert.True(t, current.Active)

	// open gate: correct credentials mark Present, twice
	for i := 0; i < 2; i++ {
		res, err := env.qr.Attend(ctx, current.Token, &dto.AttendRequest{EnrollmentNumber: "ENR001", Password: password})
		require.NoError(t, err)
		assert.Equal(t, models.AttendancePresent, res.Status)
	}

	_, err = env.qr.Attend(ctx, current.Token, &dto.AttendRequest{EnrollmentNumber: "ENR001", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	status, err := env.qr.SetActive(ctx, seminarID, false)
	require.NoError(t, err)
	assert.Equal(t, "closed", status.Status)

	status, err = env.qr.Status(ctx, seminarID)
	require.NoError(t, err)
	assert.False(t, status.Active)
	assert.Equal(t, "closed", status.Status)

	token := current.Token
	if latest, err := env.qr.CurrentQR(ctx, seminarID); err == nil {
		token = latest.Token
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/qr/:token/attend", controllers.NewQRController(env.qr, zerolog.Nop()).Attend)

	bodies := []string{
		`{"enrollment_number":"ENR001","password":"secret123"}`,
		`{"enrollment_number":"ENR001","password":"wrong"}`,
		`{"unique_code":"NOPE"}`,
		`{}`,
	}
	for _, body := range bodies {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/qr/"+token+"/attend", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code, body)
	}

	// reopening issues a fresh token; the one shown before closing is dead
	status, err = env.qr.SetActive(ctx, seminarID, true)
	require.NoError(t, err)
	assert.Equal(t, "active", status.Status)

	reopened, err := env.qr.CurrentQR(ctx, seminarID)
	require.NoError(t, err)
	assert.NotEqual(t, token, reopened.Token)

	_, err = env.qr.Attend(ctx, token, &dto.AttendRequest{EnrollmentNumber: "ENR001", Password: password})
	assert.ErrorIs(t, err, apperrors.ErrQRTokenUnknown)

	res, err := env.qr.Attend(ctx, reopened.Token, &dto.AttendRequest{EnrollmentNumber: "ENR001", Password: password})
	require.NoError(t, err)
	assert.Equal(t, models.AttendancePresent, res.Status)
}

func TestResolvePrefill(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	course, err := env.catalog.CreateCourse(ctx, &dto.CreateCourseRequest{Name: "MCA", TotalSemesters: 4})
	require.NoError(t, err)

	cs := fmt.Sprintf("%d-2,%d-2,%d-4", course.ID, course.ID, course.ID)
	res, err := env.catalog.ResolvePrefill(ctx, url.Values{"prefill": {"course_semester"}, "cs": {cs}})
	require.NoError(t, err)
	assert.Equal(t, targeting.ModeCourseSemester, res.Mode)
	require.Len(t, res.CourseSemesters, 2)
	assert.Equal(t, "MCA", res.CourseSemesters[0].CourseName)
	assert.Equal(t, 1, res.RowsToCreate)

	_, err = env.catalog.ResolvePrefill(ctx, url.Values{"prefill": {"course_semester"}, "cs": {fmt.Sprintf("%d-9", course.ID)}})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = env.catalog.ResolvePrefill(ctx, url.Values{})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

// rejectOpeningsFor makes every company insert for interestID fail inside the database
func rejectOpeningsFor(t *testing.T, database *db.PostgresDB, interestID int64) {
	t.Helper()
	ctx := context.Background()
	_, err := database.Pool.Exec(ctx, fmt.Sprintf(`
		CREATE OR REPLACE FUNCTION reject_test_opening() RETURNS trigger AS $$
		BEGIN
			IF NEW.interest_id = %d THEN
				RAISE EXCEPTION 'opening rejected';
			END IF;
			RETURN NEW;
		END $$ LANGUAGE plpgsql`, interestID))
	require.NoError(t, err)
	_, err = database.Pool.Exec(ctx,
		`CREATE TRIGGER reject_test_opening BEFORE INSERT ON companies
		 FOR EACH ROW EXECUTE FUNCTION reject_test_opening()`)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = database.Pool.Exec(context.Background(), `DROP TRIGGER IF EXISTS reject_test_opening ON companies`)
		_, _ = database.Pool.Exec(context.Background(), `DROP FUNCTION IF EXISTS reject_test_opening()`)
	})
}

func TestCreateCompany_FanOutRollsBack(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	interests := env.createInterests(t, 3)

	// the first two rows insert, the third fails
	rejectOpeningsFor(t, env.db, interests[2].ID)

	_, err := env.companies.CreateCompany(ctx, &dto.CompanyRequest{
		Name:                "Acme",
		Position:            "Analyst",
		ApplicationDeadline: time.Now().Add(48 * time.Hour),
		Payload: targeting.Payload{
			Mode:        targeting.ModeInterest,
			InterestIDs: []int64{interests[0].ID, interests[1].ID, interests[2].ID},
		},
	})
	require.Error(t, err)

	var count int
	require.NoError(t, env.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM companies`).Scan(&count))
	assert.Zero(t, count)
	assert.Empty(t, env.recorder.Subjects())
}

func TestCreateCompany_MultipleCourses(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	interests := env.createInterests(t, 1)
	bca := env.createCourse(t, "BCA", 6)
	mca := env.createCourse(t, "MCA", 4)

	created, err := env.companies.CreateCompany(ctx, &dto.CompanyRequest{
		Name:                "Globex",
		Position:            "Trainee",
		ApplicationDeadline: time.Now().Add(10 * 24 * time.Hour),
		Payload: targeting.Payload{
			Mode: targeting.ModeCourseSemester,
			CourseSemesters: []targeting.CourseSemester{
				{CourseID: bca.ID, Semester: 5},
				{CourseID: mca.ID, Semester: 3},
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created.OpeningsCreated)

	list, err := env.companies.ListCompanies(ctx, models.CompanyFilter{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, targeting.KindMultipleCourses, list.Items[0].TargetSummary.Kind)
	assert.Equal(t, "Multiple Courses (2)", list.Items[0].TargetSummary.Label)

	inCombo := env.createStudent(t, "ENR201", mca.ID, 3, interests[0].ID)
	otherSemester := env.createStudent(t, "ENR202", mca.ID, 2, interests[0].ID)

	visible, err := env.repos.CompanyRepository.ListForStudent(ctx, inCombo)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, created.IDs[0], visible[0].ID)

	visible, err = env.repos.CompanyRepository.ListForStudent(ctx, otherSemester)
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestSeminarAttendance_CourseSemesterTabs(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	interests := env.createInterests(t, 1)
	bca := env.createCourse(t, "BCA", 6)
	mca := env.createCourse(t, "MCA", 4)

	bca3 := env.createStudent(t, "ENR301", bca.ID, 3, interests[0].ID)
	env.createStudent(t, "ENR302", bca.ID, 5, interests[0].ID)
	env.createStudent(t, "ENR303", mca.ID, 2, interests[0].ID)
	env.createStudent(t, "ENR304", bca.ID, 1, interests[0].ID)

	sem, err := env.seminars.CreateSeminar(ctx, &dto.CreateSeminarRequest{
		Title:       "Aptitude Drill",
		SeminarDate: "2025-04-02T14:00",
		Payload: targeting.Payload{
			Mode: targeting.ModeCourseSemester,
			CourseSemesters: []targeting.CourseSemester{
				{CourseID: bca.ID, Semester: 3},
				{CourseID: bca.ID, Semester: 5},
				{CourseID: mca.ID, Semester: 2},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, sem.IDs, 1)
	seminarID := sem.IDs[0]

	_, err = env.seminars.UpdateAttendance(ctx, seminarID, &dto.AttendanceUpdateRequest{StudentID: bca3.ID, Status: models.AttendancePresent})
	require.NoError(t, err)

	all, err := env.seminars.GetAttendance(ctx, seminarID, "all")
	require.NoError(t, err)
	assert.Equal(t, 3, all.TotalCount)
	assert.Equal(t, 1, all.PresentCount)

	tab := fmt.Sprintf("%d-%d", bca.ID, 3)
	filtered, err := env.seminars.GetAttendance(ctx, seminarID, tab)
	require.NoError(t, err)
	require.Len(t, filtered.Students, 1)
	row := filtered.Students[0]
	assert.Equal(t, bca3.ID, row.ID)
	assert.Equal(t, bca.ID, row.CourseID)
	assert.Equal(t, 3, row.CurrentSemester)
	assert.Equal(t, models.AttendancePresent, row.Status)

	filtered, err = env.seminars.GetAttendance(ctx, seminarID, fmt.Sprintf("%d-%d", mca.ID, 2))
	require.NoError(t, err)
	require.Len(t, filtered.Students, 1)
	assert.Equal(t, mca.ID, filtered.Students[0].CourseID)
	assert.Equal(t, models.AttendanceAbsent, filtered.Students[0].Status)

	_, err = env.seminars.GetAttendance(ctx, seminarID, "bca-3")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCreateMessage_StudentsModeReachesRecipientsOnly(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	interests := env.createInterests(t, 1)
	course := env.createCourse(t, "BBA", 6)

	recipient := env.createStudent(t, "ENR401", course.ID, 4, interests[0].ID)
	classmate := env.createStudent(t, "ENR402", course.ID, 4, interests[0].ID)

	created, err := env.messages.CreateMessage(ctx, &dto.CreateMessageRequest{
		Title:   "Document check",
		Content: "Bring your originals to the placement office",
		Payload: targeting.Payload{Mode: targeting.ModeStudents, StudentIDs: []int64{recipient.ID}},
	})
	require.NoError(t, err)
	require.Len(t, created.IDs, 1)

	inbox, err := env.repos.MessageRepository.ListForStudent(ctx, recipient, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, created.IDs[0], inbox[0].ID)

	inbox, err = env.repos.MessageRepository.ListForStudent(ctx, classmate, 0)
	require.NoError(t, err)
	assert.Empty(t, inbox)
}

func TestStationeryReview_InsufficientStock(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	hash, err := pkgauth.HashPassword("Technical123!")
	require.NoError(t, err)
	_, err = env.repos.StaffRepository.CreateIfMissing(ctx, "store", hash, models.RoleTechnical)
	require.NoError(t, err)
	staff, err := env.repos.StaffRepository.GetByUsername(ctx, "store")
	require.NoError(t, err)

	item, err := env.stationery.CreateItem(ctx, staff.ID, &dto.CreateItemRequest{Name: "A4 paper", Unit: "ream", InitialQuantity: 5})
	require.NoError(t, err)

	tooMany, err := env.stationery.CreateTechnicalRequest(ctx, staff.ID, &dto.TechnicalRequest{ItemID: item.ID, Quantity: 8})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.PUT("/requests/:id/review", func(c *gin.Context) {
		middleware.SetSession(c, pkgauth.Session{UserID: staff.ID, Kind: pkgauth.KindStaff, Role: string(models.RoleTechnical)})
		c.Next()
	}, controllers.NewStationeryController(env.stationery).Review)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/requests/%d/review", tooMany.ID), strings.NewReader(`{"action":"approve"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	stored, err := env.repos.StationeryRepository.GetItem(ctx, env.db.Pool, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.AvailableQuantity)
	assert.Equal(t, 5, stored.TotalQuantity)

	pending, err := env.repos.StationeryRepository.GetRequest(ctx, env.db.Pool, tooMany.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.RequestForwarded, pending.Status)

	history, err := env.stationery.ListHistory(ctx, &item.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	// a request that fits takes exactly its quantity
	fits, err := env.stationery.CreateTechnicalRequest(ctx, staff.ID, &dto.TechnicalRequest{ItemID: item.ID, Quantity: 3})
	require.NoError(t, err)
	approved, err := env.stationery.Review(ctx, staff.ID, fits.ID, &dto.ReviewRequest{Action: services.ActionApprove})
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, approved.Status)

	stored, err = env.repos.StationeryRepository.GetItem(ctx, env.db.Pool, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.AvailableQuantity)
	assert.Equal(t, 5, stored.TotalQuantity)
}

func TestQRAttend_PaddedCurrentToken(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	interests := env.createInterests(t, 1)
	course := env.createCourse(t, "BCA", 6)
	env.createStudent(t, "ENR501", course.ID, 2, interests[0].ID)

	sem, err := env.seminars.CreateSeminar(ctx, &dto.CreateSeminarRequest{
		Title:       "Mock Interviews",
		SeminarDate: "2025-05-10",
		Payload:     targeting.Payload{Mode: targeting.ModeInterest, InterestIDs: []int64{interests[0].ID}},
	})
	require.NoError(t, err)

	// no grace at all, so only the current token is accepted
	qr := services.NewQRService(env.repos.SeminarRepository, env.repos.AttendanceRepository, env.repos.StudentRepository,
		nil, env.recorder, metrics.NewMock(),
		services.QRConfig{RotationInterval: time.Hour, TokenGrace: time.Nanosecond, BaseURL: "http://test"}, zerolog.Nop())

	current, err := qr.CurrentQR(ctx, sem.IDs[0])
	require.NoError(t, err)

	res, err := qr.Attend(ctx, " "+current.Token+"\n", &dto.AttendRequest{EnrollmentNumber: "ENR501", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, models.AttendancePresent, res.Status)
}

func TestGetByCode_UniqueCodeWinsOverEnrollment(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	interests := env.createInterests(t, 1)
	course := env.createCourse(t, "BCA", 6)

	byEnrollment := env.createStudent(t, "ENR601", course.ID, 2, interests[0].ID)
	byCode := env.createStudent(t, "ENR602", course.ID, 2, interests[0].ID)

	// the second student's code collides with the first student's enrollment number
	_, err := env.db.Pool.Exec(ctx, `UPDATE students SET unique_code = $1 WHERE id = $2`, byEnrollment.EnrollmentNumber, byCode.ID)
	require.NoError(t, err)

	found, err := env.repos.StudentRepository.GetByCode(ctx, byEnrollment.EnrollmentNumber)
	require.NoError(t, err)
	assert.Equal(t, byCode.ID, found.ID)

	found, err = env.repos.StudentRepository.GetByCode(ctx, byCode.EnrollmentNumber)
	require.NoError(t, err)
	assert.Equal(t, byCode.ID, found.ID)
}
