package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	appControllers "github.com/yigit/placement/internal/app/controllers"
	appMigrations "github.com/yigit/placement/internal/app/migrations"
	appRepos "github.com/yigit/placement/internal/app/repositories"
	appRoutes "github.com/yigit/placement/internal/app/routes"
	appServices "github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/config"
	"github.com/yigit/placement/internal/db"
	appMiddleware "github.com/yigit/placement/internal/middleware"
	pkgAuth "github.com/yigit/placement/internal/pkg/auth"
	"github.com/yigit/placement/internal/pkg/email"
	"github.com/yigit/placement/internal/pkg/events"
	"github.com/yigit/placement/internal/pkg/filestorage"
	"github.com/yigit/placement/internal/pkg/hallticket"
	"github.com/yigit/placement/internal/pkg/logger"
	"github.com/yigit/placement/internal/pkg/metrics"
	"github.com/yigit/placement/internal/pkg/websocket"
	"github.com/yigit/placement/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	CompanyService    appServices.CompanyService
	MessageService    appServices.MessageService
	SeminarService    appServices.SeminarService
	QRService         appServices.QRService
	StudentService    appServices.StudentService
	PortalService     appServices.PortalService
	CatalogService    appServices.CatalogService
	StationeryService appServices.StationeryService
	AuthService       appServices.AuthService
	UploadService     appServices.UploadService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware

	Repos       *appRepos.Repositories
	JWTService  *pkgAuth.JWTService
	Hub         *websocket.Hub
	Publisher   events.Publisher
	Metrics     *metrics.Metrics
	FileStorage *filestorage.LocalStorage
	Logger      zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format)
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds staff accounts.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(ctx, database.Pool, seed.StaffAccounts(cfg), lgr); err != nil {
		// startup continues; accounts can be created on the next boot
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	var err error
	deps.Metrics, err = metrics.New(otel.GetMeterProvider().Meter("github.com/yigit/placement"))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to create metric instruments")
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	if cfg.NATS.URL != "" {
		publisher, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, lgr)
		if err != nil {
			lgr.Error().Err(err).Str("url", cfg.NATS.URL).Msg("Failed to connect to NATS")
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		deps.Publisher = publisher
	} else {
		lgr.Warn().Msg("NATS URL not configured, domain events are discarded")
		deps.Publisher = events.NoopPublisher{}
	}

	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.BaseURL())
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	emailService := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, lgr)

	deps.Hub = websocket.NewHub(lgr)
	go deps.Hub.Run()

	// validated by config.LoadConfig
	accessTokenExp, _ := time.ParseDuration(cfg.JWT.AccessTokenExpiration)
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: accessTokenExp,
		TokenIssuer:    cfg.JWT.Issuer,
	})

	repos := deps.Repos
	closingSoon := cfg.Placement.ClosingSoonDays

	deps.AuthService = appServices.NewAuthService(repos.StaffRepository, repos.StudentRepository, deps.JWTService, lgr)
	deps.CompanyService = appServices.NewCompanyService(database, repos.CompanyRepository, repos.CourseRepository,
		repos.StudentRepository, deps.Publisher, deps.Metrics, closingSoon, lgr)
	deps.MessageService = appServices.NewMessageService(database, repos.MessageRepository, repos.CourseRepository,
		repos.StudentRepository, deps.Publisher, deps.Metrics, lgr)
	deps.SeminarService = appServices.NewSeminarService(database, repos.SeminarRepository, repos.AttendanceRepository,
		repos.CourseRepository, repos.StudentRepository, deps.Hub, deps.Publisher, deps.Metrics, lgr)
	deps.QRService = appServices.NewQRService(repos.SeminarRepository, repos.AttendanceRepository, repos.StudentRepository,
		deps.Hub, deps.Publisher, deps.Metrics, appServices.QRConfig{
			RotationInterval: cfg.Attendance.QRRotationInterval,
			TokenGrace:       cfg.Attendance.QRTokenGrace,
			BaseURL:          cfg.BaseURL(),
		}, lgr)
	deps.StudentService = appServices.NewStudentService(database, repos.StudentRepository, repos.CourseRepository, emailService, lgr)
	deps.PortalService = appServices.NewPortalService(repos, emailService, deps.Publisher, deps.Metrics, closingSoon, lgr)
	deps.CatalogService = appServices.NewCatalogService(database, repos, hallticket.Institution{
		Name:    cfg.Institution.Name,
		Address: cfg.Institution.Address,
	}, lgr)
	deps.StationeryService = appServices.NewStationeryService(database, repos.StationeryRepository, deps.Publisher, deps.Metrics, lgr)
	deps.UploadService = appServices.NewUploadService(deps.FileStorage, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Controllers = appRoutes.Controllers{
		Auth:    appControllers.NewAuthController(deps.AuthService, lgr),
		Company: appControllers.NewCompanyController(deps.CompanyService),
		Message: appControllers.NewMessageController(deps.MessageService),
		Seminar: appControllers.NewSeminarController(deps.SeminarService),
		QR:      appControllers.NewQRController(deps.QRService, lgr),
		Live: appControllers.NewLiveController(websocket.NewHandler(deps.Hub, lgr), deps.QRService, deps.SeminarService,
			deps.Metrics, appControllers.LiveConfig{
				QRInterval:         cfg.Attendance.QRRotationInterval,
				AttendanceInterval: cfg.Attendance.AttendancePollInterval,
				MaxBackoff:         cfg.Attendance.StreamMaxBackoff,
			}, lgr),
		Student:    appControllers.NewStudentController(deps.StudentService),
		Portal:     appControllers.NewPortalController(deps.PortalService),
		Catalog:    appControllers.NewCatalogController(deps.CatalogService, deps.UploadService),
		Stationery: appControllers.NewStationeryController(deps.StationeryService),
		Health:     appControllers.NewHealthController(database),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))
	router.MaxMultipartMemory = appServices.MaxImageSize

	appRoutes.SetupSwagger(router, "")
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.Static(filestorage.URLPrefix, deps.FileStorage.BasePath())
	lgr.Info().Str("path", deps.FileStorage.BasePath()).Msg("Static file serving configured for uploads directory")

	return router
}
