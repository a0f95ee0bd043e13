package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port          string `yaml:"port" env:"SERVER_PORT"`
		Mode          string `yaml:"mode" env:"SERVER_MODE"`
		StoragePath   string `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		PublicBaseURL string `yaml:"public_base_url" env:"SERVER_PUBLIC_BASE_URL"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	// Attendance controls QR rotation and the live seminar stream cadence
	Attendance struct {
		QRRotationInterval     time.Duration `yaml:"qr_rotation_interval" env:"ATTENDANCE_QR_ROTATION_INTERVAL"`
		AttendancePollInterval time.Duration `yaml:"attendance_poll_interval" env:"ATTENDANCE_POLL_INTERVAL"`
		QRTokenGrace           time.Duration `yaml:"qr_token_grace" env:"ATTENDANCE_QR_TOKEN_GRACE"`
		StreamMaxBackoff       time.Duration `yaml:"stream_max_backoff" env:"ATTENDANCE_STREAM_MAX_BACKOFF"`
	} `yaml:"attendance"`

	Placement struct {
		ClosingSoonDays int `yaml:"closing_soon_days" env:"PLACEMENT_CLOSING_SOON_DAYS"`
	} `yaml:"placement"`

	NATS struct {
		URL           string `yaml:"url" env:"NATS_URL"`
		SubjectPrefix string `yaml:"subject_prefix" env:"NATS_SUBJECT_PREFIX"`
	} `yaml:"nats"`

	SMTP struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
	} `yaml:"smtp"`

	// Institution is printed on hall tickets
	Institution struct {
		Name    string `yaml:"name" env:"INSTITUTION_NAME"`
		Address string `yaml:"address" env:"INSTITUTION_ADDRESS"`
	} `yaml:"institution"`

	Seed struct {
		AdminUsername     string `yaml:"admin_username" env:"SEED_ADMIN_USERNAME"`
		AdminPassword     string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
		CommitteeUsername string `yaml:"committee_username" env:"SEED_COMMITTEE_USERNAME"`
		CommitteePassword string `yaml:"committee_password" env:"SEED_COMMITTEE_PASSWORD"`
		TechnicalUsername string `yaml:"technical_username" env:"SEED_TECHNICAL_USERNAME"`
		TechnicalPassword string `yaml:"technical_password" env:"SEED_TECHNICAL_PASSWORD"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "uploads"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "placement"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.JWT.AccessTokenExpiration = "12h"
	config.JWT.Issuer = "placement.app"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Attendance.QRRotationInterval = 6 * time.Second
	config.Attendance.AttendancePollInterval = 5 * time.Second
	config.Attendance.StreamMaxBackoff = 30 * time.Second

	config.Placement.ClosingSoonDays = 7

	config.NATS.SubjectPrefix = "placement"

	config.SMTP.Port = 587
	config.SMTP.FromName = "Placement Cell"

	config.Institution.Name = "Placement Cell"

	config.Seed.AdminUsername = "admin"
	config.Seed.CommitteeUsername = "committee"
	config.Seed.TechnicalUsername = "technical"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid connection max lifetime format: %w", err)
	}

	if config.Attendance.QRRotationInterval <= 0 {
		return fmt.Errorf("attendance.qr_rotation_interval must be positive")
	}
	if config.Attendance.AttendancePollInterval <= 0 {
		return fmt.Errorf("attendance.attendance_poll_interval must be positive")
	}
	if config.Attendance.StreamMaxBackoff < config.Attendance.AttendancePollInterval {
		return fmt.Errorf("attendance.stream_max_backoff must not be shorter than the poll interval")
	}
	// grace defaults to one rotation so a code scanned right before rotating still works
	if config.Attendance.QRTokenGrace <= 0 {
		config.Attendance.QRTokenGrace = config.Attendance.QRRotationInterval
	}

	if config.Placement.ClosingSoonDays <= 0 {
		return fmt.Errorf("placement.closing_soon_days must be positive")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// BaseURL returns the externally reachable URL of the API, used in QR payloads and upload links
func (c *Config) BaseURL() string {
	if c.Server.PublicBaseURL != "" {
		return strings.TrimRight(c.Server.PublicBaseURL, "/")
	}
	return "http://localhost:" + c.Server.Port
}
