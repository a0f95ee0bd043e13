package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults with secret from file", func(t *testing.T) {
		path := writeConfig(t, "jwt:\n  secret: file-secret\n")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "file-secret", cfg.JWT.Secret)
		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, 6*time.Second, cfg.Attendance.QRRotationInterval)
		assert.Equal(t, 5*time.Second, cfg.Attendance.AttendancePollInterval)
		assert.Equal(t, cfg.Attendance.QRRotationInterval, cfg.Attendance.QRTokenGrace)
		assert.Equal(t, 7, cfg.Placement.ClosingSoonDays)
	})

	t.Run("yaml durations", func(t *testing.T) {
		path := writeConfig(t, "jwt:\n  secret: s\nattendance:\n  qr_rotation_interval: 10s\n  attendance_poll_interval: 2s\n")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, 10*time.Second, cfg.Attendance.QRRotationInterval)
		assert.Equal(t, 2*time.Second, cfg.Attendance.AttendancePollInterval)
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := writeConfig(t, "jwt:\n  secret: file-secret\nserver:\n  port: \"9000\"\n")
		t.Setenv("JWT_SECRET", "env-secret")
		t.Setenv("ATTENDANCE_POLL_INTERVAL", "3s")
		t.Setenv("SMTP_USE_TLS", "true")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "env-secret", cfg.JWT.Secret)
		assert.Equal(t, "9000", cfg.Server.Port)
		assert.Equal(t, 3*time.Second, cfg.Attendance.AttendancePollInterval)
		assert.True(t, cfg.SMTP.UseTLS)
	})

	t.Run("missing secret", func(t *testing.T) {
		path := writeConfig(t, "server:\n  port: \"8080\"\n")

		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT secret")
	})

	t.Run("bad env duration", func(t *testing.T) {
		path := writeConfig(t, "jwt:\n  secret: s\n")
		t.Setenv("ATTENDANCE_QR_ROTATION_INTERVAL", "soon")

		_, err := LoadConfig(path)
		require.Error(t, err)
	})

	t.Run("non positive interval", func(t *testing.T) {
		path := writeConfig(t, "jwt:\n  secret: s\nattendance:\n  qr_rotation_interval: 0s\n")

		_, err := LoadConfig(path)
		require.Error(t, err)
	})
}

func TestBaseURL(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL())

	cfg.Server.PublicBaseURL = "https://placement.example.edu/"
	assert.Equal(t, "https://placement.example.edu", cfg.BaseURL())
}
