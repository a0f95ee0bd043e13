package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		deadline time.Time
		want     Info
	}{
		{"already passed", now.Add(-time.Hour), Info{StatusExpired, false, 0, true}},
		{"long passed", now.Add(-72 * time.Hour), Info{StatusExpired, false, -3, true}},
		{"exactly now", now, Info{StatusExpired, false, 0, true}},
		{"one millisecond left", now.Add(time.Millisecond), Info{StatusClosingSoon, true, 1, false}},
		{"twenty three hours", now.Add(23 * time.Hour), Info{StatusClosingSoon, true, 1, false}},
		{"exactly seven days", now.Add(7 * 24 * time.Hour), Info{StatusClosingSoon, true, 7, false}},
		{"seven days and a minute", now.Add(7*24*time.Hour + time.Minute), Info{StatusActive, true, 8, false}},
		{"a month", now.AddDate(0, 1, 0), Info{StatusActive, true, 30, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Status(tt.deadline, now, 7)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, !got.IsExpired, got.CanApply)
		})
	}
}

func TestStatusWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, StatusActive, Status(now.Add(3*24*time.Hour), now, 2).Status)
	assert.Equal(t, StatusClosingSoon, Status(now.Add(3*24*time.Hour), now, 0).Status)
}
