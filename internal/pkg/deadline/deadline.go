package deadline

import (
	"math"
	"time"
)

const (
	StatusActive      = "Active"
	StatusClosingSoon = "Closing Soon"
	StatusExpired     = "Expired"

	// DefaultClosingSoonDays is used when no window is configured
	DefaultClosingSoonDays = 7

	msPerDay = 86400000
)

// Info is the application window state of an opening at a given instant
type Info struct {
	Status        string `json:"status"`
	CanApply      bool   `json:"canApply"`
	DaysRemaining int    `json:"daysRemaining"`
	IsExpired     bool   `json:"isExpired"`
}

// Status classifies deadline relative to now.
// days_remaining = ceil((deadline - now) / 1 day), counted in milliseconds.
func Status(deadline, now time.Time, closingSoonDays int) Info {
	if closingSoonDays <= 0 {
		closingSoonDays = DefaultClosingSoonDays
	}

	diffMs := deadline.Sub(now).Milliseconds()
	days := int(math.Ceil(float64(diffMs) / msPerDay))

	switch {
	case days <= 0:
		return Info{Status: StatusExpired, CanApply: false, DaysRemaining: days, IsExpired: true}
	case days <= closingSoonDays:
		return Info{Status: StatusClosingSoon, CanApply: true, DaysRemaining: days}
	default:
		return Info{Status: StatusActive, CanApply: true, DaysRemaining: days}
	}
}
