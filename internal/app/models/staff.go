package models

import "time"

// Role names carried in access tokens
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCommittee Role = "committee"
	RoleTechnical Role = "technical"
	RoleStudent   Role = "student"
)

// StaffUser is an admin, committee or technical account
type StaffUser struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	PasswordHash string    `json:"-"`
}
