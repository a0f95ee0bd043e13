package dto

// StaffLoginRequest represents staff login credentials
type StaffLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// StudentLoginRequest represents student login credentials
type StudentLoginRequest struct {
	EnrollmentNumber string `json:"enrollment_number" binding:"required"`
	Password         string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn"`
	Role        string `json:"role" example:"admin"`
	UserID      int64  `json:"userId"`
}

// SessionResponse describes the caller of /api/auth/me
type SessionResponse struct {
	UserID int64  `json:"userId"`
	Kind   string `json:"kind" example:"staff"`
	Role   string `json:"role" example:"admin"`
	Name   string `json:"name,omitempty"`
}
