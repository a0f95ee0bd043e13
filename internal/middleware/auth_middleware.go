package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models/dto"
	pkgauth "github.com/yigit/placement/internal/pkg/auth"
)

const sessionKey = "session"

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *pkgauth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *pkgauth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// SetSession stores the authenticated session on the request
func SetSession(c *gin.Context, session pkgauth.Session) {
	c.Set(sessionKey, session)
}

// SessionFrom returns the session placed by JWTAuth
func SessionFrom(c *gin.Context) (pkgauth.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return pkgauth.Session{}, false
	}
	session, ok := v.(pkgauth.Session)
	return session, ok
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

func abortForbidden(c *gin.Context, details string) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
}

// JWTAuth validates the bearer token and stores the session in the context.
// Browsers cannot set headers on websocket upgrades, so a "token" query parameter is accepted too.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			authHeader = c.Query("token")
		}
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			return
		}

		tokenString, err := pkgauth.ExtractBearerToken(strings.Trim(authHeader, "\"'"))
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Invalid token format")
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, pkgauth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
			return
		}

		SetSession(c, claims.Session())
		c.Next()
	}
}

// RoleRequired lets through sessions holding one of roles. Admins pass every staff gate.
func (m *AuthMiddleware) RoleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFrom(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User session not found")
			return
		}

		if !auth.StaffRoleAllowed(session, roles...) {
			abortForbidden(c, "You don't have sufficient permissions for this operation")
			return
		}

		c.Next()
	}
}

// SelfOrAdmin lets a student through only for their own id in path parameter param
func (m *AuthMiddleware) SelfOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFrom(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User session not found")
			return
		}

		studentID, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid student ID")
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}

		if err := auth.CanActOnStudent(session, studentID); err != nil {
			abortForbidden(c, "You can only access your own records")
			return
		}

		c.Next()
	}
}
