package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/app/services"
	"github.com/yigit/placement/internal/middleware"
	"github.com/yigit/placement/internal/pkg/apperrors"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// StaffLogin handles admin, committee and technical login
// @Summary Staff login
// @Description Authenticates a staff account and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.StaffLoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) StaffLogin(ctx *gin.Context) {
	var req dto.StaffLoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	token, err := c.authService.StaffLogin(ctx, &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("username", req.Username).Msg("Staff login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, token)
}

// StudentLogin handles student login by enrollment number
// @Summary Student login
// @Description Authenticates a student and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.StudentLoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /student/login [post]
func (c *AuthController) StudentLogin(ctx *gin.Context) {
	var req dto.StudentLoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	token, err := c.authService.StudentLogin(ctx, &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("enrollment", req.EnrollmentNumber).Msg("Student login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, token)
}

// Me describes the caller
// @Summary Current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	session, found := middleware.SessionFrom(ctx)
	if !found {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return
	}

	me, err := c.authService.Me(ctx, session)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, me)
}
