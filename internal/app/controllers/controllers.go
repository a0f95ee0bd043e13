// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placement/internal/app/auth"
	"github.com/yigit/placement/internal/app/models/dto"
	"github.com/yigit/placement/internal/middleware"
	"github.com/yigit/placement/internal/pkg/apperrors"
	"github.com/yigit/placement/internal/pkg/helpers"
)

// pathID reads a positive id path parameter, writing a 400 when it is malformed
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := helpers.ParseIDParam(ctx, name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, false
	}
	return id, true
}

// sessionStudentID returns the id of the calling student
func sessionStudentID(ctx *gin.Context) (int64, bool) {
	session, ok := middleware.SessionFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return 0, false
	}
	id, err := auth.RequireStudent(session)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, false
	}
	return id, true
}

// sessionUserID returns the id of the caller, staff or student
func sessionUserID(ctx *gin.Context) (int64, bool) {
	session, ok := middleware.SessionFrom(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return 0, false
	}
	return session.UserID, true
}

func respondOK(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(data, ""))
}

func respondCreated(ctx *gin.Context, data interface{}, message string) {
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(data, message))
}

func respondDeleted(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, message))
}
