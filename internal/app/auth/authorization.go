package auth

import (
	"fmt"

	"github.com/yigit/placement/internal/app/models"
	"github.com/yigit/placement/internal/pkg/apperrors"
	pkgauth "github.com/yigit/placement/internal/pkg/auth"
)

// CanActOnStudent allows admins on any student and students only on themselves
func CanActOnStudent(session pkgauth.Session, studentID int64) error {
	if session.Kind == pkgauth.KindStaff && session.Role == string(models.RoleAdmin) {
		return nil
	}
	if session.IsStudent() && session.UserID == studentID {
		return nil
	}
	return fmt.Errorf("%w: cannot access student %d", apperrors.ErrPermissionDenied, studentID)
}

// RequireStudent returns the student id of a student session
func RequireStudent(session pkgauth.Session) (int64, error) {
	if !session.IsStudent() {
		return 0, fmt.Errorf("%w: student session required", apperrors.ErrPermissionDenied)
	}
	return session.UserID, nil
}

// StaffRoleAllowed reports whether a staff session carries one of roles.
// Admins pass every staff gate.
func StaffRoleAllowed(session pkgauth.Session, roles ...string) bool {
	if session.Kind != pkgauth.KindStaff {
		for _, r := range roles {
			if r == string(models.RoleStudent) && session.IsStudent() {
				return true
			}
		}
		return false
	}
	if session.Role == string(models.RoleAdmin) {
		return true
	}
	return session.HasRole(roles...)
}
