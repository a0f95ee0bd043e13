package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/placement/internal/pkg/apperrors"
	pkgauth "github.com/yigit/placement/internal/pkg/auth"
)

func TestCanActOnStudent(t *testing.T) {
	admin := pkgauth.Session{UserID: 1, Kind: pkgauth.KindStaff, Role: "admin"}
	committee := pkgauth.Session{UserID: 2, Kind: pkgauth.KindStaff, Role: "committee"}
	student := pkgauth.Session{UserID: 7, Kind: pkgauth.KindStudent, Role: "student"}

	assert.NoError(t, CanActOnStudent(admin, 7))
	assert.NoError(t, CanActOnStudent(student, 7))
	assert.ErrorIs(t, CanActOnStudent(student, 8), apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, CanActOnStudent(committee, 7), apperrors.ErrPermissionDenied)

	// a student id equal to a staff id must not grant access
	assert.ErrorIs(t, CanActOnStudent(pkgauth.Session{UserID: 7, Kind: pkgauth.KindStaff, Role: "technical"}, 7), apperrors.ErrPermissionDenied)
}

func TestStaffRoleAllowed(t *testing.T) {
	admin := pkgauth.Session{UserID: 1, Kind: pkgauth.KindStaff, Role: "admin"}
	technical := pkgauth.Session{UserID: 3, Kind: pkgauth.KindStaff, Role: "technical"}
	student := pkgauth.Session{UserID: 7, Kind: pkgauth.KindStudent, Role: "student"}

	assert.True(t, StaffRoleAllowed(admin, "committee"))
	assert.True(t, StaffRoleAllowed(technical, "technical"))
	assert.False(t, StaffRoleAllowed(technical, "committee"))
	assert.False(t, StaffRoleAllowed(student, "admin"))
	assert.True(t, StaffRoleAllowed(student, "student"))
}
