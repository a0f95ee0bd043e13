package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPhone(t *testing.T) {
	for _, ok := range []string{"9876543210", "+919876543210", "98765 43210", "987-654-3210"} {
		assert.True(t, IsPhone(ok), ok)
	}
	for _, bad := range []string{"", "12345", "phone", "+91 98765 4321x"} {
		assert.False(t, IsPhone(bad), bad)
	}
}

func TestIsEnrollment(t *testing.T) {
	assert.True(t, IsEnrollment("0801CS211001"))
	assert.True(t, IsEnrollment("MCA/2023-14"))
	assert.False(t, IsEnrollment("-leading"))
	assert.False(t, IsEnrollment("has space"))
}

func TestRegisterTags(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	type req struct {
		Phone      string `validate:"omitempty,phone"`
		Enrollment string `validate:"enrollment"`
	}
	assert.NoError(t, v.Struct(req{Phone: "", Enrollment: "EN01"}))
	assert.Error(t, v.Struct(req{Phone: "12", Enrollment: "EN01"}))
	assert.Error(t, v.Struct(req{Enrollment: "bad value"}))
}
