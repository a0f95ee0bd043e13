// Package validation holds the custom validator tags and format rules shared by request DTOs.
package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Phone numbers: optional +, 10 to 15 digits, spaces and dashes ignored
	PhonePattern = `^\+?[0-9]{10,15}$`

	// Enrollment numbers as printed on college ID cards
	EnrollmentPattern = `^[A-Za-z0-9][A-Za-z0-9/\-]{0,99}$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Phone      *regexp.Regexp
	Enrollment *regexp.Regexp
}{
	Phone:      regexp.MustCompile(PhonePattern),
	Enrollment: regexp.MustCompile(EnrollmentPattern),
}

// AllowedImageTypes are the content types accepted by the image upload
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// IsPhone reports whether s is an acceptable phone number
func IsPhone(s string) bool {
	s = strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
	return CompiledPatterns.Phone.MatchString(s)
}

// IsEnrollment reports whether s is an acceptable enrollment number
func IsEnrollment(s string) bool {
	return CompiledPatterns.Enrollment.MatchString(strings.TrimSpace(s))
}

// Register adds the "phone" and "enrollment" tags to v
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("enrollment", func(fl validator.FieldLevel) bool {
		return IsEnrollment(fl.Field().String())
	})
}
