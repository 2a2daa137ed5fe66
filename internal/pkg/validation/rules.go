package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yigit/unimag/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	// Email validation pattern, applied to the lowercased address
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Academic year, e.g. 2024-2025
	AcademicYearPattern = `^\d{4}-\d{4}$`

	// Password min length
	PasswordMinLength = 8

	// Name validation max length
	NameMaxLength = 100

	// Submission title max length
	TitleMaxLength = 255
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Email        *regexp.Regexp
	AcademicYear *regexp.Regexp
}{
	Email:        regexp.MustCompile(EmailPattern),
	AcademicYear: regexp.MustCompile(AcademicYearPattern),
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail normalizes and checks an email address.
func ValidateEmail(email string) (string, error) {
	email = NormalizeEmail(email)
	if !CompiledPatterns.Email.MatchString(email) {
		return "", apperrors.NewValidationError("email", "Invalid email format")
	}
	return email, nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength {
		return apperrors.NewValidationError("password",
			fmt.Sprintf("Password must be at least %d characters long", PasswordMinLength))
	}
	return nil
}

// ValidateName checks a required person name.
func ValidateName(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperrors.NewValidationError(field, fmt.Sprintf("%s is required", field))
	}
	if len(value) > NameMaxLength {
		return "", apperrors.NewValidationError(field, fmt.Sprintf("%s must be at most %d characters", field, NameMaxLength))
	}
	return value, nil
}

// ValidateAcademicYear checks the YYYY-YYYY form with consecutive years.
func ValidateAcademicYear(year string) error {
	year = strings.TrimSpace(year)
	if !CompiledPatterns.AcademicYear.MatchString(year) {
		return apperrors.NewValidationError("academicYear", "Academic year must look like 2024-2025")
	}
	var start, end int
	fmt.Sscanf(year, "%d-%d", &start, &end)
	if end != start+1 {
		return apperrors.NewValidationError("academicYear", "Academic year must span two consecutive years")
	}
	return nil
}
