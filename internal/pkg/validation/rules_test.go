package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unimag/internal/pkg/apperrors"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "normalized", input: "  Ada.Lovelace@Uni.EDU ", want: "ada.lovelace@uni.edu"},
		{name: "plus tag", input: "a+mag@uni.ac.uk", want: "a+mag@uni.ac.uk"},
		{name: "no at", input: "ada.uni.edu", wantErr: true},
		{name: "no tld", input: "ada@uni", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateEmail(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("12345678"))
	err := ValidatePassword("1234567")
	require.Error(t, err)
	msg, ok := apperrors.UserMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Password must be at least 8 characters long", msg)
}

func TestValidateAcademicYear(t *testing.T) {
	assert.NoError(t, ValidateAcademicYear("2024-2025"))
	assert.Error(t, ValidateAcademicYear("2024-2026"))
	assert.Error(t, ValidateAcademicYear("2024/2025"))
	assert.Error(t, ValidateAcademicYear(""))
}

func TestValidateName(t *testing.T) {
	got, err := ValidateName("first_name", "  Ada ")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got)

	_, err = ValidateName("first_name", "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
