package dto

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

func TestHandleValidationError(t *testing.T) {
	validate := validator.New()

	t.Run("every failing field is listed", func(t *testing.T) {
		err := validate.Struct(signup{Password: "short"})
		require.Error(t, err)

		detail := HandleValidationError(err)
		assert.Equal(t, ErrorCodeValidationFailed, detail.Code)
		assert.Equal(t, "Email is required; Password must be at least 8 characters", detail.Message)
		assert.Empty(t, detail.Field)

		failed, ok := detail.Details.(ValidationErrors)
		require.True(t, ok)
		assert.Equal(t, []FieldError{
			{Field: "Email", Message: "Email is required"},
			{Field: "Password", Message: "Password must be at least 8 characters"},
		}, failed.Errors)
	})

	t.Run("single field sets field", func(t *testing.T) {
		err := validate.Struct(signup{Email: "not-an-email", Password: "long enough"})
		require.Error(t, err)

		detail := HandleValidationError(err)
		assert.Equal(t, "Email", detail.Field)
		assert.Equal(t, "Email must be a valid email address", detail.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		detail := HandleValidationError(errors.New("unexpected EOF"))
		assert.Equal(t, "Invalid request format", detail.Message)
		assert.Equal(t, "unexpected EOF", detail.Details)
	})
}
