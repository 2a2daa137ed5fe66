package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/pkg/apperrors"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order, the first match wins
var errorMappings = []errorMapping{
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrSubmissionNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Submission not found"},
	{apperrors.ErrFacultyNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Faculty not found"},
	{apperrors.ErrFileNotFound, http.StatusNotFound, dto.ErrorCodeFileMissing, "File not found on server"},
	{apperrors.ErrNothingToExport, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "No selected submissions found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrInvalidFormat, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token format"},
	{apperrors.ErrInvalidEmail, http.StatusBadRequest, dto.ErrorCodeInvalidEmail, "Invalid email"},
	{apperrors.ErrInvalidPassword, http.StatusBadRequest, dto.ErrorCodeInvalidPassword, "Invalid password"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrUnsupportedFileType, http.StatusBadRequest, dto.ErrorCodeResourceInvalid, "Invalid file type"},
	{apperrors.ErrSelfDeletion, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Cannot delete your own account"},
	{apperrors.ErrDeadlinePassed, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Deadline has passed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already in use"},
	{apperrors.ErrFileTooLarge, http.StatusRequestEntityTooLarge, dto.ErrorCodePayloadTooLarge, "File size exceeds the upload limit"},
}

// ErrorStatus returns the HTTP status and error detail for err
func ErrorStatus(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.message
		if msg, ok := apperrors.UserMessage(err); ok {
			message = msg
		}
		detail := dto.NewErrorDetail(m.code, message)
		if field := errorField(err); field != "" {
			detail = detail.WithField(field)
		}
		return m.status, detail
	}
	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}

// HandleAPIError writes the error envelope for err. Server errors are attached
// to the gin context so the logging and reporting middleware can pick them up.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func errorField(err error) string {
	var ce *apperrors.CustomError
	if !errors.As(err, &ce) || ce.Details == nil {
		return ""
	}
	field, _ := ce.Details["field"].(string)
	return field
}

func abortWithError(c *gin.Context, status int, code dto.ErrorCode, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}
