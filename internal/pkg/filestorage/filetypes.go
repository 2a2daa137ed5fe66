package filestorage

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/yigit/unimag/internal/pkg/apperrors"
)

// File type codes stored in submissions.file_type
const (
	TypePDF   = "pdf"
	TypeDOC   = "doc"
	TypeDOCX  = "docx"
	TypeJPEG  = "jpeg"
	TypePNG   = "png"
	TypeOther = "other"
)

const DefaultMaxUploadSize int64 = 10 << 20

var allowedMimeTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,

	"application/msword": true,
	"application/pdf":    true,
	"image/jpeg":         true,
	"image/png":          true,
	"image/jpg":          true,
}

var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"png":  "image/png",
}

// FileTypeFromExt maps a filename extension to its type code.
func FileTypeFromExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return TypePDF
	case ".doc":
		return TypeDOC
	case ".docx":
		return TypeDOCX
	case ".jpg", ".jpeg":
		return TypeJPEG
	case ".png":
		return TypePNG
	default:
		return TypeOther
	}
}

// ContentTypeFor returns the Content-Type for a file type code or extension.
func ContentTypeFor(fileType string) string {
	if ct, ok := contentTypes[strings.ToLower(strings.TrimPrefix(fileType, "."))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// IsAllowedMimeType reports whether uploads of the given MIME type are accepted.
func IsAllowedMimeType(mimeType string) bool {
	return allowedMimeTypes[strings.ToLower(strings.TrimSpace(mimeType))]
}

// ValidateUpload checks the size and declared MIME type of an upload.
func ValidateUpload(fileHeader *multipart.FileHeader, maxSize int64) error {
	if fileHeader == nil {
		return apperrors.NewValidationError("file", "No file uploaded")
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	if fileHeader.Size > maxSize {
		return apperrors.NewCustomError(apperrors.ErrFileTooLarge,
			fmt.Sprintf("File size exceeds the %dMB limit", maxSize>>20))
	}
	if !IsAllowedMimeType(fileHeader.Header.Get("Content-Type")) {
		return apperrors.NewCustomError(apperrors.ErrUnsupportedFileType,
			"Invalid file type. Only DOC, DOCX, PDF, JPG, JPEG, and PNG files are allowed.")
	}
	return nil
}
