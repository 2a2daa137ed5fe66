package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/logger"
)

// LocalStorage keeps uploads on the local filesystem under basePath/user_<id>/.
type LocalStorage struct {
	basePath string
	maxSize  int64
	now      func() time.Time
}

// NewLocalStorage creates a new LocalStorage instance, creating basePath if needed.
func NewLocalStorage(basePath string, maxSize int64) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", abs).Msg("Local storage directory ensured")

	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &LocalStorage{basePath: abs, maxSize: maxSize, now: time.Now}, nil
}

// BasePath returns the absolute storage root.
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// SaveUpload validates the upload and writes it to user_<ownerID>/file-<unixms>-<rand><ext>.
func (ls *LocalStorage) SaveUpload(ownerID int64, fileHeader *multipart.FileHeader) (*StoredFile, error) {
	if err := ValidateUpload(fileHeader, ls.maxSize); err != nil {
		return nil, err
	}

	src, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	subDir := fmt.Sprintf("user_%d", ownerID)
	dir := filepath.Join(ls.basePath, subDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create user upload directory")
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	name := fmt.Sprintf("file-%d-%d%s", ls.now().UnixMilli(), uuid.New().ID(), ext)
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}

	written, err := io.Copy(dst, io.LimitReader(src, ls.maxSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}
	if written > ls.maxSize {
		_ = os.Remove(dstPath)
		return nil, apperrors.NewCustomError(apperrors.ErrFileTooLarge,
			fmt.Sprintf("File size exceeds the %dMB limit", ls.maxSize>>20))
	}

	stored := &StoredFile{
		Path:         filepath.ToSlash(filepath.Join(subDir, name)),
		FileType:     FileTypeFromExt(fileHeader.Filename),
		MimeType:     fileHeader.Header.Get("Content-Type"),
		Size:         written,
		OriginalName: fileHeader.Filename,
	}
	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", stored.Path).Int64("size", written).Msg("File saved successfully")
	return stored, nil
}

// FullPath resolves relPath inside the storage root. Paths escaping the root are rejected.
// A leading "uploads/" segment, as written by older rows, is tolerated.
func (ls *LocalStorage) FullPath(relPath string) (string, error) {
	clean := filepath.ToSlash(strings.TrimSpace(relPath))
	clean = strings.TrimPrefix(clean, "/")
	clean = strings.TrimPrefix(clean, "uploads/")
	if clean == "" {
		return "", fmt.Errorf("%w: empty file path", apperrors.ErrFileNotFound)
	}

	full := filepath.Join(ls.basePath, filepath.FromSlash(clean))
	rel, err := filepath.Rel(ls.basePath, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: invalid file path %s", apperrors.ErrFileNotFound, relPath)
	}
	return full, nil
}

// Open opens a stored file. A missing file yields apperrors.ErrFileNotFound.
func (ls *LocalStorage) Open(relPath string) (File, error) {
	full, err := ls.FullPath(relPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open stored file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat stored file: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, apperrors.ErrFileNotFound
	}
	return &localFile{File: f, info: info}, nil
}

// Delete removes a stored file. Returns nil if the file doesn't exist.
func (ls *LocalStorage) Delete(relPath string) error {
	if relPath == "" {
		return nil
	}
	full, err := ls.FullPath(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", full).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", full).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", full).Msg("File deleted successfully")
	return nil
}

// DeleteOwner removes the owner's user_<id> directory with everything in it.
func (ls *LocalStorage) DeleteOwner(ownerID int64) error {
	dir := filepath.Join(ls.basePath, fmt.Sprintf("user_%d", ownerID))
	if err := os.RemoveAll(dir); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to delete user upload directory")
		return fmt.Errorf("failed to delete upload directory: %w", err)
	}
	logger.Info().Str("path", dir).Msg("User upload directory deleted")
	return nil
}

type localFile struct {
	*os.File
	info os.FileInfo
}

func (f *localFile) Size() int64        { return f.info.Size() }
func (f *localFile) ModTime() time.Time { return f.info.ModTime() }
