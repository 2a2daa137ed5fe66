package filestorage

import (
	"io"
	"mime/multipart"
	"time"
)

// StoredFile describes an upload after it has been written to storage.
type StoredFile struct {
	Path         string // Path relative to the storage root, e.g. user_5/file-1714-42.pdf
	FileType     string // Short type code derived from the extension
	MimeType     string // MIME type reported by the client
	Size         int64  // Size in bytes
	OriginalName string // Filename as uploaded
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveUpload validates and stores an uploaded file under the owner's directory
	SaveUpload(ownerID int64, fileHeader *multipart.FileHeader) (*StoredFile, error)

	// Open opens a stored file for streaming
	Open(relPath string) (File, error)

	// Delete removes a stored file; a missing file is not an error
	Delete(relPath string) error

	// DeleteOwner removes every file stored for an owner
	DeleteOwner(ownerID int64) error

	// FullPath resolves a stored path to a filesystem path inside the root
	FullPath(relPath string) (string, error)
}

// File is an open stored file.
type File interface {
	io.ReadSeekCloser
	Size() int64
	ModTime() time.Time
}
