// Package archive builds the downloadable ZIP bundle of selected submissions.
package archive

import (
	"archive/zip"
	"compress/flate"
	"fmt"
	"io"
	"path"
	"regexp"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	MetadataFile = "metadata.json"
	ReadmeFile   = "README.md"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Entry is one submission to place in the bundle.
type Entry struct {
	ID          int64
	Title       string
	AuthorFirst string
	AuthorLast  string
	Faculty     string
	FileType    string
	FilePath    string
}

// Author returns "First Last".
func (e Entry) Author() string {
	return e.AuthorFirst + " " + e.AuthorLast
}

// Options controls optional bundle content.
type Options struct {
	IncludeMetadata bool
	GeneratedAt     time.Time
}

// Result counts the files that made it into the bundle.
type Result struct {
	Total  int
	Added  int
	Failed int
}

// Opener opens a stored file by its stored path.
type Opener func(filePath string) (io.ReadCloser, error)

type metadataItem struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Faculty  string `json:"faculty"`
	FileType string `json:"file_type"`
}

// Sanitize replaces every character outside [A-Za-z0-9] with an underscore.
func Sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "_")
}

// EntryName is the path of an entry inside the archive:
// <faculty>/<First_Last>-<title>.<file_type>
func EntryName(e Entry) string {
	author := Sanitize(e.AuthorFirst + "_" + e.AuthorLast)
	return path.Join(Sanitize(e.Faculty), fmt.Sprintf("%s-%s.%s", author, Sanitize(e.Title), e.FileType))
}

// Readme renders the README.md placed at the archive root.
func Readme(count int, generatedAt time.Time) string {
	return fmt.Sprintf(`# Selected Submissions

This ZIP archive contains %d selected submissions for the University Magazine.
Generated on %s

## Structure
Files are organized by faculty. Each file is named using the format: AuthorName-SubmissionTitle.extension

## Metadata
The metadata.json file contains detailed information about all submissions included in this archive.
`, count, generatedAt.Format("2006-01-02 15:04:05 MST"))
}

// Write streams the bundle for entries to w. Files that cannot be opened are
// skipped and counted as failed; the metadata and README always cover all entries.
func Write(w io.Writer, entries []Entry, open Opener, opts Options, logger zerolog.Logger) (Result, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}

	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, 5)
	})

	res := Result{Total: len(entries)}
	for _, e := range entries {
		ok, err := addFile(zw, e, open, opts.GeneratedAt)
		if err != nil {
			return res, err
		}
		if !ok {
			logger.Warn().Int64("submission_id", e.ID).Str("file_path", e.FilePath).Msg("File not found, skipping")
			res.Failed++
			continue
		}
		res.Added++
	}

	if opts.IncludeMetadata {
		meta := make([]metadataItem, 0, len(entries))
		for _, e := range entries {
			meta = append(meta, metadataItem{
				ID:       e.ID,
				Title:    e.Title,
				Author:   e.Author(),
				Faculty:  e.Faculty,
				FileType: e.FileType,
			})
		}
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return res, fmt.Errorf("failed to encode metadata: %w", err)
		}
		if err := writeEntry(zw, MetadataFile, opts.GeneratedAt, data); err != nil {
			return res, err
		}
	}

	if err := writeEntry(zw, ReadmeFile, opts.GeneratedAt, []byte(Readme(len(entries), opts.GeneratedAt))); err != nil {
		return res, err
	}

	if err := zw.Close(); err != nil {
		return res, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return res, nil
}

// addFile copies one stored file into the archive. It returns false when the
// source could not be opened.
func addFile(zw *zip.Writer, e Entry, open Opener, modified time.Time) (bool, error) {
	src, err := open(e.FilePath)
	if err != nil {
		return false, nil
	}
	defer src.Close()

	dst, err := zw.CreateHeader(&zip.FileHeader{Name: EntryName(e), Method: zip.Deflate, Modified: modified})
	if err != nil {
		return false, fmt.Errorf("failed to create archive entry: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return false, fmt.Errorf("failed to write archive entry %s: %w", EntryName(e), err)
	}
	return true, nil
}

func writeEntry(zw *zip.Writer, name string, modified time.Time, data []byte) error {
	dst, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := dst.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
