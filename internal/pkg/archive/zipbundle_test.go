package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memOpener(files map[string]string) Opener {
	return func(p string) (io.ReadCloser, error) {
		content, ok := files[p]
		if !ok {
			return nil, errors.New("missing")
		}
		return io.NopCloser(strings.NewReader(content)), nil
	}
}

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		out[f.Name] = string(b)
	}
	return out
}

func TestSanitizeAndEntryName(t *testing.T) {
	assert.Equal(t, "Arts___Humanities", Sanitize("Arts & Humanities"))

	e := Entry{Title: "Spring, Again!", AuthorFirst: "Ana", AuthorLast: "O'Neil", Faculty: "Science", FileType: "pdf"}
	assert.Equal(t, "Science/Ana_O_Neil-Spring__Again_.pdf", EntryName(e))
}

func TestWrite(t *testing.T) {
	entries := []Entry{
		{ID: 1, Title: "Poem", AuthorFirst: "Ana", AuthorLast: "Lee", Faculty: "Arts & Humanities", FileType: "docx", FilePath: "user_1/a.docx"},
		{ID: 2, Title: "Photo", AuthorFirst: "Bo", AuthorLast: "Kim", Faculty: "Science", FileType: "png", FilePath: "user_2/b.png"},
		{ID: 3, Title: "Lost", AuthorFirst: "Cy", AuthorLast: "Ng", Faculty: "Science", FileType: "pdf", FilePath: "user_3/gone.pdf"},
	}
	open := memOpener(map[string]string{
		"user_1/a.docx": "poem-bytes",
		"user_2/b.png":  "png-bytes",
	})

	var buf bytes.Buffer
	generated := time.Date(2025, time.April, 2, 9, 30, 0, 0, time.UTC)
	res, err := Write(&buf, entries, open, Options{IncludeMetadata: true, GeneratedAt: generated}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Result{Total: 3, Added: 2, Failed: 1}, res)

	files := readZip(t, buf.Bytes())
	assert.Len(t, files, 4)
	assert.Equal(t, "poem-bytes", files["Arts___Humanities/Ana_Lee-Poem.docx"])
	assert.Equal(t, "png-bytes", files["Science/Bo_Kim-Photo.png"])

	var meta []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(files[MetadataFile]), &meta))
	require.Len(t, meta, 3)
	assert.Equal(t, "Cy Ng", meta[2]["author"])
	assert.Equal(t, "pdf", meta[2]["file_type"])
	assert.Contains(t, files[MetadataFile], "\n  {\n    \"id\": 1,")

	readme := files[ReadmeFile]
	assert.True(t, strings.HasPrefix(readme, "# Selected Submissions\n"))
	assert.Contains(t, readme, "contains 3 selected submissions")
	assert.Contains(t, readme, "## Structure")
	assert.Contains(t, readme, "## Metadata")
}

func TestWriteWithoutMetadata(t *testing.T) {
	var buf bytes.Buffer
	entries := []Entry{{ID: 1, Title: "T", AuthorFirst: "A", AuthorLast: "B", Faculty: "F", FileType: "pdf", FilePath: "x"}}
	_, err := Write(&buf, entries, memOpener(map[string]string{"x": "data"}), Options{}, zerolog.Nop())
	require.NoError(t, err)

	files := readZip(t, buf.Bytes())
	_, hasMeta := files[MetadataFile]
	assert.False(t, hasMeta)
	assert.Contains(t, files, ReadmeFile)
	assert.Contains(t, files, "F/A_B-T.pdf")
}
