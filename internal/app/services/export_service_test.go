package services

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/pkg/apperrors"
)

type staticSettings struct {
	doc models.SettingsDocument
}

func (s staticSettings) UserSettings(context.Context, int64, models.SettingsKind) (models.SettingsDocument, error) {
	return s.doc, nil
}

func exportFixture() (*fakeSubmissionStore, *fakeStorage) {
	subs := newFakeSubmissionStore(
		&models.Submission{ID: 1, Title: "Spring Poem", AuthorFirstName: "Ann", AuthorLastName: "Lee", FacultyName: "Arts & Humanities",
			FileType: "pdf", FilePath: "user_1/a.pdf", Status: models.StatusSelected, Selected: true},
		&models.Submission{ID: 2, Title: "Lost", AuthorFirstName: "Bo", AuthorLastName: "Ng", FacultyName: "Science",
			FileType: "png", FilePath: "user_2/missing.png", Status: models.StatusSelected, Selected: true},
		&models.Submission{ID: 3, Title: "Draft", FileType: "doc", FilePath: "user_3/c.doc", Status: models.StatusSubmitted},
	)
	storage := newFakeStorage()
	storage.files["user_1/a.pdf"] = "poem"
	storage.files["user_3/c.doc"] = "draft"
	return subs, storage
}

func zipNames(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestZipExport(t *testing.T) {
	subs, storage := exportFixture()
	activity := &fakeActivity{}
	svc := NewExportService(subs, storage, staticSettings{}, activity, zerolog.Nop())

	export, err := svc.Prepare(context.Background(), 2, nil)
	require.NoError(t, err)
	assert.Len(t, export.Entries, 2)
	assert.True(t, export.Options.IncludeMetadata)
	assert.Regexp(t, `^selected-submissions-\d+\.zip$`, export.Filename)

	var buf bytes.Buffer
	res, err := svc.Write(context.Background(), 2, &buf, export)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Failed)

	names := zipNames(t, buf.Bytes())
	assert.Contains(t, names, "Arts___Humanities/Ann_Lee-Spring_Poem.pdf")
	assert.Contains(t, names, "metadata.json")
	assert.Contains(t, names, "README.md")
	assert.NotContains(t, names, "Science/Bo_Ng-Lost.png")

	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActionZipDownload, activity.entries[0].Action)
	assert.Equal(t, "Downloaded ZIP of 2 selected submissions (1 files failed)", activity.entries[0].Details)
}

func TestZipExportHonoursSettingsAndIDs(t *testing.T) {
	subs, storage := exportFixture()
	svc := NewExportService(subs, storage, staticSettings{doc: models.SettingsDocument{"include_metadata": false}}, &fakeActivity{}, zerolog.Nop())

	export, err := svc.Prepare(context.Background(), 2, []int64{1})
	require.NoError(t, err)
	require.Len(t, export.Entries, 1)
	assert.False(t, export.Options.IncludeMetadata)

	var buf bytes.Buffer
	_, err = svc.Write(context.Background(), 2, &buf, export)
	require.NoError(t, err)
	assert.NotContains(t, zipNames(t, buf.Bytes()), "metadata.json")
}

func TestZipExportNothingSelected(t *testing.T) {
	subs, storage := exportFixture()
	svc := NewExportService(subs, storage, nil, &fakeActivity{}, zerolog.Nop())

	_, err := svc.Prepare(context.Background(), 2, []int64{3})
	assert.ErrorIs(t, err, apperrors.ErrNothingToExport)
}
