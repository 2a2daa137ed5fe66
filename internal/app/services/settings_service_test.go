package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/cache"
)

func TestAcademicSettingsDefaults(t *testing.T) {
	svc := NewSettingsService(newFakeSettingsStore(), nil, time.Minute, &fakeActivity{}, zerolog.Nop())

	settings, err := svc.AcademicSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAcademicSettings(), settings)

	resp := dto.NewAcademicSettingsResponse(settings)
	assert.Equal(t, "2024-2025", resp.AcademicYear)
	assert.Equal(t, "2025-05-25", resp.SubmissionDeadline)
	assert.Equal(t, "2025-06-23", resp.FinalEditDeadline)
	assert.Equal(t, "2025-04-01", resp.PublicationDate)
}

func TestUpdateAcademicSettings(t *testing.T) {
	store := newFakeSettingsStore()
	activity := &fakeActivity{}
	svc := NewSettingsService(store, cache.Noop{}, time.Minute, activity, zerolog.Nop())

	settings, err := svc.UpdateAcademicSettings(context.Background(), 1, &dto.AcademicSettingsRequest{
		AcademicYear:       "2025-2026",
		SubmissionDeadline: "2026-05-01",
		FinalEditDeadline:  "2026-06-01",
		PublicationDate:    "2026-07-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-2026", settings.AcademicYear)
	require.NotNil(t, store.academic)
	assert.Equal(t, time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC), store.academic.SubmissionDeadline)
	assert.Equal(t, []string{models.ActionSettingsUpdate}, activity.actions())

	stored, err := svc.AcademicSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-2026", stored.AcademicYear)

	tests := []struct {
		name string
		req  dto.AcademicSettingsRequest
	}{
		{"bad year", dto.AcademicSettingsRequest{AcademicYear: "2025", SubmissionDeadline: "2026-05-01", FinalEditDeadline: "2026-06-01", PublicationDate: "2026-07-01"}},
		{"bad date", dto.AcademicSettingsRequest{AcademicYear: "2025-2026", SubmissionDeadline: "01/05/2026", FinalEditDeadline: "2026-06-01", PublicationDate: "2026-07-01"}},
		{"final before submission", dto.AcademicSettingsRequest{AcademicYear: "2025-2026", SubmissionDeadline: "2026-06-01", FinalEditDeadline: "2026-05-01", PublicationDate: "2026-07-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateAcademicSettings(context.Background(), 1, &tt.req)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestUserSettingsMerge(t *testing.T) {
	store := newFakeSettingsStore()
	store.docs[models.SettingsDisplay] = models.SettingsDocument{"dark_mode": false}
	svc := NewSettingsService(store, nil, time.Minute, &fakeActivity{}, zerolog.Nop())

	doc, err := svc.UserSettings(context.Background(), 2, models.SettingsDisplay)
	require.NoError(t, err)
	assert.Equal(t, false, doc["dark_mode"])
	assert.Equal(t, true, doc["show_statistics"])
	assert.Equal(t, "submissions", doc["default_view"])

	doc, err = svc.UserSettings(context.Background(), 2, models.SettingsExport)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(models.SettingsExport), doc)
}

func TestUpdateUserSettings(t *testing.T) {
	store := newFakeSettingsStore()
	store.docs[models.SettingsNotifications] = models.SettingsDocument{"deadline_reminders": false}
	svc := NewSettingsService(store, nil, time.Minute, &fakeActivity{}, zerolog.Nop())

	doc, err := svc.UpdateUserSettings(context.Background(), 2, models.SettingsNotifications,
		models.SettingsDocument{"comment_notifications": false})
	require.NoError(t, err)
	assert.Equal(t, false, doc["comment_notifications"])
	assert.Equal(t, false, doc["deadline_reminders"])
	assert.Equal(t, true, doc["email_notifications"])
	assert.Equal(t, models.SettingsDocument{"deadline_reminders": false, "comment_notifications": false},
		store.docs[models.SettingsNotifications])

	assert.False(t, svc.NotificationsEnabled(context.Background(), 2, FlagCommentNotifications))
	assert.True(t, svc.NotificationsEnabled(context.Background(), 2, FlagSelectionNotifications))

	tests := []struct {
		name   string
		kind   models.SettingsKind
		update models.SettingsDocument
	}{
		{"unknown key", models.SettingsDisplay, models.SettingsDocument{"font_size": "large"}},
		{"wrong type bool", models.SettingsDisplay, models.SettingsDocument{"dark_mode": "yes"}},
		{"wrong type string", models.SettingsExport, models.SettingsDocument{"default_format": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateUserSettings(context.Background(), 2, tt.kind, tt.update)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}

	_, err = svc.UpdateUserSettings(context.Background(), 2, models.SettingsDisplay, models.SettingsDocument{})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}
