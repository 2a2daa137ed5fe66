package seed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appModels "github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/pkg/auth"
)

type fakeRoles struct {
	codes []string
	err   error
}

func (f *fakeRoles) Upsert(_ context.Context, def appModels.RoleDefinition) error {
	f.codes = append(f.codes, def.Code)
	return f.err
}

type fakeFaculties struct{ names []string }

func (f *fakeFaculties) Ensure(_ context.Context, faculty *appModels.Faculty) (int64, error) {
	f.names = append(f.names, faculty.Name)
	return int64(len(f.names)), nil
}

type fakeSettings struct {
	got    *appModels.AcademicSettings
	stored *appModels.AcademicSettings
}

func (f *fakeSettings) EnsureAcademic(_ context.Context, s appModels.AcademicSettings) error {
	f.got = &s
	if f.stored == nil {
		f.stored = &s
	}
	return nil
}

func (f *fakeSettings) GetAcademic(_ context.Context) (*appModels.AcademicSettings, error) {
	if f.stored == nil {
		return nil, errors.New("no academic settings")
	}
	return f.stored, nil
}

type fakeUsers struct {
	existing map[string]bool
	created  []*appModels.User
}

func (f *fakeUsers) EmailExists(_ context.Context, email string, _ int64) (bool, error) {
	return f.existing[email], nil
}

func (f *fakeUsers) Create(_ context.Context, user *appModels.User) error {
	user.ID = int64(len(f.created) + 1)
	f.created = append(f.created, user)
	return nil
}

func newStores() (Stores, *fakeRoles, *fakeFaculties, *fakeSettings, *fakeUsers) {
	roles, faculties, settings, users := &fakeRoles{}, &fakeFaculties{}, &fakeSettings{}, &fakeUsers{existing: map[string]bool{}}
	return Stores{Roles: roles, Faculties: faculties, Settings: settings, Users: users}, roles, faculties, settings, users
}

func TestCreateDefaultData(t *testing.T) {
	stores, roles, faculties, settings, users := newStores()

	err := CreateDefaultData(context.Background(), stores, AdminAccount{Email: " Admin@Uni.edu ", Password: "Secret123!"}, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{"ADMIN", "MNGR", "COORD", "STUD"}, roles.codes)
	assert.Len(t, faculties.names, len(appModels.DefaultFaculties))
	require.NotNil(t, settings.got)
	assert.Equal(t, appModels.DefaultAcademicSettings().AcademicYear, settings.got.AcademicYear)

	require.Len(t, users.created, 1)
	admin := users.created[0]
	assert.Equal(t, "admin@uni.edu", admin.Email)
	assert.Equal(t, appModels.RoleAdmin, admin.Role)
	assert.True(t, auth.CheckPassword(admin.Password, "Secret123!"))
}

func TestCreateDefaultDataSkipsExistingAdmin(t *testing.T) {
	stores, _, _, _, users := newStores()
	users.existing["admin@uni.edu"] = true

	require.NoError(t, CreateDefaultData(context.Background(), stores, AdminAccount{Email: "admin@uni.edu", Password: "x"}, zerolog.Nop()))
	assert.Empty(t, users.created)
}

func TestCreateDefaultDataWithoutAdminPassword(t *testing.T) {
	stores, _, _, _, users := newStores()

	require.NoError(t, CreateDefaultData(context.Background(), stores, AdminAccount{Email: "admin@uni.edu"}, zerolog.Nop()))
	assert.Empty(t, users.created)
}

func TestCreateDefaultDataJoinsErrors(t *testing.T) {
	stores, roles, faculties, _, users := newStores()
	roles.err = errors.New("roles table missing")

	err := CreateDefaultData(context.Background(), stores, AdminAccount{Email: "admin@uni.edu", Password: "Secret123!"}, zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, roles.err)

	// Later steps still ran.
	assert.Len(t, faculties.names, len(appModels.DefaultFaculties))
	assert.Len(t, users.created, 1)
}

func TestCreateDefaultDataWarnsOnPassedDeadline(t *testing.T) {
	defer func(orig func() time.Time) { now = orig }(now)

	t.Run("seeded calendar is stale", func(t *testing.T) {
		now = func() time.Time { return time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC) }
		stores, _, _, _, _ := newStores()
		var buf bytes.Buffer

		require.NoError(t, CreateDefaultData(context.Background(), stores, AdminAccount{}, zerolog.New(&buf)))
		assert.Contains(t, buf.String(), "Submission deadline has passed")
		assert.Contains(t, buf.String(), `"submissionDeadline":"2025-05-25"`)
	})

	t.Run("existing calendar still open", func(t *testing.T) {
		now = func() time.Time { return time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC) }
		stores, _, _, settings, _ := newStores()
		settings.stored = &appModels.AcademicSettings{
			AcademicYear:       "2025-2026",
			SubmissionDeadline: time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC),
			FinalEditDeadline:  time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
			PublicationDate:    time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
		}
		var buf bytes.Buffer

		require.NoError(t, CreateDefaultData(context.Background(), stores, AdminAccount{}, zerolog.New(&buf)))
		assert.NotContains(t, buf.String(), "Submission deadline has passed")
	})

	t.Run("deadline day itself is still open", func(t *testing.T) {
		now = func() time.Time { return time.Date(2025, time.May, 25, 22, 0, 0, 0, time.UTC) }
		_, _, _, settings, _ := newStores()
		settings.stored = &appModels.AcademicSettings{SubmissionDeadline: time.Date(2025, time.May, 25, 0, 0, 0, 0, time.UTC)}

		assert.False(t, checkCalendar(context.Background(), settings, zerolog.Nop()))
	})
}
