package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/unimag/internal/app/models"
	appRepos "github.com/yigit/unimag/internal/app/repositories"
	"github.com/yigit/unimag/internal/pkg/auth"
	"github.com/yigit/unimag/internal/pkg/helpers"
)

var now = time.Now

// Stores are the writes the seed needs
type Stores struct {
	Roles interface {
		Upsert(ctx context.Context, def appModels.RoleDefinition) error
	}
	Faculties interface {
		Ensure(ctx context.Context, faculty *appModels.Faculty) (int64, error)
	}
	Settings interface {
		EnsureAcademic(ctx context.Context, s appModels.AcademicSettings) error
		GetAcademic(ctx context.Context) (*appModels.AcademicSettings, error)
	}
	Users UserWriter
}

// UserWriter creates the administrator account
type UserWriter interface {
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, user *appModels.User) error
}

// StoresFrom picks the seed stores out of the repository container
func StoresFrom(repos *appRepos.Repositories) Stores {
	return Stores{
		Roles:     repos.RoleRepository,
		Faculties: repos.FacultyRepository,
		Settings:  repos.SettingsRepository,
		Users:     repos.UserRepository,
	}
}

// AdminAccount is the administrator created on first start
type AdminAccount struct {
	Email    string
	Password string
}

// CreateDefaultData creates the built-in roles, the default faculties, the academic
// calendar row and the administrator account when they are missing. Every step runs
// even when an earlier one fails; the errors are joined.
func CreateDefaultData(ctx context.Context, stores Stores, admin AdminAccount, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (roles, faculties, settings, admin)...")
	var finalErr error

	for _, def := range appModels.BuiltinRoles() {
		if err := stores.Roles.Upsert(ctx, def); err != nil {
			lgr.Error().Err(err).Str("role", def.Code).Msg("Error creating role")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for _, f := range appModels.DefaultFaculties {
		faculty := f
		if _, err := stores.Faculties.Ensure(ctx, &faculty); err != nil {
			lgr.Error().Err(err).Str("faculty", faculty.Name).Msg("Error creating faculty")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if err := stores.Settings.EnsureAcademic(ctx, appModels.DefaultAcademicSettings()); err != nil {
		lgr.Error().Err(err).Msg("Error creating academic settings")
		finalErr = errors.Join(finalErr, err)
	} else {
		checkCalendar(ctx, stores.Settings, lgr)
	}

	if err := createAdmin(ctx, stores.Users, admin, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

func createAdmin(ctx context.Context, users UserWriter, admin AdminAccount, lgr zerolog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		lgr.Warn().Msg("Seed admin credentials not configured, skipping admin creation")
		return nil
	}

	exists, err := users.EmailExists(ctx, email, 0)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return err
	}
	if exists {
		lgr.Info().Str("email", email).Msg("Admin user already exists, skipping creation")
		return nil
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	user := &appModels.User{
		FirstName: "System",
		LastName:  "Administrator",
		Email:     email,
		Password:  hash,
		Role:      appModels.RoleAdmin,
	}
	if err := users.Create(ctx, user); err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}

	lgr.Info().Int64("adminID", user.ID).Msg("Default admin user created successfully")
	return nil
}

// checkCalendar warns when the stored submission deadline is already behind us,
// which is the case for the seeded calendar on a fresh install after May 2025.
// Uploads are refused until an administrator sets the dates through
// PUT /api/admin/settings/academic.
func checkCalendar(ctx context.Context, settings interface {
	GetAcademic(ctx context.Context) (*appModels.AcademicSettings, error)
}, lgr zerolog.Logger) bool {
	current, err := settings.GetAcademic(ctx)
	if err != nil {
		lgr.Warn().Err(err).Msg("Could not read academic settings after seeding")
		return false
	}
	if !now().After(helpers.EndOfDay(current.SubmissionDeadline)) {
		return false
	}
	lgr.Warn().
		Str("academicYear", current.AcademicYear).
		Str("submissionDeadline", current.SubmissionDeadline.Format(helpers.DateLayout)).
		Msg("Submission deadline has passed, new contributions will be rejected until the academic calendar is updated (PUT /api/admin/settings/academic)")
	return true
}
