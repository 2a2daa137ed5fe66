package services

import (
	"context"
	"time"

	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/db"
)

// Services defined in this package:
// - AuthService: registration, login and profile
// - UserService: administrative user management
// - FacultyService: faculty listing
// - SubmissionService: uploads, listings, downloads and reviews
// - ActivityService: audit log and live activity feed
// - NotificationService: email notifications
// - StatsService: dashboards and publication statistics
// - AnalyticsService: page visit and browser analytics
// - SettingsService: academic calendar and per-user settings
// - ExportService: ZIP bundles of selected submissions

// TxRunner runs fn inside a database transaction
type TxRunner interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}

// UserStore is the user persistence used by the services
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, userID int64, firstName, lastName string) error
	UpdatePassword(ctx context.Context, userID int64, hash string) error
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.UserFilter) ([]*models.User, dto.PaginationInfo, error)
	ListWithSubmissionCounts(ctx context.Context, role models.Role, facultyID *int64) ([]*models.UserSummary, error)
}

// FacultyStore reads faculties
type FacultyStore interface {
	GetAll(ctx context.Context) ([]*models.Faculty, error)
	GetByID(ctx context.Context, id int64) (*models.Faculty, error)
}

// RoleStore reads role definitions
type RoleStore interface {
	GetAll(ctx context.Context) ([]models.RoleDefinition, error)
}

// SubmissionStore persists submissions
type SubmissionStore interface {
	Create(ctx context.Context, s *models.Submission) error
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, dto.PaginationInfo, error)
	UpdateStatus(ctx context.Context, id int64, status models.SubmissionStatus, at time.Time) error
}

// CommentStore persists reviewer comments
type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) error
	ListBySubmission(ctx context.Context, submissionID int64) ([]*models.Comment, error)
}

// ActivityStore persists the audit log
type ActivityStore interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	Recent(ctx context.Context, limit int) ([]*models.ActivityLog, error)
}

// PageVisitStore persists and aggregates page visits
type PageVisitStore interface {
	Create(ctx context.Context, v *models.PageVisit) error
	TopPages(ctx context.Context, since *time.Time, limit int) ([]models.PageViewStat, error)
	BrowserUsage(ctx context.Context) ([]models.BrowserUsage, error)
}

// SettingsStore persists academic and per-user settings
type SettingsStore interface {
	GetAcademic(ctx context.Context) (*models.AcademicSettings, error)
	UpsertAcademic(ctx context.Context, s models.AcademicSettings) error
	GetUserSettings(ctx context.Context, userID int64, kind models.SettingsKind) (models.SettingsDocument, error)
	UpsertUserSettings(ctx context.Context, userID int64, kind models.SettingsKind, doc models.SettingsDocument) error
}

// StatsStore runs aggregate queries
type StatsStore interface {
	SubmissionCounts(ctx context.Context, facultyID *int64) (models.SubmissionCounts, error)
	CountUsers(ctx context.Context) (int64, error)
	FacultyStats(ctx context.Context) ([]models.FacultyStat, error)
	TopContributors(ctx context.Context, limit int) ([]models.ContributorStat, error)
	Trend(ctx context.Context, unit string, since time.Time) ([]models.TrendBucket, error)
	DocumentTypeCounts(ctx context.Context) ([]models.DocumentTypeStat, error)
	StudentsByFaculty(ctx context.Context) ([]models.FacultyStudentStat, error)
	UserActivity(ctx context.Context, limit int) ([]models.UserActivityStat, error)
}

// ActivityLogger records user actions. Failures never reach the caller.
type ActivityLogger interface {
	Log(ctx context.Context, userID *int64, actionType, details string) int64
}
