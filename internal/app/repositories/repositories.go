package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/unimag/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	FacultyRepository    *FacultyRepository
	RoleRepository       *RoleRepository
	SubmissionRepository *SubmissionRepository
	CommentRepository    *CommentRepository
	ActivityRepository   *ActivityRepository
	PageVisitRepository  *PageVisitRepository
	SettingsRepository   *SettingsRepository
	StatsRepository      *StatsRepository
}

// NewRepositories initializes all repositories
func NewRepositories(q db.Querier) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(q),
		FacultyRepository:    NewFacultyRepository(q),
		RoleRepository:       NewRoleRepository(q),
		SubmissionRepository: NewSubmissionRepository(q),
		CommentRepository:    NewCommentRepository(q),
		ActivityRepository:   NewActivityRepository(q),
		PageVisitRepository:  NewPageVisitRepository(q),
		SettingsRepository:   NewSettingsRepository(q),
		StatsRepository:      NewStatsRepository(q),
	}
}

var (
	// psql is the statement builder shared by every repository
	psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	sqlNow = squirrel.Expr("NOW()")
)

// conn returns the caller's transaction when ctx carries one
func conn(ctx context.Context, q db.Querier) db.Querier {
	return db.QuerierFrom(ctx, q)
}
