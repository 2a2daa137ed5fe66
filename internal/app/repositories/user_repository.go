package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/db"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/dberrors"
	"github.com/yigit/unimag/internal/pkg/helpers"
	"github.com/yigit/unimag/internal/pkg/logger"
)

// UsersEmailConstraint is the unique constraint guarding users.email
const UsersEmailConstraint = "users_email_key"

// UserRepository handles user database operations
type UserRepository struct {
	db db.Querier
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(q db.Querier) *UserRepository {
	return &UserRepository{db: q}
}

func selectUserQuery() squirrel.SelectBuilder {
	return psql.Select(
		"u.user_id", "u.first_name", "u.last_name", "u.email", "u.password",
		"u.faculty_id", "f.faculty_name", "u.role_id", "u.created_at", "u.last_login",
	).
		From("users u").
		LeftJoin("faculties f ON u.faculty_id = f.faculty_id")
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	var roleID int
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password,
		&u.FacultyID, &u.FacultyName, &roleID, &u.CreatedAt, &u.LastLogin,
	)
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(roleID)
	return u, nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := selectUserQuery().Where(where).Limit(1).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get user SQL")
		return nil, fmt.Errorf("failed to build user query: %w", err)
	}

	user, err := scanUser(conn(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error executing get user query")
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.user_id": id})
}

// GetByEmail retrieves a user by (already normalized) email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.email": email})
}

// EmailExists checks whether an email is taken, ignoring the user excludeID (0 ignores nobody)
func (r *UserRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	inner := psql.Select("1").From("users").Where(squirrel.Eq{"email": email})
	if excludeID > 0 {
		inner = inner.Where(squirrel.NotEq{"user_id": excludeID})
	}
	sql, args, err := inner.Prefix("SELECT EXISTS(").Suffix(")").ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building email exists SQL")
		return false, fmt.Errorf("failed to build email query: %w", err)
	}

	var exists bool
	if err := conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Msg("Error executing email exists query")
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

// Create inserts a user and fills in its ID and creation time
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	sql, args, err := psql.Insert("users").
		Columns("first_name", "last_name", "email", "password", "faculty_id", "role_id", "created_at").
		Values(user.FirstName, user.LastName, user.Email, user.Password, user.FacultyID, int(user.Role), sqlNow).
		Suffix("RETURNING user_id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, UsersEmailConstraint) {
			return apperrors.ErrEmailAlreadyExists
		}
		if dberrors.IsForeignKeyError(err) {
			return apperrors.NewValidationError("faculty_id", "Faculty does not exist")
		}
		logger.Error().Err(err).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// Update rewrites the administrative fields of a user. An empty Password keeps the stored hash.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	builder := psql.Update("users").
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("email", user.Email).
		Set("role_id", int(user.Role)).
		Set("faculty_id", user.FacultyID).
		Where(squirrel.Eq{"user_id": user.ID})
	if user.Password != "" {
		builder = builder.Set("password", user.Password)
	}
	return r.execUpdate(ctx, builder, "update user")
}

// UpdateProfile changes the name of a user
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, firstName, lastName string) error {
	builder := psql.Update("users").
		Set("first_name", firstName).
		Set("last_name", lastName).
		Where(squirrel.Eq{"user_id": userID})
	return r.execUpdate(ctx, builder, "update profile")
}

// UpdatePassword stores a new password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	builder := psql.Update("users").
		Set("password", hash).
		Where(squirrel.Eq{"user_id": userID})
	return r.execUpdate(ctx, builder, "update password")
}

// UpdateLastLogin updates the last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	builder := psql.Update("users").
		Set("last_login", at).
		Where(squirrel.Eq{"user_id": userID})
	return r.execUpdate(ctx, builder, "update last login")
}

func (r *UserRepository) execUpdate(ctx context.Context, builder squirrel.UpdateBuilder, op string) error {
	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error building user SQL")
		return fmt.Errorf("failed to build %s query: %w", op, err)
	}

	tag, err := conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, UsersEmailConstraint) {
			return apperrors.ErrEmailAlreadyExists
		}
		if dberrors.IsForeignKeyError(err) {
			return apperrors.NewValidationError("faculty_id", "Faculty does not exist")
		}
		logger.Error().Err(err).Str("op", op).Msg("Error executing user query")
		return fmt.Errorf("error executing %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// Delete removes a user
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("users").Where(squirrel.Eq{"user_id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete user SQL")
		return fmt.Errorf("failed to build delete user query: %w", err)
	}

	tag, err := conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Error executing delete user query")
		return fmt.Errorf("error deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func applyUserFilter(b squirrel.SelectBuilder, filter models.UserFilter) squirrel.SelectBuilder {
	if filter.Search != "" {
		pattern := helpers.LikePattern(filter.Search)
		b = b.Where(squirrel.Or{
			squirrel.ILike{"u.first_name": pattern},
			squirrel.ILike{"u.last_name": pattern},
			squirrel.ILike{"u.email": pattern},
		})
	}
	if filter.Role != models.RoleUnknown {
		b = b.Where(squirrel.Eq{"u.role_id": int(filter.Role)})
	}
	if filter.FacultyID != nil {
		b = b.Where(squirrel.Eq{"u.faculty_id": *filter.FacultyID})
	}
	return b
}

// List returns a page of users matching the filter, newest first
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]*models.User, dto.PaginationInfo, error) {
	countSQL, countArgs, err := applyUserFilter(psql.Select("COUNT(*)").From("users u"), filter).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count users SQL")
		return nil, dto.PaginationInfo{}, err
	}

	var total int64
	if err := conn(ctx, r.db).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count users query")
		return nil, dto.PaginationInfo{}, fmt.Errorf("error counting users: %w", err)
	}

	pagination := helpers.NewPaginationInfo(total, filter.Page, filter.Size)
	if total == 0 {
		return []*models.User{}, pagination, nil
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
	sql, args, err := applyUserFilter(selectUserQuery(), filter).
		OrderBy("u.created_at DESC", "u.user_id DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list users SQL")
		return nil, dto.PaginationInfo{}, err
	}

	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, dto.PaginationInfo{}, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning user row")
			return nil, dto.PaginationInfo{}, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, dto.PaginationInfo{}, fmt.Errorf("database iteration error: %w", err)
	}
	return users, pagination, nil
}

// ListWithSubmissionCounts returns every user of a role (optionally within a faculty)
// with the number of submissions they made, ordered by name.
func (r *UserRepository) ListWithSubmissionCounts(ctx context.Context, role models.Role, facultyID *int64) ([]*models.UserSummary, error) {
	builder := psql.Select(
		"u.user_id", "u.first_name", "u.last_name", "u.email", "u.password",
		"u.faculty_id", "f.faculty_name", "u.role_id", "u.created_at", "u.last_login",
		"(SELECT COUNT(*) FROM submissions s WHERE s.user_id = u.user_id) AS submission_count",
	).
		From("users u").
		LeftJoin("faculties f ON u.faculty_id = f.faculty_id").
		Where(squirrel.Eq{"u.role_id": int(role)}).
		OrderBy("u.last_name", "u.first_name")
	if facultyID != nil {
		builder = builder.Where(squirrel.Eq{"u.faculty_id": *facultyID})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building users by role SQL")
		return nil, err
	}

	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing users by role query")
		return nil, fmt.Errorf("error listing users by role: %w", err)
	}
	defer rows.Close()

	result := make([]*models.UserSummary, 0)
	for rows.Next() {
		s := &models.UserSummary{}
		var roleID int
		if err := rows.Scan(
			&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Password,
			&s.FacultyID, &s.FacultyName, &roleID, &s.CreatedAt, &s.LastLogin,
			&s.SubmissionCount,
		); err != nil {
			return nil, fmt.Errorf("error scanning user summary: %w", err)
		}
		s.Role = models.Role(roleID)
		result = append(result, s)
	}
	return result, rows.Err()
}
