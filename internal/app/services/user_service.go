package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/auth"
	"github.com/yigit/unimag/internal/pkg/validation"
)

// UserService defines the interface for user operations
type UserService interface {
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error)
	ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, dto.PaginationInfo, error)
	CreateUser(ctx context.Context, actorID int64, req *dto.CreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, actorID, userID int64, req *dto.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, actorID, userID int64) error
	ListCoordinators(ctx context.Context) ([]*models.UserSummary, error)
	ListFacultyStudents(ctx context.Context, facultyID int64) ([]*models.UserSummary, error)
}

// UploadRemover deletes the stored files of a removed account
type UploadRemover interface {
	DeleteOwner(ownerID int64) error
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	userRepo    UserStore
	facultyRepo FacultyStore
	tx          TxRunner
	uploads     UploadRemover
	activity    ActivityLogger
	logger      zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo UserStore,
	facultyRepo FacultyStore,
	tx TxRunner,
	uploads UploadRemover,
	activity ActivityLogger,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		userRepo:    userRepo,
		facultyRepo: facultyRepo,
		tx:          tx,
		uploads:     uploads,
		activity:    activity,
		logger:      logger,
	}
}

// GetProfile retrieves the caller's own account
func (s *userServiceImpl) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrUserNotFound, "User not found")
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes the caller's name and, when requested, password
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error) {
	firstName, err := validation.ValidateName("first_name", req.FirstName)
	if err != nil {
		return nil, err
	}
	lastName, err := validation.ValidateName("last_name", req.LastName)
	if err != nil {
		return nil, err
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var newHash string
	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			return nil, apperrors.NewValidationError("current_password", "Current password is required to set a new password")
		}
		if ok, _ := auth.VerifyPassword(user.Password, req.CurrentPassword); !ok {
			return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Current password is incorrect")
		}
		if err := validation.ValidatePassword(req.NewPassword); err != nil {
			return nil, err
		}
		if newHash, err = auth.HashPassword(req.NewPassword); err != nil {
			return nil, err
		}
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, _ pgx.Tx) error {
		if err := s.userRepo.UpdateProfile(ctx, userID, firstName, lastName); err != nil {
			return err
		}
		if newHash != "" {
			return s.userRepo.UpdatePassword(ctx, userID, newHash)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	user.FirstName = firstName
	user.LastName = lastName
	s.activity.Log(ctx, &userID, models.ActionProfileUpdate, "Updated own profile")
	return user, nil
}

// ListUsers returns a page of users matching the filter
func (s *userServiceImpl) ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, dto.PaginationInfo, error) {
	users, pagination, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, dto.PaginationInfo{}, fmt.Errorf("failed to list users: %w", err)
	}
	return users, pagination, nil
}

// CreateUser creates an account on behalf of an administrator
func (s *userServiceImpl) CreateUser(ctx context.Context, actorID int64, req *dto.CreateUserRequest) (*models.User, error) {
	user, err := s.buildUser(ctx, req.FirstName, req.LastName, req.Email, req.RoleID, &req.FacultyID)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	if user.Password, err = auth.HashPassword(req.Password); err != nil {
		return nil, err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, _ pgx.Tx) error {
		exists, err := s.userRepo.EmailExists(ctx, user.Email, 0)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "Email already in use")
		}
		return s.userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, &actorID, models.ActionUserCreated,
		fmt.Sprintf("Created user %s with role %s", user.Email, user.Role.Code()))
	return user, nil
}

// UpdateUser edits an account on behalf of an administrator
func (s *userServiceImpl) UpdateUser(ctx context.Context, actorID, userID int64, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.buildUser(ctx, req.FirstName, req.LastName, req.Email, req.RoleID, req.FacultyID)
	if err != nil {
		return nil, err
	}
	user.ID = userID

	if req.Password != "" {
		if err := validation.ValidatePassword(req.Password); err != nil {
			return nil, err
		}
		if user.Password, err = auth.HashPassword(req.Password); err != nil {
			return nil, err
		}
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, _ pgx.Tx) error {
		if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
			return err
		}
		exists, err := s.userRepo.EmailExists(ctx, user.Email, userID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "Email already in use by another user")
		}
		return s.userRepo.Update(ctx, user)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrUserNotFound, "User not found")
		}
		return nil, err
	}

	s.activity.Log(ctx, &actorID, models.ActionUserUpdated, fmt.Sprintf("Updated user %d (%s)", userID, user.Email))

	updated, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return user, nil
	}
	return updated, nil
}

// DeleteUser removes an account. Administrators cannot remove themselves.
func (s *userServiceImpl) DeleteUser(ctx context.Context, actorID, userID int64) error {
	if actorID == userID {
		return apperrors.NewCustomError(apperrors.ErrSelfDeletion, "Cannot delete your own account")
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.NewCustomError(apperrors.ErrUserNotFound, "User not found")
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	// Submissions go with the account through the foreign key; the files do not.
	if s.uploads != nil {
		if err := s.uploads.DeleteOwner(userID); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to remove uploads of deleted user")
		}
	}

	s.activity.Log(ctx, &actorID, models.ActionUserDeleted, fmt.Sprintf("Deleted user %d", userID))
	return nil
}

// ListCoordinators returns every coordinator with their faculty
func (s *userServiceImpl) ListCoordinators(ctx context.Context) ([]*models.UserSummary, error) {
	users, err := s.userRepo.ListWithSubmissionCounts(ctx, models.RoleCoordinator, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list coordinators: %w", err)
	}
	return users, nil
}

// ListFacultyStudents returns the students of one faculty with their submission counts
func (s *userServiceImpl) ListFacultyStudents(ctx context.Context, facultyID int64) ([]*models.UserSummary, error) {
	users, err := s.userRepo.ListWithSubmissionCounts(ctx, models.RoleStudent, &facultyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return users, nil
}

// buildUser validates the administrator-supplied account fields
func (s *userServiceImpl) buildUser(ctx context.Context, first, last, rawEmail string, role models.Role, facultyID *int64) (*models.User, error) {
	firstName, err := validation.ValidateName("first_name", first)
	if err != nil {
		return nil, err
	}
	lastName, err := validation.ValidateName("last_name", last)
	if err != nil {
		return nil, err
	}
	email, err := validation.ValidateEmail(rawEmail)
	if err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("role_id", "Invalid role")
	}

	user := &models.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Role:      role,
	}

	if facultyID != nil {
		faculty, err := s.facultyRepo.GetByID(ctx, *facultyID)
		if err != nil {
			if errors.Is(err, apperrors.ErrFacultyNotFound) {
				return nil, apperrors.NewValidationError("faculty_id", "Selected faculty does not exist")
			}
			return nil, fmt.Errorf("failed to load faculty: %w", err)
		}
		id := faculty.ID
		user.FacultyID = &id
		user.FacultyName = &faculty.Name
	}
	return user, nil
}
