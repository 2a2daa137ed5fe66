package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/auth"
	"github.com/yigit/unimag/internal/pkg/validation"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo    UserStore
	facultyRepo FacultyStore
	tx          TxRunner
	jwtService  *auth.JWTService
	activity    ActivityLogger
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo UserStore,
	facultyRepo FacultyStore,
	tx TxRunner,
	jwtService *auth.JWTService,
	activity ActivityLogger,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		facultyRepo: facultyRepo,
		tx:          tx,
		jwtService:  jwtService,
		activity:    activity,
		logger:      logger,
		now:         time.Now,
	}
}

// Register creates a student account and signs the user in
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	firstName, err := validation.ValidateName("first_name", req.FirstName)
	if err != nil {
		return nil, err
	}
	lastName, err := validation.ValidateName("last_name", req.LastName)
	if err != nil {
		return nil, err
	}
	email, err := validation.ValidateEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	faculty, err := s.facultyRepo.GetByID(ctx, req.FacultyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrFacultyNotFound) {
			return nil, apperrors.NewValidationError("faculty_id", "Selected faculty does not exist")
		}
		return nil, fmt.Errorf("failed to load faculty: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	facultyID := faculty.ID
	user := &models.User{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		Password:    hash,
		FacultyID:   &facultyID,
		FacultyName: &faculty.Name,
		Role:        models.RoleStudent,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context, _ pgx.Tx) error {
		exists, err := s.userRepo.EmailExists(ctx, email, 0)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "Email already in use")
		}
		return s.userRepo.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			s.logger.Warn().Str("email", email).Msg("Registration with an email that is already in use")
		}
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("email", email).Msg("User registered")
	s.activity.Log(ctx, &user.ID, models.ActionRegistration, fmt.Sprintf("New user registered: %s", email))

	return s.issue(user)
}

// Login verifies credentials and returns a fresh token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := validation.NormalizeEmail(req.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid credentials")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	ok, needsRehash := auth.VerifyPassword(user.Password, req.Password)
	if !ok {
		s.logger.Debug().Str("email", email).Msg("Login attempt with a wrong password")
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid credentials")
	}

	if needsRehash {
		if hash, err := auth.HashPassword(req.Password); err == nil {
			if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
				s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Error upgrading legacy password")
			} else {
				s.logger.Info().Int64("userID", user.ID).Msg("Legacy password upgraded to bcrypt")
			}
		}
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLogin = &now

	s.activity.Log(ctx, &user.ID, models.ActionLogin, "User logged in")

	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.jwtService.GenerateToken(auth.TokenSubject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role.Code(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &dto.AuthResponse{
		Token:     token,
		User:      dto.NewUserResponse(user),
		ExpiresIn: s.jwtService.ExpiresIn(),
	}, nil
}
