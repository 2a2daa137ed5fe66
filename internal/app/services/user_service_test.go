package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/auth"
)

func int64Ptr(v int64) *int64 { return &v }

func newTestUserService(users *fakeUserStore) (UserService, *fakeActivity) {
	activity := &fakeActivity{}
	return NewUserService(users, newFakeFacultyStore(), &fakeTx{}, newFakeStorage(), activity, zerolog.Nop()), activity
}

func TestCreateUser(t *testing.T) {
	users := newFakeUserStore(&models.User{ID: 1, Email: "admin@uni.edu", Role: models.RoleAdmin})
	svc, activity := newTestUserService(users)

	user, err := svc.CreateUser(context.Background(), 1, &dto.CreateUserRequest{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "Grace@uni.edu",
		Password:  "password123",
		RoleID:    models.RoleCoordinator,
		FacultyID: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "grace@uni.edu", user.Email)
	assert.Equal(t, models.RoleCoordinator, user.Role)
	require.NotNil(t, user.FacultyName)
	assert.Equal(t, "Business", *user.FacultyName)
	assert.True(t, auth.IsHashed(users.users[user.ID].Password))
	assert.Equal(t, []string{models.ActionUserCreated}, activity.actions())

	_, err = svc.CreateUser(context.Background(), 1, &dto.CreateUserRequest{
		FirstName: "Other",
		LastName:  "Grace",
		Email:     "grace@uni.edu",
		Password:  "password123",
		RoleID:    models.RoleStudent,
		FacultyID: 1,
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	_, err = svc.CreateUser(context.Background(), 1, &dto.CreateUserRequest{
		FirstName: "Bad",
		LastName:  "Role",
		Email:     "bad@uni.edu",
		Password:  "password123",
		RoleID:    models.Role(9),
		FacultyID: 1,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestUpdateUser(t *testing.T) {
	users := newFakeUserStore(
		&models.User{ID: 1, Email: "admin@uni.edu", Role: models.RoleAdmin},
		&models.User{ID: 2, Email: "student@uni.edu", FirstName: "S", LastName: "T", Password: "$2a$keep", Role: models.RoleStudent},
	)
	svc, _ := newTestUserService(users)

	t.Run("keeps password when empty", func(t *testing.T) {
		updated, err := svc.UpdateUser(context.Background(), 1, 2, &dto.UpdateUserRequest{
			FirstName: "Sam",
			LastName:  "Taylor",
			Email:     "student@uni.edu",
			RoleID:    models.RoleManager,
			FacultyID: int64Ptr(1),
		})
		require.NoError(t, err)
		assert.Equal(t, "Sam", updated.FirstName)
		assert.Equal(t, models.RoleManager, updated.Role)
		assert.Equal(t, "$2a$keep", users.users[2].Password)
	})

	t.Run("email used by someone else", func(t *testing.T) {
		_, err := svc.UpdateUser(context.Background(), 1, 2, &dto.UpdateUserRequest{
			FirstName: "Sam",
			LastName:  "Taylor",
			Email:     "admin@uni.edu",
			RoleID:    models.RoleStudent,
		})
		assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.UpdateUser(context.Background(), 1, 404, &dto.UpdateUserRequest{
			FirstName: "No",
			LastName:  "One",
			Email:     "none@uni.edu",
			RoleID:    models.RoleStudent,
		})
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestDeleteUser(t *testing.T) {
	users := newFakeUserStore(
		&models.User{ID: 1, Email: "admin@uni.edu", Role: models.RoleAdmin},
		&models.User{ID: 2, Email: "student@uni.edu", Role: models.RoleStudent},
	)
	storage := newFakeStorage()
	storage.files["user_2/file-1-1.pdf"] = "essay"
	storage.files["user_3/file-1-1.pdf"] = "poem"
	activity := &fakeActivity{}
	svc := NewUserService(users, newFakeFacultyStore(), &fakeTx{}, storage, activity, zerolog.Nop())

	err := svc.DeleteUser(context.Background(), 1, 1)
	assert.ErrorIs(t, err, apperrors.ErrSelfDeletion)

	err = svc.DeleteUser(context.Background(), 1, 99)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.Empty(t, storage.deletedOwners)

	require.NoError(t, svc.DeleteUser(context.Background(), 1, 2))
	assert.NotContains(t, users.users, int64(2))
	assert.Equal(t, []int64{2}, storage.deletedOwners)
	assert.NotContains(t, storage.files, "user_2/file-1-1.pdf")
	assert.Contains(t, storage.files, "user_3/file-1-1.pdf")
	assert.Equal(t, []string{models.ActionUserDeleted}, activity.actions())
}

func TestUpdateProfile(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	users := newFakeUserStore(&models.User{ID: 5, Email: "me@uni.edu", FirstName: "Old", LastName: "Name", Password: hash, Role: models.RoleStudent})
	svc, _ := newTestUserService(users)

	_, err = svc.UpdateProfile(context.Background(), 5, &dto.UpdateProfileRequest{
		FirstName:   "New",
		LastName:    "Name",
		NewPassword: "another-pass",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.UpdateProfile(context.Background(), 5, &dto.UpdateProfileRequest{
		FirstName:       "New",
		LastName:        "Name",
		CurrentPassword: "wrong-password",
		NewPassword:     "another-pass",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	user, err := svc.UpdateProfile(context.Background(), 5, &dto.UpdateProfileRequest{
		FirstName:       "New",
		LastName:        "Name",
		CurrentPassword: "password123",
		NewPassword:     "another-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "New", user.FirstName)
	assert.True(t, auth.CheckPassword(users.users[5].Password, "another-pass"))
}

func TestListFacultyStudents(t *testing.T) {
	users := newFakeUserStore(
		&models.User{ID: 1, Role: models.RoleStudent, FacultyID: int64Ptr(1)},
		&models.User{ID: 2, Role: models.RoleStudent, FacultyID: int64Ptr(2)},
		&models.User{ID: 3, Role: models.RoleCoordinator, FacultyID: int64Ptr(1)},
	)
	svc, _ := newTestUserService(users)

	students, err := svc.ListFacultyStudents(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, int64(1), students[0].ID)

	coordinators, err := svc.ListCoordinators(context.Background())
	require.NoError(t, err)
	require.Len(t, coordinators, 1)
	assert.Equal(t, int64(3), coordinators[0].ID)
}
