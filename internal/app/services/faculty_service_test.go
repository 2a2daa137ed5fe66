package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/pkg/apperrors"
)

func TestGetRolesFallsBackToBuiltins(t *testing.T) {
	svc := NewFacultyService(newFakeFacultyStore(), &fakeRoleStore{})
	roles, err := svc.GetRoles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.BuiltinRoles(), roles)

	stored := []models.RoleDefinition{{ID: 1, Code: "ADMIN", Name: "Admin"}}
	svc = NewFacultyService(newFakeFacultyStore(), &fakeRoleStore{roles: stored})
	roles, err = svc.GetRoles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stored, roles)
}

func TestGetFacultyByID(t *testing.T) {
	svc := NewFacultyService(newFakeFacultyStore(), &fakeRoleStore{})

	faculty, err := svc.GetFacultyByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Engineering", faculty.Name)

	_, err = svc.GetFacultyByID(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrFacultyNotFound)

	_, err = svc.GetFacultyByID(context.Background(), 0)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
