package dto

import (
	"time"

	"github.com/yigit/unimag/internal/app/models"
)

// UserResponse represents user information returned to clients
type UserResponse struct {
	ID          int64       `json:"id"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Email       string      `json:"email"`
	FacultyID   *int64      `json:"facultyId"`
	FacultyName *string     `json:"facultyName"`
	Role        models.Role `json:"role" swaggertype:"string" example:"STUD"`
	RoleID      int         `json:"roleId"`
	CreatedAt   time.Time   `json:"createdAt"`
	LastLogin   *time.Time  `json:"lastLogin,omitempty"`
}

// NewUserResponse maps a user model to its public shape
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		FacultyID:   u.FacultyID,
		FacultyName: u.FacultyName,
		Role:        u.Role,
		RoleID:      int(u.Role),
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
	}
}

// NewUserResponses maps a slice of users
func NewUserResponses(users []*models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// UpdateProfileRequest represents profile update data. Changing the password
// requires the current one.
type UpdateProfileRequest struct {
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// CreateUserRequest is an administrator creating an account
type CreateUserRequest struct {
	FirstName string      `json:"first_name" binding:"required"`
	LastName  string      `json:"last_name" binding:"required"`
	Email     string      `json:"email" binding:"required"`
	Password  string      `json:"password" binding:"required"`
	RoleID    models.Role `json:"role_id" binding:"required" swaggertype:"string" example:"STUD"`
	FacultyID int64       `json:"faculty_id" binding:"required,gt=0"`
}

// UpdateUserRequest is an administrator editing an account. An empty password keeps the current one.
type UpdateUserRequest struct {
	FirstName string      `json:"first_name" binding:"required"`
	LastName  string      `json:"last_name" binding:"required"`
	Email     string      `json:"email" binding:"required"`
	Password  string      `json:"password"`
	RoleID    models.Role `json:"role_id" binding:"required" swaggertype:"string" example:"STUD"`
	FacultyID *int64      `json:"faculty_id"`
}

// UserListResponse represents a list of users with pagination
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	PaginationInfo
}
