package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"user_id"`
	FirstName   string     `json:"firstName" db:"first_name"`
	LastName    string     `json:"lastName" db:"last_name"`
	Email       string     `json:"email" db:"email"`
	Password    string     `json:"-" db:"password"`
	FacultyID   *int64     `json:"facultyId,omitempty" db:"faculty_id"`
	FacultyName *string    `json:"facultyName,omitempty" db:"faculty_name"` // Joined from faculties
	Role        Role       `json:"role" db:"role_id" swaggertype:"string" example:"STUD"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	LastLogin   *time.Time `json:"lastLogin,omitempty" db:"last_login"`
}

// FullName returns "First Last"
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserSummary is a user row with activity counters, used by listings and analytics
type UserSummary struct {
	User
	SubmissionCount int64      `json:"submissionCount"`
	LoginCount      int64      `json:"loginCount,omitempty"`
	CommentCount    int64      `json:"commentCount,omitempty"`
	LastActivity    *time.Time `json:"lastActivity,omitempty"`
}

// UserFilter narrows user listings
type UserFilter struct {
	Search    string
	Role      Role // RoleUnknown matches every role
	FacultyID *int64
	Page      int
	Size      int
}
