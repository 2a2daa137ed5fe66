package models

import "time"

// Submission defines a contribution uploaded by a student, joined with its author and faculty
type Submission struct {
	ID            int64            `json:"id"`
	UserID        int64            `json:"userId"`
	FacultyID     int64            `json:"facultyId"`
	Title         string           `json:"title"`
	Description   *string          `json:"description"`
	AcademicYear  string           `json:"academicYear"`
	FilePath      string           `json:"-"`
	FileType      string           `json:"fileType"`
	Status        SubmissionStatus `json:"status"`
	Selected      bool             `json:"selected"`
	TermsAccepted bool             `json:"termsAccepted"`
	SubmittedAt   time.Time        `json:"submittedAt"`
	LastUpdated   *time.Time       `json:"lastUpdated,omitempty"`

	// Joined columns
	AuthorFirstName string `json:"firstName"`
	AuthorLastName  string `json:"lastName"`
	AuthorEmail     string `json:"email"`
	FacultyName     string `json:"facultyName"`
	CommentCount    int64  `json:"commentCount"`
}

// AuthorName returns "First Last" of the submission owner
func (s *Submission) AuthorName() string {
	return s.AuthorFirstName + " " + s.AuthorLastName
}

// SubmissionFilter narrows submission listings. Nil fields are ignored.
type SubmissionFilter struct {
	UserID       *int64
	FacultyID    *int64
	Status       *SubmissionStatus
	SelectedOnly bool
	AcademicYear string
	Search       string
	IDs          []int64
	Page         int
	Size         int // Zero disables pagination
}

// Comment is a reviewer note on a submission
type Comment struct {
	ID           int64     `json:"id"`
	SubmissionID int64     `json:"submissionId"`
	UserID       int64     `json:"userId"`
	Text         string    `json:"commentText"`
	CommentedAt  time.Time `json:"commentedAt"`
	IsRead       bool      `json:"isRead"`

	// Joined from users
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role" swaggertype:"string" example:"COORD"`
}
