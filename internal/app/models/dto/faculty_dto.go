package dto

import "github.com/yigit/unimag/internal/app/models"

// FacultyResponse represents basic faculty information
type FacultyResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// NewFacultyResponse maps a faculty model to its public shape
func NewFacultyResponse(f *models.Faculty) FacultyResponse {
	return FacultyResponse{ID: f.ID, Name: f.Name, Description: f.Description}
}

// NewFacultyResponses maps faculty models to their public shape
func NewFacultyResponses(faculties []*models.Faculty) []FacultyResponse {
	out := make([]FacultyResponse, 0, len(faculties))
	for _, f := range faculties {
		out = append(out, NewFacultyResponse(f))
	}
	return out
}
