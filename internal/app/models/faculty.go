package models

// Faculty represents a faculty at the university
type Faculty struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// DefaultFaculties are created by the seed when missing
var DefaultFaculties = []Faculty{
	{Name: "Engineering"},
	{Name: "Business"},
	{Name: "Arts & Humanities"},
	{Name: "Science"},
}
