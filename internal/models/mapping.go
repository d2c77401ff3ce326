package models

// MappingInput is the mapping form as typed by the admin.
type MappingInput struct {
	UserID string
	Name   string
}

// Mapping associates a numeric device user ID with a display name.
type Mapping struct {
	UserID int    `json:"userId"`
	Name   string `json:"name"`
}
