package models

// Credentials is the admin login form.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
