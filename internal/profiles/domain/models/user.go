package models

type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Active       bool   `json:"is_active"`    //nolint:tagliatelle
	Staff        bool   `json:"is_staff"`     //nolint:tagliatelle
	Superuser    bool   `json:"is_superuser"` //nolint:tagliatelle
}

// HasUsablePassword reports whether the account can be logged into.
// Accounts created without a password have an empty hash.
func (u User) HasUsablePassword() bool {
	return u.PasswordHash != ""
}
