package server

import (
	"fmt"
	"regexp"
)

const (
	emailMaxLen     = 225
	nameMaxLen      = 255
	statusMaxLen    = 255
	helloNameMaxLen = 10
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	reasonRequired     = "this field is required"
	reasonInvalidEmail = "enter a valid email address"
)

func reasonMaxLen(limit int) string {
	return fmt.Sprintf("ensure this field has no more than %d characters", limit)
}

func validateEmail(fe FieldErrors, email string) {
	switch {
	case email == "":
		fe.Add("email", reasonRequired)
	case len(email) > emailMaxLen:
		fe.Add("email", reasonMaxLen(emailMaxLen))
	case !emailRe.MatchString(email):
		fe.Add("email", reasonInvalidEmail)
	}
}

func validateName(fe FieldErrors, name string) {
	switch {
	case name == "":
		fe.Add("name", reasonRequired)
	case len(name) > nameMaxLen:
		fe.Add("name", reasonMaxLen(nameMaxLen))
	}
}

type CreateProfileRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (r CreateProfileRequest) Validate() FieldErrors {
	fe := make(FieldErrors)

	validateEmail(fe, r.Email)
	validateName(fe, r.Name)

	return fe
}

type UpdateProfileRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (r UpdateProfileRequest) Validate() FieldErrors {
	fe := make(FieldErrors)

	validateEmail(fe, r.Email)
	validateName(fe, r.Name)

	return fe
}

type PatchProfileRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

func (r PatchProfileRequest) Validate() FieldErrors {
	fe := make(FieldErrors)

	if r.Email != nil {
		validateEmail(fe, *r.Email)
	}

	if r.Name != nil {
		validateName(fe, *r.Name)
	}

	return fe
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() FieldErrors {
	fe := make(FieldErrors)

	if r.Email == "" {
		fe.Add("email", reasonRequired)
	}

	if r.Password == "" {
		fe.Add("password", reasonRequired)
	}

	return fe
}

// FeedItemRequest carries the only client-writable feed item field.
// The owner is bound server-side to the authenticated caller.
type FeedItemRequest struct {
	StatusText string `json:"status_text"` //nolint:tagliatelle
}

func (r FeedItemRequest) Validate() FieldErrors {
	fe := make(FieldErrors)

	switch {
	case r.StatusText == "":
		fe.Add("status_text", reasonRequired)
	case len(r.StatusText) > statusMaxLen:
		fe.Add("status_text", reasonMaxLen(statusMaxLen))
	}

	return fe
}

type PatchFeedItemRequest struct {
	StatusText *string `json:"status_text"` //nolint:tagliatelle
}

func (r PatchFeedItemRequest) Validate() FieldErrors {
	fe := make(FieldErrors)

	if r.StatusText != nil {
		switch {
		case *r.StatusText == "":
			fe.Add("status_text", reasonRequired)
		case len(*r.StatusText) > statusMaxLen:
			fe.Add("status_text", reasonMaxLen(statusMaxLen))
		}
	}

	return fe
}

type HelloRequest struct {
	Name string `json:"name"`
}

func (r HelloRequest) Validate() FieldErrors {
	fe := make(FieldErrors)

	switch {
	case r.Name == "":
		fe.Add("name", reasonRequired)
	case len(r.Name) > helloNameMaxLen:
		fe.Add("name", reasonMaxLen(helloNameMaxLen))
	}

	return fe
}
