package userrepo

import "errors"

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

type ListUsersRequest struct {
	Search string
	Offset int
	Limit  int
}
