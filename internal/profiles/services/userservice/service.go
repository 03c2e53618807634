package userservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vkazmin/profiles_api/internal/profiles/domain/models"
	"github.com/vkazmin/profiles_api/internal/profiles/repository/userrepo"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailRequired = errors.New("user must have an email address")
	ErrEmailExists   = errors.New("user with this email already exists")
	ErrNotFound      = errors.New("user not found")
)

type Repository interface {
	CreateUser(context.Context, models.User) (int64, error)
	GetUserByID(context.Context, int64) (models.User, error)
	GetUserByEmail(context.Context, string) (models.User, error)
	ListUsers(context.Context, userrepo.ListUsersRequest) ([]models.User, error)
	UpdateUser(context.Context, models.User) error
	DeleteUser(context.Context, int64) error
	Shutdown(context.Context) error
}

type UserService struct {
	userRepo Repository
}

func New(userRepo Repository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// NormalizeEmail lowercases the domain segment of an email address.
// The local part is left untouched.
func NormalizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at == -1 {
		return email
	}

	return email[:at+1] + strings.ToLower(email[at+1:])
}

// Create builds a new active user: normalized email, bcrypt password hash.
// An empty password leaves the account without a usable password, such an
// account never passes a login check.
func (us *UserService) Create(ctx context.Context, req CreateUserRequest) (models.User, error) {
	if req.Email == "" {
		return models.User{}, ErrEmailRequired
	}

	var u models.User

	u.Email = NormalizeEmail(req.Email)
	u.Name = req.Name
	u.Active = true

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("generate from password error: %w", err)
		}

		u.PasswordHash = string(hash)
	}

	id, err := us.userRepo.CreateUser(ctx, u)
	if err != nil {
		if errors.Is(err, userrepo.ErrAlreadyExists) {
			return models.User{}, ErrEmailExists
		}

		return models.User{}, fmt.Errorf("create user error: %w", err)
	}

	u.ID = id

	return u, nil
}

// CreateSuperuser creates a user through Create and grants the
// staff and superuser flags.
func (us *UserService) CreateSuperuser(ctx context.Context, req CreateUserRequest) (models.User, error) {
	u, err := us.Create(ctx, req)
	if err != nil {
		return models.User{}, err
	}

	u.Staff = true
	u.Superuser = true

	if err := us.userRepo.UpdateUser(ctx, u); err != nil {
		return models.User{}, fmt.Errorf("update user error: %w", err)
	}

	return u, nil
}

func (us *UserService) Get(ctx context.Context, id int64) (models.User, error) {
	u, err := us.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return models.User{}, ErrNotFound
		}

		return models.User{}, fmt.Errorf("get user error: %w", err)
	}

	return u, nil
}

func (us *UserService) List(ctx context.Context, req userrepo.ListUsersRequest) ([]models.User, error) {
	users, err := us.userRepo.ListUsers(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list users error: %w", err)
	}

	return users, nil
}

// Update replaces email and name, and rehashes the password when a new
// one is supplied.
func (us *UserService) Update(ctx context.Context, id int64, req UpdateUserRequest) (models.User, error) {
	u, err := us.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	if req.Email == "" {
		return models.User{}, ErrEmailRequired
	}

	u.Email = NormalizeEmail(req.Email)
	u.Name = req.Name

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("generate from password error: %w", err)
		}

		u.PasswordHash = string(hash)
	}

	if err := us.userRepo.UpdateUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, userrepo.ErrNotFound):
			return models.User{}, ErrNotFound
		case errors.Is(err, userrepo.ErrAlreadyExists):
			return models.User{}, ErrEmailExists
		}

		return models.User{}, fmt.Errorf("update user error: %w", err)
	}

	return u, nil
}

// Patch applies the non-nil fields of req on top of the stored user.
func (us *UserService) Patch(ctx context.Context, id int64, req PatchUserRequest) (models.User, error) {
	u, err := us.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	if req.Email != nil {
		if *req.Email == "" {
			return models.User{}, ErrEmailRequired
		}

		u.Email = NormalizeEmail(*req.Email)
	}

	if req.Name != nil {
		u.Name = *req.Name
	}

	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("generate from password error: %w", err)
		}

		u.PasswordHash = string(hash)
	}

	if err := us.userRepo.UpdateUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, userrepo.ErrNotFound):
			return models.User{}, ErrNotFound
		case errors.Is(err, userrepo.ErrAlreadyExists):
			return models.User{}, ErrEmailExists
		}

		return models.User{}, fmt.Errorf("update user error: %w", err)
	}

	return u, nil
}

// Delete removes the user. Feed items owned by the user are deleted by
// the datastore cascade.
func (us *UserService) Delete(ctx context.Context, id int64) error {
	if err := us.userRepo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("delete user error: %w", err)
	}

	return nil
}

func (us *UserService) Shutdown(ctx context.Context) error {
	if err := us.userRepo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown user repo error: %w", err)
	}

	return nil
}
