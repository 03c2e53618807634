package authservice

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/vkazmin/profiles_api/internal/profiles/domain/models"
	"github.com/vkazmin/profiles_api/internal/profiles/repository/tokenrepo"
	"github.com/vkazmin/profiles_api/internal/profiles/repository/userrepo"
	"github.com/vkazmin/profiles_api/internal/profiles/services/userservice"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	ErrInactiveUser       = errors.New("user account is disabled")
	ErrInvalidToken       = errors.New("invalid token")
)

const tokenBytes = 20

type UserRepository interface {
	GetUserByID(context.Context, int64) (models.User, error)
	GetUserByEmail(context.Context, string) (models.User, error)
}

type TokenRepository interface {
	SaveToken(ctx context.Context, token string, userID int64) error
	GetUserID(ctx context.Context, token string) (int64, error)
	DeleteToken(ctx context.Context, token string) error
}

type AuthService struct {
	userRepo  UserRepository
	tokenRepo TokenRepository
}

func New(userRepo UserRepository, tokenRepo TokenRepository) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
	}
}

// Login verifies the credentials and issues an opaque bearer token bound
// to the user's id. Accounts without a usable password never log in.
func (as *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := as.userRepo.GetUserByEmail(ctx, userservice.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return "", ErrInvalidCredentials
		}

		return "", fmt.Errorf("get user error: %w", err)
	}

	if !u.HasUsablePassword() {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	if !u.Active {
		return "", ErrInactiveUser
	}

	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("generate token error: %w", err)
	}

	if err := as.tokenRepo.SaveToken(ctx, token, u.ID); err != nil {
		return "", fmt.Errorf("save token error: %w", err)
	}

	return token, nil
}

// Identify resolves a bearer token to the user it was issued to.
func (as *AuthService) Identify(ctx context.Context, token string) (models.User, error) {
	userID, err := as.tokenRepo.GetUserID(ctx, token)
	if err != nil {
		if errors.Is(err, tokenrepo.ErrTokenNotFound) {
			return models.User{}, ErrInvalidToken
		}

		return models.User{}, fmt.Errorf("get token error: %w", err)
	}

	u, err := as.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return models.User{}, ErrInvalidToken
		}

		return models.User{}, fmt.Errorf("get user error: %w", err)
	}

	if !u.Active {
		return models.User{}, ErrInactiveUser
	}

	return u, nil
}

// Logout revokes a previously issued token.
func (as *AuthService) Logout(ctx context.Context, token string) error {
	if err := as.tokenRepo.DeleteToken(ctx, token); err != nil {
		if errors.Is(err, tokenrepo.ErrTokenNotFound) {
			return ErrInvalidToken
		}

		return fmt.Errorf("delete token error: %w", err)
	}

	return nil
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random error: %w", err)
	}

	return hex.EncodeToString(b), nil
}
