package authservice_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkazmin/profiles_api/internal/profiles/domain/models"
	"github.com/vkazmin/profiles_api/internal/profiles/repository/tokenrepo"
	"github.com/vkazmin/profiles_api/internal/profiles/repository/userrepo"
	"github.com/vkazmin/profiles_api/internal/profiles/services/authservice"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	byID map[int64]models.User
}

func (f *fakeUsers) GetUserByID(_ context.Context, id int64) (models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return models.User{}, userrepo.ErrNotFound
	}

	return u, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}

	return models.User{}, userrepo.ErrNotFound
}

type fakeTokens struct {
	tokens map[string]int64
}

func (f *fakeTokens) SaveToken(_ context.Context, token string, userID int64) error {
	f.tokens[token] = userID

	return nil
}

func (f *fakeTokens) GetUserID(_ context.Context, token string) (int64, error) {
	id, ok := f.tokens[token]
	if !ok {
		return 0, tokenrepo.ErrTokenNotFound
	}

	return id, nil
}

func (f *fakeTokens) DeleteToken(_ context.Context, token string) error {
	if _, ok := f.tokens[token]; !ok {
		return tokenrepo.ErrTokenNotFound
	}

	delete(f.tokens, token)

	return nil
}

func newService(users ...models.User) (*authservice.AuthService, *fakeTokens) {
	byID := make(map[int64]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	tokens := &fakeTokens{tokens: make(map[string]int64)}

	return authservice.New(&fakeUsers{byID: byID}, tokens), tokens
}

func hash(t *testing.T, password string) string {
	t.Helper()

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	return string(h)
}

func TestLoginIssuesToken(t *testing.T) {
	svc, tokens := newService(models.User{ //nolint:exhaustruct
		ID:           1,
		Email:        "bob@example.com",
		PasswordHash: hash(t, "s3cret"),
		Active:       true,
	})

	token, err := svc.Login(context.Background(), "bob@example.com", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, int64(1), tokens.tokens[token])
}

func TestLoginNormalizesEmail(t *testing.T) {
	svc, _ := newService(models.User{ //nolint:exhaustruct
		ID:           1,
		Email:        "bob@example.com",
		PasswordHash: hash(t, "s3cret"),
		Active:       true,
	})

	token, err := svc.Login(context.Background(), "bob@EXAMPLE.COM", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newService(models.User{ //nolint:exhaustruct
		ID:           1,
		Email:        "bob@example.com",
		PasswordHash: hash(t, "s3cret"),
		Active:       true,
	})

	_, err := svc.Login(context.Background(), "bob@example.com", "wrong")
	require.ErrorIs(t, err, authservice.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Login(context.Background(), "ghost@example.com", "s3cret")
	require.ErrorIs(t, err, authservice.ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, _ := newService(models.User{ //nolint:exhaustruct
		ID:           1,
		Email:        "bob@example.com",
		PasswordHash: hash(t, "s3cret"),
		Active:       false,
	})

	_, err := svc.Login(context.Background(), "bob@example.com", "s3cret")
	require.ErrorIs(t, err, authservice.ErrInactiveUser)
}

func TestLoginUnusablePassword(t *testing.T) {
	svc, _ := newService(models.User{ //nolint:exhaustruct
		ID:     1,
		Email:  "bob@example.com",
		Active: true,
	})

	_, err := svc.Login(context.Background(), "bob@example.com", "")
	require.ErrorIs(t, err, authservice.ErrInvalidCredentials)
}

func TestIdentifyRoundTrip(t *testing.T) {
	svc, _ := newService(models.User{ //nolint:exhaustruct
		ID:           1,
		Email:        "bob@example.com",
		PasswordHash: hash(t, "s3cret"),
		Active:       true,
	})

	token, err := svc.Login(context.Background(), "bob@example.com", "s3cret")
	require.NoError(t, err)

	u, err := svc.Identify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)
}

func TestIdentifyUnknownToken(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Identify(context.Background(), "deadbeef")
	require.ErrorIs(t, err, authservice.ErrInvalidToken)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newService(models.User{ //nolint:exhaustruct
		ID:           1,
		Email:        "bob@example.com",
		PasswordHash: hash(t, "s3cret"),
		Active:       true,
	})

	token, err := svc.Login(context.Background(), "bob@example.com", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), token))

	_, err = svc.Identify(context.Background(), token)
	require.ErrorIs(t, err, authservice.ErrInvalidToken)
}
