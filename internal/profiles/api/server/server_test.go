package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vkazmin/profiles_api/internal/pkg/config"
	"github.com/vkazmin/profiles_api/internal/profiles/api/server"
	"github.com/vkazmin/profiles_api/internal/profiles/domain/models"
	"github.com/vkazmin/profiles_api/internal/profiles/repository/feedrepo"
	"github.com/vkazmin/profiles_api/internal/profiles/repository/tokenrepo"
	"github.com/vkazmin/profiles_api/internal/profiles/repository/userrepo"
	"github.com/vkazmin/profiles_api/internal/profiles/services/authservice"
	"github.com/vkazmin/profiles_api/internal/profiles/services/feedservice"
	"github.com/vkazmin/profiles_api/internal/profiles/services/userservice"
	"github.com/vkazmin/profiles_api/pkg/logger"
	"go.uber.org/zap"
)

// store is an in-memory stand-in for the relational datastore. Deleting a
// user cascades to the user's feed items, like the FK in the migration.
type store struct {
	users      map[int64]models.User
	items      map[int64]models.FeedItem
	tokens     map[string]int64
	nextUserID int64
	nextItemID int64
}

func newStore() *store {
	return &store{
		users:      make(map[int64]models.User),
		items:      make(map[int64]models.FeedItem),
		tokens:     make(map[string]int64),
		nextUserID: 1,
		nextItemID: 1,
	}
}

type userStore struct{ s *store }

func (us userStore) CreateUser(_ context.Context, u models.User) (int64, error) {
	for _, existing := range us.s.users {
		if existing.Email == u.Email {
			return 0, userrepo.ErrAlreadyExists
		}
	}

	u.ID = us.s.nextUserID
	us.s.nextUserID++
	us.s.users[u.ID] = u

	return u.ID, nil
}

func (us userStore) GetUserByID(_ context.Context, id int64) (models.User, error) {
	u, ok := us.s.users[id]
	if !ok {
		return models.User{}, userrepo.ErrNotFound
	}

	return u, nil
}

func (us userStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range us.s.users {
		if u.Email == email {
			return u, nil
		}
	}

	return models.User{}, userrepo.ErrNotFound
}

func (us userStore) ListUsers(_ context.Context, req userrepo.ListUsersRequest) ([]models.User, error) {
	users := make([]models.User, 0, len(us.s.users))

	search := strings.ToLower(req.Search)

	for _, u := range us.s.users {
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}

		users = append(users, u)
	}

	return users, nil
}

func (us userStore) UpdateUser(_ context.Context, u models.User) error {
	if _, ok := us.s.users[u.ID]; !ok {
		return userrepo.ErrNotFound
	}

	us.s.users[u.ID] = u

	return nil
}

func (us userStore) DeleteUser(_ context.Context, id int64) error {
	if _, ok := us.s.users[id]; !ok {
		return userrepo.ErrNotFound
	}

	delete(us.s.users, id)

	for itemID, item := range us.s.items {
		if item.UserID == id {
			delete(us.s.items, itemID)
		}
	}

	return nil
}

func (us userStore) Shutdown(_ context.Context) error { return nil }

type feedStore struct{ s *store }

func (fs feedStore) CreateFeedItem(_ context.Context, item models.FeedItem) (int64, error) {
	item.ID = fs.s.nextItemID
	fs.s.nextItemID++
	fs.s.items[item.ID] = item

	return item.ID, nil
}

func (fs feedStore) GetFeedItem(_ context.Context, id int64) (models.FeedItem, error) {
	item, ok := fs.s.items[id]
	if !ok {
		return models.FeedItem{}, feedrepo.ErrNotFound
	}

	return item, nil
}

func (fs feedStore) ListFeedItems(_ context.Context, req feedrepo.ListFeedItemsRequest) ([]models.FeedItem, error) {
	items := make([]models.FeedItem, 0, len(fs.s.items))

	for _, item := range fs.s.items {
		if req.UserID != 0 && item.UserID != req.UserID {
			continue
		}

		items = append(items, item)
	}

	return items, nil
}

func (fs feedStore) UpdateFeedItem(_ context.Context, item models.FeedItem) error {
	stored, ok := fs.s.items[item.ID]
	if !ok {
		return feedrepo.ErrNotFound
	}

	stored.StatusText = item.StatusText
	fs.s.items[item.ID] = stored

	return nil
}

func (fs feedStore) DeleteFeedItem(_ context.Context, id int64) error {
	if _, ok := fs.s.items[id]; !ok {
		return feedrepo.ErrNotFound
	}

	delete(fs.s.items, id)

	return nil
}

func (fs feedStore) Shutdown(_ context.Context) error { return nil }

type tokenStore struct{ s *store }

func (ts tokenStore) SaveToken(_ context.Context, token string, userID int64) error {
	ts.s.tokens[token] = userID

	return nil
}

func (ts tokenStore) GetUserID(_ context.Context, token string) (int64, error) {
	id, ok := ts.s.tokens[token]
	if !ok {
		return 0, tokenrepo.ErrTokenNotFound
	}

	return id, nil
}

func (ts tokenStore) DeleteToken(_ context.Context, token string) error {
	if _, ok := ts.s.tokens[token]; !ok {
		return tokenrepo.ErrTokenNotFound
	}

	delete(ts.s.tokens, token)

	return nil
}

type ServerSuite struct {
	suite.Suite
	ts *httptest.Server
	db *store
}

func (ss *ServerSuite) SetupTest() {
	ss.db = newStore()

	us := userservice.New(userStore{ss.db})
	fs := feedservice.New(feedStore{ss.db})
	as := authservice.New(userStore{ss.db}, tokenStore{ss.db})

	cfg := config.Server{
		Addr:         "127.0.0.1:0",
		ReadTimeout:  time.Second,
		IdleTimeout:  time.Second,
		WriteTimeout: time.Second,
	}

	s := server.New(cfg, us, fs, as, logger.ZapLogger{SugaredLogger: zap.NewNop().Sugar()})

	ss.ts = httptest.NewServer(s.Handler())
}

func (ss *ServerSuite) TearDownTest() {
	ss.ts.Close()
}

func (ss *ServerSuite) do(method, path, token string, body interface{}) (int, []byte) {
	var rd io.Reader

	if body != nil {
		bts, err := json.Marshal(body)
		ss.Require().NoError(err)
		rd = bytes.NewReader(bts)
	}

	req, err := http.NewRequest(method, ss.ts.URL+path, rd) //nolint:noctx
	ss.Require().NoError(err)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ss.ts.Client().Do(req)
	ss.Require().NoError(err)
	defer resp.Body.Close()

	bts, err := io.ReadAll(resp.Body)
	ss.Require().NoError(err)

	return resp.StatusCode, bts
}

func (ss *ServerSuite) createUser(email, name, password string) server.ProfileResponse {
	code, body := ss.do(http.MethodPost, "/profile/", "", map[string]string{
		"email":    email,
		"name":     name,
		"password": password,
	})
	ss.Require().Equal(http.StatusCreated, code, string(body))

	var resp server.ProfileResponse
	ss.Require().NoError(json.Unmarshal(body, &resp))

	return resp
}

func (ss *ServerSuite) login(email, password string) string {
	code, body := ss.do(http.MethodPost, "/login/", "", map[string]string{
		"email":    email,
		"password": password,
	})
	ss.Require().Equal(http.StatusOK, code, string(body))

	var resp server.TokenResponse
	ss.Require().NoError(json.Unmarshal(body, &resp))
	ss.Require().NotEmpty(resp.Token)

	return resp.Token
}

func (ss *ServerSuite) TestHelloList() {
	code, body := ss.do(http.MethodGet, "/hello/", "", nil)
	ss.Require().Equal(http.StatusOK, code)

	var resp server.HelloListResponse
	ss.Require().NoError(json.Unmarshal(body, &resp))
	ss.Require().Equal("Hello!", resp.Message)
	ss.Require().Len(resp.AnAPIView, 4)
}

func (ss *ServerSuite) TestHelloCreate() {
	code, body := ss.do(http.MethodPost, "/hello/", "", map[string]string{"name": "Bob"})
	ss.Require().Equal(http.StatusOK, code)

	var resp server.MessageResponse
	ss.Require().NoError(json.Unmarshal(body, &resp))
	ss.Require().Equal("Hello Bob", resp.Message)
}

func (ss *ServerSuite) TestHelloCreateNameTooLong() {
	code, body := ss.do(http.MethodPost, "/hello/", "", map[string]string{"name": "12 chars long!"})
	ss.Require().Equal(http.StatusBadRequest, code)

	var fe map[string][]string
	ss.Require().NoError(json.Unmarshal(body, &fe))
	ss.Require().NotEmpty(fe["name"])
}

func (ss *ServerSuite) TestHelloMethodStubs() {
	code, body := ss.do(http.MethodPut, "/hello/5", "", nil)
	ss.Require().Equal(http.StatusOK, code)

	var resp server.MethodResponse
	ss.Require().NoError(json.Unmarshal(body, &resp))
	ss.Require().Equal("PUT", resp.Method)
}

func (ss *ServerSuite) TestHelloViewSetCreate() {
	code, body := ss.do(http.MethodPost, "/hello-viewset/", "", map[string]string{"name": "Bob"})
	ss.Require().Equal(http.StatusOK, code)

	var resp server.MessageResponse
	ss.Require().NoError(json.Unmarshal(body, &resp))
	ss.Require().Equal("Hello Bob!", resp.Message)
}

func (ss *ServerSuite) TestHelloViewSetStubs() {
	code, body := ss.do(http.MethodDelete, "/hello-viewset/5/", "", nil)
	ss.Require().Equal(http.StatusOK, code)

	var resp server.HTTPMethodResponse
	ss.Require().NoError(json.Unmarshal(body, &resp))
	ss.Require().Equal("DELETE", resp.HTTPMethod)
}

func (ss *ServerSuite) TestCreateProfileHidesPassword() {
	_, body := ss.do(http.MethodPost, "/profile/", "", map[string]string{
		"email":    "bob@example.com",
		"name":     "Bob",
		"password": "s3cret",
	})

	var raw map[string]interface{}
	ss.Require().NoError(json.Unmarshal(body, &raw))
	ss.Require().NotContains(raw, "password")
	ss.Require().Equal("bob@example.com", raw["email"])
}

func (ss *ServerSuite) TestCreateProfileValidation() {
	code, body := ss.do(http.MethodPost, "/profile/", "", map[string]string{
		"email": "not-an-email",
		"name":  "Bob",
	})
	ss.Require().Equal(http.StatusBadRequest, code)

	var fe map[string][]string
	ss.Require().NoError(json.Unmarshal(body, &fe))
	ss.Require().NotEmpty(fe["email"])
}

func (ss *ServerSuite) TestCreateProfileDuplicateEmail() {
	ss.createUser("bob@example.com", "Bob", "s3cret")

	code, body := ss.do(http.MethodPost, "/profile/", "", map[string]string{
		"email":    "bob@example.com",
		"name":     "Other Bob",
		"password": "0ther",
	})
	ss.Require().Equal(http.StatusBadRequest, code)

	var fe map[string][]string
	ss.Require().NoError(json.Unmarshal(body, &fe))
	ss.Require().NotEmpty(fe["email"])
}

func (ss *ServerSuite) TestProfileSearch() {
	ss.createUser("bob@example.com", "Bob", "s3cret")
	ss.createUser("alice@example.com", "Alice", "s3cret")

	code, body := ss.do(http.MethodGet, "/profile/?search=ali", "", nil)
	ss.Require().Equal(http.StatusOK, code)

	var resp []server.ProfileResponse
	ss.Require().NoError(json.Unmarshal(body, &resp))
	ss.Require().Len(resp, 1)
	ss.Require().Equal("Alice", resp[0].Name)
}

func (ss *ServerSuite) TestProfileReadIsOpen() {
	u := ss.createUser("bob@example.com", "Bob", "s3cret")

	code, _ := ss.do(http.MethodGet, "/profile/"+strconv.FormatInt(u.ID, 10), "", nil)
	ss.Require().Equal(http.StatusOK, code)
}

func (ss *ServerSuite) TestProfileMutationRequiresAuth() {
	u := ss.createUser("bob@example.com", "Bob", "s3cret")

	code, _ := ss.do(http.MethodPut, "/profile/"+strconv.FormatInt(u.ID, 10), "", map[string]string{
		"email": "bob@example.com",
		"name":  "Bobby",
	})
	ss.Require().Equal(http.StatusUnauthorized, code)
}

func (ss *ServerSuite) TestProfileMutationByOtherUser() {
	bob := ss.createUser("bob@example.com", "Bob", "s3cret")
	ss.createUser("alice@example.com", "Alice", "s3cret")

	aliceToken := ss.login("alice@example.com", "s3cret")

	code, _ := ss.do(http.MethodPut, "/profile/"+strconv.FormatInt(bob.ID, 10), aliceToken, map[string]string{
		"email": "bob@example.com",
		"name":  "Hacked",
	})
	ss.Require().Equal(http.StatusForbidden, code)
}

func (ss *ServerSuite) TestProfileMutationByOwner() {
	bob := ss.createUser("bob@example.com", "Bob", "s3cret")
	token := ss.login("bob@example.com", "s3cret")

	code, body := ss.do(http.MethodPatch, "/profile/"+strconv.FormatInt(bob.ID, 10), token, map[string]string{
		"name": "Robert",
	})
	ss.Require().Equal(http.StatusOK, code, string(body))

	var resp server.ProfileResponse
	ss.Require().NoError(json.Unmarshal(body, &resp))
	ss.Require().Equal("Robert", resp.Name)
}

func (ss *ServerSuite) TestProfileNotFound() {
	code, _ := ss.do(http.MethodGet, "/profile/999", "", nil)
	ss.Require().Equal(http.StatusNotFound, code)
}

func (ss *ServerSuite) TestLoginWrongPassword() {
	ss.createUser("bob@example.com", "Bob", "s3cret")

	code, _ := ss.do(http.MethodPost, "/login/", "", map[string]string{
		"email":    "bob@example.com",
		"password": "wrong",
	})
	ss.Require().Equal(http.StatusBadRequest, code)
}

func (ss *ServerSuite) TestLogoutRevokesToken() {
	ss.createUser("bob@example.com", "Bob", "s3cret")
	token := ss.login("bob@example.com", "s3cret")

	code, _ := ss.do(http.MethodPost, "/logout/", token, nil)
	ss.Require().Equal(http.StatusNoContent, code)

	code, _ = ss.do(http.MethodGet, "/feed/", token, nil)
	ss.Require().Equal(http.StatusUnauthorized, code)
}

func (ss *ServerSuite) TestFeedRequiresAuth() {
	code, _ := ss.do(http.MethodGet, "/feed/", "", nil)
	ss.Require().Equal(http.StatusUnauthorized, code)
}

func (ss *ServerSuite) TestFeedCreateForcesOwner() {
	bob := ss.createUser("bob@example.com", "Bob", "s3cret")
	token := ss.login("bob@example.com", "s3cret")

	code, body := ss.do(http.MethodPost, "/feed/", token, map[string]interface{}{
		"user":        int64(999),
		"status_text": "first post",
	})
	ss.Require().Equal(http.StatusCreated, code, string(body))

	var resp server.FeedItemResponse
	ss.Require().NoError(json.Unmarshal(body, &resp))
	ss.Require().Equal(bob.ID, resp.User)
	ss.Require().Equal("first post", resp.StatusText)
	ss.Require().False(resp.CreatedOn.IsZero())
}

func (ss *ServerSuite) TestFeedStatusTextValidation() {
	ss.createUser("bob@example.com", "Bob", "s3cret")
	token := ss.login("bob@example.com", "s3cret")

	code, body := ss.do(http.MethodPost, "/feed/", token, map[string]string{
		"status_text": strings.Repeat("a", 256),
	})
	ss.Require().Equal(http.StatusBadRequest, code)

	var fe map[string][]string
	ss.Require().NoError(json.Unmarshal(body, &fe))
	ss.Require().NotEmpty(fe["status_text"])
}

func (ss *ServerSuite) TestFeedMutationByOtherUser() {
	ss.createUser("bob@example.com", "Bob", "s3cret")
	ss.createUser("alice@example.com", "Alice", "s3cret")

	bobToken := ss.login("bob@example.com", "s3cret")
	aliceToken := ss.login("alice@example.com", "s3cret")

	code, body := ss.do(http.MethodPost, "/feed/", bobToken, map[string]string{
		"status_text": "bob's post",
	})
	ss.Require().Equal(http.StatusCreated, code)

	var item server.FeedItemResponse
	ss.Require().NoError(json.Unmarshal(body, &item))

	itemPath := "/feed/" + strconv.FormatInt(item.ID, 10)

	code, _ = ss.do(http.MethodPut, itemPath, aliceToken, map[string]string{
		"status_text": "hijacked",
	})
	ss.Require().Equal(http.StatusForbidden, code)

	code, _ = ss.do(http.MethodDelete, itemPath, aliceToken, nil)
	ss.Require().Equal(http.StatusForbidden, code)

	// read stays open to any authenticated user
	code, _ = ss.do(http.MethodGet, itemPath, aliceToken, nil)
	ss.Require().Equal(http.StatusOK, code)
}

func (ss *ServerSuite) TestFeedMutationByOwner() {
	ss.createUser("bob@example.com", "Bob", "s3cret")
	token := ss.login("bob@example.com", "s3cret")

	code, body := ss.do(http.MethodPost, "/feed/", token, map[string]string{
		"status_text": "first post",
	})
	ss.Require().Equal(http.StatusCreated, code)

	var item server.FeedItemResponse
	ss.Require().NoError(json.Unmarshal(body, &item))

	itemPath := "/feed/" + strconv.FormatInt(item.ID, 10)

	code, body = ss.do(http.MethodPut, itemPath, token, map[string]string{
		"status_text": "edited post",
	})
	ss.Require().Equal(http.StatusOK, code, string(body))

	var updated server.FeedItemResponse
	ss.Require().NoError(json.Unmarshal(body, &updated))
	ss.Require().Equal("edited post", updated.StatusText)
	ss.Require().Equal(item.CreatedOn, updated.CreatedOn)

	code, _ = ss.do(http.MethodDelete, itemPath, token, nil)
	ss.Require().Equal(http.StatusNoContent, code)

	code, _ = ss.do(http.MethodGet, itemPath, token, nil)
	ss.Require().Equal(http.StatusNotFound, code)
}

func (ss *ServerSuite) TestDeleteProfileCascadesFeed() {
	bob := ss.createUser("bob@example.com", "Bob", "s3cret")
	ss.createUser("alice@example.com", "Alice", "s3cret")

	bobToken := ss.login("bob@example.com", "s3cret")
	aliceToken := ss.login("alice@example.com", "s3cret")

	code, body := ss.do(http.MethodPost, "/feed/", bobToken, map[string]string{
		"status_text": "soon gone",
	})
	ss.Require().Equal(http.StatusCreated, code)

	var item server.FeedItemResponse
	ss.Require().NoError(json.Unmarshal(body, &item))

	code, _ = ss.do(http.MethodDelete, "/profile/"+strconv.FormatInt(bob.ID, 10), bobToken, nil)
	ss.Require().Equal(http.StatusNoContent, code)

	code, _ = ss.do(http.MethodGet, "/feed/"+strconv.FormatInt(item.ID, 10), aliceToken, nil)
	ss.Require().Equal(http.StatusNotFound, code)
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}
