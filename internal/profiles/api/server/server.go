package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vkazmin/profiles_api/internal/pkg/config"
	"github.com/vkazmin/profiles_api/internal/profiles/domain/models"
	"github.com/vkazmin/profiles_api/internal/profiles/repository/feedrepo"
	"github.com/vkazmin/profiles_api/internal/profiles/repository/userrepo"
	"github.com/vkazmin/profiles_api/internal/profiles/services/userservice"
	"github.com/vkazmin/profiles_api/pkg/logger"
)

type Server struct {
	serv        *http.Server
	userService UserService
	feedService FeedService
	authService AuthService
}

type UserService interface {
	Create(context.Context, userservice.CreateUserRequest) (models.User, error)
	Get(context.Context, int64) (models.User, error)
	List(context.Context, userrepo.ListUsersRequest) ([]models.User, error)
	Update(context.Context, int64, userservice.UpdateUserRequest) (models.User, error)
	Patch(context.Context, int64, userservice.PatchUserRequest) (models.User, error)
	Delete(context.Context, int64) error
	Shutdown(context.Context) error
}

type FeedService interface {
	Create(ctx context.Context, ownerID int64, statusText string) (models.FeedItem, error)
	Get(context.Context, int64) (models.FeedItem, error)
	List(context.Context, feedrepo.ListFeedItemsRequest) ([]models.FeedItem, error)
	Update(ctx context.Context, id int64, statusText string) (models.FeedItem, error)
	Delete(context.Context, int64) error
	Shutdown(context.Context) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Identify(ctx context.Context, token string) (models.User, error)
	Logout(ctx context.Context, token string) error
}

func New(cfg config.Server, us UserService, fs FeedService, as AuthService, lg logger.Logger) *Server {
	var s Server

	s.userService = us
	s.feedService = fs
	s.authService = as

	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(loggingMiddleware(lg))

	r.Route("/hello", func(r chi.Router) {
		r.Get("/", s.helloList)
		r.Post("/", s.helloCreate)
		r.Put("/{id}", s.helloMethodStub("PUT"))
		r.Patch("/{id}", s.helloMethodStub("PATCH"))
		r.Delete("/{id}", s.helloMethodStub("DELETE"))
	})

	r.Route("/hello-viewset", func(r chi.Router) {
		r.Get("/", s.helloViewSetList)
		r.Post("/", s.helloViewSetCreate)
		r.Get("/{id}", s.helloViewSetStub("GET"))
		r.Put("/{id}", s.helloViewSetStub("PUT"))
		r.Patch("/{id}", s.helloViewSetStub("PATCH"))
		r.Delete("/{id}", s.helloViewSetStub("DELETE"))
	})

	r.Route("/profile", func(r chi.Router) {
		r.With(s.authOptional).Get("/", s.listProfiles)
		r.Post("/", s.createProfile)
		r.With(s.authOptional).Get("/{id}", s.getProfile)
		r.With(s.authRequired).Put("/{id}", s.updateProfile)
		r.With(s.authRequired).Patch("/{id}", s.patchProfile)
		r.With(s.authRequired).Delete("/{id}", s.deleteProfile)
	})

	r.Post("/login", s.login)
	r.With(s.authRequired).Post("/logout", s.logout)

	r.Route("/feed", func(r chi.Router) {
		r.Use(s.authRequired)
		r.Get("/", s.listFeed)
		r.Post("/", s.createFeedItem)
		r.Get("/{id}", s.getFeedItem)
		r.Put("/{id}", s.updateFeedItem)
		r.Patch("/{id}", s.patchFeedItem)
		r.Delete("/{id}", s.deleteFeedItem)
	})

	serv := &http.Server{ //nolint:exhaustruct
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	s.serv = serv

	return &s
}

func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error)

	go func() {
		if err := s.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			close(errCh)
		}
	}()

	select {
	case <-ctx.Done():
		ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
		defer cancel()

		if err := s.Shutdown(ctxS); err != nil { //nolint:contextcheck
			return fmt.Errorf("context error: %w server error %w", ctxS.Err(), err)
		}

		if !errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("context cancelled error: %w", ctx.Err())
		}

		return nil
	case err := <-errCh:
		return fmt.Errorf("listen and serve error: %w", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctxS, cancel := context.WithTimeout(ctx, s.serv.IdleTimeout)
	defer cancel()

	if err := s.serv.Shutdown(ctxS); err != nil {
		return fmt.Errorf("shutdown server error: %w", err)
	}

	return nil
}

// Handler exposes the routing tree, tests drive it through httptest.
func (s *Server) Handler() http.Handler {
	return s.serv.Handler
}
