package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vkazmin/profiles_api/internal/pkg/config"
	"github.com/vkazmin/profiles_api/internal/profiles/api/server"
	fr "github.com/vkazmin/profiles_api/internal/profiles/repository/feedrepo/postgres"
	tr "github.com/vkazmin/profiles_api/internal/profiles/repository/tokenrepo/redis"
	ur "github.com/vkazmin/profiles_api/internal/profiles/repository/userrepo/postgres"
	"github.com/vkazmin/profiles_api/internal/profiles/services/authservice"
	"github.com/vkazmin/profiles_api/internal/profiles/services/feedservice"
	"github.com/vkazmin/profiles_api/internal/profiles/services/userservice"
	"github.com/vkazmin/profiles_api/pkg/logger"
)

type Server interface {
	Start(context.Context) error
	Shutdown(context.Context) error
}

type ProfilesApp struct {
	s   Server
	lg  logger.Logger
	cfg config.Config
}

func New(ctx context.Context, cfg config.Config) (ProfilesApp, error) {
	lg, err := logger.New(cfg.Logger)
	if err != nil {
		return ProfilesApp{}, fmt.Errorf("can't get logger error: %w", err)
	}

	userRepo, err := ur.New(ctx, cfg.PostgresDB)
	if err != nil {
		return ProfilesApp{}, fmt.Errorf("postgres user repo initializing error: %w", err)
	}

	feedRepo, err := fr.New(ctx, cfg.PostgresDB)
	if err != nil {
		return ProfilesApp{}, fmt.Errorf("postgres feed repo initializing error: %w", err)
	}

	tokenStore, err := tr.New(ctx, cfg.TokenStore, cfg.Auth.TokenTTL)
	if err != nil {
		return ProfilesApp{}, fmt.Errorf("redis token store initializing error: %w", err)
	}

	userService := userservice.New(userRepo)
	feedService := feedservice.New(feedRepo)
	authService := authservice.New(userRepo, tokenStore)

	s := server.New(cfg.Server, userService, feedService, authService, lg)

	return ProfilesApp{
		s:   s,
		lg:  lg,
		cfg: cfg,
	}, nil
}

func (pa *ProfilesApp) Run(ctx context.Context) {
	pa.lg.Infof("STARTED SERVER ON %s", pa.cfg.Server.Addr)

	go func() {
		if err := pa.s.Start(ctx); err != nil {
			pa.lg.Errorf("server start error: %s", err.Error())
			ctx.Done()

			return
		}
	}()

	<-ctx.Done()

	ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	if err := pa.Stop(ctxS); err != nil { //nolint:contextcheck
		pa.lg.Errorf("server shutdown error: %s", err.Error())
	}
}

func (pa *ProfilesApp) Stop(ctx context.Context) error {
	if err := pa.s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	pa.lg.Info("Shutdowned successfully")

	return nil
}
