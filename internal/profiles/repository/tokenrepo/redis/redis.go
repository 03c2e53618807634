// Package redis keeps the bearer-token lookup table: an opaque token maps
// to the id of the user it was issued to, bounded by the configured TTL.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vkazmin/profiles_api/internal/pkg/config"
	"github.com/vkazmin/profiles_api/internal/pkg/redistools"
	"github.com/vkazmin/profiles_api/internal/profiles/repository/tokenrepo"
)

type TokenStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(ctx context.Context, cfg config.TokenStore, ttl time.Duration) (TokenStore, error) {
	rdb := redis.NewClient(&redis.Options{ //nolint:exhaustruct
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := redistools.Connect(ctx, rdb); err != nil {
		return TokenStore{}, fmt.Errorf("connect error: %w", err)
	}

	return TokenStore{
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func (ts TokenStore) SaveToken(ctx context.Context, token string, userID int64) error {
	_, err := ts.rdb.Set(ctx, "token:"+token, userID, ts.ttl).Result()
	if err != nil {
		return fmt.Errorf("set error: %w", err)
	}

	return nil
}

func (ts TokenStore) GetUserID(ctx context.Context, token string) (int64, error) {
	val, err := ts.rdb.Get(ctx, "token:"+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, tokenrepo.ErrTokenNotFound
	} else if err != nil {
		return 0, fmt.Errorf("get error: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse user id error: %w", err)
	}

	return userID, nil
}

func (ts TokenStore) DeleteToken(ctx context.Context, token string) error {
	deleted, err := ts.rdb.Del(ctx, "token:"+token).Result()
	if err != nil {
		return fmt.Errorf("del error: %w", err)
	}

	if deleted == 0 {
		return tokenrepo.ErrTokenNotFound
	}

	return nil
}
