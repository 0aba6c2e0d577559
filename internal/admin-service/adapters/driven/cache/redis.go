package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"shop-admin/internal/admin-service/core/domain/dto"
	"shop-admin/internal/admin-service/core/ports"
	"shop-admin/internal/config"

	"github.com/go-redis/redis/v8"
)

const (
	redisPrefix     = "admin:users:"
	redisVersionKey = redisPrefix + "version"
)

// Redis shares the users view between service instances. The version is a
// counter; entries live under a key that embeds it, so bumping the counter
// orphans every older entry until its TTL runs out.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ ports.IUsersViewCache = (*Redis)(nil)

func NewRedis(ctx context.Context, cfg *config.Redisconfig, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisWithClient(client, ttl), nil
}

func NewRedisWithClient(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Version(ctx context.Context) (uint64, error) {
	raw, err := r.client.Get(ctx, redisVersionKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read users view version: %w", err)
	}
	version, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse users view version %q: %w", raw, err)
	}
	return version, nil
}

func (r *Redis) Get(ctx context.Context, version uint64, key string) (dto.UsersPage, bool, error) {
	raw, err := r.client.Get(ctx, entryKey(version, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return dto.UsersPage{}, false, nil
	}
	if err != nil {
		return dto.UsersPage{}, false, fmt.Errorf("read users view: %w", err)
	}

	var page dto.UsersPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return dto.UsersPage{}, false, fmt.Errorf("decode users view: %w", err)
	}
	if page.Items == nil {
		page.Items = []dto.User{}
	}
	return page, true, nil
}

func (r *Redis) Set(ctx context.Context, version uint64, key string, page dto.UsersPage) error {
	if r.ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encode users view: %w", err)
	}
	if err := r.client.Set(ctx, entryKey(version, key), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("write users view: %w", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context) (uint64, error) {
	version, err := r.client.Incr(ctx, redisVersionKey).Result()
	if err != nil {
		return 0, fmt.Errorf("bump users view version: %w", err)
	}
	return uint64(version), nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func entryKey(version uint64, key string) string {
	return fmt.Sprintf("%sv%d:%s", redisPrefix, version, key)
}
