package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	convpolicy "github.com/cyberFlowTech/zapry-convpolicy-go"
)

// RedisProfileStore implements convpolicy.ProfileAdapter using Redis.
// Profiles are stored as JSON strings under "{prefix}:profile:{userID}".
type RedisProfileStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisStoreConfig configures the Redis store.
type RedisStoreConfig struct {
	Prefix string        // key prefix, default "convpolicy"
	TTL    time.Duration // expiry of saved profiles, 0 = no expiry
}

// NewRedisProfileStore creates a ProfileAdapter backed by Redis. client may
// be a *redis.Client, *redis.ClusterClient or *redis.Ring.
func NewRedisProfileStore(client redis.UniversalClient, config ...RedisStoreConfig) *RedisProfileStore {
	cfg := RedisStoreConfig{Prefix: "convpolicy"}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "convpolicy"
	}
	return &RedisProfileStore{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
	}
}

// NewRedisClient opens a single-node client for addr.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

func (r *RedisProfileStore) profileKey(userID string) string {
	return fmt.Sprintf("%s:profile:%s", r.prefix, userID)
}

func (r *RedisProfileStore) Save(ctx context.Context, userID string, data []byte) error {
	if err := r.client.Set(ctx, r.profileKey(userID), data, r.ttl).Err(); err != nil {
		return oops.In("store.redis").With("user", userID).Wrapf(err, "save profile")
	}
	return nil
}

func (r *RedisProfileStore) Load(ctx context.Context, userID string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.profileKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.In("store.redis").With("user", userID).Wrapf(err, "load profile")
	}
	return data, nil
}

// Delete removes a stored profile. Deleting a missing profile is not an error.
func (r *RedisProfileStore) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.profileKey(userID)).Err(); err != nil {
		return oops.In("store.redis").With("user", userID).Wrapf(err, "delete profile")
	}
	return nil
}

// Users lists the user ids with a stored profile, sorted.
func (r *RedisProfileStore) Users(ctx context.Context) ([]string, error) {
	prefix := fmt.Sprintf("%s:profile:", r.prefix)
	var users []string
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		users = append(users, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, oops.In("store.redis").Wrapf(err, "scan profiles")
	}
	sort.Strings(users)
	return users, nil
}

func (r *RedisProfileStore) Close() error {
	return r.client.Close()
}

// Compile-time interface check.
var _ convpolicy.ProfileAdapter = (*RedisProfileStore)(nil)
