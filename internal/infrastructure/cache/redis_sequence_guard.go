// Package cache provides sequence-guard implementations that make
// reference allocation atomic across replicas.
package cache

import (
	"context"
	"fmt"
	"time"

	app "github.com/letterdesk/backend/internal/application/letters"
	"github.com/redis/go-redis/v9"
)

// RedisSequenceGuard implements the sequence guard on Redis. Reserve is
// a SETNX with TTL, which is atomic across all replicas sharing the
// Redis instance. Reservations expire on their own so a crashed writer
// cannot burn a sequence forever.
type RedisSequenceGuard struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Ensure RedisSequenceGuard implements SequenceGuard
var _ app.SequenceGuard = (*RedisSequenceGuard)(nil)

// NewRedisSequenceGuard connects to Redis and returns a guard.
func NewRedisSequenceGuard(cfg RedisConfig, ttl time.Duration) (*RedisSequenceGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSequenceGuardWithClient(client, "", ttl), nil
}

// NewRedisSequenceGuardWithClient creates a guard over an existing
// client. Useful for testing or when sharing a client across
// components.
func NewRedisSequenceGuardWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSequenceGuard {
	if keyPrefix == "" {
		keyPrefix = "letters:seq:"
	}
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSequenceGuard{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Reserve claims a (company, year, sequence) triple. Returns false when
// another writer already holds it.
func (g *RedisSequenceGuard) Reserve(ctx context.Context, companyID string, year, sequence int) (bool, error) {
	key := g.key(companyID, year, sequence)
	ok, err := g.client.SetNX(ctx, key, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve sequence: %w", err)
	}
	return ok, nil
}

// Release frees a reservation after a failed letter write.
func (g *RedisSequenceGuard) Release(ctx context.Context, companyID string, year, sequence int) error {
	if err := g.client.Del(ctx, g.key(companyID, year, sequence)).Err(); err != nil {
		return fmt.Errorf("failed to release sequence: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (g *RedisSequenceGuard) Close() error {
	return g.client.Close()
}

func (g *RedisSequenceGuard) key(companyID string, year, sequence int) string {
	return fmt.Sprintf("%s%s:%d:%d", g.keyPrefix, companyID, year, sequence)
}
