package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/storybook-backend/config"
	"github.com/ikkim/storybook-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RevokedSessionPrefix namespaces revoked admin session ids.
const RevokedSessionPrefix = "admin:revoked:"

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"addr": cfg.Addr(),
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"addr": cfg.Addr(),
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection")
		return client.Close()
	}
	return nil
}

// SessionStore records logged-out admin sessions until their token would
// have expired anyway.
type SessionStore struct {
	client redis.Cmdable
}

func NewSessionStore(client redis.Cmdable) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(sessionID string) string {
	return RevokedSessionPrefix + sessionID
}

// Revoke marks sessionID as logged out for ttl.
func (s *SessionStore) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	logger.Debug("Revoking admin session", map[string]interface{}{
		"session_id": sessionID,
		"ttl":        ttl.String(),
	})

	if err := s.client.Set(ctx, sessionKey(sessionID), "revoked", ttl).Err(); err != nil {
		logger.Error("Failed to revoke admin session", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return err
	}
	return nil
}

// IsRevoked reports whether sessionID was logged out.
func (s *SessionStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		logger.Error("Failed to check admin session revocation", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return false, err
	}
	return n > 0, nil
}
