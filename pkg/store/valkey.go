package store

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"tokpulse/pkg/config"
	"tokpulse/pkg/logger"
)

// ValkeyStore implements Store on top of a Valkey/Redis server
type ValkeyStore struct {
	client valkey.Client
	logger logger.Logger
}

// NewValkey connects to the configured Valkey server and verifies the
// connection with a ping.
func NewValkey(cfg *config.StoreConfig, log logger.Logger) (*ValkeyStore, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:      []string{cfg.Address},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping valkey: %w", err)
	}

	log.InfoWithFields("connected to valkey", map[string]interface{}{
		"address": cfg.Address,
	})

	return &ValkeyStore{client: client, logger: log}, nil
}

// Get returns the value for key, reporting absence without an error
func (s *ValkeyStore) Get(ctx context.Context, key string) (string, bool, error) {
	resp := s.client.Do(ctx, s.client.B().Get().Key(key).Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("valkey get %q: %w", key, err)
	}

	value, err := resp.ToString()
	if err != nil {
		return "", false, fmt.Errorf("valkey get %q: %w", key, err)
	}

	return value, true, nil
}

// Set writes the value under key with the given TTL
func (s *ValkeyStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	var cmd valkey.Completed
	if ttl > 0 {
		cmd = s.client.B().Set().Key(key).Value(value).Ex(ttl).Build()
	} else {
		cmd = s.client.B().Set().Key(key).Value(value).Build()
	}

	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("valkey set %q: %w", key, err)
	}

	s.logger.DebugWithFields("persisted key", map[string]interface{}{
		"key": key,
		"ttl": ttl,
	})

	return nil
}

// Close releases the client connection
func (s *ValkeyStore) Close() {
	s.client.Close()
}
