package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/layer-3/auctioneer/core"
	"github.com/layer-3/auctioneer/ports"
	"github.com/redis/go-redis/v9"
)

// DefaultTokenGrace keeps expired tokens in Redis long enough to report them as expired
const DefaultTokenGrace = time.Minute

type redisToken struct {
	Value     string `json:"v"`
	ExpiresAt int64  `json:"exp"` // unix nanoseconds
}

// RedisTokenStore is a Redis implementation of the TokenStore interface.
// It lets several service instances share session tokens.
type RedisTokenStore struct {
	client redis.UniversalClient
	prefix string
	grace  time.Duration
}

// NewRedisTokenStore creates a new Redis token store
func NewRedisTokenStore(client redis.UniversalClient, prefix string) ports.TokenStore {
	if prefix == "" {
		prefix = "auctioneer:token:"
	}
	return &RedisTokenStore{
		client: client,
		prefix: prefix,
		grace:  DefaultTokenGrace,
	}
}

func (s *RedisTokenStore) key(owner uint64) string {
	return s.prefix + strconv.FormatUint(owner, 10)
}

// Put stores the token, overwriting the owner's previous one
func (s *RedisTokenStore) Put(ctx context.Context, token core.SessionToken) error {
	payload, err := json.Marshal(redisToken{
		Value:     token.Value,
		ExpiresAt: token.ExpiresAt.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	// Expiry is judged by the token manager's clock; Redis only reclaims abandoned keys
	expiry := time.Until(token.ExpiresAt) + s.grace
	if expiry < s.grace {
		expiry = s.grace
	}

	if err := s.client.Set(ctx, s.key(token.Owner), payload, expiry).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}
	return nil
}

// Take removes and returns the owner's token with GETDEL
func (s *RedisTokenStore) Take(ctx context.Context, owner uint64) (core.SessionToken, error) {
	data, err := s.client.GetDel(ctx, s.key(owner)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.SessionToken{}, core.ErrNoToken
		}
		return core.SessionToken{}, fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}

	var stored redisToken
	if err := json.Unmarshal(data, &stored); err != nil {
		// A corrupt record cannot match any presented value
		return core.SessionToken{}, core.ErrTokenMismatch
	}

	return core.SessionToken{
		Owner:     owner,
		Value:     stored.Value,
		ExpiresAt: time.Unix(0, stored.ExpiresAt),
	}, nil
}
