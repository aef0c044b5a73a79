package redis

import (
	"context"
	"fmt"

	"wallet-console/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// Fixed key names of the persisted credential.
const (
	tokenKey = "token"
	roleKey  = "role"
)

// CredentialStore implements ports.CredentialPersister using Redis.
type CredentialStore struct {
	client *goredis.Client
	prefix string
}

// NewCredentialStore creates a Redis-backed credential store. prefix may be
// empty, in which case the bare "token" and "role" keys are used.
func NewCredentialStore(client *goredis.Client, prefix string) *CredentialStore {
	return &CredentialStore{
		client: client,
		prefix: prefix,
	}
}

// Load returns the stored credential, or the zero Credential if no token is stored.
func (s *CredentialStore) Load(ctx context.Context) (domain.Credential, error) {
	vals, err := s.client.MGet(ctx, s.prefix+tokenKey, s.prefix+roleKey).Result()
	if err != nil {
		return domain.Credential{}, fmt.Errorf("redis credential load: %w", err)
	}

	token, _ := vals[0].(string)
	if token == "" {
		return domain.Credential{}, nil
	}
	role, _ := vals[1].(string)

	return domain.Credential{Token: token, Role: domain.ParseRole(role)}, nil
}

// Save writes both keys atomically. The credential has no TTL; it lives until Clear.
func (s *CredentialStore) Save(ctx context.Context, cred domain.Credential) error {
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.prefix+tokenKey, cred.Token, 0)
		pipe.Set(ctx, s.prefix+roleKey, string(cred.Role), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis credential save: %w", err)
	}
	return nil
}

// Clear removes both keys.
func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.prefix+tokenKey, s.prefix+roleKey).Err(); err != nil {
		return fmt.Errorf("redis credential clear: %w", err)
	}
	return nil
}
