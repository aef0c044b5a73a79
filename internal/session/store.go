package session

import (
	"context"
	"fmt"
	"sync"

	"wallet-console/internal/core/domain"
	"wallet-console/internal/core/ports"

	"github.com/rs/zerolog"
)

// Store is the single holder of the current credential. Only sign-in and the
// expiry handler write it; everything else reads.
type Store struct {
	mu        sync.RWMutex
	cred      domain.Credential
	persister ports.CredentialPersister
	log       zerolog.Logger
}

// NewStore creates a Store primed with whatever credential the persister holds.
func NewStore(ctx context.Context, persister ports.CredentialPersister, log zerolog.Logger) (*Store, error) {
	cred, err := persister.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading persisted credential: %w", err)
	}

	if cred.Valid() {
		log.Debug().Str("role", string(cred.Role)).Msg("restored persisted credential")
	}

	return &Store{
		cred:      cred,
		persister: persister,
		log:       log,
	}, nil
}

// Credential returns a copy of the current credential.
func (s *Store) Credential() domain.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred
}

// Token returns the bearer token, or "" when signed out.
func (s *Store) Token() string {
	return s.Credential().Token
}

// Role returns the current role and whether a credential is present.
func (s *Store) Role() (domain.Role, bool) {
	cred := s.Credential()
	if !cred.Valid() {
		return "", false
	}
	return cred.Role, true
}

// SetCredential persists cred and makes it current.
func (s *Store) SetCredential(ctx context.Context, cred domain.Credential) error {
	if !cred.Valid() {
		return fmt.Errorf("refusing to store credential without token")
	}
	if cred.Role == "" {
		cred.Role = domain.RoleUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persister.Save(ctx, cred); err != nil {
		return fmt.Errorf("persisting credential: %w", err)
	}
	s.cred = cred
	return nil
}

// ClearCredential drops the in-memory credential first so no later request can
// carry it, then removes the persisted copy, trying twice.
func (s *Store) ClearCredential(ctx context.Context) error {
	s.mu.Lock()
	s.cred = domain.Credential{}
	s.mu.Unlock()

	err := s.persister.Clear(ctx)
	if err == nil {
		return nil
	}
	s.log.Warn().Err(err).Msg("clearing persisted credential failed, retrying")
	if err = s.persister.Clear(ctx); err != nil {
		return fmt.Errorf("clearing persisted credential: %w", err)
	}
	return nil
}
