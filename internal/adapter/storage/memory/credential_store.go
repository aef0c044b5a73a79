package memory

import (
	"context"
	"sync"

	"wallet-console/internal/core/domain"
)

// CredentialStore keeps the credential for the lifetime of the process.
type CredentialStore struct {
	mu   sync.Mutex
	cred domain.Credential
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

func (s *CredentialStore) Load(_ context.Context) (domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred, nil
}

func (s *CredentialStore) Save(_ context.Context, cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = cred
	return nil
}

func (s *CredentialStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = domain.Credential{}
	return nil
}
