package ports

//go:generate mockgen -destination=mocks/client_mocks.go -package=mocks . CredentialPersister,Notifier,Navigator

import (
	"context"
	"net/http"

	"wallet-console/internal/core/domain"
)

// CredentialPersister keeps the credential across process restarts under
// fixed key names.
type CredentialPersister interface {
	// Load returns the zero Credential when nothing is stored.
	Load(ctx context.Context) (domain.Credential, error)
	Save(ctx context.Context, cred domain.Credential) error
	Clear(ctx context.Context) error
}

// Notifier shows a message to the user.
type Notifier interface {
	Notify(message string)
}

// Navigator moves the UI to another view.
type Navigator interface {
	Navigate(route domain.Route)
}

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}
