package session

import (
	"context"
	"sync"

	"wallet-console/internal/core/domain"
	"wallet-console/internal/core/ports"

	"github.com/rs/zerolog"
)

// State of the expiry state machine.
type State int

const (
	StateActive State = iota
	StateExpiring
)

func (s State) String() string {
	if s == StateExpiring {
		return "expiring"
	}
	return "active"
}

const expiredMessage = "Your session has expired. Please log in again."

// ExpiryHandler collapses any number of authorization failures into one
// expiry episode: one credential clear, one notification, one redirect.
type ExpiryHandler struct {
	mu        sync.Mutex
	state     State
	episodes  int
	store     *Store
	notifier  ports.Notifier
	navigator ports.Navigator
	log       zerolog.Logger
}

// NewExpiryHandler creates a handler in the active state.
func NewExpiryHandler(store *Store, notifier ports.Notifier, navigator ports.Navigator, log zerolog.Logger) *ExpiryHandler {
	return &ExpiryHandler{
		state:     StateActive,
		store:     store,
		notifier:  notifier,
		navigator: navigator,
		log:       log,
	}
}

// Expire records an observed 401/403 for a request sent with token. It returns
// true only for the call that moved the handler from active to expiring.
// Failures of requests that carried a token other than the current one belong
// to an earlier episode and are ignored.
//
// If the persisted copy cannot be removed it is restored by the next NewStore;
// the server rejects it again and a new episode starts then.
func (h *ExpiryHandler) Expire(ctx context.Context, httpStatus int, token string) bool {
	h.mu.Lock()
	if h.state == StateExpiring {
		h.mu.Unlock()
		h.log.Debug().Int("status", httpStatus).Msg("authorization failure during expiry, ignored")
		return false
	}
	if token != h.store.Token() {
		h.mu.Unlock()
		h.log.Debug().Int("status", httpStatus).Msg("authorization failure for a replaced credential, ignored")
		return false
	}
	h.state = StateExpiring
	h.episodes++
	episode := h.episodes

	// Cleared under the lock so a concurrent Reactivate cannot be wiped out
	// by an older episode.
	if err := h.store.ClearCredential(ctx); err != nil {
		h.log.Error().Err(err).Msg("failed to clear persisted credential")
	}
	h.mu.Unlock()

	h.log.Warn().Int("status", httpStatus).Int("episode", episode).Msg("session expired")

	h.notifier.Notify(expiredMessage)
	h.navigator.Navigate(domain.RouteSignIn)
	return true
}

// Reactivate stores a fresh credential from a successful sign-in and returns
// the handler to active.
func (h *ExpiryHandler) Reactivate(ctx context.Context, cred domain.Credential) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.SetCredential(ctx, cred); err != nil {
		return err
	}
	h.state = StateActive
	return nil
}

// State returns the current state.
func (h *ExpiryHandler) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Expiring reports whether an expiry episode is in progress.
func (h *ExpiryHandler) Expiring() bool {
	return h.State() == StateExpiring
}

// Episodes returns how many expiry episodes have started.
func (h *ExpiryHandler) Episodes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.episodes
}
