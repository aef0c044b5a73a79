package console

import (
	"context"
	"sync"

	"wallet-console/internal/client"
	"wallet-console/internal/core/domain"
	"wallet-console/internal/core/ports"
	"wallet-console/internal/ledger"
	"wallet-console/internal/router"
	"wallet-console/internal/session"
	"wallet-console/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AccountService is implemented by *client.AccountClient.
type AccountService interface {
	Login(ctx context.Context, email, password string) (domain.Credential, error)
	SignUp(ctx context.Context, username, email, password string) error
	Profile(ctx context.Context) (domain.Profile, error)
	TopUp(ctx context.Context, amount decimal.Decimal, currency domain.Currency) (decimal.Decimal, error)
	Transfer(ctx context.Context, req client.TransferRequest) (decimal.Decimal, error)
	Exchange(ctx context.Context, req client.ExchangeRequest) (decimal.Decimal, error)
	Transactions(ctx context.Context) ([]ledger.DisplayTransaction, error)
	AdminUsers(ctx context.Context) ([]domain.Account, error)
	AdminTransactions(ctx context.Context, userID int64) (client.AdminLedger, error)
}

// App is the screen controller. It tracks the current view, and every
// response is checked against the view that issued it before it may change
// what is displayed.
//
// App implements ports.Navigator so the expiry handler's redirect goes
// through the same bookkeeping as user navigation.
type App struct {
	mu      sync.Mutex
	current domain.Route
	gen     uint64 // bumped on every navigation
	seq     map[domain.Route]uint64
	state   State

	store    *session.Store
	router   *router.Router
	notifier ports.Notifier
	screen   ports.Navigator
	log      zerolog.Logger

	svc    AccountService
	expiry *session.ExpiryHandler
}

// New creates an App showing the landing route for the stored credential.
// screen may be nil. Bind must be called before any flow is used.
func New(store *session.Store, notifier ports.Notifier, screen ports.Navigator, log zerolog.Logger) *App {
	a := &App{
		seq:      make(map[domain.Route]uint64),
		store:    store,
		router:   router.New(store),
		notifier: notifier,
		screen:   screen,
		log:      log,
	}
	a.current = a.router.Landing()
	return a
}

// Bind attaches the account service and the expiry handler. They are built
// after the App because the expiry handler navigates through it.
func (a *App) Bind(svc AccountService, expiry *session.ExpiryHandler) {
	a.svc = svc
	a.expiry = expiry
}

// Navigate switches to route. Responses issued for an earlier view are
// discarded from now on. Leaving for the sign-in view drops all view state.
func (a *App) Navigate(route domain.Route) {
	a.mu.Lock()
	a.current = route
	a.gen++
	if route == domain.RouteSignIn {
		a.state = State{}
	}
	a.mu.Unlock()

	a.log.Debug().Str("route", string(route)).Msg("navigate")
	if a.screen != nil {
		a.screen.Navigate(route)
	}
}

// Open navigates to route if the current role may see it. A signed-out user
// is sent to sign-in.
func (a *App) Open(route domain.Route) error {
	if err := a.router.Authorize(route); err != nil {
		if apperror.CodeOf(err) == apperror.CodeNotSignedIn {
			a.Navigate(domain.RouteSignIn)
		}
		return err
	}
	a.Navigate(route)
	return nil
}

// Current returns the route on screen.
func (a *App) Current() domain.Route {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// State returns a snapshot of what is displayed.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Role returns the signed-in role, ok=false when signed out.
func (a *App) Role() (domain.Role, bool) {
	return a.store.Role()
}

// SignIn authenticates, stores the credential and goes to the role's
// landing view.
func (a *App) SignIn(ctx context.Context, email, password string) (domain.Route, error) {
	cred, err := a.svc.Login(ctx, email, password)
	if err != nil {
		return "", err
	}
	if err := a.expiry.Reactivate(ctx, cred); err != nil {
		return "", apperror.InternalError(err)
	}

	landing := router.LandingRoute(cred.Role)
	a.log.Info().Str("role", string(cred.Role)).Msg("signed in")
	a.notifier.Notify("Login successful!")
	a.Navigate(landing)
	return landing, nil
}

func (a *App) SignUp(ctx context.Context, username, email, password string) error {
	if err := a.svc.SignUp(ctx, username, email, password); err != nil {
		return err
	}
	a.notifier.Notify("Account created successfully!")
	a.Navigate(domain.RouteSignIn)
	return nil
}

// SignOut forgets the credential and returns to sign-in.
func (a *App) SignOut(ctx context.Context) error {
	err := a.store.ClearCredential(ctx)
	a.Navigate(domain.RouteSignIn)
	if err != nil {
		return apperror.InternalError(err)
	}
	a.log.Info().Msg("signed out")
	return nil
}

// ticket identifies one request issued from a view.
type ticket struct {
	route domain.Route
	gen   uint64
	seq   uint64
}

// issue authorizes route, navigates to it when it is not already on screen,
// and hands out a ticket that is invalidated by any later navigation or by a
// later request from the same view.
func (a *App) issue(route domain.Route) (ticket, error) {
	if err := a.router.Authorize(route); err != nil {
		if apperror.CodeOf(err) == apperror.CodeNotSignedIn {
			a.Navigate(domain.RouteSignIn)
		}
		return ticket{}, err
	}
	if a.Current() != route {
		a.Navigate(route)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq[route]++
	return ticket{route: route, gen: a.gen, seq: a.seq[route]}, nil
}

// stale must be called with a.mu held.
func (a *App) stale(t ticket) bool {
	return a.gen != t.gen || a.seq[t.route] != t.seq || (a.expiry != nil && a.expiry.Expiring())
}

// settle applies a successful response, replacing the view's previous state,
// unless the ticket went stale while the request was in flight.
func (a *App) settle(t ticket, apply func(*State)) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stale(t) {
		a.log.Debug().Str("route", string(t.route)).Msg("late response discarded")
		return apperror.ErrDiscarded(string(t.route))
	}
	apply(&a.state)
	return nil
}

// fail decides what the caller sees for a failed request. Authorization
// failures were already handled by the expiry handler and pass through so the
// caller can recognize them.
func (a *App) fail(t ticket, err error) error {
	if apperror.IsUnauthorized(err) {
		return err
	}

	a.mu.Lock()
	stale := a.stale(t)
	a.mu.Unlock()
	if stale {
		a.log.Debug().Err(err).Str("route", string(t.route)).Msg("late failure discarded")
		return apperror.ErrDiscarded(string(t.route))
	}

	a.log.Warn().Err(err).Str("route", string(t.route)).Msg("request failed")
	return err
}
