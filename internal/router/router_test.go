package router

import (
	"context"
	"testing"

	"wallet-console/internal/adapter/storage/memory"
	"wallet-console/internal/core/domain"
	"wallet-console/internal/session"
	"wallet-console/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLandingRoute(t *testing.T) {
	assert.Equal(t, domain.RouteAdminUsers, LandingRoute(domain.RoleAdmin))
	assert.Equal(t, domain.RouteDashboard, LandingRoute(domain.RoleUser))
	assert.Equal(t, domain.RouteDashboard, LandingRoute(domain.ParseRole("")))
}

func TestIsReachable(t *testing.T) {
	routes := []domain.Route{
		domain.RouteDashboard,
		domain.RouteTopUp,
		domain.RouteTransfer,
		domain.RouteExchange,
		domain.RouteTransactions,
		domain.RouteAdminUsers,
		domain.RouteAdminTransactions,
	}

	for _, route := range routes {
		t.Run(string(route), func(t *testing.T) {
			assert.True(t, IsReachable(route, domain.RoleAdmin), "admins reach every view")
			assert.Equal(t, !IsAdminOnly(route), IsReachable(route, domain.RoleUser))
		})
	}
}

func newSession(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.NewStore(context.Background(), memory.NewCredentialStore(), zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestRouter_ReadsRoleFreshEachDecision(t *testing.T) {
	ctx := context.Background()
	store := newSession(t)
	r := New(store)

	assert.Equal(t, domain.RouteSignIn, r.Landing())
	assert.Equal(t, apperror.CodeNotSignedIn, apperror.CodeOf(r.Authorize(domain.RouteDashboard)))

	require.NoError(t, store.SetCredential(ctx, domain.Credential{Token: "t", Role: domain.RoleAdmin}))
	assert.Equal(t, domain.RouteAdminUsers, r.Landing())
	assert.NoError(t, r.Authorize(domain.RouteAdminTransactions))

	require.NoError(t, store.ClearCredential(ctx))
	assert.Equal(t, domain.RouteSignIn, r.Landing())
	assert.Equal(t, apperror.CodeNotSignedIn, apperror.CodeOf(r.Authorize(domain.RouteAdminUsers)), "no stale admin access after clear")

	require.NoError(t, store.SetCredential(ctx, domain.Credential{Token: "t2", Role: domain.RoleUser}))
	assert.Equal(t, domain.RouteDashboard, r.Landing())
	assert.Equal(t, apperror.CodeRouteForbidden, apperror.CodeOf(r.Authorize(domain.RouteAdminUsers)))
	assert.NoError(t, r.Authorize(domain.RouteExchange))
}

func TestRouter_PublicRoutesAlwaysOpen(t *testing.T) {
	r := New(newSession(t))
	assert.NoError(t, r.Authorize(domain.RouteSignIn))
	assert.NoError(t, r.Authorize(domain.RouteSignUp))
}
