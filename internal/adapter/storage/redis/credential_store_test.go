package redis

import (
	"context"
	"testing"

	"wallet-console/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, prefix string) (*CredentialStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCredentialStore(client, prefix), s
}

func TestCredentialStore_LoadEmpty(t *testing.T) {
	store, _ := newTestStore(t, "")

	cred, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, cred.Valid())
}

func TestCredentialStore_SaveAndLoad(t *testing.T) {
	store, s := newTestStore(t, "")
	ctx := context.Background()

	err := store.Save(ctx, domain.Credential{Token: "tok-123", Role: domain.RoleAdmin})
	require.NoError(t, err)

	// Fixed key names, no prefix.
	token, err := s.Get("token")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
	role, err := s.Get("role")
	require.NoError(t, err)
	assert.Equal(t, "admin", role)

	cred, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Credential{Token: "tok-123", Role: domain.RoleAdmin}, cred)
}

func TestCredentialStore_Prefix(t *testing.T) {
	store, s := newTestStore(t, "wallet:")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Credential{Token: "tok", Role: domain.RoleUser}))

	assert.True(t, s.Exists("wallet:token"))
	assert.True(t, s.Exists("wallet:role"))
	assert.False(t, s.Exists("token"))
}

func TestCredentialStore_Clear(t *testing.T) {
	store, s := newTestStore(t, "")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Credential{Token: "tok", Role: domain.RoleUser}))
	require.NoError(t, store.Clear(ctx))

	assert.False(t, s.Exists("token"))
	assert.False(t, s.Exists("role"))

	cred, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, cred.Valid())
}

func TestCredentialStore_MissingRoleDefaultsToUser(t *testing.T) {
	store, s := newTestStore(t, "")
	require.NoError(t, s.Set("token", "legacy-token"))

	cred, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "legacy-token", cred.Token)
	assert.Equal(t, domain.RoleUser, cred.Role)
}

func TestCredentialStore_ServerDown(t *testing.T) {
	store, s := newTestStore(t, "")
	s.Close()

	_, err := store.Load(context.Background())
	assert.Error(t, err)
}
