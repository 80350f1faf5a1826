package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/devsocial/devsocial/internal/store"
	"github.com/devsocial/devsocial/internal/store/sqlite"
)

func newService(t *testing.T, name string, ttl time.Duration) *Service {
	t.Helper()
	st, err := sqlite.Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return NewService(st, ttl).WithHashCost(bcrypt.MinCost)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService(t, "auth_register", time.Hour)
	ctx := context.Background()

	token, user, err := svc.Register(ctx, Registration{
		Username: "ada",
		Email:    "Ada@Example.com",
		Password: "s3cret",
		FullName: "Ada Lovelace",
		Skills:   []string{"go"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, DefaultAvatar("ada"), user.Avatar)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	id, err := svc.Authenticate(ctx, token.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, "ada", id.Username)

	_, _, err = svc.Login(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	loginToken, loggedIn, err := svc.Login(ctx, "ADA@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEqual(t, token.Token, loginToken.Token)
}

func TestRegisterRejectsDuplicatesAndMissingFields(t *testing.T) {
	svc := newService(t, "auth_duplicate", time.Hour)
	ctx := context.Background()

	reg := Registration{Username: "grace", Email: "grace@example.com", Password: "pw", FullName: "Grace Hopper"}
	_, _, err := svc.Register(ctx, reg)
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, reg)
	assert.ErrorIs(t, err, store.ErrDuplicateUser)

	_, _, err = svc.Register(ctx, Registration{Username: "x", Email: "not-an-email", Password: "pw", FullName: "X"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, _, err = svc.Register(ctx, Registration{Username: "y", Email: "y@example.com"})
	assert.ErrorAs(t, err, &verr)
}

func TestTokenExpiration(t *testing.T) {
	svc := newService(t, "auth_token_expire", -1*time.Second)
	ctx := context.Background()

	token, _, err := svc.Register(ctx, Registration{Username: "old", Email: "old@example.com", Password: "pw", FullName: "Old"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, token.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.True(t, IsUnauthorized(err))
}

func TestResolvePolicy(t *testing.T) {
	svc := newService(t, "auth_resolve", time.Hour)
	ctx := context.Background()

	token, user, err := svc.Register(ctx, Registration{Username: "lin", Email: "lin@example.com", Password: "pw", FullName: "Lin"})
	require.NoError(t, err)

	id, err := svc.Resolve(ctx, "Bearer "+token.Token, Required)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, user.ID, id.UserID)

	_, err = svc.Resolve(ctx, "", Required)
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = svc.Resolve(ctx, "Bearer bogus", Required)
	assert.ErrorIs(t, err, ErrInvalidToken)

	id, err = svc.Resolve(ctx, "Bearer bogus", Optional)
	assert.NoError(t, err)
	assert.Nil(t, id)

	id, err = svc.Resolve(ctx, "", Optional)
	assert.NoError(t, err)
	assert.Nil(t, id)
}

func TestResolveSurfacesStoreErrors(t *testing.T) {
	st, err := sqlite.Open("file:auth_store_error?mode=memory&cache=shared")
	require.NoError(t, err)
	svc := NewService(st, time.Hour).WithHashCost(bcrypt.MinCost)
	ctx := context.Background()

	token, _, err := svc.Register(ctx, Registration{Username: "ken", Email: "ken@example.com", Password: "pw", FullName: "Ken"})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = svc.Resolve(ctx, "Bearer "+token.Token, Required)
	require.Error(t, err)
	assert.False(t, IsUnauthorized(err))

	id, err := svc.Resolve(ctx, "Bearer "+token.Token, Optional)
	require.Error(t, err)
	assert.Nil(t, id)
}
