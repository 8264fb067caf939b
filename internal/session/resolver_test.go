package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore map[string]string

func (m mapStore) Get(key string) string { return m[key] }
func (m mapStore) Set(key, value string) { m[key] = value }
func (m mapStore) Delete(key string) { delete(m, key) }

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acc-42",
			Issuer:    "backend",
			Audience:  jwt.ClaimStrings{"backoffice"},
			IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Roles:     []string{"admin"},
		SessionID: "sid-1",
		DeviceID:  "dev-1",
		Status:    "active",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unknown-to-us"))
	require.NoError(t, err)
	return token
}

func TestResolveWithoutTokenReturnsNil(t *testing.T) {
	assert.Nil(t, Resolve(mapStore{}))
	assert.Nil(t, Resolve(nil))
}

func TestResolveDecodesClaimsAndProfile(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	store := mapStore{}
	token := signedToken(t, exp)
	require.NoError(t, Persist(store, token, Profile{
		Name:        "Rina",
		Role:        RoleManager,
		Permissions: []string{"product.view"},
		Status:      AccountActive,
	}))

	sess := Resolve(store)
	require.NotNil(t, sess)
	assert.Equal(t, token, sess.BearerToken())
	assert.Equal(t, "acc-42", sess.Account.Subject)
	assert.Equal(t, "sid-1", sess.Account.SessionID)
	assert.Equal(t, "dev-1", sess.Account.DeviceID)
	assert.Equal(t, []string{"backoffice"}, sess.Account.Audience)
	assert.True(t, sess.Account.ExpiresAt.Equal(exp))
	assert.Equal(t, RoleManager, sess.Profile.Role)
	assert.True(t, sess.Can("product.view"))
	assert.False(t, sess.Can("product.delete"))
	assert.False(t, sess.Expired(exp.Add(-time.Minute)))
	assert.True(t, sess.Expired(exp))
}

func TestResolveKeepsOpaqueToken(t *testing.T) {
	sess := Resolve(mapStore{TokenKey: "not-a-jwt"})
	require.NotNil(t, sess)
	assert.Equal(t, "not-a-jwt", sess.Token)
	assert.Empty(t, sess.Account.Subject)
	assert.False(t, sess.Expired(time.Now()))
}

func TestResolveIsFreshPerCall(t *testing.T) {
	store := mapStore{TokenKey: "first"}
	first := Resolve(store)
	store[TokenKey] = "second"
	second := Resolve(store)
	assert.Equal(t, "first", first.Token)
	assert.Equal(t, "second", second.Token)
}

func TestSuperAdminHoldsEveryPermission(t *testing.T) {
	sess := &Session{Token: "x", Profile: Profile{Role: RoleSuperAdmin}}
	assert.True(t, sess.Can("anything.at.all"))
	var none *Session
	assert.False(t, none.Can("product.view"))
	assert.False(t, none.Authenticated())
}

func TestClearRemovesSignIn(t *testing.T) {
	store := mapStore{}
	require.NoError(t, Persist(store, "tok", Profile{}))
	Clear(store)
	assert.Nil(t, Resolve(store))
}

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))
	sess := &Session{Token: "abc"}
	assert.Same(t, sess, FromContext(ContextWithSession(ctx, sess)))
}
