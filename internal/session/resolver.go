package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenKey is the cookie-session key holding the bearer token.
	TokenKey = "access_token"
	// ProfileKey is the cookie-session key holding the JSON encoded Profile.
	ProfileKey = "profile"
)

// Store is the read side of the cookie session.
type Store interface {
	Get(key string) string
}

// Writer is the write side of the cookie session.
type Writer interface {
	Set(key, value string)
	Delete(key string)
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Roles     []string `json:"roles"`
	SessionID string   `json:"sid"`
	DeviceID  string   `json:"did"`
	Status    string   `json:"status"`
}

// DecodeAccount reads the claims of a bearer token. The signature is not
// verified: the backend owns the signing key and rejects forged tokens itself.
func DecodeAccount(token string) (Account, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Account{}, fmt.Errorf("session: decode token: %w", err)
	}
	account := Account{
		Subject:   claims.Subject,
		Issuer:    claims.Issuer,
		Audience:  []string(claims.Audience),
		Roles:     claims.Roles,
		SessionID: claims.SessionID,
		DeviceID:  claims.DeviceID,
		Status:    claims.Status,
	}
	if claims.IssuedAt != nil {
		account.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		account.ExpiresAt = claims.ExpiresAt.Time
	}
	return account, nil
}

// Resolve builds the Session for the current request from the cookie session.
// It returns nil when no bearer token is stored and never fails: a token whose
// claims cannot be decoded still yields a Session so the backend can decide.
func Resolve(store Store) *Session {
	if store == nil {
		return nil
	}
	token := strings.TrimSpace(store.Get(TokenKey))
	if token == "" {
		return nil
	}
	sess := &Session{Token: token}
	if account, err := DecodeAccount(token); err == nil {
		sess.Account = account
	}
	if raw := store.Get(ProfileKey); raw != "" {
		var profile Profile
		if err := json.Unmarshal([]byte(raw), &profile); err == nil {
			sess.Profile = profile
		}
	}
	return sess
}

// Persist stores the sign-in result in the cookie session.
func Persist(w Writer, token string, profile Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("session: encode profile: %w", err)
	}
	w.Set(TokenKey, token)
	w.Set(ProfileKey, string(raw))
	return nil
}

// Clear removes the sign-in result from the cookie session.
func Clear(w Writer) {
	w.Delete(TokenKey)
	w.Delete(ProfileKey)
}

type contextKey struct{}

// ContextWithSession stores the resolved session in ctx. A nil session is
// stored as-is so downstream lookups stay cheap.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the resolved session or nil.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(contextKey{}).(*Session)
	return sess
}
