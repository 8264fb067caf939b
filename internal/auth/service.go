package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/apiclient"
	"github.com/odyssey-erp/backoffice/internal/session"
)

const (
	signInPath  = "/auth/signin"
	sessionPath = "/auth/session"
)

// Credentials is the sign-in payload expected by the backend.
type Credentials struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type signInData struct {
	AccessToken string `json:"access_token"`
}

type sessionData struct {
	User session.Profile `json:"user"`
}

// Service exchanges credentials for a bearer token and loads the profile
// that belongs to it.
type Service struct {
	client *apiclient.Client
}

// NewService constructs the auth service.
func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

// NormalizeIdentifier trims whitespace and a single leading '+' from a
// mobile identifier.
func NormalizeIdentifier(identifier string) string {
	return strings.TrimPrefix(strings.TrimSpace(identifier), "+")
}

// SignIn returns the new session, or nil without error when the credentials
// are locally invalid or the backend rejects them. Only transport and
// response-shape failures are returned as errors.
func (s *Service) SignIn(ctx context.Context, identifier, password string) (*session.Session, error) {
	creds := Credentials{Identifier: NormalizeIdentifier(identifier), Password: password}
	if creds.Identifier == "" || password == "" {
		return nil, nil
	}

	env, err := s.client.Do(ctx, nil, apiclient.Request{
		Method:   http.MethodPost,
		Path:     signInPath,
		Body:     creds,
		Resource: signInPath,
	})
	if err != nil {
		if errors.Is(err, apiclient.ErrRejected) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth: sign in: %w", err)
	}
	data, err := apiclient.DecodeData[signInData](env)
	if err != nil {
		return nil, fmt.Errorf("auth: sign in: %w", err)
	}
	if strings.TrimSpace(data.AccessToken) == "" {
		return nil, nil
	}

	sess := &session.Session{Token: data.AccessToken}
	if account, err := session.DecodeAccount(data.AccessToken); err == nil {
		sess.Account = account
	}
	return sess, nil
}

// FetchProfile loads the user claims for an authenticated session.
func (s *Service) FetchProfile(ctx context.Context, sess *session.Session) (session.Profile, error) {
	env, err := s.client.Do(ctx, sess, apiclient.Request{
		Method:   http.MethodGet,
		Path:     sessionPath,
		Resource: sessionPath,
	})
	if err != nil {
		return session.Profile{}, fmt.Errorf("auth: fetch profile: %w", err)
	}
	if env.Empty() {
		return session.Profile{}, fmt.Errorf("auth: fetch profile: %w", apiclient.ErrEmptyData)
	}
	data, err := apiclient.DecodeData[sessionData](env)
	if err != nil {
		return session.Profile{}, fmt.Errorf("auth: fetch profile: %w", err)
	}
	return data.User, nil
}
