// Package session resolves the authenticated actor of the current request.
package session

import (
	"strings"
	"time"
)

// Role is the fixed set of back-office roles issued by the backend.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleStaff      Role = "staff"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// AccountStatus mirrors the backend account lifecycle.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountInactive  AccountStatus = "inactive"
	AccountSuspended AccountStatus = "suspended"
)

// Account holds the claims carried by the bearer token.
type Account struct {
	Subject   string
	Issuer    string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Roles     []string
	SessionID string
	DeviceID  string
	Status    string
}

// Profile is the user record returned by the backend session endpoint.
type Profile struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Mobile           string        `json:"mobile"`
	Role             Role          `json:"role"`
	Permissions      []string      `json:"permissions"`
	Status           AccountStatus `json:"status"`
	OnboardingStatus string        `json:"onboarding_status"`
}

// Session is the authenticated actor for a single request. It is built fresh
// per request and never mutated afterwards.
type Session struct {
	Token   string
	Account Account
	Profile Profile
}

// BearerToken returns the token or an empty string for a nil session.
func (s *Session) BearerToken() string {
	if s == nil {
		return ""
	}
	return s.Token
}

// Authenticated reports whether a bearer token is present.
func (s *Session) Authenticated() bool {
	return s.BearerToken() != ""
}

// Expired reports whether the token expiry claim lies before now. Tokens
// without an expiry claim never expire locally.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.Account.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.Account.ExpiresAt)
}

// Can reports whether the session holds the permission. Super admins hold
// every permission.
func (s *Session) Can(perm string) bool {
	if s == nil {
		return false
	}
	if s.Profile.Role == RoleSuperAdmin {
		return true
	}
	perm = strings.ToLower(strings.TrimSpace(perm))
	for _, p := range s.Profile.Permissions {
		if strings.ToLower(p) == perm {
			return true
		}
	}
	return false
}

// DisplayName picks the friendliest identifier available.
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	switch {
	case s.Profile.Name != "":
		return s.Profile.Name
	case s.Profile.Mobile != "":
		return s.Profile.Mobile
	default:
		return s.Account.Subject
	}
}
