package model

import "time"

// OAuthProvider names the identity provider a token belongs to
type OAuthProvider string

const OAuthProviderGoogle OAuthProvider = "google"

// OAuthToken is an agent's stored credential. It becomes invalid when refresh
// fails but is never deleted automatically.
type OAuthToken struct {
	AccessToken  string `masq:"secret"`
	RefreshToken string `masq:"secret"`
	Expiry       time.Time
	Scope        string
	TokenType    string
}

// IsExpired reports whether the access token has passed its expiry.
// A zero expiry means the token does not expire.
func (t *OAuthToken) IsExpired(now time.Time) bool {
	return !t.Expiry.IsZero() && !now.Before(t.Expiry)
}

// CanRefresh reports whether a refresh token is available
func (t *OAuthToken) CanRefresh() bool {
	return t.RefreshToken != ""
}

// OAuthStatus summarizes an agent's connection for display
type OAuthStatus struct {
	Connected       bool
	Valid           bool
	HasRefreshToken bool
	ExpiresAt       time.Time
}

// StatusAt derives the connection status at now. An expired token that can
// still be refreshed counts as valid.
func (t *OAuthToken) StatusAt(now time.Time) OAuthStatus {
	if t == nil || t.AccessToken == "" {
		return OAuthStatus{}
	}
	return OAuthStatus{
		Connected:       true,
		Valid:           !t.IsExpired(now) || t.CanRefresh(),
		HasRefreshToken: t.CanRefresh(),
		ExpiresAt:       t.Expiry,
	}
}
