package gmail

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
)

// ErrAuthRequired is returned when the agent has to reconnect Gmail
var ErrAuthRequired = interfaces.ErrAuthRequired

// ErrInvalidHeader is returned for header values that would break the message
var ErrInvalidHeader = goerr.New("invalid message header")

// NewOAuthConfig returns the OAuth2 config for sending mail through Gmail
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{gmailapi.GmailSendScope},
		Endpoint:     google.Endpoint,
	}
}

// OAuth runs the Google authorization code flow
type OAuth struct {
	config *oauth2.Config
}

var _ interfaces.OAuthProviderClient = (*OAuth)(nil)

// NewOAuth wraps an OAuth2 config
func NewOAuth(config *oauth2.Config) (*OAuth, error) {
	if config == nil || config.ClientID == "" || config.ClientSecret == "" {
		return nil, goerr.New("Google OAuth client ID and secret are required")
	}
	return &OAuth{config: config}, nil
}

// AuthCodeURL requests offline access so a refresh token is issued
func (x *OAuth) AuthCodeURL(state string) string {
	return x.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a token
func (x *OAuth) Exchange(ctx context.Context, code string) (*model.OAuthToken, error) {
	token, err := x.config.Exchange(ctx, code)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to exchange authorization code")
	}
	return fromOAuth2(token), nil
}

func fromOAuth2(t *oauth2.Token) *model.OAuthToken {
	out := &model.OAuthToken{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
		TokenType:    t.TokenType,
	}
	if scope, ok := t.Extra("scope").(string); ok {
		out.Scope = scope
	}
	return out
}

func toOAuth2(t *model.OAuthToken) *oauth2.Token {
	tokenType := t.TokenType
	if strings.TrimSpace(tokenType) == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
		TokenType:    tokenType,
	}
}
