package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/service/gmail"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Google configures the Gmail OAuth flow and the Gmail mailer
type Google struct {
	clientID     string
	clientSecret string
	redirectURL  string
	stateSecret  string
}

func (x *Google) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "google-client-id",
			Usage:       "Google OAuth client ID",
			Category:    "Google",
			Destination: &x.clientID,
			Sources:     cli.EnvVars("COFFEECHAT_GOOGLE_CLIENT_ID"),
		},
		&cli.StringFlag{
			Name:        "google-client-secret",
			Usage:       "Google OAuth client secret",
			Category:    "Google",
			Destination: &x.clientSecret,
			Sources:     cli.EnvVars("COFFEECHAT_GOOGLE_CLIENT_SECRET"),
		},
		&cli.StringFlag{
			Name:        "google-redirect-url",
			Usage:       "OAuth redirect URL, e.g. https://your-domain.com/oauth/google/callback",
			Category:    "Google",
			Destination: &x.redirectURL,
			Sources:     cli.EnvVars("COFFEECHAT_GOOGLE_REDIRECT_URL"),
		},
		&cli.StringFlag{
			Name:        "oauth-state-secret",
			Usage:       "Secret used to sign the OAuth state parameter",
			Category:    "Google",
			Destination: &x.stateSecret,
			Sources:     cli.EnvVars("COFFEECHAT_OAUTH_STATE_SECRET"),
		},
	}
}

func (x Google) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("client-id.len", len(x.clientID)),
		slog.Int("client-secret.len", len(x.clientSecret)),
		slog.String("redirect-url", x.redirectURL),
		slog.Int("state-secret.len", len(x.stateSecret)),
	)
}

// IsConfigured reports whether every value needed for the OAuth flow is set
func (x *Google) IsConfigured() bool {
	return x.clientID != "" && x.clientSecret != "" && x.redirectURL != "" && x.stateSecret != ""
}

// Configure returns use case options enabling Gmail. Nothing is enabled
// unless every value is set.
func (x *Google) Configure(tokens interfaces.OAuthTokenRepository) ([]usecase.Option, error) {
	if !x.IsConfigured() {
		logging.Default().Info("Google OAuth not configured, Gmail features are disabled")
		return nil, nil
	}

	cfg := gmail.NewOAuthConfig(x.clientID, x.clientSecret, x.redirectURL)
	client, err := gmail.NewOAuth(cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure Google OAuth")
	}

	return []usecase.Option{
		usecase.WithOAuth(client, []byte(x.stateSecret)),
		usecase.WithMailer(gmail.NewMailer(cfg, tokens)),
	}, nil
}
