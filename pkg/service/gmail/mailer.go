package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Mailer sends email through the Gmail API with the agent's stored token.
// Refreshed tokens are written back to the repository.
type Mailer struct {
	config   *oauth2.Config
	tokens   interfaces.OAuthTokenRepository
	endpoint string
}

var _ interfaces.Mailer = (*Mailer)(nil)

// MailerOption configures Mailer
type MailerOption func(*Mailer)

// WithEndpoint overrides the Gmail API endpoint
func WithEndpoint(endpoint string) MailerOption {
	return func(m *Mailer) {
		m.endpoint = endpoint
	}
}

// NewMailer creates a Mailer
func NewMailer(config *oauth2.Config, tokens interfaces.OAuthTokenRepository, opts ...MailerOption) *Mailer {
	m := &Mailer{config: config, tokens: tokens}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send delivers msg from the agent's Gmail account
func (x *Mailer) Send(ctx context.Context, agentID model.AgentID, msg *model.EmailMessage) (string, error) {
	stored, err := x.tokens.Get(ctx, agentID, model.OAuthProviderGoogle)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return "", goerr.Wrap(ErrAuthRequired, "Gmail is not connected", goerr.V("agentID", agentID))
		}
		return "", goerr.Wrap(err, "failed to load Gmail token", goerr.V("agentID", agentID))
	}

	if stored.IsExpired(time.Now()) && !stored.CanRefresh() {
		return "", goerr.Wrap(ErrAuthRequired, "Gmail token expired", goerr.V("agentID", agentID))
	}

	source := &persistingTokenSource{
		base:    x.config.TokenSource(ctx, toOAuth2(stored)),
		last:    stored.AccessToken,
		agentID: agentID,
		tokens:  x.tokens,
		ctx:     ctx,
	}

	opts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, source))}
	if x.endpoint != "" {
		opts = append(opts, option.WithEndpoint(x.endpoint))
	}
	svc, err := gmailapi.NewService(ctx, opts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create Gmail service")
	}

	raw, err := EncodeMessage(msg)
	if err != nil {
		return "", err
	}

	sent, err := svc.Users.Messages.Send("me", &gmailapi.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		if isAuthError(err) {
			return "", goerr.Wrap(ErrAuthRequired, "Gmail rejected the credential",
				goerr.V("agentID", agentID), goerr.V("cause", err.Error()))
		}
		return "", goerr.Wrap(err, "failed to send email", goerr.V("agentID", agentID), goerr.V("to", msg.To))
	}

	logging.From(ctx).Info("email sent", "agentID", agentID, "to", msg.To, "messageID", sent.Id)
	return sent.Id, nil
}

func isAuthError(err error) bool {
	if errors.Is(err, ErrAuthRequired) {
		return true
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
		return true
	}
	var retrieveErr *oauth2.RetrieveError
	return errors.As(err, &retrieveErr)
}

// EncodeMessage builds an RFC 2822 HTML message and returns it base64url
// encoded without padding, as the Gmail API expects. Header values must not
// contain line breaks.
func EncodeMessage(msg *model.EmailMessage) (string, error) {
	if strings.ContainsAny(msg.To, "\r\n") || strings.ContainsAny(msg.Subject, "\r\n") {
		return "", goerr.Wrap(ErrInvalidHeader, "line break in message header", goerr.V("to", msg.To))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTMLBody)

	return base64.RawURLEncoding.EncodeToString([]byte(b.String())), nil
}

// persistingTokenSource stores refreshed tokens. oauth2 carries the refresh
// token over when the provider omits it on refresh.
type persistingTokenSource struct {
	base    oauth2.TokenSource
	agentID model.AgentID
	tokens  interfaces.OAuthTokenRepository
	ctx     context.Context

	mu   sync.Mutex
	last string
}

func (x *persistingTokenSource) Token() (*oauth2.Token, error) {
	t, err := x.base.Token()
	if err != nil {
		// only a rejected refresh means the user has to reconnect
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, goerr.Wrap(ErrAuthRequired, "Gmail token refresh rejected", goerr.V("cause", err.Error()))
		}
		return nil, goerr.Wrap(err, "failed to refresh Gmail token", goerr.V("agentID", x.agentID))
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if t.AccessToken != x.last {
		if err := x.tokens.Put(x.ctx, x.agentID, model.OAuthProviderGoogle, fromOAuth2(t)); err != nil {
			logging.From(x.ctx).Warn("failed to persist refreshed token", "agentID", x.agentID, "error", err)
		} else {
			logging.From(x.ctx).Info("Gmail token refreshed", "agentID", x.agentID)
		}
		x.last = t.AccessToken
	}
	return t, nil
}
