package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
)

// StateTTL bounds how long a consent link stays usable
const StateTTL = 10 * time.Minute

type OAuthUseCase struct {
	repo   interfaces.Repository
	client interfaces.OAuthProviderClient
	secret []byte
	now    func() time.Time
}

func (uc *OAuthUseCase) configured() bool {
	return uc.client != nil && len(uc.secret) > 0
}

// LoginURL returns the consent URL for agentID. The state parameter is an
// HS256 JWT whose subject is the agent ID.
func (uc *OAuthUseCase) LoginURL(id model.AgentID) (string, error) {
	if !uc.configured() {
		return "", goerr.Wrap(ErrOAuthNotConfigured, "login rejected")
	}
	if err := id.Validate(); err != nil {
		return "", goerr.Wrap(err, "invalid agent ID", goerr.V(model.AgentIDKey, id))
	}

	now := uc.now()
	tok, err := jwt.NewBuilder().
		Subject(id.String()).
		JwtID(uuid.NewString()).
		IssuedAt(now).
		Expiration(now.Add(StateTTL)).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build state token")
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, uc.secret))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign state token")
	}

	return uc.client.AuthCodeURL(string(signed)), nil
}

// HandleCallback verifies state, exchanges code and stores the token for the
// agent named in state
func (uc *OAuthUseCase) HandleCallback(ctx context.Context, code, state string) (model.AgentID, error) {
	if !uc.configured() {
		return "", goerr.Wrap(ErrOAuthNotConfigured, "callback rejected")
	}
	if strings.TrimSpace(code) == "" {
		return "", goerr.Wrap(ErrInvalidState, "authorization code is missing")
	}

	tok, err := jwt.Parse([]byte(state),
		jwt.WithKey(jwa.HS256, uc.secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(uc.now)),
	)
	if err != nil {
		return "", goerr.Wrap(ErrInvalidState, "state verification failed", goerr.V("error", err.Error()))
	}

	id := model.AgentID(tok.Subject())
	if err := id.Validate(); err != nil {
		return "", goerr.Wrap(ErrInvalidState, "state has no agent ID")
	}

	token, err := uc.client.Exchange(ctx, code)
	if err != nil {
		return "", goerr.Wrap(err, "failed to exchange authorization code", goerr.V(model.AgentIDKey, id))
	}
	if err := uc.repo.OAuthToken().Put(ctx, id, model.OAuthProviderGoogle, token); err != nil {
		return "", goerr.Wrap(err, "failed to store token", goerr.V(model.AgentIDKey, id))
	}

	logging.From(ctx).Info("gmail connected", "agentID", id, "hasRefreshToken", token.CanRefresh())
	return id, nil
}

// Status reports the agent's Gmail connection. A missing token is a valid
// disconnected status, not an error.
func (uc *OAuthUseCase) Status(ctx context.Context, id model.AgentID) (model.OAuthStatus, error) {
	token, err := uc.repo.OAuthToken().Get(ctx, id, model.OAuthProviderGoogle)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return model.OAuthStatus{}, nil
		}
		return model.OAuthStatus{}, goerr.Wrap(err, "failed to get token", goerr.V(model.AgentIDKey, id))
	}
	return token.StatusAt(uc.now()), nil
}
