package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// tokenDocument keeps the field names of the OAuth token response. expiry_date
// is epoch milliseconds; 0 means no expiry.
type tokenDocument struct {
	AccessToken  string `firestore:"access_token"`
	RefreshToken string `firestore:"refresh_token,omitempty"`
	ExpiryDate   int64  `firestore:"expiry_date"`
	Scope        string `firestore:"scope"`
	TokenType    string `firestore:"token_type"`
}

// oauthDocument is stored at oauth_tokens/{agentId}
type oauthDocument struct {
	Tokens    map[string]tokenDocument `firestore:"tokens"`
	UpdatedAt time.Time                `firestore:"updatedAt"`
}

type tokenRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTokenRepository(client *firestore.Client) *tokenRepository {
	return &tokenRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *tokenRepository) tokensCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_oauth_tokens"
	}
	return "oauth_tokens"
}

func (r *tokenRepository) Get(ctx context.Context, id model.AgentID, provider model.OAuthProvider) (*model.OAuthToken, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid agent ID", goerr.V(model.AgentIDKey, id))
	}

	snap, err := r.client.Collection(r.tokensCollection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "oauth token not found", goerr.V(model.AgentIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get oauth token", goerr.V(model.AgentIDKey, id))
	}

	var doc oauthDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal oauth token", goerr.V(model.AgentIDKey, id))
	}

	t, ok := doc.Tokens[string(provider)]
	if !ok || t.AccessToken == "" {
		return nil, goerr.Wrap(ErrNotFound, "oauth token not found",
			goerr.V(model.AgentIDKey, id), goerr.V("provider", provider))
	}

	token := &model.OAuthToken{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		Scope:        t.Scope,
		TokenType:    t.TokenType,
	}
	if t.ExpiryDate > 0 {
		token.Expiry = time.UnixMilli(t.ExpiryDate).UTC()
	}
	return token, nil
}

// Put merges the provider's token into the agent document; tokens of other
// providers stay untouched.
func (r *tokenRepository) Put(ctx context.Context, id model.AgentID, provider model.OAuthProvider, token *model.OAuthToken) error {
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid agent ID", goerr.V(model.AgentIDKey, id))
	}
	if token == nil || token.AccessToken == "" {
		return goerr.New("access token is required", goerr.V(model.AgentIDKey, id))
	}

	var expiry int64
	if !token.Expiry.IsZero() {
		expiry = token.Expiry.UnixMilli()
	}

	data := map[string]any{
		"tokens": map[string]any{
			string(provider): map[string]any{
				"access_token":  token.AccessToken,
				"refresh_token": token.RefreshToken,
				"expiry_date":   expiry,
				"scope":         token.Scope,
				"token_type":    token.TokenType,
			},
		},
		"updatedAt": time.Now().UTC(),
	}

	if _, err := r.client.Collection(r.tokensCollection()).Doc(id.String()).Set(ctx, data, firestore.MergeAll); err != nil {
		return goerr.Wrap(err, "failed to put oauth token", goerr.V(model.AgentIDKey, id))
	}
	return nil
}
