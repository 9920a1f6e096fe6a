package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
)

type tokenKey struct {
	agentID  model.AgentID
	provider model.OAuthProvider
}

type tokenStore struct {
	mu     sync.RWMutex
	tokens map[tokenKey]model.OAuthToken
}

func newTokenStore() *tokenStore {
	return &tokenStore{
		tokens: make(map[tokenKey]model.OAuthToken),
	}
}

func (s *tokenStore) Get(ctx context.Context, id model.AgentID, provider model.OAuthProvider) (*model.OAuthToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[tokenKey{agentID: id, provider: provider}]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "oauth token not found",
			goerr.V(model.AgentIDKey, id), goerr.V("provider", provider))
	}
	return &token, nil
}

func (s *tokenStore) Put(ctx context.Context, id model.AgentID, provider model.OAuthProvider, token *model.OAuthToken) error {
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid agent ID", goerr.V(model.AgentIDKey, id))
	}
	if token == nil || token.AccessToken == "" {
		return goerr.New("access token is required", goerr.V(model.AgentIDKey, id))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[tokenKey{agentID: id, provider: provider}] = *token
	return nil
}
