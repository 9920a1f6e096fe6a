package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
)

func runOAuthTokenRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Run("Put and Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := newAgentID()

		expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond)
		token := &model.OAuthToken{
			AccessToken:  "access-123",
			RefreshToken: "refresh-456",
			Expiry:       expiry,
			Scope:        "https://www.googleapis.com/auth/gmail.send",
			TokenType:    "Bearer",
		}
		gt.NoError(t, repo.OAuthToken().Put(ctx, id, model.OAuthProviderGoogle, token)).Required()

		got, err := repo.OAuthToken().Get(ctx, id, model.OAuthProviderGoogle)
		gt.NoError(t, err).Required()
		gt.Value(t, got.AccessToken).Equal("access-123")
		gt.Value(t, got.RefreshToken).Equal("refresh-456")
		gt.Value(t, got.Scope).Equal(token.Scope)
		gt.Value(t, got.TokenType).Equal("Bearer")
		gt.Bool(t, got.Expiry.Equal(expiry)).True()
	})

	t.Run("Put replaces the token", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := newAgentID()

		gt.NoError(t, repo.OAuthToken().Put(ctx, id, model.OAuthProviderGoogle, &model.OAuthToken{AccessToken: "old"})).Required()
		gt.NoError(t, repo.OAuthToken().Put(ctx, id, model.OAuthProviderGoogle, &model.OAuthToken{AccessToken: "new"})).Required()

		got, err := repo.OAuthToken().Get(ctx, id, model.OAuthProviderGoogle)
		gt.NoError(t, err).Required()
		gt.Value(t, got.AccessToken).Equal("new")
		gt.Bool(t, got.Expiry.IsZero()).True()
	})

	t.Run("Get not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.OAuthToken().Get(context.Background(), newAgentID(), model.OAuthProviderGoogle)
		gt.Error(t, err)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Put rejects empty access token", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.OAuthToken().Put(context.Background(), newAgentID(), model.OAuthProviderGoogle, &model.OAuthToken{})
		gt.Error(t, err)
	})
}

func TestMemoryOAuthTokenRepository(t *testing.T) {
	runOAuthTokenRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreOAuthTokenRepository(t *testing.T) {
	runOAuthTokenRepositoryTest(t, newFirestoreRepository)
}
