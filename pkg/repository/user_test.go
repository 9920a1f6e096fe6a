package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/repository/firestore"
	"github.com/secmon-lab/coffeechat/pkg/repository/memory"
)

func newMemoryRepository(t *testing.T) interfaces.Repository {
	t.Helper()
	return memory.New()
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func isNotFound(err error) bool {
	return errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)
}

func newAgentID() model.AgentID {
	return model.AgentID(fmt.Sprintf("agent-%d", time.Now().UnixNano()))
}

func runUserRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Run("Put and Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := newAgentID()

		user := &model.User{
			ID:        id,
			Name:      "Ada Lovelace",
			Age:       28,
			ResumeURL: "https://example.com/resume.pdf",
			Goals:     "Meet people building analytical engines and discuss programming ideas",
			Onboarded: true,
		}
		gt.NoError(t, repo.User().Put(ctx, user)).Required()

		got, err := repo.User().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(id)
		gt.Value(t, got.Name).Equal("Ada Lovelace")
		gt.Value(t, got.Age).Equal(28)
		gt.Value(t, got.ResumeURL).Equal(user.ResumeURL)
		gt.Value(t, got.Goals).Equal(user.Goals)
		gt.Bool(t, got.Onboarded).True()
		gt.Array(t, got.Contacts).Length(0)
		gt.Bool(t, got.CreatedAt.IsZero()).False()
	})

	t.Run("Get not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.User().Get(context.Background(), newAgentID())
		gt.Error(t, err)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("Put preserves createdAt and contacts", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := newAgentID()

		gt.NoError(t, repo.User().Put(ctx, &model.User{ID: id, Name: "Ada", Onboarded: true})).Required()
		first, err := repo.User().Get(ctx, id)
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Contact().Update(ctx, id, func(contacts []*model.Contact) ([]*model.Contact, error) {
			return append(contacts, &model.Contact{ID: "grace", Name: "Grace"}), nil
		})).Required()

		gt.NoError(t, repo.User().Put(ctx, &model.User{ID: id, Name: "Ada L.", Onboarded: true})).Required()

		got, err := repo.User().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("Ada L.")
		gt.Bool(t, got.CreatedAt.Equal(first.CreatedAt)).True()
		gt.Array(t, got.Contacts).Length(1)
	})

	t.Run("Put rejects invalid ID", func(t *testing.T) {
		repo := newRepo(t)
		gt.Error(t, repo.User().Put(context.Background(), &model.User{ID: ""}))
	})

	t.Run("ListOnboarded", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		onboarded := newAgentID()
		pending := model.AgentID(string(onboarded) + "-pending")

		gt.NoError(t, repo.User().Put(ctx, &model.User{ID: onboarded, Name: "Ada", Onboarded: true})).Required()
		gt.NoError(t, repo.User().Put(ctx, &model.User{ID: pending, Name: "Bob"})).Required()

		users, err := repo.User().ListOnboarded(ctx)
		gt.NoError(t, err).Required()

		found := map[model.AgentID]bool{}
		for _, u := range users {
			found[u.ID] = true
		}
		gt.Bool(t, found[onboarded]).True()
		gt.Bool(t, found[pending]).False()
	})

	t.Run("returned user is a copy", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := newAgentID()
		gt.NoError(t, repo.User().Put(ctx, &model.User{ID: id, Name: "Ada"})).Required()

		got, err := repo.User().Get(ctx, id)
		gt.NoError(t, err).Required()
		got.Name = "changed"

		again, err := repo.User().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, again.Name).Equal("Ada")
	})
}

func TestMemoryUserRepository(t *testing.T) {
	runUserRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreUserRepository(t *testing.T) {
	runUserRepositoryTest(t, newFirestoreRepository)
}
