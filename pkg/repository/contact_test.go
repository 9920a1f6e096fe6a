package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
)

func upsert(in model.ContactInput, didInteract bool, now time.Time) interfaces.ContactMutator {
	return func(contacts []*model.Contact) ([]*model.Contact, error) {
		out, _, err := model.UpsertContact(contacts, in, didInteract, now)
		return out, err
	}
}

func runContactRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Run("Update and List round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := newAgentID()
		gt.NoError(t, repo.User().Put(ctx, &model.User{ID: id, Name: "Ada", Onboarded: true})).Required()

		now := time.Now().UTC().Truncate(time.Millisecond)
		gt.NoError(t, repo.Contact().Update(ctx, id, upsert(model.ContactInput{
			Name:           "Grace Hopper",
			Email:          "grace@example.com",
			Notes:          "Talked about compilers",
			AdditionalData: map[string]any{"title": "Admiral", "company": "US Navy"},
		}, true, now))).Required()

		contacts, err := repo.Contact().List(ctx, id)
		gt.NoError(t, err).Required()
		gt.Array(t, contacts).Length(1).Required()

		c := contacts[0]
		gt.Value(t, c.ID).Equal(model.ContactID("grace-hopper"))
		gt.Value(t, c.Email).Equal("grace@example.com")
		gt.Array(t, c.History).Length(1).Required()
		gt.Value(t, c.History[0].Notes).Equal("Talked about compilers")
		gt.Value(t, c.LastContact).NotNil()
		gt.Value(t, c.AdditionalData["title"]).Equal("Admiral")
		gt.Value(t, c.AdditionalData["company"]).Equal("US Navy")
	})

	t.Run("scores are persisted", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := newAgentID()
		gt.NoError(t, repo.User().Put(ctx, &model.User{ID: id, Name: "Ada", Onboarded: true})).Required()

		gt.NoError(t, repo.Contact().Update(ctx, id, func(contacts []*model.Contact) ([]*model.Contact, error) {
			return []*model.Contact{{ID: "grace", Name: "Grace", ResponseScore: 21.5, SimilarityScore: 80}}, nil
		})).Required()

		contacts, err := repo.Contact().List(ctx, id)
		gt.NoError(t, err).Required()
		gt.Array(t, contacts).Length(1).Required()
		gt.Number(t, contacts[0].ResponseScore).Equal(21.5)
		gt.Number(t, contacts[0].SimilarityScore).Equal(80)
	})

	t.Run("Update for unknown user", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Contact().Update(context.Background(), newAgentID(), upsert(model.ContactInput{Name: "x"}, false, time.Now()))
		gt.Error(t, err)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("List for unknown user", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Contact().List(context.Background(), newAgentID())
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("mutator error aborts the update", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := newAgentID()
		gt.NoError(t, repo.User().Put(ctx, &model.User{ID: id, Name: "Ada", Onboarded: true})).Required()

		err := repo.Contact().Update(ctx, id, func(contacts []*model.Contact) ([]*model.Contact, error) {
			return nil, fmt.Errorf("boom")
		})
		gt.Error(t, err)

		contacts, err := repo.Contact().List(ctx, id)
		gt.NoError(t, err).Required()
		gt.Array(t, contacts).Length(0)
	})

	t.Run("concurrent interactions are not lost", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := newAgentID()
		gt.NoError(t, repo.User().Put(ctx, &model.User{ID: id, Name: "Ada", Onboarded: true})).Required()

		const n = 5
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- repo.Contact().Update(ctx, id, upsert(model.ContactInput{
					Name:  "Grace Hopper",
					Notes: fmt.Sprintf("note %d", i),
				}, true, time.Now().UTC()))
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			gt.NoError(t, err)
		}

		contacts, err := repo.Contact().List(ctx, id)
		gt.NoError(t, err).Required()
		gt.Array(t, contacts).Length(1).Required()
		gt.Array(t, contacts[0].History).Length(n)
	})
}

func TestMemoryContactRepository(t *testing.T) {
	runContactRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreContactRepository(t *testing.T) {
	runContactRepositoryTest(t, newFirestoreRepository)
}
