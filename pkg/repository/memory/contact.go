package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
)

type contactRepository struct {
	store *userStore
}

func (r *contactRepository) List(ctx context.Context, id model.AgentID) ([]*model.Contact, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V(model.AgentIDKey, id))
	}
	return model.CopyContacts(user.Contacts), nil
}

// Update holds the write lock for the whole read-modify-write, so concurrent
// upserts for the same user are serialized.
func (r *contactRepository) Update(ctx context.Context, id model.AgentID, mutate interfaces.ContactMutator) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return goerr.Wrap(ErrNotFound, "user not found", goerr.V(model.AgentIDKey, id))
	}

	updated, err := mutate(model.CopyContacts(user.Contacts))
	if err != nil {
		return goerr.Wrap(err, "failed to mutate contacts", goerr.V(model.AgentIDKey, id))
	}

	user.Contacts = model.CopyContacts(updated)
	return nil
}
