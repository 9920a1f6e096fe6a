package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
)

type userRepository struct {
	store *userStore
}

func (r *userRepository) Get(ctx context.Context, id model.AgentID) (*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V(model.AgentIDKey, id))
	}

	// Return a copy to prevent external modification
	return user.Copy(), nil
}

func (r *userRepository) Put(ctx context.Context, user *model.User) error {
	if err := user.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID", goerr.V(model.AgentIDKey, user.ID))
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	existing, ok := r.store.users[user.ID]
	if !ok {
		created := user.Copy()
		created.Contacts = []*model.Contact{}
		if created.CreatedAt.IsZero() {
			created.CreatedAt = now
		}
		created.UpdatedAt = now
		r.store.users[user.ID] = created
		return nil
	}

	existing.Name = user.Name
	existing.Age = user.Age
	existing.ResumeURL = user.ResumeURL
	existing.Goals = user.Goals
	existing.Onboarded = user.Onboarded
	existing.UpdatedAt = now
	return nil
}

func (r *userRepository) ListOnboarded(ctx context.Context) ([]*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var users []*model.User
	for _, u := range r.store.users {
		if u.Onboarded {
			users = append(users, u.Copy())
		}
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].UpdatedAt.After(users[j].UpdatedAt)
	})
	return users, nil
}
