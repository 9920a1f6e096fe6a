package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// userDocument is stored at users/{agentId}. Contacts are embedded in the
// same document and rewritten as a whole on every contact update.
type userDocument struct {
	Name      string            `firestore:"name"`
	Age       int64             `firestore:"age"`
	ResumeURL string            `firestore:"resumeUrl"`
	Goals     string            `firestore:"goals"`
	Onboarded bool              `firestore:"onboarded"`
	Contacts  []contactDocument `firestore:"contacts"`
	CreatedAt time.Time         `firestore:"createdAt"`
	UpdatedAt time.Time         `firestore:"updatedAt"`
}

func (d *userDocument) toModel(id model.AgentID) *model.User {
	return &model.User{
		ID:        id,
		Name:      d.Name,
		Age:       int(d.Age),
		ResumeURL: d.ResumeURL,
		Goals:     d.Goals,
		Onboarded: d.Onboarded,
		Contacts:  contactsFromDocuments(d.Contacts),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newUserRepository(client *firestore.Client) *userRepository {
	return &userRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *userRepository) doc(id model.AgentID) *firestore.DocumentRef {
	return r.client.Collection(usersCollection(r.collectionPrefix)).Doc(id.String())
}

func (r *userRepository) Get(ctx context.Context, id model.AgentID) (*model.User, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID", goerr.V(model.AgentIDKey, id))
	}

	snap, err := r.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V(model.AgentIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(model.AgentIDKey, id))
	}

	var doc userDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V(model.AgentIDKey, id))
	}

	return doc.toModel(id), nil
}

// Put creates the document on first write and otherwise merges only profile
// fields, so createdAt and contacts survive.
func (r *userRepository) Put(ctx context.Context, user *model.User) error {
	if err := user.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID", goerr.V(model.AgentIDKey, user.ID))
	}

	ref := r.doc(user.ID)
	now := time.Now().UTC()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to get user")
			}

			createdAt := user.CreatedAt
			if createdAt.IsZero() {
				createdAt = now
			}
			return tx.Set(ref, &userDocument{
				Name:      user.Name,
				Age:       int64(user.Age),
				ResumeURL: user.ResumeURL,
				Goals:     user.Goals,
				Onboarded: user.Onboarded,
				Contacts:  []contactDocument{},
				CreatedAt: createdAt,
				UpdatedAt: now,
			})
		}

		return tx.Set(ref, map[string]any{
			"name":      user.Name,
			"age":       int64(user.Age),
			"resumeUrl": user.ResumeURL,
			"goals":     user.Goals,
			"onboarded": user.Onboarded,
			"updatedAt": now,
		}, firestore.MergeAll)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to put user", goerr.V(model.AgentIDKey, user.ID))
	}

	return nil
}

func (r *userRepository) ListOnboarded(ctx context.Context) ([]*model.User, error) {
	iter := r.client.Collection(usersCollection(r.collectionPrefix)).
		Where("onboarded", "==", true).
		OrderBy("updatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var users []*model.User
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users")
		}

		var doc userDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V(model.AgentIDKey, snap.Ref.ID))
		}
		users = append(users, doc.toModel(model.AgentID(snap.Ref.ID)))
	}

	return users, nil
}
