package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type historyDocument struct {
	Timestamp time.Time `firestore:"timestamp"`
	Notes     string    `firestore:"notes"`
}

type contactDocument struct {
	ContactID       string            `firestore:"contactId"`
	Name            string            `firestore:"name"`
	Email           string            `firestore:"email"`
	LastContact     *time.Time        `firestore:"lastContact"`
	ContactHistory  []historyDocument `firestore:"contactHistory"`
	ResponseScore   float64           `firestore:"responseScore"`
	SimilarityScore float64           `firestore:"similarityScore"`
	AdditionalData  map[string]any    `firestore:"additionalData"`
}

func contactsFromDocuments(docs []contactDocument) []*model.Contact {
	contacts := make([]*model.Contact, len(docs))
	for i, d := range docs {
		history := make([]model.ContactHistoryEntry, len(d.ContactHistory))
		for j, h := range d.ContactHistory {
			history[j] = model.ContactHistoryEntry{Timestamp: h.Timestamp, Notes: h.Notes}
		}
		additional := d.AdditionalData
		if additional == nil {
			additional = map[string]any{}
		}
		contacts[i] = &model.Contact{
			ID:              model.ContactID(d.ContactID),
			Name:            d.Name,
			Email:           d.Email,
			LastContact:     d.LastContact,
			History:         history,
			ResponseScore:   d.ResponseScore,
			SimilarityScore: d.SimilarityScore,
			AdditionalData:  additional,
		}
	}
	return contacts
}

func contactsToDocuments(contacts []*model.Contact) []contactDocument {
	docs := make([]contactDocument, len(contacts))
	for i, c := range contacts {
		history := make([]historyDocument, len(c.History))
		for j, h := range c.History {
			history[j] = historyDocument{Timestamp: h.Timestamp, Notes: h.Notes}
		}
		additional := c.AdditionalData
		if additional == nil {
			additional = map[string]any{}
		}
		docs[i] = contactDocument{
			ContactID:       c.ID.String(),
			Name:            c.Name,
			Email:           c.Email,
			LastContact:     c.LastContact,
			ContactHistory:  history,
			ResponseScore:   c.ResponseScore,
			SimilarityScore: c.SimilarityScore,
			AdditionalData:  additional,
		}
	}
	return docs
}

type contactRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newContactRepository(client *firestore.Client) *contactRepository {
	return &contactRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *contactRepository) doc(id model.AgentID) *firestore.DocumentRef {
	return r.client.Collection(usersCollection(r.collectionPrefix)).Doc(id.String())
}

func (r *contactRepository) List(ctx context.Context, id model.AgentID) ([]*model.Contact, error) {
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
	return contactsFromDocuments(doc.Contacts), nil
}

// Update runs the read-modify-write inside a transaction. Firestore retries
// the function on contention, which is why mutate must be side-effect free.
func (r *contactRepository) Update(ctx context.Context, id model.AgentID, mutate interfaces.ContactMutator) error {
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID", goerr.V(model.AgentIDKey, id))
	}

	ref := r.doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "user not found")
			}
			return goerr.Wrap(err, "failed to get user")
		}

		var doc userDocument
		if err := snap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to unmarshal user")
		}

		updated, err := mutate(contactsFromDocuments(doc.Contacts))
		if err != nil {
			return goerr.Wrap(err, "failed to mutate contacts")
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "contacts", Value: contactsToDocuments(updated)},
			{Path: "updatedAt", Value: time.Now().UTC()},
		})
	})
	if err != nil {
		return goerr.Wrap(err, "failed to update contacts", goerr.V(model.AgentIDKey, id))
	}

	return nil
}
