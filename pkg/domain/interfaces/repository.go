package interfaces

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
)

// ErrNotFound is returned by every repository backend when a document does not exist
var ErrNotFound = goerr.New("resource not found")

// Repository defines the interface for data persistence
type Repository interface {
	User() UserRepository
	Contact() ContactRepository
	OAuthToken() OAuthTokenRepository
	Close() error
}

// UserRepository stores user profiles. Profile writes never touch contacts.
type UserRepository interface {
	// Get returns the user including embedded contacts, or ErrNotFound
	Get(ctx context.Context, id model.AgentID) (*model.User, error)

	// Put merges the profile fields of user into the stored document.
	// CreatedAt is preserved when the document already exists.
	Put(ctx context.Context, user *model.User) error

	// ListOnboarded returns every onboarded user
	ListOnboarded(ctx context.Context) ([]*model.User, error)
}

// ContactMutator transforms a user's contact list. The returned list replaces
// the stored one.
type ContactMutator func(contacts []*model.Contact) ([]*model.Contact, error)

// ContactRepository stores the contact list embedded in a user document
type ContactRepository interface {
	// List returns the contacts of a user, or ErrNotFound when the user does not exist
	List(ctx context.Context, id model.AgentID) ([]*model.Contact, error)

	// Update runs mutate on the current contact list and stores the result
	// atomically. mutate can be invoked more than once when a concurrent
	// write forces a retry, so it must not have side effects.
	Update(ctx context.Context, id model.AgentID, mutate ContactMutator) error
}

// OAuthTokenRepository stores per-agent OAuth credentials
type OAuthTokenRepository interface {
	// Get returns the token for provider, or ErrNotFound
	Get(ctx context.Context, id model.AgentID, provider model.OAuthProvider) (*model.OAuthToken, error)

	// Put stores the token for provider, keeping tokens of other providers
	Put(ctx context.Context, id model.AgentID, provider model.OAuthProvider, token *model.OAuthToken) error
}
