package memory

import (
	"sync"

	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
)

// ErrNotFound is returned when a user or token does not exist
var ErrNotFound = interfaces.ErrNotFound

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is an in-process repository for development and tests. Users and
// their embedded contacts share one lock, mirroring the single Firestore
// document that holds both.
type Memory struct {
	users   *userStore
	user    *userRepository
	contact *contactRepository
	tokens  *tokenStore
}

var _ interfaces.Repository = &Memory{}

type userStore struct {
	mu    sync.RWMutex
	users map[model.AgentID]*model.User
}

func New() *Memory {
	users := &userStore{users: make(map[model.AgentID]*model.User)}
	return &Memory{
		users:   users,
		user:    &userRepository{store: users},
		contact: &contactRepository{store: users},
		tokens:  newTokenStore(),
	}
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Contact() interfaces.ContactRepository {
	return m.contact
}

func (m *Memory) OAuthToken() interfaces.OAuthTokenRepository {
	return m.tokens
}

func (m *Memory) Close() error {
	return nil
}
