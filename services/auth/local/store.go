package localauth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/irshadhq/irshad/core/auth"
)

var (
	// errors
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// User is a credential record. Emails are confirmed at creation; there is no
// separate confirmation flow.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Metadata     auth.Metadata
	ConfirmedAt  time.Time
	CreatedAt    time.Time
}

type Store interface {
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	CreateUser(ctx context.Context, usr User) (User, error)
	UpdateUserPassword(ctx context.Context, id string, hash []byte) error
}

// memStore backs the provider in dev servers, the admin CLI and tests.
type memStore struct {
	mu    sync.RWMutex
	users map[string]*User // by id
}

var _ Store = (*memStore)(nil)

func NewMemStore() *memStore {
	return &memStore{users: make(map[string]*User)}
}

func (s *memStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, usr := range s.users {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (s *memStore) GetUserByID(ctx context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if usr, ok := s.users[id]; ok {
		return *usr, nil
	}
	return User{}, ErrUserNotFound
}

func (s *memStore) CreateUser(ctx context.Context, usr User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == usr.Email {
			return User{}, ErrEmailTaken
		}
	}
	usr.ID = uuid.NewString()
	s.users[usr.ID] = &usr
	return usr, nil
}

func (s *memStore) UpdateUserPassword(ctx context.Context, id string, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	usr, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	usr.PasswordHash = hash
	return nil
}
