package demo

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// User is the record the demo API serves.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserStore keeps users in memory, ordered by creation.
type UserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*User
	order []uuid.UUID
	now   func() time.Time
}

func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[uuid.UUID]*User),
		now:   time.Now,
	}
}

func (s *UserStore) Create(name, email string, roles ...string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     strings.ToLower(email),
		Roles:     roles,
		CreatedAt: s.now().UTC(),
	}
	s.users[user.ID] = user
	s.order = append(s.order, user.ID)
	return user
}

func (s *UserStore) Get(id uuid.UUID) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	return user, ok
}

// List returns at most limit users starting at offset. A non-positive limit
// returns everything after offset.
func (s *UserStore) List(offset, limit int) []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.order) {
		return []*User{}
	}
	end := len(s.order)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	users := make([]*User, 0, end-offset)
	for _, id := range s.order[offset:end] {
		users = append(users, s.users[id])
	}
	return users
}

func (s *UserStore) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	s.order = slices.DeleteFunc(s.order, func(other uuid.UUID) bool { return other == id })
	return true
}

// FindByEmail looks a user up case-insensitively.
func (s *UserStore) FindByEmail(email string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if user := s.users[id]; strings.EqualFold(user.Email, email) {
			return user, true
		}
	}
	return nil, false
}
