// Package store holds the in-memory user records. Nothing is persisted;
// all data resets on process restart.
package store

import (
	"strings"
	"sync"
	"time"

	appErrors "userhub-backend/pkg/errors"
)

// User is a single user record.
type User struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Age       int        `json:"age"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// UserPatch carries the optional fields of a partial update. A nil field
// leaves the current value untouched.
type UserPatch struct {
	Name  *string
	Email *string
	Age   *int
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Age == nil
}

// MemoryStore is a mutex-guarded ordered collection of users with an
// email uniqueness index. IDs are monotonic and never reused within one
// process lifetime.
type MemoryStore struct {
	mu      sync.RWMutex
	users   []*User
	byID    map[int]*User
	byEmail map[string]int
	nextID  int
	clock   func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[int]*User),
		byEmail: make(map[string]int),
		nextID:  1,
		clock:   time.Now,
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// List returns copies of all users in insertion order.
func (s *MemoryStore) List() []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		c := *u
		out = append(out, &c)
	}
	return out
}

// Get returns a copy of the user with the given id.
func (s *MemoryStore) Get(id int) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, appErrors.NewNotFound("User not found")
	}
	c := *u
	return &c, nil
}

// Create adds a new user. Email must be unique among live records.
func (s *MemoryStore) Create(name, email string, age int) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(email)
	if _, exists := s.byEmail[key]; exists {
		return nil, appErrors.NewConflict("Email already exists")
	}

	u := &User{
		ID:        s.nextID,
		Name:      name,
		Email:     email,
		Age:       age,
		CreatedAt: s.clock().UTC(),
	}
	s.nextID++

	s.users = append(s.users, u)
	s.byID[u.ID] = u
	s.byEmail[key] = u.ID

	c := *u
	return &c, nil
}

// Update applies a partial update to the user with the given id.
func (s *MemoryStore) Update(id int, patch UserPatch) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, appErrors.NewNotFound("User not found")
	}

	if patch.Email != nil {
		newKey := emailKey(*patch.Email)
		if owner, exists := s.byEmail[newKey]; exists && owner != id {
			return nil, appErrors.NewConflict("Email already exists")
		}
		delete(s.byEmail, emailKey(u.Email))
		s.byEmail[newKey] = id
		u.Email = *patch.Email
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Age != nil {
		u.Age = *patch.Age
	}

	now := s.clock().UTC()
	u.UpdatedAt = &now

	c := *u
	return &c, nil
}

// Delete removes the user with the given id and returns the removed
// record.
func (s *MemoryStore) Delete(id int) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, appErrors.NewNotFound("User not found")
	}

	delete(s.byID, id)
	delete(s.byEmail, emailKey(u.Email))
	for i, candidate := range s.users {
		if candidate.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			break
		}
	}

	c := *u
	return &c, nil
}

// Count returns the number of live records.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
