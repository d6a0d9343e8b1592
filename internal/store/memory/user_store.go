package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/wolfeidau/pacsgate/internal/models"
	"github.com/wolfeidau/pacsgate/internal/store"
)

// UserStore implements store.UserStore using in-memory storage.
type UserStore struct {
	db *db
}

// Create creates a new user in memory.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.emailTaken(user.Email, 0) {
		return store.ErrUserEmailTaken
	}

	now := s.db.now()
	user.ID = s.db.id("users")
	user.CreatedAt = now
	user.UpdatedAt = now

	s.db.users[user.ID] = cloneUser(user)

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, id int64) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	user, exists := s.db.users[id]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	return cloneUser(user), nil
}

// List returns users of a unit, or all users when unitID is nil.
func (s *UserStore) List(ctx context.Context, unitID *int64) ([]*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var result []*models.User
	for _, user := range s.db.users {
		if unitID != nil && !equalUnit(user.UnitID, *unitID) {
			continue
		}
		result = append(result, cloneUser(user))
	}

	slices.SortFunc(result, func(a, b *models.User) int {
		return strings.Compare(a.Name, b.Name)
	})

	return result, nil
}

// Update updates an existing user.
func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, exists := s.db.users[user.ID]
	if !exists {
		return store.ErrUserNotFound
	}
	if s.emailTaken(user.Email, user.ID) {
		return store.ErrUserEmailTaken
	}

	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = s.db.now()
	s.db.users[user.ID] = cloneUser(user)

	return nil
}

func (s *UserStore) emailTaken(email string, exceptID int64) bool {
	if email == "" {
		return false
	}
	for _, u := range s.db.users {
		if strings.EqualFold(u.Email, email) && u.ID != exceptID {
			return true
		}
	}
	return false
}

func cloneUser(u *models.User) *models.User {
	clone := *u
	clone.UnitID = cloneInt64(u.UnitID)
	clone.LastSignedIn = cloneTime(u.LastSignedIn)
	return &clone
}
