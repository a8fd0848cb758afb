package user

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kislikjeka/finpanel/pkg/config"
)

// MemoryRepository is a Repository backed by the YAML user directory
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewMemoryRepository creates a repository holding the given users
func NewMemoryRepository(users ...*User) *MemoryRepository {
	r := &MemoryRepository{users: make(map[string]*User, len(users))}
	for _, u := range users {
		r.users[strings.ToLower(u.Email)] = u
	}
	return r
}

// NewRepositoryFromConfig builds a repository from the users config file.
// Entries without an id get a deterministic one derived from the email.
func NewRepositoryFromConfig(cfg *config.UsersConfig) (*MemoryRepository, error) {
	users := make([]*User, 0, len(cfg.Users))
	for _, entry := range cfg.Users {
		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(entry.Email)))
		if entry.ID != "" {
			parsed, err := uuid.Parse(entry.ID)
			if err != nil {
				return nil, fmt.Errorf("invalid id for user %s: %w", entry.Email, err)
			}
			id = parsed
		}
		users = append(users, &User{
			ID:           id,
			Email:        entry.Email,
			PasswordHash: entry.PasswordHash,
		})
	}
	return NewMemoryRepository(users...), nil
}

// GetByEmail returns a copy of the stored user
func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// TouchLogin records the last login time
func (r *MemoryRepository) TouchLogin(_ context.Context, email string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return ErrUserNotFound
	}
	u.UpdateLastLogin(at)
	return nil
}
