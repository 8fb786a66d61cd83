package repository

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/noah-isme/unischedule-api/internal/models"
)

// UserDirectory is the account lookup used by authentication. Emails are unique
// and compared case-insensitively.
type UserDirectory struct {
	mu    sync.RWMutex
	users []models.User
}

// NewUserDirectory creates a directory containing the given accounts.
func NewUserDirectory(users []models.User) *UserDirectory {
	return &UserDirectory{users: append([]models.User(nil), users...)}
}

// FindByEmail returns the account registered under email.
func (d *UserDirectory) FindByEmail(email string) (*models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	idx := d.indexOfEmail(email)
	if idx < 0 {
		return nil, ErrNotFound
	}
	u := d.users[idx]
	return &u, nil
}

// FindByID returns the account with the given id.
func (d *UserDirectory) FindByID(id string) (*models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	idx := d.indexOfID(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	u := d.users[idx]
	return &u, nil
}

// Len reports the number of accounts.
func (d *UserDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}

// Create adds an account. The id and email must both be unused.
func (d *UserDirectory) Create(u *models.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.indexOfEmail(u.Email) >= 0 || d.indexOfID(u.ID) >= 0 {
		return ErrDuplicate
	}
	d.users = append(d.users, *u)
	return nil
}

// Update applies fn to a copy of the account and commits it when fn succeeds and
// the resulting email stays unique.
func (d *UserDirectory) Update(id string, fn func(*models.User) error) (*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := d.indexOfID(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	candidate := d.users[idx]
	if err := fn(&candidate); err != nil {
		return nil, err
	}
	if other := d.indexOfEmail(candidate.Email); other >= 0 && other != idx {
		return nil, ErrDuplicate
	}
	candidate.ID = id
	d.users[idx] = candidate
	return &candidate, nil
}

// MarshalState serialises the directory for persistence.
func (d *UserDirectory) MarshalState() ([]byte, error) {
	d.mu.RLock()
	state := models.AuthState{Users: append([]models.User(nil), d.users...)}
	d.mu.RUnlock()
	return json.Marshal(state)
}

// UnmarshalState merges persisted accounts into the directory. Persisted entries
// replace entries with the same id; built-in accounts absent from the blob are kept.
func (d *UserDirectory) UnmarshalState(raw []byte) error {
	var state models.AuthState
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("decode auth state: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range state.Users {
		if idx := d.indexOfID(u.ID); idx >= 0 {
			d.users[idx] = u
			continue
		}
		d.users = append(d.users, u)
	}
	return nil
}

func (d *UserDirectory) indexOfEmail(email string) int {
	for i := range d.users {
		if strings.EqualFold(d.users[i].Email, email) {
			return i
		}
	}
	return -1
}

func (d *UserDirectory) indexOfID(id string) int {
	for i := range d.users {
		if d.users[i].ID == id {
			return i
		}
	}
	return -1
}
