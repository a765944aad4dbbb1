package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/userhub/userhub/internal/domain/user"
)

// UsersRepo is an in-memory stand-in for the Postgres repository, used in
// tests. It honors the same typed error contract.
type UsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		nextID: 1,
		users:  make(map[int64]user.User),
	}
}

func (r *UsersRepo) Create(_ context.Context, params user.CreateParams) (user.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == params.Email {
			return user.View{}, user.ErrEmailTaken
		}
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           r.nextID,
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.nextID++
	r.users[u.ID] = u

	return u.View(), nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.View, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]

	if !ok {
		return user.View{}, user.ErrNotFound
	}

	return u.View(), nil
}

func (r *UsersRepo) List(_ context.Context) ([]user.View, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.View, 0, len(r.users))

	for _, u := range r.users {
		out = append(out, u.View())
	}

	// id order, like the SQL repository
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *UsersRepo) Update(_ context.Context, id int64, params user.UpdateParams) (user.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]

	if !ok {
		return user.View{}, user.ErrNotFound
	}

	if params.Email != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Email == *params.Email {
				return user.View{}, user.ErrEmailTaken
			}
		}
		u.Email = *params.Email
	}

	if params.Name != nil {
		u.Name = *params.Name
	}

	if params.PasswordHash != nil {
		u.PasswordHash = *params.PasswordHash
	}

	if params.Role != nil {
		u.Role = *params.Role
	}

	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u

	return u.View(), nil
}

func (r *UsersRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.users[id]

	if !ok {
		return user.ErrNotFound
	}

	delete(r.users, id)

	return nil
}
