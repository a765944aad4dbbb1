package user

import (
	"errors"
	"time"
)

// Typed error kinds so callers can discriminate with errors.Is instead of
// inspecting message text.
var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// View is the projected representation returned across the service
// boundary. It has no password field at all, so a projection can never
// leak the hash by accident.
type View struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) View() View {
	return View{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type CreateParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
}

// UpdateParams carries a partial update; nil fields are left untouched.
// Password arrives already hashed.
type UpdateParams struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *string
}

func (p UpdateParams) Empty() bool {
	return p.Name == nil && p.Email == nil && p.PasswordHash == nil && p.Role == nil
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
