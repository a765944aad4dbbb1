package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/userhub/userhub/internal/domain/user"
	"github.com/userhub/userhub/internal/security"
)

// UserStore is the slice of the repository the auth service needs.
type UserStore interface {
	Create(ctx context.Context, params user.CreateParams) (user.View, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type SignUpParams struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type SignInParams struct {
	Email    string
	Password string
}

type Auth struct {
	users UserStore
	log   *slog.Logger
}

func NewAuth(users UserStore, log *slog.Logger) *Auth {
	return &Auth{
		users: users,
		log:   log,
	}
}

// SignUp registers a new account. The email pre-check gives a friendly
// error on the common path; the unique index behind Create closes the race
// with a concurrent sign-up.
func (s *Auth) SignUp(ctx context.Context, params SignUpParams) (user.View, error) {
	_, err := s.users.GetByEmail(ctx, params.Email)

	if err == nil {
		return user.View{}, user.ErrEmailTaken
	}

	if !errors.Is(err, user.ErrNotFound) {
		return user.View{}, err
	}

	hash, err := security.HashPassword(params.Password)

	if err != nil {
		return user.View{}, err
	}

	role := params.Role

	if role == "" {
		role = user.RoleUser
	}

	v, err := s.users.Create(ctx, user.CreateParams{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
		Role:         role,
	})

	if err != nil {
		return user.View{}, err
	}

	s.log.InfoContext(ctx, "user registered", "user_id", v.ID, "email", v.Email)

	return v, nil
}

// SignIn returns the same ErrInvalidCredentials for an unknown email and a
// wrong password, so responses cannot be used to enumerate accounts.
func (s *Auth) SignIn(ctx context.Context, params SignInParams) (user.View, error) {
	u, err := s.users.GetByEmail(ctx, params.Email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.View{}, user.ErrInvalidCredentials
		}

		return user.View{}, err
	}

	err = security.CheckPassword(u.PasswordHash, params.Password)

	if err != nil {
		return user.View{}, user.ErrInvalidCredentials
	}

	s.log.InfoContext(ctx, "user signed in", "user_id", u.ID)

	return u.View(), nil
}
