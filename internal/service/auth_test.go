package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/userhub/userhub/internal/domain/user"
	"github.com/userhub/userhub/internal/repo/memory"
	"github.com/userhub/userhub/internal/service"
)

func newAuth() (*service.Auth, *memory.UsersRepo) {
	repo := memory.NewUsersRepo()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return service.NewAuth(repo, log), repo
}

func TestSignUp(t *testing.T) {
	svc, _ := newAuth()
	ctx := context.Background()

	v, err := svc.SignUp(ctx, service.SignUpParams{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "s3cret!",
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if v.ID == 0 {
		t.Fatal("expected an assigned id")
	}

	if v.Role != user.RoleUser {
		t.Fatalf("got role %q, want default %q", v.Role, user.RoleUser)
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc, _ := newAuth()
	ctx := context.Background()

	params := service.SignUpParams{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "s3cret!",
	}

	if _, err := svc.SignUp(ctx, params); err != nil {
		t.Fatalf("first sign up: %v", err)
	}

	_, err := svc.SignUp(ctx, params)

	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}
}

func TestSignUp_StoresHashNotPlaintext(t *testing.T) {
	svc, repo := newAuth()
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, service.SignUpParams{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "s3cret!",
	}); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	stored, err := repo.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}

	if stored.PasswordHash == "" || stored.PasswordHash == "s3cret!" {
		t.Fatalf("password must be stored hashed, got %q", stored.PasswordHash)
	}
}

func TestSignIn(t *testing.T) {
	svc, _ := newAuth()
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, service.SignUpParams{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "s3cret!",
	}); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	v, err := svc.SignIn(ctx, service.SignInParams{
		Email:    "ada@example.com",
		Password: "s3cret!",
	})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	if v.Email != "ada@example.com" {
		t.Fatalf("got email %q", v.Email)
	}
}

// Unknown email and wrong password must be indistinguishable to the caller.
func TestSignIn_InvalidCredentials(t *testing.T) {
	svc, _ := newAuth()
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, service.SignUpParams{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "s3cret!",
	}); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	tests := []struct {
		name   string
		params service.SignInParams
	}{
		{
			name:   "unknown_email",
			params: service.SignInParams{Email: "nobody@example.com", Password: "s3cret!"},
		},
		{
			name:   "wrong_password",
			params: service.SignInParams{Email: "ada@example.com", Password: "wrong"},
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignIn(ctx, tt.params)

			if !errors.Is(err, user.ErrInvalidCredentials) {
				t.Fatalf("got %v, want ErrInvalidCredentials", err)
			}
		})
	}
}
