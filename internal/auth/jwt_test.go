package auth_test

import (
	"testing"
	"time"

	"github.com/userhub/userhub/internal/auth"
)

func TestSignAndVerify(t *testing.T) {
	mgr := auth.NewManager("test-secret", time.Hour)

	token, err := mgr.Sign(42, "ada@example.com", "admin")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := mgr.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.UserID != 42 {
		t.Fatalf("got uid %d, want 42", claims.UserID)
	}
	if claims.Email != "ada@example.com" {
		t.Fatalf("got email %q", claims.Email)
	}
	if claims.Role != "admin" {
		t.Fatalf("got role %q", claims.Role)
	}
	if claims.Subject != "42" {
		t.Fatalf("got subject %q, want 42", claims.Subject)
	}
	if claims.JTI == "" {
		t.Fatal("expected a jti")
	}
}

func TestVerify_Expired(t *testing.T) {
	mgr := auth.NewManager("test-secret", -time.Minute)

	token, err := mgr.Sign(42, "ada@example.com", "user")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := mgr.Verify(token); err == nil {
		t.Fatal("expected an expired token to be rejected")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	mgr := auth.NewManager("test-secret", time.Hour)
	other := auth.NewManager("another-secret", time.Hour)

	token, err := mgr.Sign(42, "ada@example.com", "user")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Fatal("expected a token signed with a different secret to be rejected")
	}
}

func TestVerify_Garbage(t *testing.T) {
	mgr := auth.NewManager("test-secret", time.Hour)

	if _, err := mgr.Verify("not.a.token"); err == nil {
		t.Fatal("expected garbage input to be rejected")
	}
}
