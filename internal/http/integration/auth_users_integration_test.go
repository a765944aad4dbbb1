package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/userhub/userhub/internal/config"
	"github.com/userhub/userhub/internal/db"
	apphttp "github.com/userhub/userhub/internal/http"
)

func testConfig() config.Config {
	return config.Config{
		Env:         "test",
		Port:        0,
		JWTSecret:   "test-secret-key",
		JWTTTLHours: 1,
		ServiceName: "userhub-test",
	}
}

func setupTestRouter(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping database integration test")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to create pgx pool: %v", err)
	}

	t.Cleanup(pool.Close)

	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return apphttp.NewRouter(testConfig(), logger, pool), pool
}

func resetDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), `TRUNCATE users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

func doRequest(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

type authResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func signUp(t *testing.T, router http.Handler, name, email, password string) authResponse {
	t.Helper()

	body := `{"name": "` + name + `", "email": "` + email + `", "password": "` + password + `"}`
	w := doRequest(router, http.MethodPost, "/auth/sign-up", body, "")

	if w.Code != http.StatusCreated {
		t.Fatalf("sign up got %d, body=%s", w.Code, w.Body.String())
	}

	var resp authResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal sign-up response: %v", err)
	}

	return resp
}

func TestSignUpSignInFlow(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)

	created := signUp(t, router, "Ada Lovelace", "ada@example.com", "s3cret!")

	if created.User.ID == 0 {
		t.Fatal("expected an assigned id")
	}
	if created.User.Role != "user" {
		t.Fatalf("got role %q, want user", created.User.Role)
	}
	if created.Token == "" {
		t.Fatal("expected a token on sign-up")
	}

	// duplicate sign-up is rejected
	w := doRequest(router, http.MethodPost, "/auth/sign-up",
		`{"name": "Ada Again", "email": "ada@example.com", "password": "s3cret!"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate sign up got %d, body=%s", w.Code, w.Body.String())
	}

	// sign in with the right password
	w = doRequest(router, http.MethodPost, "/auth/sign-in",
		`{"email": "ada@example.com", "password": "s3cret!"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("sign in got %d, body=%s", w.Code, w.Body.String())
	}

	// and with the wrong one
	w = doRequest(router, http.MethodPost, "/auth/sign-in",
		`{"email": "ada@example.com", "password": "wrong"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad sign in got %d, body=%s", w.Code, w.Body.String())
	}
}

func TestUsersCRUDFlow(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)

	ada := signUp(t, router, "Ada Lovelace", "ada@example.com", "s3cret!")
	bob := signUp(t, router, "Bob", "bob@example.com", "s3cret!")

	// listing requires a token
	w := doRequest(router, http.MethodGet, "/users", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list got %d", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/users", "", ada.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("list got %d, body=%s", w.Code, w.Body.String())
	}

	var listResp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("failed to unmarshal list response: %v", err)
	}
	if listResp.Count != 2 {
		t.Fatalf("got count %d, want 2", listResp.Count)
	}

	// users can update themselves but not each other
	w = doRequest(router, http.MethodPut, "/users/1", `{"name": "Ada L."}`, ada.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("self update got %d, body=%s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodPut, "/users/2", `{"name": "Hijacked"}`, ada.Token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("cross-user update got %d, body=%s", w.Code, w.Body.String())
	}

	// role changes are admin-only
	w = doRequest(router, http.MethodPut, "/users/1", `{"role": "admin"}`, ada.Token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("self role change got %d, body=%s", w.Code, w.Body.String())
	}

	// delete own account, then the row is gone
	w = doRequest(router, http.MethodDelete, "/users/2", "", bob.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("self delete got %d, body=%s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodGet, "/users/2", "", ada.Token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get deleted user got %d, body=%s", w.Code, w.Body.String())
	}

	var notFound struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &notFound); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if notFound.Error != "User not found" || notFound.Message != "User with ID 2 not found" {
		t.Fatalf("unexpected not-found body: %s", w.Body.String())
	}
}

func TestUpdateDuplicateEmail(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)

	signUp(t, router, "Ada Lovelace", "ada@example.com", "s3cret!")
	bob := signUp(t, router, "Bob", "bob@example.com", "s3cret!")

	w := doRequest(router, http.MethodPut, "/users/2", `{"email": "ada@example.com"}`, bob.Token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate email update got %d, body=%s", w.Code, w.Body.String())
	}
}
