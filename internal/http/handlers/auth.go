package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/userhub/userhub/internal/auth"
	"github.com/userhub/userhub/internal/config"
	"github.com/userhub/userhub/internal/domain/user"
	"github.com/userhub/userhub/internal/service"
)

// AuthService is what the handlers need from the auth use-cases.
type AuthService interface {
	SignUp(ctx context.Context, params service.SignUpParams) (user.View, error)
	SignIn(ctx context.Context, params service.SignInParams) (user.View, error)
}

// TokenSigner issues a signed token for an authenticated user.
type TokenSigner interface {
	Sign(userID int64, email, role string) (string, error)
}

type AuthHandler struct {
	svc     AuthService
	jwt     TokenSigner
	cookies auth.CookieJar
	log     *slog.Logger
}

func NewAuthHandler(svc AuthService, jwt TokenSigner, cookies auth.CookieJar, log *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, jwt: jwt, cookies: cookies, log: log}
}

type SignUpRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Role     string `json:"role" binding:"omitempty,oneof=user admin"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	dbCtx, cancel := config.WithTimeout(ctx.Request.Context())
	defer cancel()

	view, err := h.svc.SignUp(dbCtx, service.SignUpParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})

	switch {
	case errors.Is(err, user.ErrEmailTaken):
		RespondBadRequest(ctx, "Email already exists", "A user with this email already exists")

		return
	case err != nil:
		h.log.ErrorContext(ctx.Request.Context(), "sign up failed", slog.Any("err", err))
		RespondInternal(ctx, "Could not create user")

		return
	}

	token, err := h.jwt.Sign(view.ID, view.Email, view.Role)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "token signing failed", slog.Any("err", err))
		RespondInternal(ctx, "Could not create user")

		return
	}

	h.cookies.Set(ctx, token)

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    view,
		"token":   token,
	})
}

func (h *AuthHandler) SignIn(ctx *gin.Context) {
	var req SignInRequest

	if !BindJSON(ctx, &req) {
		return
	}

	dbCtx, cancel := config.WithTimeout(ctx.Request.Context())
	defer cancel()

	view, err := h.svc.SignIn(dbCtx, service.SignInParams{
		Email:    req.Email,
		Password: req.Password,
	})

	// Unknown email and wrong password take the same path out so the
	// response cannot be used to probe which emails exist.
	switch {
	case errors.Is(err, user.ErrInvalidCredentials):
		RespondUnauthorized(ctx, "Invalid credentials", "Email or password is incorrect")

		return
	case err != nil:
		h.log.ErrorContext(ctx.Request.Context(), "sign in failed", slog.Any("err", err))
		RespondInternal(ctx, "Could not sign in")

		return
	}

	token, err := h.jwt.Sign(view.ID, view.Email, view.Role)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "token signing failed", slog.Any("err", err))
		RespondInternal(ctx, "Could not sign in")

		return
	}

	h.cookies.Set(ctx, token)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Signed in successfully",
		"user":    view,
		"token":   token,
	})
}

func (h *AuthHandler) SignOut(ctx *gin.Context) {
	h.cookies.Clear(ctx)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Signed out successfully",
	})
}
