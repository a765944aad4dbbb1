package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/userhub/userhub/internal/config"
	"github.com/userhub/userhub/internal/domain/user"
	"github.com/userhub/userhub/internal/http/middlewares"
	"github.com/userhub/userhub/internal/security"
)

// UserStore is the slice of the users repository the handlers need.
type UserStore interface {
	List(ctx context.Context) ([]user.View, error)
	GetByID(ctx context.Context, id int64) (user.View, error)
	Update(ctx context.Context, id int64, params user.UpdateParams) (user.View, error)
	Delete(ctx context.Context, id int64) error
}

type UsersHandler struct {
	users UserStore
	log   *slog.Logger
}

func NewUsersHandler(users UserStore, log *slog.Logger) *UsersHandler {
	return &UsersHandler{users: users, log: log}
}

type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=2,max=255"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Password *string `json:"password" binding:"omitempty,min=6,max=128"`
	Role     *string `json:"role" binding:"omitempty,oneof=user admin"`
}

func (h *UsersHandler) List(ctx *gin.Context) {
	dbCtx, cancel := config.WithTimeout(ctx.Request.Context())
	defer cancel()

	users, err := h.users.List(dbCtx)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list users failed", slog.Any("err", err))
		RespondInternal(ctx, "Could not fetch users")

		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"message": "Users fetched successfully",
		"users":   users,
		"count":   len(users),
	})
}

func (h *UsersHandler) GetByID(ctx *gin.Context) {
	id, ok := parseUserID(ctx)
	if !ok {
		return
	}

	dbCtx, cancel := config.WithTimeout(ctx.Request.Context())
	defer cancel()

	view, err := h.users.GetByID(dbCtx, id)

	switch {
	case errors.Is(err, user.ErrNotFound):
		respondUserNotFound(ctx, id)
	case err != nil:
		h.log.ErrorContext(ctx.Request.Context(), "get user failed", slog.Int64("user_id", id), slog.Any("err", err))
		RespondInternal(ctx, "Could not fetch user")
	default:
		RespondJSONWithETag(ctx, http.StatusOK, gin.H{
			"message": "User fetched successfully",
			"user":    view,
		})
	}
}

func (h *UsersHandler) Update(ctx *gin.Context) {
	id, ok := parseUserID(ctx)
	if !ok {
		return
	}

	var req UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	params := user.UpdateParams{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}

	if params.Empty() && req.Password == nil {
		RespondValidation(ctx, gin.H{"body": "at least one field must be provided"})

		return
	}

	actorID, actorRole, ok := requireActor(ctx)
	if !ok {
		return
	}

	if actorRole != user.RoleAdmin && actorID != id {
		RespondForbidden(ctx, "You can only update your own information")

		return
	}

	if req.Role != nil && actorRole != user.RoleAdmin {
		RespondForbidden(ctx, "Only administrators can change user roles")

		return
	}

	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)
		if err != nil {
			h.log.ErrorContext(ctx.Request.Context(), "password hash failed", slog.Any("err", err))
			RespondInternal(ctx, "Could not update user")

			return
		}

		params.PasswordHash = &hash
	}

	dbCtx, cancel := config.WithTimeout(ctx.Request.Context())
	defer cancel()

	view, err := h.users.Update(dbCtx, id, params)

	switch {
	case errors.Is(err, user.ErrNotFound):
		respondUserNotFound(ctx, id)
	case errors.Is(err, user.ErrEmailTaken):
		RespondBadRequest(ctx, "Email already exists", "A user with this email already exists")
	case err != nil:
		h.log.ErrorContext(ctx.Request.Context(), "update user failed", slog.Int64("user_id", id), slog.Any("err", err))
		RespondInternal(ctx, "Could not update user")
	default:
		h.log.InfoContext(ctx.Request.Context(), "user updated",
			slog.Int64("user_id", id),
			slog.Int64("actor_id", actorID),
		)
		ctx.JSON(http.StatusOK, gin.H{
			"message": "User updated successfully",
			"user":    view,
		})
	}
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	id, ok := parseUserID(ctx)
	if !ok {
		return
	}

	actorID, actorRole, ok := requireActor(ctx)
	if !ok {
		return
	}

	if actorRole != user.RoleAdmin && actorID != id {
		RespondForbidden(ctx, "You can only delete your own account")

		return
	}

	dbCtx, cancel := config.WithTimeout(ctx.Request.Context())
	defer cancel()

	err := h.users.Delete(dbCtx, id)

	switch {
	case errors.Is(err, user.ErrNotFound):
		respondUserNotFound(ctx, id)
	case err != nil:
		h.log.ErrorContext(ctx.Request.Context(), "delete user failed", slog.Int64("user_id", id), slog.Any("err", err))
		RespondInternal(ctx, "Could not delete user")
	default:
		h.log.InfoContext(ctx.Request.Context(), "user deleted",
			slog.Int64("user_id", id),
			slog.Int64("actor_id", actorID),
		)
		ctx.JSON(http.StatusOK, gin.H{
			"message":       "User deleted successfully",
			"deletedUserId": id,
		})
	}
}

func parseUserID(ctx *gin.Context) (int64, bool) {
	raw := ctx.Param("id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		RespondValidation(ctx, gin.H{"fields": []FieldError{
			{Field: "id", Rule: "number", Message: "must be a positive integer"},
		}})

		return 0, false
	}

	return id, true
}

func requireActor(ctx *gin.Context) (int64, string, bool) {
	actorID, ok := middlewares.ActorIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Unauthorized", "Authentication required")

		return 0, "", false
	}

	actorRole, _ := middlewares.ActorRoleFromContext(ctx)

	return actorID, actorRole, true
}

func respondUserNotFound(ctx *gin.Context, id int64) {
	RespondNotFound(ctx, "User not found", fmt.Sprintf("User with ID %d not found", id))
}
