package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/api/apperr"
	"storefront/api/middleware"
	"storefront/api/models"
	"storefront/api/utils"
)

type UserHandlers struct {
	users UserStore
	log   *zap.Logger
}

func NewUserHandlers(users UserStore, log *zap.Logger) *UserHandlers {
	return &UserHandlers{users: users, log: log}
}

func requireAdmin(c *gin.Context) error {
	if user := middleware.CurrentUser(c); user == nil || user.Role != models.RoleAdmin {
		return apperr.Forbidden("Forbidden")
	}
	return nil
}

// normalizeUpdate drops empty fields, lowercases the email and hashes the
// password.
func normalizeUpdate(u *models.UserUpdate) error {
	for _, f := range []**string{&u.Name, &u.Email, &u.Username, &u.Password, &u.Role} {
		if *f != nil && **f == "" {
			*f = nil
		}
	}
	if u.Email != nil {
		email := utils.NormalizeEmail(*u.Email)
		u.Email = &email
	}
	if u.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*u.Password), bcrypt.DefaultCost)
		if err != nil {
			return apperr.Internal("Failed to process password", err)
		}
		u.HashedPassword = hashed
		u.Password = nil
	}
	return nil
}

func (h *UserHandlers) ListUsers(c *gin.Context) {
	if err := requireAdmin(c); err != nil {
		respondError(c, h.log, err)
		return
	}

	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandlers) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

func (h *UserHandlers) UpdateProfile(c *gin.Context) {
	var update models.UserUpdate
	if err := bindJSON(c, &update); err != nil {
		respondError(c, h.log, err)
		return
	}
	// role changes go through the admin endpoint
	update.Role = nil
	if err := normalizeUpdate(&update); err != nil {
		respondError(c, h.log, err)
		return
	}

	ctx := c.Request.Context()
	current := middleware.CurrentUser(c)

	if update.Email != nil && *update.Email != current.Email {
		if _, err := h.users.GetUserByEmail(ctx, *update.Email); err == nil {
			respondError(c, h.log, apperr.Validation("Email already in use"))
			return
		} else if !apperr.Is(err, apperr.KindNotFound) {
			respondError(c, h.log, err)
			return
		}
	}
	if update.Username != nil && *update.Username != current.Username {
		if _, err := h.users.GetUserByIdentifier(ctx, "", *update.Username); err == nil {
			respondError(c, h.log, apperr.Validation("Username already in use"))
			return
		} else if !apperr.Is(err, apperr.KindNotFound) {
			respondError(c, h.log, err)
			return
		}
	}

	user, err := h.users.UpdateUser(ctx, current.ID, update)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}

func (h *UserHandlers) UpdateUser(c *gin.Context) {
	if err := requireAdmin(c); err != nil {
		respondError(c, h.log, err)
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.log, apperr.NotFound("User not found"))
		return
	}

	var update models.UserUpdate
	if err := bindJSON(c, &update); err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := normalizeUpdate(&update); err != nil {
		respondError(c, h.log, err)
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), id, update)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated", "user": user})
}
