// api/handlers/auth_handlers.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/api/apperr"
	"storefront/api/mailer"
	"storefront/api/middleware"
	"storefront/api/models"
	"storefront/api/utils"
)

const forgotPasswordReply = "If this email is registered, you will receive an OTP"

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByIdentifier(ctx context.Context, email, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error)
}

type OTPStore interface {
	UpsertOTP(ctx context.Context, otp models.OTP) error
	GetOTP(ctx context.Context, email string) (*models.OTP, error)
	DeleteOTP(ctx context.Context, email string) error
}

type TokenStore interface {
	BlacklistToken(ctx context.Context, token string, expiresAt time.Time) error
}

type TokenIssuer interface {
	GenerateJWT(user *models.User) (string, error)
	ValidateJWT(token string) (*utils.Claims, error)
	ExpiresAt(claims *utils.Claims) time.Time
}

type AuthHandlers struct {
	users  UserStore
	otps   OTPStore
	tokens TokenStore
	issuer TokenIssuer
	mail   mailer.Mailer
	otpTTL time.Duration
	log    *zap.Logger
}

func NewAuthHandlers(users UserStore, otps OTPStore, tokens TokenStore, issuer TokenIssuer, mail mailer.Mailer, otpTTL time.Duration, log *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		users:  users,
		otps:   otps,
		tokens: tokens,
		issuer: issuer,
		mail:   mail,
		otpTTL: otpTTL,
		log:    log,
	}
}

func (h *AuthHandlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := bindRequired(c, &req, "All fields required"); err != nil {
		respondError(c, h.log, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, h.log, apperr.Internal("Failed to process password", err))
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), &models.User{
		Name:           req.Name,
		Email:          utils.NormalizeEmail(req.Email),
		Username:       req.Username,
		Role:           models.RoleAdmin,
		HashedPassword: hashedPassword,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered",
		"user": gin.H{
			"id":       user.ID,
			"name":     user.Name,
			"email":    user.Email,
			"username": user.Username,
		},
	})
}

// Login accepts either the email or the username as identifier.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := bindRequired(c, &req, "Identifier and password required"); err != nil {
		respondError(c, h.log, err)
		return
	}

	user, err := h.users.GetUserByIdentifier(c.Request.Context(), utils.NormalizeEmail(req.Identifier), req.Identifier)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			err = apperr.Validation("Invalid credentials")
		}
		respondError(c, h.log, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(req.Password)); err != nil {
		respondError(c, h.log, apperr.Validation("Invalid credentials"))
		return
	}

	token, err := h.issuer.GenerateJWT(user)
	if err != nil {
		respondError(c, h.log, apperr.Internal("Failed to generate authentication token", err))
		return
	}

	h.log.Info("User logged in", zap.Int64("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// ForgotPassword answers the same way whether or not the email is known.
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := bindRequired(c, &req, "Email required"); err != nil {
		respondError(c, h.log, err)
		return
	}
	ctx := c.Request.Context()
	email := utils.NormalizeEmail(req.Email)

	if _, err := h.users.GetUserByEmail(ctx, email); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			c.JSON(http.StatusOK, gin.H{"message": forgotPasswordReply})
			return
		}
		respondError(c, h.log, err)
		return
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		respondError(c, h.log, apperr.Internal("Failed to generate OTP", err))
		return
	}
	err = h.otps.UpsertOTP(ctx, models.OTP{Email: email, Code: code, ExpiresAt: time.Now().Add(h.otpTTL)})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	msg, err := mailer.OTPMail(email, code, h.otpTTL)
	if err == nil {
		err = h.mail.Send(ctx, msg)
	}
	if err != nil {
		h.log.Error("Failed to send OTP mail", zap.String("email", email), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"message": forgotPasswordReply})
}

// checkOTP distinguishes an absent or expired code from a wrong one.
func (h *AuthHandlers) checkOTP(ctx context.Context, email, code string) error {
	record, err := h.otps.GetOTP(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.Validation("Invalid or expired OTP")
		}
		return err
	}
	if record.Code != code {
		return apperr.Validation("Invalid OTP")
	}
	return nil
}

func (h *AuthHandlers) ValidateOTP(c *gin.Context) {
	var req models.ValidateOTPRequest
	if err := bindRequired(c, &req, "Email and OTP required"); err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.checkOTP(c.Request.Context(), utils.NormalizeEmail(req.Email), req.OTP); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP valid"})
}

func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := bindRequired(c, &req, "Email, OTP and new password required"); err != nil {
		respondError(c, h.log, err)
		return
	}
	ctx := c.Request.Context()
	email := utils.NormalizeEmail(req.Email)

	if err := h.checkOTP(ctx, email, req.OTP); err != nil {
		respondError(c, h.log, err)
		return
	}

	user, err := h.users.GetUserByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			err = apperr.Validation("User not found")
		}
		respondError(c, h.log, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, h.log, apperr.Internal("Failed to process password", err))
		return
	}
	if _, err := h.users.UpdateUser(ctx, user.ID, models.UserUpdate{HashedPassword: hashed}); err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.otps.DeleteOTP(ctx, email); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

// Logout blacklists the presented token until it would have expired anyway.
func (h *AuthHandlers) Logout(c *gin.Context) {
	token := c.GetString(middleware.ContextToken)

	claims, _ := h.issuer.ValidateJWT(token)
	if err := h.tokens.BlacklistToken(c.Request.Context(), token, h.issuer.ExpiresAt(claims)); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
