package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dtroode/tokenkeeper/internal/api/apierror"
	"github.com/dtroode/tokenkeeper/internal/api/http/middleware"
	"github.com/dtroode/tokenkeeper/internal/logger"
	"github.com/dtroode/tokenkeeper/internal/model"
)

// AuthService defines the operations exposed over HTTP.
type AuthService interface {
	Register(ctx context.Context, email, username, password string) model.AuthResult
	Login(ctx context.Context, email, password string) model.AuthResult
	Refresh(ctx context.Context, accessToken, refreshToken string) model.AuthResult
	Revoke(ctx context.Context, userID uuid.UUID, refreshToken string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
	Me(ctx context.Context, userID uuid.UUID) (model.User, error)
}

// ProfileResponse describes the authenticated user.
type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Auth exposes the auth endpoints.
type Auth struct {
	authService AuthService
	logger      *logger.Logger
}

// NewAuth constructs handler.
func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{authService: authService, logger: logger}
}

type validatable interface {
	Validate() error
}

// parse decodes the body into req and checks its shape.
func parse(c *fiber.Ctx, req validatable) bool {
	if err := c.BodyParser(req); err != nil {
		return false
	}
	return req.Validate() == nil
}

// Register handles POST /api/v1/auth/register.
func (h *Auth) Register(c *fiber.Ctx) error {
	var req model.RegisterRequest
	if !parse(c, &req) {
		return invalidPayload(c)
	}
	return writeResult(c, h.authService.Register(c.UserContext(), req.Email, req.Username, req.Password))
}

// Login handles POST /api/v1/auth/login.
func (h *Auth) Login(c *fiber.Ctx) error {
	var req model.LoginRequest
	if !parse(c, &req) {
		return invalidPayload(c)
	}
	return writeResult(c, h.authService.Login(c.UserContext(), req.Email, req.Password))
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *Auth) Refresh(c *fiber.Ctx) error {
	var req model.RefreshRequest
	if !parse(c, &req) {
		return invalidPayload(c)
	}
	return writeResult(c, h.authService.Refresh(c.UserContext(), req.Token, req.RefreshToken))
}

// Revoke handles POST /api/v1/auth/revoke.
func (h *Auth) Revoke(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromLocals(c)
	if !ok {
		return apierror.NewErrMissingAuthorizationToken()
	}

	var req model.RevokeRequest
	if !parse(c, &req) {
		return invalidPayload(c)
	}

	if err := h.authService.Revoke(c.UserContext(), userID, req.RefreshToken); err != nil {
		h.logger.Info("Auth HTTP handler: revoke failed",
			"user_id", userID,
			"error", err.Error())
		return err
	}

	return c.JSON(model.AuthResult{Success: true})
}

// RevokeAll handles POST /api/v1/auth/revoke-all.
func (h *Auth) RevokeAll(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromLocals(c)
	if !ok {
		return apierror.NewErrMissingAuthorizationToken()
	}

	if err := h.authService.RevokeAll(c.UserContext(), userID); err != nil {
		return err
	}

	return c.JSON(model.AuthResult{Success: true})
}

// Me handles GET /api/v1/auth/me.
func (h *Auth) Me(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromLocals(c)
	if !ok {
		return apierror.NewErrMissingAuthorizationToken()
	}

	user, err := h.authService.Me(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return c.JSON(ProfileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	})
}

func writeResult(c *fiber.Ctx, result model.AuthResult) error {
	if !result.Success {
		return c.Status(fiber.StatusBadRequest).JSON(result)
	}
	return c.JSON(result)
}

func invalidPayload(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(model.Failure(model.MsgInvalidPayload))
}
