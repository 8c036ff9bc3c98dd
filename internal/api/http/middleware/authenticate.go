package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dtroode/tokenkeeper/internal/api/apierror"
	grpcmiddleware "github.com/dtroode/tokenkeeper/internal/api/grpc/middleware"
	"github.com/dtroode/tokenkeeper/internal/logger"
)

const userIDKey = "auth_user_id"

// TokenService resolves the owner of an access token.
type TokenService interface {
	GetUserID(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticate validates bearer tokens on protected routes.
type Authenticate struct {
	tokenService TokenService
	logger       *logger.Logger
}

// NewAuthenticate constructs middleware.
func NewAuthenticate(tokenService TokenService, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, logger: logger}
}

// Handle stores the token owner's ID in the request locals.
func (m *Authenticate) Handle(c *fiber.Ctx) error {
	tokenString := grpcmiddleware.BearerToken(c.Get(fiber.HeaderAuthorization))
	if tokenString == "" {
		return apierror.NewErrMissingAuthorizationToken()
	}

	userID, err := m.tokenService.GetUserID(c.UserContext(), tokenString)
	if err != nil || userID == uuid.Nil {
		if err != nil {
			m.logger.Debug("Authenticate middleware: token rejected",
				"error", err.Error())
		}
		return apierror.NewErrInvalidAuthorizationToken()
	}

	c.Locals(userIDKey, userID)
	return c.Next()
}

// UserIDFromLocals returns the ID stored by Handle.
func UserIDFromLocals(c *fiber.Ctx) (uuid.UUID, bool) {
	userID, ok := c.Locals(userIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}
