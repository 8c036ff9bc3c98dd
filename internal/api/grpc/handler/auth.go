package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/dtroode/tokenkeeper/internal/api/apierror"
	"github.com/dtroode/tokenkeeper/internal/api/grpc/authv1"
	"github.com/dtroode/tokenkeeper/internal/logger"
	"github.com/dtroode/tokenkeeper/internal/model"
)

// AuthService defines the operations exposed over gRPC.
type AuthService interface {
	Register(ctx context.Context, email, username, password string) model.AuthResult
	Login(ctx context.Context, email, password string) model.AuthResult
	Refresh(ctx context.Context, accessToken, refreshToken string) model.AuthResult
	Revoke(ctx context.Context, userID uuid.UUID, refreshToken string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
	Me(ctx context.Context, userID uuid.UUID) (model.User, error)
}

var _ authv1.AuthServer = (*Auth)(nil)

// Auth handles gRPC endpoints for authentication.
// Register, Login and Refresh report failures inside the AuthResult.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

func (h *Auth) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResult, error) {
	h.logger.Debug("Auth handler: processing register request",
		"email", req.Email)

	if err := req.Validate(); err != nil {
		return invalidPayload(), nil
	}

	result := h.authService.Register(ctx, req.Email, req.Username, req.Password)
	return &result, nil
}

func (h *Auth) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResult, error) {
	h.logger.Debug("Auth handler: processing login request",
		"email", req.Email)

	if err := req.Validate(); err != nil {
		return invalidPayload(), nil
	}

	result := h.authService.Login(ctx, req.Email, req.Password)
	return &result, nil
}

func (h *Auth) Refresh(ctx context.Context, req *model.RefreshRequest) (*model.AuthResult, error) {
	h.logger.Debug("Auth handler: processing refresh request")

	if err := req.Validate(); err != nil {
		return invalidPayload(), nil
	}

	result := h.authService.Refresh(ctx, req.Token, req.RefreshToken)
	return &result, nil
}

func (h *Auth) Revoke(ctx context.Context, req *model.RevokeRequest) (*authv1.Empty, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, handleError(apierror.NewErrMissingAuthorizationToken())
	}

	if err := req.Validate(); err != nil {
		return nil, handleError(err)
	}

	if err := h.authService.Revoke(ctx, userID, req.RefreshToken); err != nil {
		h.logger.Info("Auth handler: revoke failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return &authv1.Empty{}, nil
}

func (h *Auth) RevokeAll(ctx context.Context, _ *authv1.Empty) (*authv1.Empty, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, handleError(apierror.NewErrMissingAuthorizationToken())
	}

	if err := h.authService.RevokeAll(ctx, userID); err != nil {
		h.logger.Error("Auth handler: revoke all failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return &authv1.Empty{}, nil
}

func (h *Auth) Me(ctx context.Context, _ *authv1.Empty) (*authv1.Profile, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, handleError(apierror.NewErrMissingAuthorizationToken())
	}

	user, err := h.authService.Me(ctx, userID)
	if err != nil {
		return nil, handleError(err)
	}

	return &authv1.Profile{
		ID:        user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}, nil
}

func invalidPayload() *model.AuthResult {
	result := model.Failure(model.MsgInvalidPayload)
	return &result
}
