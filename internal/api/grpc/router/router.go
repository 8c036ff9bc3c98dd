package router

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/tokenkeeper/internal/api/grpc/authv1"
	"github.com/dtroode/tokenkeeper/internal/api/grpc/handler"
	"github.com/dtroode/tokenkeeper/internal/api/grpc/middleware"
	"github.com/dtroode/tokenkeeper/internal/logger"
	"github.com/dtroode/tokenkeeper/internal/model"
)

// protectedMethods require a valid bearer access token.
var protectedMethods = map[string]struct{}{
	authv1.RevokeFullMethod:    {},
	authv1.RevokeAllFullMethod: {},
	authv1.MeFullMethod:        {},
}

// Router wires the Auth service, its interceptors and the health service.
type Router struct {
	authService    handler.AuthService
	tokenService   middleware.TokenService
	contextManager model.ContextManager
	health         *health.Server
	logger         *logger.Logger
}

// New creates new gRPC Router instance.
func New(
	authService handler.AuthService,
	tokenService middleware.TokenService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		tokenService:   tokenService,
		contextManager: contextManager,
		health:         health.NewServer(),
		logger:         logger,
	}
}

func requiresAuth(_ context.Context, c interceptors.CallMeta) bool {
	_, ok := protectedMethods[c.FullMethod()]
	return ok
}

// Register builds the gRPC server with recovery, logging and authentication
// interceptors, in that order.
func (r *Router) Register() *grpc.Server {
	recoverer := middleware.NewRecovery(r.logger)
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recovery.UnaryServerInterceptor(recoverer.Option()),
			logging.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresAuth),
			),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recoverer.Option()),
		),
	)

	authv1.RegisterAuthServer(s, handler.NewAuth(r.authService, r.contextManager, r.logger))
	healthpb.RegisterHealthServer(s, r.health)
	r.SetServing(true)

	return s
}

// SetServing flips the reported health of every service.
func (r *Router) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	r.health.SetServingStatus("", status)
	r.health.SetServingStatus(authv1.ServiceName, status)
}
