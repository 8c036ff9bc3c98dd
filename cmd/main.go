package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	grpcctx "github.com/dtroode/tokenkeeper/internal/api/grpc/context"
	grpcrouter "github.com/dtroode/tokenkeeper/internal/api/grpc/router"
	grpcserver "github.com/dtroode/tokenkeeper/internal/api/grpc/server"
	"github.com/dtroode/tokenkeeper/internal/api/http/handler"
	httprouter "github.com/dtroode/tokenkeeper/internal/api/http/router"
	httpserver "github.com/dtroode/tokenkeeper/internal/api/http/server"
	"github.com/dtroode/tokenkeeper/internal/config"
	"github.com/dtroode/tokenkeeper/internal/identity"
	"github.com/dtroode/tokenkeeper/internal/limiter"
	"github.com/dtroode/tokenkeeper/internal/logger"
	"github.com/dtroode/tokenkeeper/internal/model"
	"github.com/dtroode/tokenkeeper/internal/repository/memory"
	"github.com/dtroode/tokenkeeper/internal/repository/postgres"
	redisrepo "github.com/dtroode/tokenkeeper/internal/repository/redis"
	"github.com/dtroode/tokenkeeper/internal/server"
	"github.com/dtroode/tokenkeeper/internal/service"
	"github.com/dtroode/tokenkeeper/internal/token"
)

const redisKeyPrefix = "tk"

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

// stores holds the selected backends and everything that must be closed on exit.
type stores struct {
	users   model.UserStore
	tokens  model.RefreshTokenStore
	limiter model.LoginLimiter
	health  map[string]handler.Pinger
	closers []io.Closer
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i].Close()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.LogFormat)

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer st.Close()

	codec := token.NewJWT(cfg.JWT.Secret)
	identityStore := identity.NewStore(st.users, cfg.Auth.BcryptCost)
	issuer := service.NewTokenIssuer(codec, st.tokens, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL, logger)
	rotator := service.NewTokenRotator(codec, st.tokens, identityStore, issuer, logger)
	authService := service.NewAuth(identityStore, st.tokens, codec, issuer, rotator, st.limiter, logger)

	grpcRouter := grpcrouter.New(authService, authService, grpcctx.NewManager(), logger)
	servers := []model.Server{
		grpcserver.NewGRPCServer(grpcRouter.Register(), fmt.Sprintf(":%s", cfg.GRPC.Port)),
		httpserver.NewHTTPServer(
			httprouter.New(authService, authService, st.health, cfg.HTTP.RequestTimeout, logger).Register(),
			fmt.Sprintf(":%s", cfg.HTTP.Port),
		),
	}

	var sl model.SecurityLayer
	if cfg.GRPC.EnableHTTPS {
		sl = server.NewTLSListener(cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")
	grpcRouter.SetServing(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// openStores picks the user store, refresh token store and login limiter from config.
// The memory backend keeps users in memory too, so it runs without any database.
func openStores(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*stores, error) {
	st := &stores{limiter: limiter.Noop{}, health: map[string]handler.Pinger{}}

	if cfg.Auth.RefreshStore == config.StoreMemory {
		logger.Warn("using in-memory stores, data is lost on restart")
		st.users = memory.NewUserStore()
		st.tokens = memory.NewRefreshTokenStore()
	} else {
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, db)
		st.health["postgres"] = db
		st.users = postgres.NewUserRepository(db)
		st.tokens = postgres.NewRefreshTokenRepository(db)
	}

	if cfg.Redis.Enabled {
		rdb, err := redisrepo.NewConnection(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			st.Close()
			return nil, err
		}
		st.closers = append(st.closers, rdb)
		st.health["redis"] = rdb
		st.limiter = limiter.NewLogin(rdb.Client, redisKeyPrefix, model.LoginThrottle{
			MaxAttempts: cfg.Auth.MaxLoginAttempts,
			Cooldown:    cfg.Auth.LoginCooldown,
		})
		if cfg.Auth.RefreshStore == config.StoreRedis {
			st.tokens = redisrepo.NewRefreshTokenStore(rdb.Client, redisKeyPrefix)
		}
	}

	return st, nil
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
