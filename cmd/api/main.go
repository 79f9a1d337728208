// @title           Identity API
// @version         1.0
// @description     User, role and permission management with a superadmin policy.
// @BasePath        /
//
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/99minutos/identity-api/internal/api"
	"github.com/99minutos/identity-api/internal/core/ports"
	"github.com/99minutos/identity-api/internal/core/service"
	"github.com/99minutos/identity-api/internal/infrastructure/db/memory"
	mongodb "github.com/99minutos/identity-api/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/identity-api/internal/infrastructure/db/redis"
	"github.com/99minutos/identity-api/internal/pkg/config"
	"github.com/99minutos/identity-api/pkg/logger"
)

// storage is the set of backends the services are built on.
type storage struct {
	users       ports.UserRepository
	roles       ports.RoleRepository
	permissions ports.PermissionRepository
	tokens      ports.TokenStore

	mongoClient *mongo.Client
	mongoDB     *mongo.Database
	redis       *redis.Client
}

func (s *storage) close(ctx context.Context, log zerolog.Logger) {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}
	if s.mongoClient != nil {
		if err := s.mongoClient.Disconnect(ctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}
}

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "identity-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("storage unavailable")
	}

	resolver := service.NewPermissionResolver(store.roles)
	policy := service.NewPolicy(store.roles)
	assignments := service.NewAssignmentService(store.users, store.roles, store.permissions, log)
	userService := service.NewUserService(store.users, policy, assignments, log)
	roleService := service.NewRoleService(store.roles, policy, assignments, log)
	authService := service.NewAuthService(store.users, resolver, store.tokens, cfg.JWTSecret, cfg.TokenTTL, log)

	err = service.NewBootstrapper(store.users, store.roles, store.permissions, log).Run(ctx, service.SuperAdminAccount{
		Name:     cfg.SuperAdmin.Name,
		Email:    cfg.SuperAdmin.Email,
		Password: cfg.SuperAdmin.Password,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap failed")
	}

	e := api.NewRouter(api.Deps{
		Auth:       authService,
		Users:      userService,
		Roles:      roleService,
		Policy:     policy,
		Mongo:      store.mongoDB,
		Redis:      store.redis,
		Logger:     log,
		LoginRate:  rate.Limit(cfg.LoginRateLimit),
		LoginBurst: cfg.LoginBurst,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		defer store.close(shutdownCtx, log)
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		mem := memory.NewStore()
		return &storage{
			users:       mem.Users(),
			roles:       mem.Roles(),
			permissions: mem.Permissions(),
			tokens:      memory.NewTokenStore(),
		}, nil
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	s := &storage{
		users:       mongodb.NewUserRepository(db),
		roles:       mongodb.NewRoleRepository(db),
		permissions: mongodb.NewPermissionRepository(db),
		mongoClient: client,
		mongoDB:     db,
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		s.close(ctx, log)
		return nil, err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		s.close(ctx, log)
		return nil, err
	}
	s.redis = rdb
	s.tokens = redisdb.NewTokenStore(rdb)
	return s, nil
}
