// internal/app/server.go
package app

import (
	"context"
	"fmt"

	"tishe-service/internal/config"
	"tishe-service/internal/db"
	"tishe-service/internal/gateway/local"
	"tishe-service/internal/gateway/oauth"
	adminHandler "tishe-service/internal/handlers/admin"
	authHandler "tishe-service/internal/handlers/auth"
	catalogHandler "tishe-service/internal/handlers/catalog"
	profileHandler "tishe-service/internal/handlers/profile"
	wsHandler "tishe-service/internal/handlers/ws"
	"tishe-service/internal/middleware"
	"tishe-service/internal/repository/postgres"
	catalogsvc "tishe-service/internal/service/catalog"
	profilesvc "tishe-service/internal/service/profile"
	"tishe-service/internal/session"
	storepg "tishe-service/internal/store/postgres"
	"tishe-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.Default()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis", zap.String("addr", s.cfg.RedisAddr))

	// ----- Stores & migrations -----
	docStore := storepg.NewDocumentStore(pool)
	if err := docStore.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate document store: %w", err)
	}
	identityRepo := postgres.NewIdentityRepository(pool)
	if err := identityRepo.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate identities: %w", err)
	}

	// ----- OAuth providers -----
	var providers []oauth.Provider
	if s.cfg.GoogleEnabled() {
		google, err := oauth.NewGoogleProvider(ctx, s.cfg.GoogleClientID, s.cfg.GoogleClientSecret, s.cfg.GoogleRedirectURL)
		if err != nil {
			return fmt.Errorf("failed to configure google provider: %w", err)
		}
		providers = append(providers, google)
		logger.Info("google oauth enabled")
	}
	broker := oauth.NewBroker(oauth.NewRegistry(providers...))

	// ----- Identity gateway -----
	sessionStore := local.NewSessionStore(redisClient, []byte(s.cfg.SessionSecret), s.cfg.SessionTTL, logger)
	rateLimiter := local.NewRateLimiter(redisClient)
	gateway := local.NewGateway(identityRepo, sessionStore, rateLimiter, broker, logger)

	// ----- Session manager & services -----
	sessions := session.NewManager(gateway, docStore, logger)
	catalogService := catalogsvc.NewService(docStore, logger)
	profileService := profilesvc.NewService(docStore, sessions, logger)

	// ----- WebSocket hub -----
	hub := websocket.NewHub(sessions, catalogService, logger)

	// ----- Handlers -----
	guard := middleware.NewGuard(sessions)
	handlers := &Handlers{
		AuthHandler:    authHandler.NewAuthHandler(sessions, gateway, logger),
		CatalogHandler: catalogHandler.NewCatalogHandler(catalogService, logger),
		AdminHandler:   adminHandler.NewAdminHandler(catalogService, logger),
		ProfileHandler: profileHandler.NewProfileHandler(profileService, logger),
		WSHandler:      wsHandler.NewWSHandler(hub, logger),
		Guard:          guard,
	}

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)
	SetupRouter(s.engine, logger, handlers)

	// The manager is already listening; Start replays the persisted session
	// and moves the boot state out of resolving.
	gateway.Start(ctx)

	logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}
