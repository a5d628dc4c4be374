package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boardflow/internal/automation"
	"boardflow/internal/config"
	"boardflow/internal/handler"
	"boardflow/internal/lock"
	"boardflow/internal/middleware"
	"boardflow/internal/migrations"
	"boardflow/internal/permission"
	"boardflow/internal/report"
	"boardflow/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// automationLockTTL bounds how long one card's automation run may hold the
// distributed lock.
const automationLockTTL = 10 * time.Second

var (
	_ permission.AccessLoader  = (*repository.BoardRepository)(nil)
	_ handler.BoardStore       = (*repository.BoardRepository)(nil)
	_ handler.MemberStore      = (*repository.BoardMemberRepository)(nil)
	_ handler.WorkspaceStore   = (*repository.WorkspaceRepository)(nil)
	_ handler.UserFinder       = (*repository.UserRepository)(nil)
	_ handler.ListStore        = (*repository.ListRepository)(nil)
	_ handler.CardStore        = (*repository.CardRepository)(nil)
	_ handler.LabelStore       = (*repository.LabelRepository)(nil)
	_ handler.RuleStore        = (*repository.AutomationRepository)(nil)
	_ handler.Authorizer       = (*permission.Resolver)(nil)
	_ handler.TriggerProcessor = (*automation.Engine)(nil)
)

type Server struct {
	Engine   *gin.Engine
	DB       *gorm.DB
	Config   *config.Config
	Logger   *logrus.Logger
	redis    *redis.Client
	reporter *report.Sentry
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func Init(cfg *config.Config, logger *logrus.Logger) (*Server, error) {
	if err := migrations.Up(cfg.MigrateURL(), logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	gormLevel := gormlogger.Warn
	if cfg.IsProduction() {
		gormLevel = gormlogger.Error
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	logger.Info("✅ Connected to database")

	s := &Server{DB: db, Config: cfg, Logger: logger}

	var reporter report.Reporter = report.Nop{}
	if cfg.SentryDSN != "" {
		sentryReporter, err := report.NewSentry(cfg.SentryDSN, cfg.Environment)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sentry: %w", err)
		}
		s.reporter = sentryReporter
		reporter = sentryReporter
		logger.Info("Sentry error reporting enabled")
	}

	var locker lock.Locker = lock.NewKeyed()
	if cfg.RedisAddr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		locker = lock.NewRedis(s.redis, automationLockTTL, logger.WithField("component", "lock"))
		logger.WithField("addr", cfg.RedisAddr).Info("Using redis for automation locks")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	memberRepo := repository.NewBoardMemberRepository(db)
	listRepo := repository.NewListRepository(db)
	cardRepo := repository.NewCardRepository(db)
	labelRepo := repository.NewLabelRepository(db)
	ruleRepo := repository.NewAutomationRepository(db)

	resolver := permission.NewResolver(boardRepo, logger.WithField("component", "permission"))
	engine := automation.NewEngine(
		repository.NewAutomationStore(db),
		automation.WithLocker(locker),
		automation.WithReporter(reporter),
		automation.WithLogger(logger.WithField("component", "automation")),
	)

	// Handlers
	httpLog := logger.WithField("component", "http")
	userHandler := handler.NewUserHandler(userRepo)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceRepo, userRepo, httpLog)
	boardHandler := handler.NewBoardHandler(boardRepo, memberRepo, workspaceRepo, resolver, httpLog)
	memberHandler := handler.NewMemberHandler(memberRepo, userRepo, boardRepo, resolver, httpLog)
	listHandler := handler.NewListHandler(listRepo, boardRepo, resolver, httpLog)
	labelHandler := handler.NewLabelHandler(labelRepo, boardRepo, resolver, httpLog)
	cardHandler := handler.NewCardHandler(cardRepo, listRepo, boardRepo, resolver, engine, httpLog)
	automationHandler := handler.NewAutomationHandler(ruleRepo, listRepo, labelRepo, boardRepo, resolver, httpLog)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(httpLog), gin.Recovery())

	// Public routes
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		authorized.GET("/users/me", userHandler.Me)

		// Workspace routes
		authorized.POST("/workspaces", workspaceHandler.Create)
		authorized.POST("/workspaces/:id/members", workspaceHandler.AddMember)
		authorized.DELETE("/workspaces/:id/members/:user_id", workspaceHandler.RemoveMember)

		// Board routes
		authorized.POST("/boards", boardHandler.Create)
		authorized.GET("/boards", boardHandler.GetAll)
		authorized.GET("/boards/:id", boardHandler.GetByID)
		authorized.PUT("/boards/:id", boardHandler.Update)
		authorized.DELETE("/boards/:id", boardHandler.Delete)

		// Board membership routes
		authorized.GET("/boards/:id/members", memberHandler.List)
		authorized.POST("/boards/:id/members", memberHandler.Add)
		authorized.DELETE("/boards/:id/members/:user_id", memberHandler.Remove)

		// List routes
		authorized.POST("/boards/:id/lists", listHandler.Create)
		authorized.GET("/boards/:id/lists", listHandler.GetAll)
		authorized.DELETE("/lists/:id", listHandler.Delete)
		authorized.GET("/lists/:id/cards", cardHandler.GetByList)

		// Label routes
		authorized.POST("/boards/:id/labels", labelHandler.Create)
		authorized.GET("/boards/:id/labels", labelHandler.GetAll)
		authorized.DELETE("/labels/:id", labelHandler.Delete)

		// Card routes
		authorized.POST("/cards", cardHandler.Create)
		authorized.GET("/cards/:id", cardHandler.GetByID)
		authorized.POST("/cards/:id/move", cardHandler.Move)
		authorized.DELETE("/cards/:id", cardHandler.Delete)

		// Automation routes
		authorized.GET("/boards/:id/automations", automationHandler.List)
		authorized.POST("/boards/:id/automations", automationHandler.Create)
		authorized.GET("/boards/:id/automations/logs", automationHandler.Logs)
		authorized.PUT("/automations/:id", automationHandler.Update)
		authorized.DELETE("/automations/:id", automationHandler.Delete)
	}

	s.Engine = r
	return s, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		s.Logger.Infof("🚀 Server running on port %s", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Fatalf("❌ Failed to listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Logger.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	s.close()
	s.Logger.Info("✅ Server exited properly")
}

func (s *Server) close() {
	if s.reporter != nil {
		s.reporter.Flush()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.Logger.WithField("error", err).Warn("failed to close redis client")
		}
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.Logger.WithField("error", err).Warn("failed to close database")
		}
	}
}
