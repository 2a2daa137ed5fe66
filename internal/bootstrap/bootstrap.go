package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/unimag/internal/app/controllers"
	appMigrations "github.com/yigit/unimag/internal/app/migrations"
	appRepos "github.com/yigit/unimag/internal/app/repositories"
	appRoutes "github.com/yigit/unimag/internal/app/routes"
	appServices "github.com/yigit/unimag/internal/app/services"
	"github.com/yigit/unimag/internal/config"
	"github.com/yigit/unimag/internal/db"
	appMiddleware "github.com/yigit/unimag/internal/middleware"
	pkgAuth "github.com/yigit/unimag/internal/pkg/auth"
	"github.com/yigit/unimag/internal/pkg/cache"
	"github.com/yigit/unimag/internal/pkg/email"
	"github.com/yigit/unimag/internal/pkg/errorreport"
	"github.com/yigit/unimag/internal/pkg/filestorage"
	"github.com/yigit/unimag/internal/pkg/helpers"
	"github.com/yigit/unimag/internal/pkg/logger"
	"github.com/yigit/unimag/internal/pkg/websocket"
	"github.com/yigit/unimag/internal/seed"
)

// DefaultConfigPath is used when CONFIG_PATH is not set
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos    *appRepos.Repositories
	DB       *db.PostgresDB
	Cache    cache.Cache
	Hub      *websocket.Hub
	Reporter errorreport.Reporter
	Storage  *filestorage.LocalStorage

	JWTService *pkgAuth.JWTService

	ActivityService     *appServices.ActivityService
	AnalyticsService    *appServices.AnalyticsService
	NotificationService *appServices.NotificationService

	Handlers       appRoutes.Handlers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// ConnectDatabase opens the pool and checks that the database answers.
func ConnectDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Pool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// Migrate applies every pending file of the configured migrations directory.
func Migrate(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// Seed creates the default roles, faculties, settings and admin account.
func Seed(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
	stores := seed.StoresFrom(appRepos.NewRepositories(database.Pool))
	return seed.CreateDefaultData(ctx, stores, seed.AdminAccount{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	}, lgr)
}

// SetupDatabase connects, runs migrations and creates the default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	database, err := ConnectDatabase(cfg, lgr)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := Migrate(ctx, cfg, database, lgr); err != nil {
		database.Close()
		return nil, err
	}

	if err := Seed(ctx, cfg, database, lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, DB: database}
	deps.Repos = appRepos.NewRepositories(database.Pool)

	var err error
	deps.Cache, err = cache.New(context.Background(), cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger.Component("cache"))
	if err != nil {
		// Statistics and settings still work straight from the database
		lgr.Warn().Err(err).Msg("Redis unavailable, continuing without cache")
		deps.Cache = cache.Noop{}
	}
	cacheTTL := helpers.ParseDuration(cfg.Redis.TTL, 5*time.Minute)

	deps.Storage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.Server.MaxUploadSize)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	hostname, _ := os.Hostname()
	deps.Reporter = errorreport.New(errorreport.Config{
		Token:       cfg.Rollbar.Token,
		Environment: cfg.Rollbar.Environment,
		ServerHost:  hostname,
	}, logger.Component("errorreport"))

	deps.Hub = websocket.NewHub(logger.Component("websocket"))
	go deps.Hub.Run()

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	// Initialize services
	repos := deps.Repos
	deps.ActivityService = appServices.NewActivityService(repos.ActivityRepository, deps.Hub, logger.Component("activity"))
	activity := deps.ActivityService

	settingsService := appServices.NewSettingsService(repos.SettingsRepository, deps.Cache, cacheTTL, activity, lgr)
	sender := email.NewSender(email.Config{
		SendgridAPIKey: cfg.Email.SendgridAPIKey,
		FromEmail:      cfg.Email.FromEmail,
		FromName:       cfg.Email.FromName,
	}, logger.Component("email"))
	deps.NotificationService = appServices.NewNotificationService(sender, settingsService, logger.Component("notifications"))

	authService := appServices.NewAuthService(repos.UserRepository, repos.FacultyRepository, database, deps.JWTService, activity, lgr)
	userService := appServices.NewUserService(repos.UserRepository, repos.FacultyRepository, database, deps.Storage, activity, lgr)
	facultyService := appServices.NewFacultyService(repos.FacultyRepository, repos.RoleRepository)
	submissionService := appServices.NewSubmissionService(
		repos.SubmissionRepository,
		repos.CommentRepository,
		repos.UserRepository,
		settingsService,
		deps.Storage,
		deps.NotificationService,
		activity,
		lgr,
		cfg.Server.MaxUploadSize,
	)
	statsService := appServices.NewStatsService(repos.StatsRepository, repos.FacultyRepository, deps.Cache, cacheTTL, lgr)
	deps.AnalyticsService = appServices.NewAnalyticsService(repos.PageVisitRepository, lgr)
	exportService := appServices.NewExportService(repos.SubmissionRepository, deps.Storage, settingsService, activity, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, repos.UserRepository)

	deps.Handlers = appRoutes.Handlers{
		Auth:       appControllers.NewAuthController(authService, lgr),
		User:       appControllers.NewUserController(userService, activity),
		Faculty:    appControllers.NewFacultyController(facultyService),
		Submission: appControllers.NewSubmissionController(submissionService, activity, lgr),
		Export:     appControllers.NewExportController(exportService, deps.Reporter, lgr),
		Stats:      appControllers.NewStatsController(statsService, deps.AnalyticsService, activity),
		Activity:   appControllers.NewActivityController(deps.ActivityService),
		Settings:   appControllers.NewSettingsController(settingsService),
		Health:     appControllers.NewHealthController(database.Pool, lgr),
		Feed:       websocket.NewHandler(deps.Hub, []string{cfg.Server.FrontendURL}, logger.Component("websocket")),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(deps.Reporter, lgr),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.ErrorReporter(deps.Reporter),
		appMiddleware.CORS(cfg.Server.FrontendURL),
		appMiddleware.PageVisits(deps.AnalyticsService, deps.AuthMiddleware.UserIDFromToken, lgr),
	)

	router.Static("/uploads", deps.Storage.BasePath())
	lgr.Info().Str("path", deps.Storage.BasePath()).Msg("Static file serving configured for uploads directory")

	appRoutes.SetupRouter(router, deps.Handlers, deps.AuthMiddleware)

	return router
}
