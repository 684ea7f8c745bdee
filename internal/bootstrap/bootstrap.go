package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/skilltrack/internal/app/controllers"
	appMigrations "github.com/yigit/skilltrack/internal/app/migrations"
	appRepos "github.com/yigit/skilltrack/internal/app/repositories"
	"github.com/yigit/skilltrack/internal/app/repositories/memstore"
	appRoutes "github.com/yigit/skilltrack/internal/app/routes"
	appServices "github.com/yigit/skilltrack/internal/app/services"
	"github.com/yigit/skilltrack/internal/config"
	"github.com/yigit/skilltrack/internal/db"
	appMiddleware "github.com/yigit/skilltrack/internal/middleware"
	"github.com/yigit/skilltrack/internal/pkg/clock"
	"github.com/yigit/skilltrack/internal/pkg/logger"
	"github.com/yigit/skilltrack/internal/pkg/websocket"
	"github.com/yigit/skilltrack/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store appRepos.Store
	Clock clock.Clock
	Hub   *websocket.Hub

	SessionService      *appServices.SessionService
	RegistryService     *appServices.RegistryService
	ClassService        *appServices.ClassService
	AttendanceService   *appServices.AttendanceService
	SkillSummaryService *appServices.SkillSummaryService

	ActionController *appControllers.ActionController
	RosterController *appControllers.RosterController
	AuthMiddleware   *appMiddleware.AuthMiddleware

	Logger zerolog.Logger
}

// ConfigPath returns the configuration file location, overridable with SKILLTRACK_CONFIG
func ConfigPath() string {
	return config.GetEnv("SKILLTRACK_CONFIG", filepath.Join("configs", "config.yaml"))
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
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

// SetupStore opens the configured store. For postgres it connects, optionally applies the
// embedded migrations and returns a closer for the pool.
func SetupStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (appRepos.Store, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		lgr.Warn().Msg("Using the in-memory store; data is lost on exit")
		return memstore.New(), func() {}, nil
	}

	lgr.Info().Str("host", cfg.Database.Host).Str("dbname", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if cfg.Database.AutoMigrate {
		lgr.Info().Msg("Running database migrations...")
		applied, err := appMigrations.NewMigrator(database.Pool).Migrate(ctx)
		if err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Int("applied", applied).Msg("Database migrations complete.")
	}

	return appRepos.NewPostgresStore(database), database.Close, nil
}

// BuildDependencies initializes services, controllers and middleware over store.
func BuildDependencies(cfg *config.Config, store appRepos.Store, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{
		Store:  store,
		Clock:  clock.Real{},
		Hub:    websocket.NewHub(logger.Component("roster"), cfg.Server.AllowedOrigins...),
		Logger: lgr,
	}

	deps.SessionService = appServices.NewSessionService(store, deps.Clock, cfg.SessionMaxAge(), logger.Component("sessions"))
	deps.RegistryService = appServices.NewRegistryService(store, deps.Clock, logger.Component("registry"))
	deps.ClassService = appServices.NewClassService(store, deps.Clock, appServices.ClassOptions{
		Location:    cfg.Location(),
		MinCapacity: cfg.Schedule.MinCapacity,
		MaxCapacity: cfg.Schedule.MaxCapacity,
	}, deps.Hub, logger.Component("classes"))
	deps.AttendanceService = appServices.NewAttendanceService(store, deps.Clock, deps.Hub, logger.Component("attendance"))
	deps.SkillSummaryService = appServices.NewSkillSummaryService(store, deps.Clock, logger.Component("skills"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.SessionService, cfg.Session.UserCookie, cfg.Session.MagicCookie)

	deps.ActionController = appControllers.NewActionController(
		appControllers.NewAuthController(deps.SessionService, appControllers.CookieConfig{
			UserCookie:  cfg.Session.UserCookie,
			MagicCookie: cfg.Session.MagicCookie,
			MaxAge:      cfg.SessionMaxAge(),
			Secure:      strings.ToLower(cfg.Server.Mode) == "production",
		}),
		appControllers.NewClassController(deps.ClassService),
		appControllers.NewAttendanceController(deps.AttendanceService, deps.SkillSummaryService),
	)
	deps.RosterController = appControllers.NewRosterController(deps.ClassService, deps.Hub)

	return deps
}

// SeedIfEmpty creates demo data when the store is empty
func SeedIfEmpty(ctx context.Context, deps *Dependencies) error {
	_, err := seed.CreateDefaultData(ctx, deps.RegistryService, deps.ClassService, deps.Clock.Now(), deps.Logger)
	return err
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router,
		deps.ActionController,
		deps.RosterController,
		deps.AuthMiddleware,
	)

	setupStaticFileServing(router, cfg, lgr)
	return router
}

// setupStaticFileServing serves the web client for every path no route claims
func setupStaticFileServing(router *gin.Engine, cfg *config.Config, lgr zerolog.Logger) {
	dir := cfg.Server.StaticDir
	if dir == "" {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		lgr.Warn().Str("path", dir).Msg("Static directory not found, web client disabled")
		return
	}

	router.NoRoute(gin.WrapH(http.FileServer(http.Dir(dir))))
	lgr.Info().Str("path", dir).Msg("Static file serving configured")
}
