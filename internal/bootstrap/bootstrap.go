package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"

	appControllers "github.com/yigit/uniportal/internal/app/controllers"
	appMigrations "github.com/yigit/uniportal/internal/app/migrations"
	appRepos "github.com/yigit/uniportal/internal/app/repositories"
	"github.com/yigit/uniportal/internal/app/repositories/memory"
	appRoutes "github.com/yigit/uniportal/internal/app/routes"
	appServices "github.com/yigit/uniportal/internal/app/services"
	"github.com/yigit/uniportal/internal/config"
	"github.com/yigit/uniportal/internal/db"
	"github.com/yigit/uniportal/internal/identity"
	appMiddleware "github.com/yigit/uniportal/internal/middleware"
	pkgAuth "github.com/yigit/uniportal/internal/pkg/auth"
	"github.com/yigit/uniportal/internal/pkg/helpers"
	"github.com/yigit/uniportal/internal/pkg/logger"
	"github.com/yigit/uniportal/internal/pkg/metrics"
	pkgRedis "github.com/yigit/uniportal/internal/pkg/redis"
	"github.com/yigit/uniportal/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store    appRepos.Store
	Database *db.PostgresDB // nil with the memory storage driver
	Redis    *pkgRedis.Client
	Identity identity.Provider

	JWTService *pkgAuth.JWTService
	Registry   *prometheus.Registry
	Metrics    *metrics.Metrics

	EligibilityService     *appServices.EligibilityService
	RegistrationService    *appServices.RegistrationService
	AdminStudentService    *appServices.AdminStudentService
	PreRegistrationService *appServices.PreRegistrationService
	AuthService            *appServices.AuthService
	DepartmentService      *appServices.DepartmentService
	CourseService          *appServices.CourseService

	AuthController       *appControllers.AuthController
	AdminController      *appControllers.AdminController
	DepartmentController *appControllers.DepartmentController
	CourseController     *appControllers.CourseController
	HealthController     *appControllers.HealthController
	AuthMiddleware       *appMiddleware.AuthMiddleware

	Logger zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Service: "uniportal",
	})
	lgr.Info().Stringer("logLevel", logger.ParseLevel(cfg.Logging.Level)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStorage opens the configured store. With the postgres driver it connects and runs migrations.
func SetupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (appRepos.Store, *db.PostgresDB, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		lgr.Warn().Msg("Using in-memory storage; data is lost on restart")
		return memory.New(), nil, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if cfg.Database.AutoMigrate {
		lgr.Info().Msg("Running database migrations...")
		migrator := appMigrations.NewMigrator(database.Pool)
		err := migrator.Up(ctx)
		err = multierr.Append(err, migrator.Close())
		if err != nil {
			lgr.Error().Err(err).Msg("Database migration error")
			database.Close()
			return nil, nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")
	}

	return appRepos.NewPostgresStore(database.Pool), database, nil
}

// SetupRedis connects the rate limiter backend. It returns nil when redis is not configured or
// unreachable; the public endpoints then run unthrottled.
func SetupRedis(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) *pkgRedis.Client {
	if cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		lgr.Info().Msg("Redis not configured, rate limiting disabled")
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := pkgRedis.New(ctx, cfg)
	if err != nil {
		lgr.Warn().Err(err).Msg("Redis unavailable, rate limiting disabled")
		return nil
	}
	lgr.Info().Msg("Redis connection established")
	return client
}

// BuildDependencies initializes the identity provider, services and controllers.
func BuildDependencies(cfg *config.Config, store appRepos.Store, database *db.PostgresDB, redisClient *pkgRedis.Client, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Store:    store,
		Database: database,
		Redis:    redisClient,
		Logger:   lgr,
	}

	var conn db.DBTX
	if database != nil {
		conn = database.Pool
	}
	provider, err := identity.NewProvider(cfg, conn, logger.Component(lgr, "identity"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize identity provider: %w", err)
	}
	deps.Identity = provider

	deps.Registry = prometheus.NewRegistry()
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Metrics = metrics.New(deps.Registry)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.DurationOr(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	timeout := helpers.DurationOr(cfg.Reconciler.BackendTimeout, appServices.DefaultBackendTimeout)
	ids := appServices.NewStudentIDGenerator(cfg.Reconciler.MaxStudentIDAttempts)

	reconcilerLog := logger.Component(lgr, "reconciler")
	catalogLog := logger.Component(lgr, "catalog")

	deps.EligibilityService = appServices.NewEligibilityService(store, deps.Metrics, timeout, reconcilerLog)
	deps.RegistrationService = appServices.NewRegistrationService(store, provider, ids, deps.Metrics, timeout, reconcilerLog)
	deps.AdminStudentService = appServices.NewAdminStudentService(store, ids, deps.Metrics, timeout, reconcilerLog)
	deps.PreRegistrationService = appServices.NewPreRegistrationService(store, reconcilerLog)
	deps.AuthService = appServices.NewAuthService(store, provider, deps.JWTService, timeout, logger.Component(lgr, "auth"))
	deps.DepartmentService = appServices.NewDepartmentService(store, catalogLog)
	deps.CourseService = appServices.NewCourseService(store, catalogLog)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(
		deps.EligibilityService,
		deps.RegistrationService,
		deps.AuthService,
		lgr,
	)
	deps.AdminController = appControllers.NewAdminController(
		deps.AdminStudentService,
		deps.PreRegistrationService,
		deps.AuthService,
		lgr,
	)
	deps.DepartmentController = appControllers.NewDepartmentController(deps.DepartmentService)
	deps.CourseController = appControllers.NewCourseController(deps.CourseService)

	checks := map[string]appControllers.Pinger{"database": store}
	if redisClient != nil {
		checks["redis"] = redisClient
	}
	deps.HealthController = appControllers.NewHealthController(checks, lgr)

	return deps, nil
}

// SeedDefaultData creates the default departments and administrator when seeding is enabled
func SeedDefaultData(ctx context.Context, cfg *config.Config, deps *Dependencies) {
	if !cfg.Seed.Enabled {
		return
	}
	opts := seed.Options{AdminEmail: cfg.Seed.AdminEmail, AdminPassword: cfg.Seed.AdminPassword}
	if err := seed.CreateDefaultData(ctx, deps.Store, deps.Identity, opts, deps.Logger); err != nil {
		// Log the error but don't fail the startup
		deps.Logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// rateLimitPolicies builds the throttles of the public auth endpoints
func rateLimitPolicies(cfg *config.Config, deps *Dependencies) appRoutes.Throttles {
	var limiter appMiddleware.RateLimiter
	if deps.Redis != nil {
		limiter = deps.Redis
	}
	window := helpers.DurationOr(cfg.Redis.RateWindow, time.Minute)
	throttle := func(name string) gin.HandlerFunc {
		policy := appMiddleware.RateLimitPolicy{Name: name, Limit: cfg.Redis.RateLimit, Window: window}
		return appMiddleware.RateLimit(policy, limiter, deps.Metrics, deps.Logger)
	}
	return appRoutes.Throttles{
		Eligibility:  throttle("eligibility"),
		Registration: throttle("register"),
		Login:        throttle("login"),
	}
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
		gin.Recovery(),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.Metrics(deps.Metrics),
	)

	appRoutes.SetupRouter(router,
		appRoutes.Controllers{
			Auth:       deps.AuthController,
			Admin:      deps.AdminController,
			Department: deps.DepartmentController,
			Course:     deps.CourseController,
			Health:     deps.HealthController,
		},
		deps.AuthMiddleware,
		rateLimitPolicies(cfg, deps),
		promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}),
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}

// Close releases the database pool and the redis client
func (d *Dependencies) Close() error {
	var err error
	if d.Redis != nil {
		err = multierr.Append(err, d.Redis.Close())
	}
	if d.Database != nil {
		d.Database.Close()
	}
	return err
}
