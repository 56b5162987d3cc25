package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"complexcare/internal/config"
	"complexcare/internal/database"
	"complexcare/internal/handlers"
	"complexcare/internal/metrics"
	"complexcare/internal/middlewares"
	"complexcare/internal/repositories"
	"complexcare/internal/routes"
	"complexcare/internal/services"
	"complexcare/internal/utils"
)

// dmdCacheRetention is how long scraped dm+d pages stay in the cache table
// as a stale fallback after they stop being fresh.
const dmdCacheRetention = 30 * 24 * time.Hour

// Deps are the long-lived resources shared by the API server and ccctl.
type Deps struct {
	Config *config.Config
	Log    *zap.Logger
	Pool   *pgxpool.Pool
	Redis  *redis.Client // nil when REDIS_ADDR is unset
}

// Open connects to Postgres (creating the database and applying migrations
// first) and, when configured, to Redis.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Deps, error) {
	if err := database.EnsureDatabaseExists(ctx, cfg.DB, log); err != nil {
		return nil, err
	}
	pool, err := database.Connect(ctx, database.DSN(cfg.DB), log)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(ctx, pool, log); err != nil {
		pool.Close()
		return nil, err
	}

	deps := &Deps{Config: cfg, Log: log, Pool: pool}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			pool.Close()
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
		deps.Redis = rdb
	} else {
		log.Warn("REDIS_ADDR not set; token revocation and the dm+d hot cache are disabled")
	}
	return deps, nil
}

func (d *Deps) Close() {
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	d.Pool.Close()
}

// CredentialService builds the service the reminder job runs.
func (d *Deps) CredentialService() *services.CredentialService {
	return services.NewCredentialService(
		repositories.NewCredentialRepository(d.Pool),
		repositories.NewCareProfessionalRepository(d.Pool),
		repositories.NewNotificationRepository(d.Pool),
		database.NewTransactor(d.Pool),
		d.Log,
	)
}

// NewServer wires every handler and background job. The returned func stops
// the jobs and releases the database and Redis connections.
func NewServer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*http.Server, func(), error) {
	deps, err := Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	pool := deps.Pool
	outbound := &http.Client{Timeout: 15 * time.Second}

	// Dependency injection
	var (
		blacklist services.TokenBlacklist
		hotCache  services.DMDHotCache
	)
	if deps.Redis != nil {
		redisRepo := repositories.NewRedisRepository(deps.Redis)
		blacklist, hotCache = redisRepo, redisRepo
	}

	tx := database.NewTransactor(pool)
	userRepo := repositories.NewUserRepository(pool)
	tenantRepo := repositories.NewTenantRepository(pool)
	patientRepo := repositories.NewPatientRepository(pool)
	professionalRepo := repositories.NewCareProfessionalRepository(pool)
	notificationRepo := repositories.NewNotificationRepository(pool)
	dmdCacheRepo := repositories.NewDMDCacheRepository(pool)

	tokens := utils.NewTokenIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret)
	authService := services.NewAuthService(userRepo, tenantRepo, blacklist, tokens, log)
	dmdService := services.NewDMDService(cfg.DMDBrowserURL, outbound, dmdCacheRepo, hotCache, cfg.DMDCacheTTL, log)
	credentialService := deps.CredentialService()

	var generator services.TextGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := services.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Warn("Gemini client unavailable; onboarding uses default suggestions", zap.Error(err))
		} else {
			generator = gemini
		}
	}

	demoMode := handlers.DemoMode(cfg.DemoMode)
	secureCookie := gin.Mode() == gin.ReleaseMode
	authHandler := handlers.NewAuthHandler(authService, secureCookie)

	h := routes.Handlers{
		Auth:   authHandler,
		User:   handlers.NewUserHandler(services.NewUserService(userRepo, log)),
		Tenant: handlers.NewTenantHandler(services.NewTenantService(tenantRepo, log)),
		Patient: handlers.NewPatientHandler(
			services.NewPatientService(patientRepo, log), demoMode),
		CareProfessional: handlers.NewCareProfessionalHandler(
			services.NewCareProfessionalService(professionalRepo, patientRepo, log), demoMode),
		Credential: handlers.NewCredentialHandler(credentialService),
		ClinicalNote: handlers.NewClinicalNoteHandler(
			services.NewClinicalNoteService(repositories.NewClinicalNoteRepository(pool), patientRepo, log)),
		Appointment: handlers.NewAppointmentHandler(
			services.NewAppointmentService(repositories.NewAppointmentRepository(pool), patientRepo, professionalRepo, tx, log), demoMode),
		Medication: handlers.NewMedicationHandler(
			services.NewMedicationService(repositories.NewMedicationRepository(pool), patientRepo, dmdService, log)),
		Payroll: handlers.NewPayrollHandler(
			services.NewPayrollService(repositories.NewPayrollRepository(pool), professionalRepo, tx, log)),
		Invoice: handlers.NewInvoiceHandler(
			services.NewInvoiceService(repositories.NewInvoiceRepository(pool), patientRepo, tx, log)),
		Integration: handlers.NewIntegrationHandler(
			dmdService,
			services.NewGPDataService(cfg.GPDataURL, cfg.GPDataAPIKey, outbound, log),
			services.NewOnboardingService(generator, log),
		),
		Diagnostics: handlers.NewDiagnosticsHandler(
			services.NewDiagnosticsService(repositories.NewSchemaRepository(pool), database.ExpectedSchema, log)),
		Dashboard: handlers.NewDashboardHandler(
			services.NewDashboardService(repositories.NewDashboardRepository(pool), notificationRepo)),
	}
	if oauthConfig := cfg.OAuthConfig(); oauthConfig != nil {
		h.GoogleAuth = handlers.NewGoogleAuthHandler(
			services.NewGoogleAuthService(userRepo, authService, log), oauthConfig, authHandler)
	}

	limiter := middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	guards := routes.Guards{
		Authenticate: middlewares.Authenticate(authService),
		RateLimit:    limiter.Handler(),
		TenantScope:  middlewares.TenantScope(tenantRepo),
	}

	scheduler, err := startJobs(credentialService, limiter, dmdCacheRepo, cfg, log)
	if err != nil {
		deps.Close()
		return nil, nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestLogger(log))
	router.Use(metrics.Middleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middlewares.TenantHeader},
		ExposeHeaders:    []string{"Content-Disposition", "X-Demo-Data"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	routes.RegisterRoutes(router, h, guards) // register all routes

	// Create and configure the HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	cleanup := func() {
		scheduler.Stop()
		deps.Close()
	}
	return server, cleanup, nil
}

// startJobs schedules the credential reminder run alongside housekeeping for
// the rate limiter and the dm+d cache table.
func startJobs(reminders services.ReminderSender, limiter *middlewares.RateLimiter, dmdCache *repositories.DMDCacheRepository, cfg *config.Config, log *zap.Logger) (*gocron.Scheduler, error) {
	scheduler, err := services.StartReminderJob(reminders, cfg.ReminderInterval, log)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule credential reminders: %w", err)
	}

	if _, err := scheduler.Every(5 * time.Minute).Do(limiter.Cleanup); err != nil {
		scheduler.Stop()
		return nil, fmt.Errorf("failed to schedule rate limiter cleanup: %w", err)
	}

	purge := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := dmdCache.Purge(ctx, time.Now().Add(-cfg.DMDCacheTTL-dmdCacheRetention))
		if err != nil {
			log.Error("dm+d cache purge failed", zap.Error(err))
			return
		}
		log.Debug("dm+d cache purged", zap.Int64("rows", n))
	}
	if _, err := scheduler.Every(24 * time.Hour).Do(purge); err != nil {
		scheduler.Stop()
		return nil, fmt.Errorf("failed to schedule dm+d cache purge: %w", err)
	}
	return scheduler, nil
}
