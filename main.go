// Package main provides the main entry point for the Open Launch API and its daily launch job
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/openlaunch/open-launch/app/handlers"
	"github.com/openlaunch/open-launch/app/middleware"
	"github.com/openlaunch/open-launch/app/router"
	"github.com/openlaunch/open-launch/app/scheduler"
	"github.com/openlaunch/open-launch/app/services"
	businessflow "github.com/openlaunch/open-launch/business_flow"
	"github.com/openlaunch/open-launch/config"
	"github.com/openlaunch/open-launch/repository"
	"github.com/openlaunch/open-launch/utils"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logOutput := initializeLogOutput(cfg.Logging)
	log.SetOutput(logOutput)
	log.SetFlags(log.LstdFlags | log.LUTC)
	log.Printf("Starting %s (%s, %s)...", cfg.Deployment.SiteName, cfg.Deployment.Environment, cfg.Deployment.Version)

	app, err := initializeApplication(cfg, logOutput)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeLogOutput writes to stdout and, when LOG_FILE is set, to a rotating file
func initializeLogOutput(cfg config.LoggingConfig) io.Writer {
	if cfg.FilePath == "" {
		return os.Stdout
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		log.Printf("WARN cannot create log directory, logging to stdout only: %v", err)
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig, out io.Writer) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if !cfg.SlowQueryLog {
		logLevel = gormlogger.Error
	}
	gormLog := gormlogger.New(log.New(out, "gorm ", log.LstdFlags|log.LUTC), gormlogger.Config{
		SlowThreshold:             cfg.SlowQueryTime,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache connects to redis. A nil client means every redis-backed
// store falls back to process memory.
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		log.Println("Cache disabled, using in-memory stores")
		return nil, nil
	}

	opt := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opt = parsed
	}

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", opt.Addr, opt.DB)
	return rc, nil
}

// startCacheHealthMonitor periodically pings redis and logs failures.
// The returned function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeEmailSender picks the delivery backend for transactional mail
func initializeEmailSender(cfg *config.ProductionConfig, features config.Features) services.EmailSender {
	switch {
	case features.MockEmail:
		log.Println("Email provider: mock")
		return services.NewMockEmailSender()
	case features.Email:
		log.Println("Email provider: resend")
		return services.NewResendEmailSender(cfg.Email.ResendAPIKey, cfg.Email.From)
	default:
		log.Println("Email provider not configured, emails will be dropped")
		return services.DisabledEmailSender{}
	}
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig, logOutput io.Writer) (*Application, error) {
	var stopFuncs []func()

	features := config.DetectFeatures(cfg)
	log.Printf("Features: payments=%t email=%t captcha=%t discord=%t metrics=%t",
		features.Payments, features.Email, features.Captcha, features.DiscordLaunchNotifications, features.Metrics)

	loc, err := utils.LoadLocation(cfg.Cron.Timezone)
	if err != nil {
		return nil, err
	}

	db, err := initializeDatabase(cfg.Database, logOutput)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		stopFuncs = append(stopFuncs, startCacheHealthMonitor(context.Background(), rc, 30*time.Second))
	}

	// Repositories
	projectRepo := repository.NewProjectRepository(db)
	upvoteRepo := repository.NewUpvoteRepository(db)
	userRepo := repository.NewUserRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	runRepo := repository.NewDailyTaskRunRepository(db)

	// Services
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	if rc != nil {
		tokenService = tokenService.WithRevocationStore(rc, cfg.Cache.RedisPrefix)
	}
	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	var oneTimeTokens services.OneTimeTokenStore = services.NewMemoryTokenStore()
	if rc != nil {
		oneTimeTokens = services.NewRedisTokenStore(rc, cfg.Cache.RedisPrefix)
	}

	var captchaSvc services.CaptchaService
	if features.Captcha {
		captchaSvc, err = services.NewCaptchaServiceRotate(cfg.Captcha.TTL, cfg.Captcha.Padding, cfg.Captcha.ImgSize, rc, cfg.Cache.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize captcha: %w", err)
		}
	}

	var paymentProvider services.PaymentProvider
	if features.Payments {
		paymentProvider = services.NewStripePaymentProvider(cfg.Stripe.SecretKey)
	}

	var announcer services.LaunchAnnouncer = services.NoopLaunchAnnouncer{}
	if features.DiscordLaunchNotifications {
		announcer = services.NewDiscordLaunchAnnouncer(cfg.Discord.WebhookURL, cfg.Deployment.AppURL, cfg.Deployment.SiteName)
	}

	mailer := services.NewTransactionalMailer(initializeEmailSender(cfg, features), cfg.Deployment.AppURL, cfg.Deployment.SiteName)

	// Flows
	jobLogger := scheduler.NewSchedulerLogger(logOutput)
	notifier := businessflow.NewLaunchNotifier(userRepo, mailer, cfg.Cron.SendConcurrency, jobLogger)
	dailyTasksFlow := businessflow.NewDailyTasksFlow(projectRepo, upvoteRepo, runRepo, notifier, announcer, businessflow.DailyTasksOptions{
		Location:      loc,
		PaymentWindow: cfg.Cron.PaymentWindow,
		Logger:        jobLogger,
	})
	paymentFlow := businessflow.NewPaymentFlow(paymentProvider, projectRepo)
	authFlow := businessflow.NewAuthFlow(userRepo, tokenService, oneTimeTokens, mailer, captchaSvc)
	projectFlow := businessflow.NewProjectFlow(projectRepo, upvoteRepo, loc)
	commentFlow := businessflow.NewCommentFlow(projectRepo, commentRepo, userRepo)
	reportFlow := businessflow.NewLaunchReportFlow(projectRepo, upvoteRepo, userRepo, loc)

	// Handlers
	cronAuth := middleware.CronAuthConfig{
		TrustHeader:   cfg.Cron.TrustHeader,
		Secret:        cfg.Cron.Secret,
		APIKey:        cfg.Cron.APIKey,
		AllowInsecure: cfg.Cron.AllowInsecure,
		Logger:        jobLogger,
	}

	healthChecks := map[string]router.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rc != nil {
		healthChecks["cache"] = func(ctx context.Context) error {
			return rc.Ping(ctx).Err()
		}
	}

	appRouter := router.NewFiberRouter(router.Handlers{
		Auth:    handlers.NewAuthHandler(authFlow),
		Project: handlers.NewProjectHandler(projectFlow, commentFlow),
		Payment: handlers.NewPaymentHandler(paymentFlow),
		Cron:    handlers.NewCronHandler(dailyTasksFlow, jobLogger),
		Admin:   handlers.NewAdminHandler(reportFlow),
	}, middleware.NewAuthMiddleware(tokenService), router.Options{
		AppName:            cfg.Deployment.SiteName,
		AllowedOrigins:     cfg.Security.AllowedOrigins,
		CORSMaxAge:         cfg.Security.CORSMaxAge,
		MetricsEnabled:     features.Metrics,
		MetricsPath:        cfg.Metrics.Path,
		APIRateLimit:       cfg.Security.GlobalRateLimit,
		AuthRateLimit:      cfg.Security.AuthRateLimit,
		CronAuth:           cronAuth,
		HealthChecks:       healthChecks,
		BodyLimit:          cfg.Server.BodyLimit,
		ReadTimeout:        cfg.Server.ReadTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		IdleTimeout:        cfg.Server.IdleTimeout,
		ProxyHeader:        cfg.Server.ProxyHeader,
		TrustedProxies:     cfg.Server.TrustedProxies,
		DisableCompression: !cfg.Server.EnableCompression,
	})

	if cfg.Cron.Enabled {
		sched, err := scheduler.NewDailyScheduler(dailyTasksFlow, cfg.Cron.Schedule, loc, cfg.Cron.RunTimeout, jobLogger)
		if err != nil {
			return nil, err
		}
		stopFuncs = append(stopFuncs, sched.Start(context.Background()))
		log.Printf("Daily scheduler enabled (%q in %s), next run at %s",
			cfg.Cron.Schedule, loc, sched.Next(time.Now()).Format(time.RFC3339))
	}

	if rc != nil {
		stopFuncs = append(stopFuncs, func() {
			if err := rc.Close(); err != nil {
				log.Printf("Error closing redis: %v", err)
			}
		})
	}

	return &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		stopFuncs: stopFuncs,
	}, nil
}
