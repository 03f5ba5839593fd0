// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	fiberutils "github.com/gofiber/utils/v2"
	"github.com/openlaunch/open-launch/app/dto"
	"github.com/openlaunch/open-launch/app/handlers"
	"github.com/openlaunch/open-launch/app/middleware"
	"github.com/openlaunch/open-launch/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// Handlers groups every HTTP handler mounted by the router
type Handlers struct {
	Auth    handlers.AuthHandlerInterface
	Project handlers.ProjectHandlerInterface
	Payment handlers.PaymentHandlerInterface
	Cron    handlers.CronHandlerInterface
	Admin   *handlers.AdminHandler
}

// Options carries the deployment-specific router settings
type Options struct {
	AppName        string
	AllowedOrigins []string
	CORSMaxAge     int
	MetricsEnabled bool
	MetricsPath    string
	APIRateLimit   int
	AuthRateLimit  int
	CronAuth       middleware.CronAuthConfig
	HealthChecks   map[string]HealthCheck

	// zero values use the defaults set in NewFiberRouter
	BodyLimit          int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ProxyHeader        string
	TrustedProxies     []string
	DisableCompression bool
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	handlers       Handlers
	authMiddleware *middleware.AuthMiddleware
	opts           Options
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(h Handlers, authMiddleware *middleware.AuthMiddleware, opts Options) *FiberRouter {
	if opts.AppName == "" {
		opts.AppName = utils.DefaultSiteName
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.APIRateLimit <= 0 {
		opts.APIRateLimit = 600
	}
	if opts.AuthRateLimit <= 0 {
		opts.AuthRateLimit = 20
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = 1 * 1024 * 1024
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	// the daily tasks endpoint can run for minutes
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 15 * time.Minute
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 60 * time.Second
	}

	app := fiber.New(fiber.Config{
		AppName:      opts.AppName + " API",
		ErrorHandler: errorHandler,
		BodyLimit:    opts.BodyLimit,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ProxyHeader:  opts.ProxyHeader,
		TrustProxy:   len(opts.TrustedProxies) > 0,
		TrustProxyConfig: fiber.TrustProxyConfig{
			Proxies: opts.TrustedProxies,
		},
	})

	return &FiberRouter{
		app:            app,
		handlers:       h,
		authMiddleware: authMiddleware,
		opts:           opts,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	r.app.Get("/health", r.healthCheck)
	if r.opts.MetricsEnabled {
		r.app.Get(r.opts.MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))
	}

	// Machine-triggered endpoints
	cronAuth := middleware.CronAuth(r.opts.CronAuth)
	cron := r.app.Group("/api/cron", cronAuth)
	cron.Get("/daily-tasks", r.handlers.Cron.RunDailyTasks)
	cron.Post("/daily-tasks", r.handlers.Cron.RunDailyTasks)
	cron.Get("/daily-tasks/latest", r.handlers.Cron.LatestDailyRun)

	api := r.app.Group("/api/v1")
	api.Use(limiter.New(limiter.Config{
		Max:          r.opts.APIRateLimit,
		Expiration:   1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string { return c.IP() },
		LimitReached: rateLimited,
	}))

	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:          r.opts.AuthRateLimit,
		Expiration:   1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string { return c.IP() },
		LimitReached: rateLimited,
	}))
	auth.Post("/signup", r.handlers.Auth.Signup)
	auth.Post("/verify-email", r.handlers.Auth.VerifyEmail)
	auth.Post("/login", r.handlers.Auth.Login)
	auth.Post("/refresh", r.handlers.Auth.RefreshToken)
	auth.Post("/forgot-password", r.handlers.Auth.ForgotPassword)
	auth.Post("/reset-password", r.handlers.Auth.ResetPassword)
	auth.Get("/captcha", r.handlers.Auth.Captcha)

	requireAuth := r.authMiddleware.Authenticate()
	api.Get("/launches", r.handlers.Project.ListLaunches)
	api.Post("/projects", requireAuth, r.handlers.Project.SubmitProject)
	api.Get("/projects/:slug", r.handlers.Project.GetProject)
	api.Post("/projects/:slug/upvote", requireAuth, r.handlers.Project.ToggleUpvote)
	api.Get("/projects/:slug/comments", r.handlers.Project.ListComments)
	api.Post("/projects/:slug/comments", requireAuth, r.handlers.Project.AddComment)

	api.Get("/payment/verify", r.handlers.Payment.VerifyPayment)

	admin := api.Group("/admin", cronAuth)
	admin.Get("/rankings/export", r.handlers.Admin.ExportRankings)

	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: generateRequestID,
	}))

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				requestid.FromContext(c),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000,
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginResourcePolicy: "cross-origin",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	if len(r.opts.AllowedOrigins) > 0 {
		r.app.Use(cors.New(cors.Config{
			AllowOrigins: r.opts.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders: []string{
				"Origin",
				"Content-Type",
				"Accept",
				"Authorization",
				"X-Requested-With",
				"X-Request-ID",
			},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           r.opts.CORSMaxAge,
		}))
	}

	if !r.opts.DisableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
		}))
	}

	if r.opts.MetricsEnabled {
		r.app.Use(middleware.Metrics(r.opts.MetricsPath, "/health"))
	}

	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${respHeader:X-Request-ID}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == r.opts.MetricsPath
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// healthCheck pings every registered dependency; any failure turns the response into a 503
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(r.opts.HealthChecks))
	for name := range r.opts.HealthChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := fiber.Map{}
	healthy := true
	for _, name := range names {
		if err := r.opts.HealthChecks[name](ctx); err != nil {
			healthy = false
			checks[name] = "down: " + err.Error()
			continue
		}
		checks[name] = "up"
	}

	data := fiber.Map{
		"status":    "ok",
		"timestamp": utils.UTCNow().Unix(),
		"checks":    checks,
	}
	if !healthy {
		data["status"] = "degraded"
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.APIResponse{
			Success: false,
			Message: "Service is degraded",
			Data:    data,
			Error:   dto.ErrorDetail{Code: "DEPENDENCY_DOWN"},
		})
	}
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data:    data,
	})
}

func rateLimited(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
	})
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal server error occurred"
	errCode := "INTERNAL_ERROR"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		if code < fiber.StatusInternalServerError {
			message = e.Message
			errCode = strings.ToUpper(strings.ReplaceAll(fiberutils.StatusMessage(code), " ", "_"))
		}
	}

	log.Printf("Error %d: %v", code, err)

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: errCode,
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
