package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/HammerMeetNail/secretapp/internal/assets"
	"github.com/HammerMeetNail/secretapp/internal/config"
	"github.com/HammerMeetNail/secretapp/internal/database"
	"github.com/HammerMeetNail/secretapp/internal/handlers"
	"github.com/HammerMeetNail/secretapp/internal/logging"
	"github.com/HammerMeetNail/secretapp/internal/middleware"
	"github.com/HammerMeetNail/secretapp/internal/services"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to seed the environment from")
	skipMigrations := pflag.Bool("skip-migrations", false, "do not apply database migrations at startup")
	pflag.Parse()

	if err := run(*envFile, *skipMigrations); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run(envFile string, skipMigrations bool) error {
	logger := logging.New()

	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Server.Debug {
		logger.SetLevel(logging.LevelDebug)
		logging.SetDefaultLevel(logging.LevelDebug)
		logger.Debug("Debug logging enabled", map[string]interface{}{"env": cfg.Server.Environment})
	}

	logger.Info("Starting Secret App server...")

	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	if !skipMigrations {
		if err := migrateUp(cfg, logger); err != nil {
			return err
		}
	}

	logger.Info("Connecting to Redis", map[string]interface{}{"addr": cfg.Redis.Addr()})
	redisDB, err := database.NewRedisDB(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()

	// Services
	dbAdapter := services.NewPoolAdapter(db.Pool)
	redisAdapter := services.NewRedisAdapter(redisDB.Client)

	userService := services.NewUserService(dbAdapter)
	authService := services.NewAuthService(dbAdapter, redisAdapter)
	authService.SetSessionDuration(cfg.Auth.SessionDuration)
	profileService := services.NewProfileService(dbAdapter)
	secretService := services.NewSecretService(dbAdapter)
	friendService := services.NewFriendService(dbAdapter, secretService)
	serviceRole := services.NewServiceRoleVerifier(cfg.Auth.ServiceRoleSecret)
	if !serviceRole.Enabled() {
		logger.Warn("SERVICE_ROLE_SECRET not set; admin API disabled")
	}

	// Handlers
	healthHandler := handlers.NewHealthHandler(db, redisDB)
	authHandler := handlers.NewAuthHandler(userService, authService, cfg.Server.Secure, cfg.Auth.SessionDuration)
	adminHandler := handlers.NewAdminHandler(userService, authService)
	profileHandler := handlers.NewProfileHandler(profileService)
	secretHandler := handlers.NewSecretHandler(secretService)
	friendHandler := handlers.NewFriendHandler(friendService)
	manifest := assets.NewManifest(cfg.Server.StaticDir)
	if err := manifest.Load(); err != nil {
		return err
	}
	pageHandler, err := handlers.NewPageHandler(cfg.Server.TemplatesDir, handlers.PageServices{
		Profiles: profileService,
		Secrets:  secretService,
		Friends:  friendService,
		Assets:   manifest,
	})
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)
	serviceRoleMiddleware := middleware.NewServiceRoleMiddleware(serviceRole)
	csrfMiddleware := middleware.NewCSRFMiddleware(cfg.Server.Secure)
	securityHeaders := middleware.NewSecurityHeaders(cfg.Server.Secure)
	cacheControl := middleware.NewCacheControl()
	compress := middleware.NewCompress()
	requestLogger := middleware.NewRequestLogger(logger)
	loginLimiter := middleware.NewLoginRateLimiter(middleware.NewRedisCounter(redisDB.Client), cfg.Auth.LoginRateLimit)

	requireAuth := authMiddleware.RequireAuth
	requirePage := authMiddleware.RequirePage
	limitLogin := loginLimiter.Middleware

	mux := http.NewServeMux()

	// Health endpoints
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	mux.HandleFunc("GET /api/csrf", csrfMiddleware.GetToken)

	// Auth endpoints
	mux.Handle("POST /api/auth/register", limitLogin(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", limitLogin(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(authHandler.Me)))
	mux.Handle("DELETE /api/account", requireAuth(http.HandlerFunc(authHandler.DeleteAccount)))

	// Admin endpoints
	mux.Handle("DELETE /api/admin/users/{id}", serviceRoleMiddleware.Require(http.HandlerFunc(adminHandler.DeleteUser)))

	// Profile endpoints
	mux.Handle("GET /api/profile", requireAuth(http.HandlerFunc(profileHandler.Get)))
	mux.Handle("PUT /api/profile", requireAuth(http.HandlerFunc(profileHandler.Update)))

	// Secret endpoints
	mux.Handle("GET /api/secrets", requireAuth(http.HandlerFunc(secretHandler.List)))
	mux.Handle("POST /api/secrets", requireAuth(http.HandlerFunc(secretHandler.Create)))
	mux.Handle("PUT /api/secrets/{id}", requireAuth(http.HandlerFunc(secretHandler.Update)))
	mux.Handle("DELETE /api/secrets/{id}", requireAuth(http.HandlerFunc(secretHandler.Delete)))

	// Friend endpoints
	mux.Handle("GET /api/friends", requireAuth(http.HandlerFunc(friendHandler.View)))
	mux.Handle("POST /api/friends/requests", requireAuth(http.HandlerFunc(friendHandler.SendRequest)))
	mux.Handle("POST /api/friends/requests/{requesterId}/accept", requireAuth(http.HandlerFunc(friendHandler.AcceptRequest)))
	mux.Handle("GET /api/friends/{id}/secret", requireAuth(http.HandlerFunc(friendHandler.Secret)))

	// Form posts from the server-rendered pages
	mux.Handle("POST /sign-in", limitLogin(http.HandlerFunc(authHandler.SignInForm)))
	mux.Handle("POST /sign-up", limitLogin(http.HandlerFunc(authHandler.SignUpForm)))
	mux.HandleFunc("POST /sign-out", authHandler.SignOutForm)

	// Pages
	mux.HandleFunc("GET /{$}", pageHandler.Home)
	mux.HandleFunc("GET /sign-in", pageHandler.SignIn)
	mux.HandleFunc("GET /sign-up", pageHandler.SignUp)
	mux.Handle("GET /protected", requirePage(http.HandlerFunc(pageHandler.Protected)))
	mux.Handle("GET /protected/secrets", requirePage(http.HandlerFunc(pageHandler.Secrets)))
	mux.Handle("GET /protected/friends", requirePage(http.HandlerFunc(pageHandler.Friends)))

	// Static files
	fs := http.FileServer(http.Dir(cfg.Server.StaticDir))
	mux.Handle("GET /static/", http.StripPrefix("/static/", fs))

	mux.HandleFunc("/", pageHandler.NotFound)

	// Build middleware chain (order matters: outermost last)
	var handler http.Handler = mux
	handler = csrfMiddleware.Protect(handler)
	handler = requestLogger.Apply(handler)
	handler = authMiddleware.Authenticate(handler)
	handler = compress.Apply(handler)
	handler = cacheControl.Apply(handler)
	handler = securityHeaders.Apply(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{"addr": addr})
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}

func migrateUp(cfg *config.Config, logger *logging.Logger) error {
	logger.Info("Running database migrations...", map[string]interface{}{"dir": cfg.Server.MigrationsDir})
	migrator, err := database.NewMigrator(cfg.Database.DSN(), cfg.Server.MigrationsDir)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer func() { _ = migrator.Close() }()

	if err := migrator.Up(); err != nil {
		return err
	}
	status, err := migrator.Status()
	if err != nil {
		return err
	}
	logger.Info("Migrations completed", map[string]interface{}{"version": status.Version, "dirty": status.Dirty})
	return nil
}
