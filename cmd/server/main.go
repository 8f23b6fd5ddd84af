package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okovalenko/wishlink/internal/cache"
	"github.com/okovalenko/wishlink/internal/config"
	"github.com/okovalenko/wishlink/internal/database"
	"github.com/okovalenko/wishlink/internal/email"
	"github.com/okovalenko/wishlink/internal/handlers"
	"github.com/okovalenko/wishlink/internal/identity"
	"github.com/okovalenko/wishlink/internal/logging"
	"github.com/okovalenko/wishlink/internal/middleware"
	"github.com/okovalenko/wishlink/internal/services"
	"github.com/okovalenko/wishlink/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", logging.Fields{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := logging.ParseLevel(cfg.LogLevel)
	logger.SetLevel(level)
	logging.SetDefaultLevel(level)

	logger.Info("Starting WishLink server...")

	// Connect to PostgreSQL
	logger.Info("Connecting to PostgreSQL", logging.Fields{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	// Run migrations
	logger.Info("Running database migrations...")
	migrator, err := database.NewMigrator(cfg.Database.DSN(), "migrations")
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()

	// Connect to Redis
	logger.Info("Connecting to Redis", logging.Fields{"addr": cfg.Redis.Addr()})
	redisDB, err := database.NewRedisDB(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()

	// Wire the stack: remote document store, local cache, identity provider.
	docStore := store.NewPostgresStore(db.Pool)
	snapshotCache := cache.NewRedisCache(redisDB.Client)
	mailer := email.NewSender(&cfg.Email)
	provider := identity.NewLocalProvider(db.Pool, redisDB.Client, mailer, cfg.Email.BaseURL)

	sessionService := services.NewSessionService(provider, docStore, snapshotCache)
	wishlistService := services.NewWishlistService(docStore, snapshotCache, sessionService)
	friendService := services.NewFriendService(docStore, snapshotCache, sessionService)

	healthHandler := handlers.NewHealthHandler(db, redisDB)
	authHandler := handlers.NewAuthHandler(sessionService, cfg.Server.Secure)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)
	friendHandler := handlers.NewFriendHandler(friendService)

	authMiddleware := middleware.NewAuthMiddleware(sessionService)
	securityHeaders := middleware.NewSecurityHeaders(cfg.Server.Secure)
	requestLogger := middleware.NewRequestLogger(logger)
	authLimiter := middleware.NewAuthRateLimiter(redisDB.Client)
	apiLimiter := middleware.NewAPIRateLimiter(redisDB.Client)

	requireAuth := authMiddleware.RequireAuth

	mux := http.NewServeMux()

	// Health endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	// Auth endpoints; credential handlers sit behind the stricter limiter
	mux.Handle("POST /api/auth/register", authLimiter.Limit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", authLimiter.Limit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/auth/logout", apiLimiter.Limit(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/auth/me", apiLimiter.Limit(http.HandlerFunc(authHandler.Me)))
	mux.Handle("POST /api/auth/forgot-password", authLimiter.Limit(http.HandlerFunc(authHandler.ForgotPassword)))
	mux.Handle("POST /api/auth/reset-password", authLimiter.Limit(http.HandlerFunc(authHandler.ResetPassword)))
	mux.Handle("POST /api/auth/verify-email", authLimiter.Limit(http.HandlerFunc(authHandler.VerifyEmail)))
	mux.Handle("PUT /api/auth/profile", apiLimiter.Limit(requireAuth(http.HandlerFunc(authHandler.UpdateProfile))))
	mux.Handle("GET /api/users/exists", apiLimiter.Limit(http.HandlerFunc(authHandler.UserExists)))
	mux.Handle("GET /api/users/search", apiLimiter.Limit(requireAuth(http.HandlerFunc(friendHandler.Search))))

	// Wishlist endpoints
	mux.Handle("GET /api/wishlists", apiLimiter.Limit(requireAuth(http.HandlerFunc(wishlistHandler.List))))
	mux.Handle("POST /api/wishlists", apiLimiter.Limit(requireAuth(http.HandlerFunc(wishlistHandler.Create))))
	mux.Handle("GET /api/wishlists/{id}", apiLimiter.Limit(requireAuth(http.HandlerFunc(wishlistHandler.Get))))
	mux.Handle("DELETE /api/wishlists/{id}", apiLimiter.Limit(requireAuth(http.HandlerFunc(wishlistHandler.Delete))))
	mux.Handle("POST /api/wishlists/{id}/items", apiLimiter.Limit(requireAuth(http.HandlerFunc(wishlistHandler.AddItem))))
	mux.Handle("DELETE /api/wishlists/{id}/items/{itemId}", apiLimiter.Limit(requireAuth(http.HandlerFunc(wishlistHandler.RemoveItem))))

	// Friend endpoints
	mux.Handle("GET /api/friends", apiLimiter.Limit(requireAuth(http.HandlerFunc(friendHandler.List))))
	mux.Handle("GET /api/friends/requests", apiLimiter.Limit(requireAuth(http.HandlerFunc(friendHandler.ListRequests))))
	mux.Handle("POST /api/friends/requests", apiLimiter.Limit(requireAuth(http.HandlerFunc(friendHandler.SendRequest))))
	mux.Handle("PUT /api/friends/requests/{email}/accept", apiLimiter.Limit(requireAuth(http.HandlerFunc(friendHandler.AcceptRequest))))
	mux.Handle("DELETE /api/friends/requests/{email}", apiLimiter.Limit(requireAuth(http.HandlerFunc(friendHandler.RejectRequest))))
	mux.Handle("DELETE /api/friends/{email}", apiLimiter.Limit(requireAuth(http.HandlerFunc(friendHandler.Remove))))
	mux.Handle("GET /api/friends/{email}/wishlists", apiLimiter.Limit(requireAuth(http.HandlerFunc(wishlistHandler.FriendWishlists))))

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = mux
	handler = authMiddleware.Authenticate(handler)
	handler = securityHeaders.Apply(handler)
	handler = requestLogger.Apply(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", logging.Fields{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", logging.Fields{"addr": addr})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}
