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

	"golang.org/x/sync/errgroup"

	"github.com/kislikjeka/finpanel/internal/infra/gateway/financeapi"
	infraRedis "github.com/kislikjeka/finpanel/internal/infra/redis"
	"github.com/kislikjeka/finpanel/internal/module/transactions"
	"github.com/kislikjeka/finpanel/internal/platform/flash"
	"github.com/kislikjeka/finpanel/internal/platform/identity"
	"github.com/kislikjeka/finpanel/internal/platform/transaction"
	"github.com/kislikjeka/finpanel/internal/platform/user"
	"github.com/kislikjeka/finpanel/internal/transport/web"
	"github.com/kislikjeka/finpanel/internal/transport/web/handler"
	"github.com/kislikjeka/finpanel/internal/transport/web/middleware"
	"github.com/kislikjeka/finpanel/pkg/config"
	"github.com/kislikjeka/finpanel/pkg/logger"
	assets "github.com/kislikjeka/finpanel/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewDefault(cfg.Env)
	log.Info("Starting finpanel web front-end",
		"env", cfg.Env,
		"port", cfg.Port,
		"api_url", cfg.APIURL,
	)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	// Users allowed to sign in
	usersConfig, err := config.LoadUsersConfig(cfg.UsersConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	userRepo, err := user.NewRepositoryFromConfig(usersConfig)
	if err != nil {
		return fmt.Errorf("failed to build user directory: %w", err)
	}
	userSvc := user.NewService(userRepo, log)
	log.Info("User directory loaded", "users", len(usersConfig.Users))

	// Finance API client: the bearer hook reads the principal the session
	// middleware put into the request context
	issuer := identity.NewTokenIssuer(cfg.SessionSecret)
	apiClient, err := financeapi.NewClient(financeapi.Config{
		RootURL: cfg.APIURL,
		Timeout: cfg.APITimeout,
	}, log, financeapi.BearerToken(identity.ContextProvider{}))
	if err != nil {
		return fmt.Errorf("failed to create finance API client: %w", err)
	}
	transactionSvc := transaction.NewService(apiClient)
	log.Info("Finance API client initialized", "base_url", apiClient.BaseURL(), "timeout", apiClient.Timeout())

	// Flash notifications: redis when configured, memory otherwise
	var (
		flashStore  flash.Store
		memoryStore *flash.MemoryStore
	)
	healthChecks := map[string]handler.Pinger{}
	if cfg.RedisURL != "" {
		redisClient, err := infraRedis.Connect(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()

		store := infraRedis.NewFlashStore(redisClient, log)
		flashStore = store
		healthChecks["redis"] = store
		log.Info("Redis connection established")
	} else {
		memoryStore = flash.NewMemoryStore()
		flashStore = memoryStore
		log.Warn("REDIS_URL not configured, flash messages kept in memory")
	}
	notifier := flash.NewNotifier(flashStore, log)

	// Sessions: one transactions controller per signed-in browser
	sessions := middleware.NewSessionStore(func() *transactions.Controller {
		return transactions.NewController(transactionSvc, notifier, log, transaction.PeriodOf(time.Now()))
	}, middleware.SessionOptions{
		IdleTimeout:  cfg.SessionIdleTimeout,
		SecureCookie: cfg.IsProduction(),
	}, log)

	renderer, err := handler.NewRenderer(assets.TemplatesFS, log)
	if err != nil {
		return err
	}

	r := web.NewRouter(web.Config{
		Logger:              log,
		AllowedOrigins:      cfg.AllowedOrigins,
		Sessions:            sessions,
		AuthHandler:         handler.NewAuthHandler(userSvc, issuer, sessions, renderer, log),
		TransactionsHandler: handler.NewTransactionsHandler(flashStore, renderer, log),
		HealthHandler:       handler.NewHealthHandler(healthChecks),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second + cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sessions.Run(gctx)
	})

	if memoryStore != nil {
		g.Go(func() error {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					memoryStore.Sweep()
				}
			}
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
