// Package server wires the SecondBrain auth server together: PostgreSQL user
// directory, Redis session store, token issuing and validation, the HTTP API
// and the gRPC listener. It also owns graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/logging"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/auth"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/authn"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/config"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/httpapi"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/metrics"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/oauth"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/repositories/repomanager"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/services"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/server/sessions"

	gs "github.com/PPPP98/SSAFY-SecondBrain/internal/server/grpc"
)

const (
	livenessRetryDelay = 50 * time.Millisecond
	shutdownTimeout    = 10 * time.Second
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	redis      *redis.Client
	httpServer *http.Server
	grpcServer *gs.GRPCServer
}

// NewApp builds every component from c. It fails fast when the signing key
// is too short, before any connection is opened.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	key, err := auth.NewSigningKey([]byte(c.SecretKey))
	if err != nil {
		return nil, err
	}
	codec := auth.NewCodec(key)
	issuer := auth.NewIssuer(codec, c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)
	validator := auth.NewValidator(codec, logger)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
	store := sessions.NewRedisStore(rdb,
		sessions.WithPrefix(c.SessionKeyPrefix),
		sessions.WithScanBatch(c.RevokeScanBatch),
		sessions.WithTimeout(c.StoreTimeout),
		sessions.WithLogger(logger),
	)
	checker := sessions.NewChecker(store, livenessRetryDelay, logger)

	am := metrics.NewAuthMetrics()
	registry := prometheus.NewRegistry()
	registry.MustRegister(am)

	svc := services.NewAuthService(db, rm, issuer, validator, store, checker, am, logger)
	authenticator := authn.NewAuthenticator(validator, svc, logger)

	idp := oauth.NewProvider(oauth.Config{
		ClientID:     c.OAuthClientID,
		ClientSecret: c.OAuthClientSecret,
		RedirectURL:  c.OAuthRedirectURL,
		AuthURL:      c.OAuthAuthURL,
		TokenURL:     c.OAuthTokenURL,
		UserInfoURL:  c.OAuthUserInfoURL,
	})

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Handler:        httpapi.NewHandler(svc, idp, httpapi.CookieConfig{Secure: c.CookieSecure, Domain: c.CookieDomain}, logger),
		Authenticator:  authenticator,
		Metrics:        am,
		MetricsHandler: metrics.Handler(registry),
		Logger:         logger,
	})

	return &App{
		config: c,
		logger: logger,
		db:     db,
		redis:  rdb,
		httpServer: &http.Server{
			Addr:              c.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		grpcServer: gs.NewGRPCServer(c.GRPCAddr, logger, authenticator, svc, am),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown failed", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

// Run serves HTTP and gRPC until ctx is canceled or a signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.redis.Close(); err != nil {
		app.logger.Error(ctx, "redis close failed", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
