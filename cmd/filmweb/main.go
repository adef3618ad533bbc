// cmd/filmweb/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	httpAPI "github.com/Victorissad/Mario-VIS/internal/api"
	"github.com/Victorissad/Mario-VIS/internal/clients"
	"github.com/Victorissad/Mario-VIS/internal/config"
	grpcHealth "github.com/Victorissad/Mario-VIS/internal/grpc"
	"github.com/Victorissad/Mario-VIS/internal/store"
)

const (
	janitorInterval = 10 * time.Minute
	probeInterval   = 15 * time.Second
)

// redactDSN hides the password of a database URL for logging.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "<unparsable>"
	}
	return u.Redacted()
}

func main() {
	configPath := flag.String("config", os.Getenv("FILMWEB_CONFIG"), "path to a YAML configuration file")
	flag.Parse()

	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg, err := config.Load(*configPath, bootLogger)
	if err != nil {
		bootLogger.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- Session store ---
	var (
		sessionStore store.SessionStore
		probe        grpcHealth.Probe
	)
	if cfg.Database.URL != "" {
		logger.Info("Using PostgreSQL session store", slog.String("dbURL_used", redactDSN(cfg.Database.URL)))
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		db, err := store.Connect(connectCtx, cfg.Database.URL, logger)
		cancel()
		if err != nil {
			logger.Error("Filmweb failed to initialize database connection", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			logger.Info("Closing session PostgreSQL database connection...")
			if err := db.Close(); err != nil {
				logger.Error("Failed to close session PostgreSQL connection", slog.String("error", err.Error()))
			}
		}()

		pgStore, err := store.NewPostgresSessionStore(db, logger)
		if err != nil {
			logger.Error("Failed to initialize PostgreSQL session store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		sessionStore = pgStore
		probe = db.PingContext
	} else {
		logger.Warn("DATABASE_URL not set, sessions are kept in memory and lost on restart.")
		sessionStore = store.NewMemorySessionStore(logger)
	}

	// --- Remote catalog API ---
	httpClient := &http.Client{}
	filmClient := clients.NewFilmAPIClient(cfg.API.BaseURL, httpClient, logger)
	authClient := clients.NewAuthAPIClient(cfg.API.BaseURL, cfg.API.LoginPath, httpClient, logger)
	logger.Info("Film catalog API configured", slog.String("base_url", cfg.API.BaseURL))

	// --- HTTP front-end ---
	views, err := httpAPI.NewRenderer(logger)
	if err != nil {
		logger.Error("Failed to parse templates", slog.String("error", err.Error()))
		os.Exit(1)
	}
	validate := httpAPI.NewValidator()
	sessions := httpAPI.NewSessions([]byte(cfg.Session.Key), cfg.Session.SecureCookie, cfg.Session.TTL, sessionStore, logger)
	go sessions.RunJanitor(ctx, janitorInterval)

	router := httpAPI.NewHTTPRouter(ctx,
		httpAPI.NewFilmHandler(filmClient, sessions, views, validate, logger),
		httpAPI.NewAuthHandler(authClient, sessions, views, validate, logger),
		sessions, views, logger,
		httpAPI.RouterConfig{
			CSRFKey:        []byte(cfg.CSRF.Key),
			SecureCookie:   cfg.Session.SecureCookie,
			LimiterEnabled: cfg.Limiter.Enabled,
			LimiterRPS:     cfg.Limiter.RPS,
			LimiterBurst:   cfg.Limiter.Burst,
		},
	)
	if cfg.CSRF.Key == "" {
		logger.Warn("FILMWEB_CSRF_KEY not set, CSRF protection is disabled.")
	}

	httpSrv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second, // covers one catalog call bounded by clients.DefaultTimeout
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	// --- gRPC health ---
	health := grpcHealth.NewHealthServer(logger)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPC.Port))
	if err != nil {
		logger.Error("Failed to listen for gRPC health", slog.String("port", cfg.GRPC.Port), slog.String("error", err.Error()))
		os.Exit(1)
	}
	grpcSrv := grpc.NewServer()
	health.Register(grpcSrv)

	go func() {
		logger.Info("Filmweb gRPC health server starting", slog.String("port", cfg.GRPC.Port))
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("Filmweb gRPC server Serve() failed", slog.String("error", err.Error()))
		}
	}()

	go func() {
		logger.Info("Filmweb HTTP server starting", slog.String("port", cfg.HTTP.Port))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Filmweb HTTP server ListenAndServe() failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	health.SetServing()
	if probe != nil {
		go health.Watch(ctx, probeInterval, probe)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	logger.Info("Filmweb shutting down...")
	health.Shutdown()
	stop()

	ctxHttp, cancelHttp := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelHttp()
	if err := httpSrv.Shutdown(ctxHttp); err != nil {
		logger.Error("Filmweb HTTP Server Shutdown Failed", slog.String("error", err.Error()))
	} else {
		logger.Info("Filmweb HTTP Server gracefully stopped.")
	}

	grpcSrv.GracefulStop()
	logger.Info("Filmweb gRPC server gracefully stopped.")
}
