package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/Strob0t/TaskScheduler/internal/adapter/filestore"
	tshttp "github.com/Strob0t/TaskScheduler/internal/adapter/http"
	tsmcp "github.com/Strob0t/TaskScheduler/internal/adapter/mcp"
	tsnats "github.com/Strob0t/TaskScheduler/internal/adapter/nats"
	"github.com/Strob0t/TaskScheduler/internal/adapter/natskv"
	tsotel "github.com/Strob0t/TaskScheduler/internal/adapter/otel"
	"github.com/Strob0t/TaskScheduler/internal/adapter/ristretto"
	"github.com/Strob0t/TaskScheduler/internal/adapter/tiered"
	"github.com/Strob0t/TaskScheduler/internal/adapter/web"
	"github.com/Strob0t/TaskScheduler/internal/adapter/ws"
	"github.com/Strob0t/TaskScheduler/internal/config"
	"github.com/Strob0t/TaskScheduler/internal/logger"
	"github.com/Strob0t/TaskScheduler/internal/middleware"
	"github.com/Strob0t/TaskScheduler/internal/port/cache"
	"github.com/Strob0t/TaskScheduler/internal/port/messagequeue"
	"github.com/Strob0t/TaskScheduler/internal/resilience"
	"github.com/Strob0t/TaskScheduler/internal/service"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	defer logCloser.Close()
	slog.SetDefault(log)

	loc, err := cfg.Storage.Location()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"base_dir", cfg.Storage.BaseDir,
		"timezone", loc.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---

	otelShutdown, err := tsotel.Setup(ctx, cfg.OTEL)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	metrics, err := tsotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}

	// NATS (optional)
	var (
		queue messagequeue.Queue
		natsQ *tsnats.Queue
	)
	if cfg.NATS.URL != "" {
		natsQ, err = tsnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() {
			if err := natsQ.Drain(); err != nil {
				slog.Error("nats drain", "error", err)
			}
		}()
		queue = natsQ
	}

	// --- Services ---
	store := filestore.New(filestore.Options{
		BaseDir:  cfg.Storage.BaseDir,
		Location: loc,
	})
	hub := ws.NewHub(cfg.Server.CORSOrigin)
	taskSvc := service.NewTaskService(store, queue, hub)
	taskSvc.SetBreaker(resilience.NewBreaker("nats-publish", cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))
	taskSvc.SetMetrics(metrics)

	// --- HTTP ---
	handlers := &tshttp.Handlers{Tasks: taskSvc}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(tshttp.Logger)
	r.Use(chimw.Recoverer)
	r.Use(tshttp.CORS(cfg.Server.CORSOrigin))

	// Health endpoint with service status
	r.Get("/health", healthHandler(store, queue, hub))

	// WebSocket endpoint
	r.Get("/ws", hub.HandleWS)

	// MCP endpoint for automation agents
	if cfg.MCP.Enabled {
		mcpSrv := tsmcp.NewServer(
			tsmcp.ServerConfig{Name: cfg.MCP.Name, Version: tshttp.Version},
			tsmcp.ServerDeps{Tasks: taskSvc},
		)
		r.Handle("/mcp", mcpSrv.Handler())
		slog.Info("mcp endpoint enabled", "path", "/mcp")
	}

	// API routes
	idemCache, err := newIdempotencyCache(ctx, cfg.Idempotency, natsQ)
	if err != nil {
		return err
	}
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		limiter.StartCleanup(ctx, time.Minute, 10*time.Minute)
	}
	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))
		r.Use(tsotel.HTTPMiddleware(cfg.OTEL.ServiceName))
		if limiter != nil {
			r.Use(limiter.Handler)
		}
		if idemCache != nil {
			r.Use(middleware.Idempotency(idemCache, cfg.Idempotency.TTL))
		}
		tshttp.MountRoutes(r, handlers)
	})

	// Browser page
	r.With(tshttp.SecurityHeaders).Handle("/*", web.Handler())

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "addr", addr, "bucket", store.BucketKey())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newIdempotencyCache builds the Idempotency-Key response cache: ristretto in
// process, layered over a NATS KV bucket when shared and NATS is available.
// It returns nil when idempotency is disabled.
func newIdempotencyCache(ctx context.Context, cfg config.Idempotency, q *tsnats.Queue) (cache.Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	local, err := ristretto.New(cfg.CacheSizeMB << 20)
	if err != nil {
		return nil, fmt.Errorf("idempotency cache: %w", err)
	}
	if !cfg.Shared || q == nil {
		return local, nil
	}

	shared, err := natskv.Open(ctx, q.JetStream(), "taskscheduler-idempotency", cfg.TTL)
	if err != nil {
		return nil, fmt.Errorf("idempotency kv: %w", err)
	}
	slog.Info("idempotency cache shared via nats kv")
	return tiered.New(local, shared, cfg.TTL), nil
}

// healthHandler returns an http.HandlerFunc that reports service health.
func healthHandler(store *filestore.Store, queue messagequeue.Queue, hub *ws.Hub) http.HandlerFunc {
	type healthStatus struct {
		Status    string `json:"status"`
		Bucket    string `json:"bucket"`
		NATS      string `json:"nats"`
		WSClients int    `json:"ws_clients"`
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		status := healthStatus{
			Status:    "ok",
			Bucket:    store.BucketKey(),
			NATS:      "disabled",
			WSClients: hub.ConnectionCount(),
		}
		if queue != nil {
			status.NATS = "disconnected"
			if queue.IsConnected() {
				status.NATS = "connected"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status)
	}
}
