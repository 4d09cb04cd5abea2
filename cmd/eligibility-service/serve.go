// cmd/eligibility-service/serve.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"scheme-eligibility/internal/api"
	"scheme-eligibility/internal/catalog"
	"scheme-eligibility/internal/common/camunda"
	"scheme-eligibility/internal/common/config"
	"scheme-eligibility/internal/common/database"
	"scheme-eligibility/internal/common/logger"
	"scheme-eligibility/internal/common/observability"
	"scheme-eligibility/internal/eligibility"
	"scheme-eligibility/internal/explanation"
	"scheme-eligibility/internal/session"
	ee "scheme-eligibility/internal/workers/eligibility/evaluate-eligibility"
	ge "scheme-eligibility/internal/workers/eligibility/generate-explanation"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, metrics and the Zeebe job workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, root, cfg)
		},
	}
}

func serve(ctx context.Context, root *rootOptions, cfg *config.Config) error {
	zapLog, log := newLogger(cfg)
	defer func() { _ = zapLog.Sync() }()

	log.Info("starting eligibility service", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"provider":    cfg.Explanation.Provider,
	})

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	cat, err := root.loadCatalog(cfg)
	if err != nil {
		return err
	}
	log.Info("catalog loaded", map[string]interface{}{"schemes": len(cat.List())})

	rc, err := connectRedis(ctx, cfg, log)
	if err != nil {
		return err
	}
	var rdb redis.Cmdable
	if rc != nil {
		defer rc.Close()
		rdb = rc.GetClient()
	}

	explainer, err := explanation.New(ctx, cfg.Explanation, rdb, obs, log)
	if err != nil {
		return fmt.Errorf("explanation service: %w", err)
	}
	sequencer := eligibility.NewSequencer(log)

	store := session.NewStore(session.Deps{
		Schemes:      cat,
		Sequencer:    sequencer,
		Explainer:    explainer,
		Alternatives: cfg.Explanation.FallbackAlternatives,
		Obs:          obs,
		Logger:       log,
	}, config.GetDuration(cfg.Session.IdleTTL))

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeProbe(w, http.StatusOK, "healthy", "")
	})
	r.Get("/ready", readinessHandler(rc))
	if cfg.Metrics.Enabled && (cfg.Metrics.Address == "" || cfg.Metrics.Address == cfg.Server.Address) {
		r.Handle("/metrics", promhttp.Handler())
	}
	api.New(cat, store, obs, log, 0).Register(r)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      r,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	servers := []*http.Server{srv}
	if cfg.Metrics.Enabled && cfg.Metrics.Address != "" && cfg.Metrics.Address != cfg.Server.Address {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		servers = append(servers, &http.Server{Addr: cfg.Metrics.Address, Handler: mux, ReadTimeout: 10 * time.Second})
	}

	var stopWorkers func()
	if cfg.Camunda.BrokerAddress != "" {
		stopWorkers, err = startWorkers(cfg, cat, sequencer, explainer, obs, log)
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		s := s
		g.Go(func() error {
			log.Info("listening", map[string]interface{}{"address": s.Addr})
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server %s: %w", s.Addr, err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
			defer cancel()
			return s.Shutdown(shutdownCtx)
		})
	}

	if interval := config.GetDuration(cfg.Session.SweepInterval); interval > 0 {
		g.Go(func() error { return store.RunSweeper(gctx, interval) })
	}

	if stopWorkers != nil {
		g.Go(func() error {
			<-gctx.Done()
			stopWorkers()
			return nil
		})
	}

	err = g.Wait()
	log.Info("eligibility service stopped", nil)
	return err
}

// connectRedis returns nil when no address is configured. An unreachable
// Redis disables the explanation cache instead of failing startup.
func connectRedis(ctx context.Context, cfg *config.Config, log logger.Logger) (*database.RedisClient, error) {
	if cfg.Database.Redis.Address == "" {
		return nil, nil
	}
	rc, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		log.Warn("redis unavailable, explanation cache disabled", map[string]interface{}{
			"address": cfg.Database.Redis.Address,
			"error":   err.Error(),
		})
		_ = rc.Close()
		return nil, nil
	}
	log.Info("redis connected", map[string]interface{}{"address": cfg.Database.Redis.Address})
	return rc, nil
}

func readinessHandler(rc *database.RedisClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rc != nil {
			if err := rc.Ping(r.Context()); err != nil {
				writeProbe(w, http.StatusServiceUnavailable, "unavailable", err.Error())
				return
			}
		}
		writeProbe(w, http.StatusOK, "ready", "")
	}
}

func writeProbe(w http.ResponseWriter, status int, state, detail string) {
	body := map[string]string{
		"status": state,
		"time":   time.Now().Format(time.RFC3339),
	}
	if detail != "" {
		body["error"] = detail
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func startWorkers(
	cfg *config.Config,
	cat *catalog.Catalog,
	sequencer *eligibility.Sequencer,
	explainer explanation.Explainer,
	obs *observability.Observability,
	log logger.Logger,
) (func(), error) {
	client, err := camunda.NewClientWithConfig(&camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
	})
	if err != nil {
		return nil, err
	}

	var workers []*camunda.CamundaWorker
	if config.IsWorkerEnabled(cfg, ee.TaskType) {
		wc := config.GetWorkerConfig(cfg, ee.TaskType)
		handler := ee.NewHandler(ee.LoadConfig(cfg), cat, sequencer, log)
		workers = append(workers, camunda.NewWorker(client.GetClient(), ee.TaskType, camunda.WorkerOptions{
			MaxJobsActive: wc.MaxJobsActive,
			Timeout:       config.GetDuration(wc.Timeout),
		}, handler, obs, log))
	}
	if config.IsWorkerEnabled(cfg, ge.TaskType) {
		wc := config.GetWorkerConfig(cfg, ge.TaskType)
		handler := ge.NewHandler(ge.LoadConfig(cfg), cat, explainer, log)
		workers = append(workers, camunda.NewWorker(client.GetClient(), ge.TaskType, camunda.WorkerOptions{
			MaxJobsActive: wc.MaxJobsActive,
			Timeout:       config.GetDuration(wc.Timeout),
		}, handler, obs, log))
	}

	return func() {
		for _, w := range workers {
			w.Stop()
		}
		_ = client.Close()
	}, nil
}
