package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eapulse/eapulse/internal/api"
	"github.com/eapulse/eapulse/internal/cache"
	"github.com/eapulse/eapulse/internal/config"
	"github.com/eapulse/eapulse/internal/engine"
	"github.com/eapulse/eapulse/internal/health"
	"github.com/eapulse/eapulse/internal/store"
	"github.com/eapulse/eapulse/pkg/classify"
	"github.com/eapulse/eapulse/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and pattern-state scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	startCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	st, err := store.NewPostgresStore(startCtx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(startCtx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	var classifierCache classify.Cache
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(startCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rc.Close()
		classifierCache = rc
		log.Info("classifier cache", "backend", "redis", "addr", cfg.Redis.Addr)
	} else {
		classifierCache = cache.NewMemoryCache()
		log.Info("classifier cache", "backend", "memory")
	}

	backend, err := llmBackend(cfg)
	if err != nil {
		return err
	}

	classifier := classify.NewBatchClassifier(backend,
		classify.WithCache(classifierCache),
		classify.WithCacheTTL(cfg.Engine.ClassifierCacheTTL),
		classify.WithRateLimit(cfg.Engine.RateLimit.PerSecond, cfg.Engine.RateLimit.Burst),
		classify.WithRetry(cfg.Engine.ClassifierRetries, cfg.Engine.ClassifierRetryBase),
		classify.WithLogger(log),
	)

	eng := engine.NewEngine(st, classifier, engine.WithLogger(log))
	scorer := health.NewScorer(st, health.WithLogger(log))

	sched, err := engine.NewScheduler(st, cfg.Schedule.PatternSweep, log)
	if err != nil {
		return fmt.Errorf("building scheduler: %w", err)
	}
	sched.Start()

	e := api.NewRouter(api.Deps{
		Store:  st,
		Engine: eng,
		Scorer: scorer,
		Log:    log,
	})
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr, "llm_backend", cfg.LLM.Backend)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	<-sched.Stop().Done()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func llmBackend(cfg *config.Config) (classify.LLMBackend, error) {
	switch cfg.LLM.Backend {
	case "ollama":
		return classify.NewOllamaBackend(
			cfg.LLM.Ollama.Endpoint,
			cfg.LLM.Ollama.Model,
			classify.WithOllamaTimeout(cfg.LLM.Timeout),
		), nil
	case "anthropic":
		return classify.NewAnthropicBackend(
			classify.WithAnthropicModel(cfg.LLM.Anthropic.Model),
			classify.WithAnthropicTimeout(cfg.LLM.Timeout),
		), nil
	case "openai_compat":
		return classify.NewOpenAICompatBackend(
			cfg.LLM.OpenAICompat.Endpoint,
			cfg.LLM.OpenAICompat.Model,
			classify.WithOpenAICompatTimeout(cfg.LLM.Timeout),
		), nil
	default:
		return nil, fmt.Errorf("unknown llm backend: %q", cfg.LLM.Backend)
	}
}
