package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/PabloGalante/liora-api/internal/adapters/http"
	"github.com/PabloGalante/liora-api/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/liora-api/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/liora-api/internal/adapters/storage/memory"
	sqlitestore "github.com/PabloGalante/liora-api/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/liora-api/internal/app/community"
	"github.com/PabloGalante/liora-api/internal/app/conversation"
	"github.com/PabloGalante/liora-api/internal/app/counselling"
	"github.com/PabloGalante/liora-api/internal/app/journal"
	"github.com/PabloGalante/liora-api/internal/app/screening"
	"github.com/PabloGalante/liora-api/internal/config"
	"github.com/PabloGalante/liora-api/internal/domain"
	"github.com/PabloGalante/liora-api/internal/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("liora api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("LIORA_CONFIG"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.Init(os.Stdout, cfg.LogLevel)
	metrics := observability.NewCollector("liora")

	stores, closer, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	llmClient, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}

	responder := llm.NewResponder(llmClient, llm.ResponderConfig{
		Persona: llm.NewPersona(cfg.Persona.Name, cfg.Persona.Helpline),
		Timeout: cfg.LLM.Timeout,
		Breaker: llm.BreakerSettings{
			MaxRequests:      cfg.LLM.Breaker.MaxRequests,
			Interval:         cfg.LLM.Breaker.Interval,
			Timeout:          cfg.LLM.Breaker.Timeout,
			MinRequests:      cfg.LLM.Breaker.MinRequests,
			FailureThreshold: cfg.LLM.Breaker.FailureThreshold,
		},
		Metrics: metrics,
	})

	handler := httpadapter.NewServer(httpadapter.Deps{
		Conversation: conversation.NewService(stores.Conversations, responder,
			conversation.WithWindowSize(cfg.Chat.WindowSize),
			conversation.WithMetrics(metrics)),
		Screening:      screening.NewService(screening.NewCatalog(), stores.Screenings, metrics),
		Community:      community.NewService(stores.Community, metrics),
		Journal:        journal.NewService(stores.Journal),
		Counselling:    counselling.NewService(stores.Appointments),
		Metrics:        metrics,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("liora api listening",
			"port", cfg.Port,
			"mode", cfg.Mode,
			"storage", cfg.Storage.Backend,
			"llm_provider", cfg.LLM.Provider)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openStores(ctx context.Context, cfg *config.Config) (domain.Stores, io.Closer, error) {
	switch cfg.Storage.Backend {
	case config.StorageFirestore:
		fs, err := firestorestore.NewStore(ctx, cfg.GCP.Project)
		if err != nil {
			return domain.Stores{}, nil, fmt.Errorf("init firestore store: %w", err)
		}
		slog.Info("using firestore storage", "project", cfg.GCP.Project)
		return fs.Stores(), fs, nil

	case config.StorageSQLite:
		db, err := sqlitestore.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return domain.Stores{}, nil, fmt.Errorf("init sqlite store: %w", err)
		}
		slog.Info("using sqlite storage", "path", cfg.Storage.SQLitePath)
		return db.Stores(), db, nil

	default:
		slog.Info("using in-memory storage")
		return memstore.NewStores(), nopCloser{}, nil
	}
}

func newLLMClient(ctx context.Context, cfg *config.Config) (domain.LLMClient, error) {
	opts := llm.GeminiOptions{
		Project:         cfg.GCP.Project,
		Location:        cfg.GCP.Location,
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		TopP:            cfg.LLM.TopP,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
	}

	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		opts.APIKey = cfg.LLM.APIKey
	case config.ProviderVertex:
	default:
		slog.Info("using mock llm client")
		return llm.NewMockLLM(), nil
	}

	client, err := llm.NewGeminiClient(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("init %s llm client: %w", cfg.LLM.Provider, err)
	}
	slog.Info("using genai llm client", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	return client, nil
}
