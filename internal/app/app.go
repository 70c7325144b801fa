package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"SavePublish/internal/config"
	"SavePublish/internal/i18n"
	"SavePublish/internal/infrastructure/host"
	"SavePublish/internal/infrastructure/scheduler"
	"SavePublish/internal/infrastructure/storage"
	"SavePublish/internal/infrastructure/telegram"
	"SavePublish/internal/logging"
	"SavePublish/internal/ports"
	"SavePublish/internal/search"
	"SavePublish/internal/transport/httpapi"
	"SavePublish/internal/usecase"
)

// DriverMemory keeps sessions in process memory; sessions do not survive a restart.
const DriverMemory = "memory"

type backend interface {
	ports.SessionStore
	ports.SessionExpirer
	ports.AuditLog
	ports.AuditReader
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	store   backend
	command *usecase.SavePublishCommand
	sweeper *usecase.SessionSweeper
}

// NewLogger builds the process logger from the logging section.
func NewLogger(cfg config.Config) *slog.Logger {
	return logging.NewWithWriter(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = NewLogger(cfg)
	}

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	catalog, err := i18n.Load(cfg.I18n.CatalogPath)
	if err != nil {
		_ = closeStore(store)
		return nil, err
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.Host.TimeoutSeconds) * time.Second}
	client := host.NewClient(cfg.Host, httpClient, baseLogger.With("component", "host"))

	registry := search.NewRegistry()
	if n, err := client.RegisterIndexes(ctx, registry); err != nil {
		baseLogger.Warn("search indexes unavailable", "error", err)
	} else {
		baseLogger.Debug("search indexes registered", "count", n, "names", registry.Names())
	}

	audit := []ports.AuditLog{store}
	tg := cfg.Notifications.Telegram
	if tg.BotToken != "" && tg.ChatID != "" {
		audit = append(audit, telegram.NewNotifier(tg.BotToken, tg.ChatID))
	}

	gate := usecase.NewPublishGate(usecase.GateDeps{
		Workflows:   client,
		Publisher:   client,
		Targets:     client,
		Languages:   client,
		Audit:       audit,
		Translator:  catalog,
		Affirmative: cfg.Publishing.AffirmativeAnswer,
		Logger:      baseLogger.With("component", "gate"),
	})

	command := usecase.NewSavePublishCommand(usecase.CommandDeps{
		Items:      client,
		Sessions:   store,
		Index:      search.NewNotifier(registry, cfg.Publishing.IndexNameMatch, baseLogger.With("component", "search")),
		Gate:       gate,
		Translator: catalog,
		Policy: usecase.VisibilityPolicy{
			RequireLockBeforeEditing: cfg.Publishing.RequireLockBeforeEditing,
			TemplateDefinitionID:     cfg.Publishing.TemplateDefinitionID,
		},
		Logger: baseLogger.With("component", "command"),
	})

	sweeper := usecase.NewSessionSweeper(
		scheduler.NewIntervalScheduler(cfg.Sessions.SweepInterval()),
		store,
		cfg.Sessions.TTL(),
		baseLogger.With("component", "sweeper"),
	)

	return &Application{
		cfg:     cfg,
		logger:  baseLogger,
		store:   store,
		command: command,
		sweeper: sweeper,
	}, nil
}

// Command exposes the save & publish command for one-shot CLI calls.
func (a *Application) Command() *usecase.SavePublishCommand {
	return a.command
}

// Audit exposes the stored audit trail.
func (a *Application) Audit() ports.AuditReader {
	return a.store
}

// Run serves the HTTP dispatcher and sweeps abandoned sessions until ctx ends.
func (a *Application) Run(ctx context.Context) error {
	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("start session sweeper: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.sweeper.Stop(stopCtx); err != nil {
			a.logger.Warn("stop session sweeper", "error", err)
		}
	}()

	handler := httpapi.NewHandler(a.command, a.store, a.cfg.I18n.DefaultLanguage)
	server := httpapi.NewServer(handler, a.logger.With("component", "http"), strings.EqualFold(a.cfg.Logging.Level, "debug"))
	return server.Run(ctx, a.cfg.Server.Addr)
}

// DefaultLanguage is the UI language used when a caller does not send one.
func (a *Application) DefaultLanguage() string {
	return a.cfg.I18n.DefaultLanguage
}

// Close releases the session store.
func (a *Application) Close() error {
	return closeStore(a.store)
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (backend, error) {
	if strings.EqualFold(strings.TrimSpace(cfg.Driver), DriverMemory) {
		return storage.NewMemoryStore(), nil
	}
	store, err := storage.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return store, nil
}

func closeStore(store backend) error {
	closer, ok := store.(io.Closer)
	if !ok {
		return nil
	}
	if err := closer.Close(); err != nil {
		return fmt.Errorf("close session store: %w", err)
	}
	return nil
}
