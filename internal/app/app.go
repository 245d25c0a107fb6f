// Package app wires configuration, storage, clients, and services into the
// shared core used by cmd/folio-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/folio/internal/clients/gemini"
	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/services/chat"
	"github.com/bobmcallan/folio/internal/services/portfolio"
	"github.com/bobmcallan/folio/internal/services/profile"
	"github.com/bobmcallan/folio/internal/storage/surrealdb"
)

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	GeminiClient     interfaces.GeminiClient
	ProfileService   interfaces.ProfileService
	ChatService      interfaces.ChatService
	PortfolioService interfaces.PortfolioService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes all services, clients, and storage. configPath may be
// empty, in which case FOLIO_CONFIG and then the binary directory are tried.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := surrealdb.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	recordStartup(storageManager.InternalStore(), logger)

	// Without a Gemini key the server still runs; chat sends answer 502
	// until a key is configured.
	var geminiClient interfaces.GeminiClient
	if geminiKey, err := common.ResolveGeminiKey(config.Clients.Gemini.APIKey); err != nil {
		logger.Warn().Msg("Gemini API key not configured - chat suggestions will be unavailable")
	} else {
		client, err := gemini.NewClient(context.Background(), geminiKey,
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithTimeout(config.Clients.Gemini.GetTimeout()),
			gemini.WithRateLimit(config.Clients.Gemini.RateLimit),
			gemini.WithLogger(logger),
		)
		if err != nil {
			storageManager.Close()
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		geminiClient = client
	}

	profileService := profile.NewService(storageManager, logger)
	chatService := chat.NewService(storageManager, profileService, geminiClient, logger)
	portfolioService := portfolio.NewService(storageManager, logger)

	logger.Info().
		Str("environment", config.Environment).
		Str("version", common.GetVersion()).
		Msg("Application initialized")

	return &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		GeminiClient:     geminiClient,
		ProfileService:   profileService,
		ChatService:      chatService,
		PortfolioService: portfolioService,
		StartupTime:      time.Now(),
	}, nil
}

// recordStartup notes the current boot in the system KV and logs the
// previous one when present. Best-effort.
func recordStartup(store interfaces.InternalStore, logger *common.Logger) {
	ctx := context.Background()
	if prev, err := store.GetSystemKV(ctx, "last_startup"); err == nil && prev != "" {
		logger.Info().Str("previous_startup", prev).Msg("Previous startup on record")
	}
	if err := store.SetSystemKV(ctx, "last_startup", time.Now().UTC().Format(time.RFC3339)); err != nil {
		logger.Warn().Err(err).Msg("Failed to record startup time")
	}
}

// Close releases all resources.
func (a *App) Close() error {
	if a.GeminiClient != nil {
		a.GeminiClient.Close()
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}
