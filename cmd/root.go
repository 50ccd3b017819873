package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	coreconfig "github.com/chronolens/chronolens/core/config"
	coreDB "github.com/chronolens/chronolens/core/database"
	domainCache "github.com/chronolens/chronolens/domains/cache"
	domainContent "github.com/chronolens/chronolens/domains/content"
	domainCost "github.com/chronolens/chronolens/domains/cost"
	"github.com/chronolens/chronolens/engine"
	engineDomain "github.com/chronolens/chronolens/engine/domain"
	"github.com/chronolens/chronolens/engine/providers"
	"github.com/chronolens/chronolens/engine/repository"
	"github.com/chronolens/chronolens/infrastructure/valkey"
	"github.com/chronolens/chronolens/pkg/imageutil"
	"github.com/chronolens/chronolens/pkg/utils"
	"github.com/chronolens/chronolens/usecase"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Engine
	contentEngine *engine.Engine

	// Infrastructure
	vkClient *valkey.Client
	serverID string

	// Usecases
	contentUsecase domainContent.IContentUsecase
	cacheUsecase   domainCache.ICacheUsecase
	costUsecase    domainCost.ICostUsecase

	appCtx    context.Context
	appCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "chronolens",
	Short: "Content caching and orchestration engine for location-based era narratives",
	Long: `ChronoLens serves AI-generated historical narratives, images and video
for (location, geological era) pairs, with local caching, cost tracking
and graceful degradation when offline or unconfigured.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig, initApp)
}

func initFlags() {
	rootCmd.PersistentFlags().StringP("port", "p", "", "change port number with --port <number> | example: --port=8080")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "display debug logs with --debug <true/false>")
	rootCmd.PersistentFlags().String("db-driver", "", `database driver --db-driver <string> | example: --db-driver="sqlite"`)
	rootCmd.PersistentFlags().String("ai-provider", "", `generation provider --ai-provider <string> | example: --ai-provider="gemini"`)

	_ = viper.BindPFlag("app_port", rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("app_debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("db_driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	_ = viper.BindPFlag("ai_provider", rootCmd.PersistentFlags().Lookup("ai-provider"))

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// initEnvConfig applies flag overrides on top of the environment config.
func initEnvConfig() {
	if envPort := viper.GetString("app_port"); envPort != "" {
		os.Setenv("APP_PORT", envPort)
	}
	if viper.GetBool("app_debug") {
		os.Setenv("APP_DEBUG", "true")
	}
	if driver := viper.GetString("db_driver"); driver != "" {
		os.Setenv("DB_DRIVER", driver)
	}
	if provider := viper.GetString("ai_provider"); provider != "" {
		os.Setenv("AI_PROVIDER", provider)
	}
}

func initApp() {
	cfg, err := coreconfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("[APP] Failed to load configuration: %v", err)
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := utils.EnsureStorageDirectories(cfg.Paths.Storages); err != nil {
		logrus.Fatalf("[APP] Failed to prepare storage directories: %v", err)
	}

	appCtx, appCancel = context.WithCancel(context.Background())

	db, err := coreDB.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("[APP] Failed to open database: %v", err)
	}

	store := repository.NewGormContentStore(db)
	store.ThumbnailFn = func(data []byte) []byte {
		return imageutil.Thumbnail(data, 256)
	}
	if err := store.Init(appCtx); err != nil {
		logrus.Fatalf("[APP] Failed to migrate content tables: %v", err)
	}

	serverID = utils.GetPersistentServerID(cfg.App.ServerID, cfg.Paths.Storages)

	// Valkey is optional. Without it the context-cache registry falls
	// back to the in-process store.
	var contextRegistry engineDomain.ContextCacheStore
	if cfg.Database.ValkeyEnabled {
		vkClient, err = valkey.NewClient(valkey.Config{
			Address:   cfg.Database.ValkeyAddress,
			Password:  cfg.Database.ValkeyPassword,
			DB:        cfg.Database.ValkeyDB,
			KeyPrefix: cfg.Database.ValkeyKeyPrefix,
		})
		if err != nil {
			logrus.Warnf("[APP] Valkey unavailable, using in-memory context cache: %v", err)
			vkClient = nil
		} else {
			contextRegistry = repository.NewValkeyContextCacheStore(vkClient)
			logrus.Infof("[APP] Valkey connected as %s", serverID)
		}
	}

	generator := buildGenerator(cfg)
	exporter := buildExporter(cfg)

	contentEngine = engine.New(engine.Config{
		Store:            store,
		Generator:        generator,
		ContextRegistry:  contextRegistry,
		Exporter:         exporter,
		Online:           func() bool { return true },
		Credentials:      cfg.HasAPICredential,
		ContentTTL:       time.Duration(cfg.Cache.TTLDays) * 24 * time.Hour,
		MaxCacheBytes:    cfg.Cache.MaxSizeMB * 1024 * 1024,
		Retry:            buildRetryPolicy(cfg),
		PreloadWorkers:   cfg.WorkerPool.Size,
		PreloadQueueSize: cfg.WorkerPool.QueueSize,
	})

	contentUsecase = usecase.NewContentService(contentEngine, store, cfg.App.BasePath)
	cacheUsecase = usecase.NewCacheService(contentEngine)
	costUsecase = usecase.NewCostService(contentEngine)

	cacheUsecase.StartBackgroundCleanup(appCtx)

	logrus.Infof("[APP] ChronoLens initialized (provider=%s, driver=%s)", cfg.AI.Provider, cfg.Database.Driver)
}

func buildGenerator(cfg *coreconfig.Config) engineDomain.Generator {
	switch cfg.AI.Provider {
	case "openai":
		return providers.NewOpenAIProvider(providers.OpenAIConfig{
			APIKey:     cfg.APIKeys.OpenAI,
			TextModel:  cfg.AI.TextModel,
			ImageModel: cfg.AI.ImageModel,
		})
	default:
		return providers.NewGeminiProvider(providers.GeminiConfig{
			APIKey:     cfg.APIKeys.Gemini,
			TextModel:  cfg.AI.TextModel,
			ImageModel: cfg.AI.ImageModel,
			VideoModel: cfg.AI.VideoModel,
		})
	}
}

func buildExporter(cfg *coreconfig.Config) engine.SyncExporter {
	switch cfg.Sync.Mode {
	case "valkey":
		if vkClient != nil {
			return engine.NewValkeyExporter(vkClient)
		}
		logrus.Warn("[APP] SYNC_MODE=valkey but Valkey is not connected, sync disabled")
	case "webhook":
		if cfg.Sync.WebhookURL != "" {
			return engine.NewWebhookExporter(cfg.Sync.WebhookURL)
		}
		logrus.Warn("[APP] SYNC_MODE=webhook but SYNC_WEBHOOK_URL is empty, sync disabled")
	}
	return engine.NoopExporter{}
}

func buildRetryPolicy(cfg *coreconfig.Config) *engine.RetryPolicy {
	policy := engine.DefaultRetryPolicy()
	if cfg.Retry.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.Retry.MaxAttempts
	}
	if cfg.Retry.BaseDelayMs > 0 {
		policy.BaseDelay = time.Duration(cfg.Retry.BaseDelayMs) * time.Millisecond
	}
	if cfg.Retry.MaxDelayMs > 0 {
		policy.MaxDelay = time.Duration(cfg.Retry.MaxDelayMs) * time.Millisecond
	}
	return &policy
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp performs a clean shutdown of the engine and its connections.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if appCancel != nil {
		appCancel()
	}

	if contentEngine != nil {
		contentEngine.Close()
	}

	if vkClient != nil {
		vkClient.Close()
	}

	if coreDB.GlobalDB != nil {
		if sqlDB, err := coreDB.GlobalDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
