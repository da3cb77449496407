package bootstrap

import (
	"context"
	"log"

	"note-editor-be/internal/config"
	"note-editor-be/internal/controller"
	"note-editor-be/internal/pkg/logger"
	"note-editor-be/internal/repository/contract"
	"note-editor-be/internal/repository/implementation"
	"note-editor-be/internal/repository/memory"
	"note-editor-be/internal/service"
	"note-editor-be/internal/store"
	"note-editor-be/pkg/database"
	"note-editor-be/pkg/enrichment"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const eventTopic = "note-editor.events"

type Container struct {
	// Controllers
	SessionController    controller.ISessionController
	EnrichmentController controller.IEnrichmentController
	SettingsController   controller.ISettingsController

	// Exposed for main.go: session restore, background consumer, shutdown flush.
	SessionService  service.ISessionService
	ConsumerService service.IConsumerService
	Store           *store.PersistentStore
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	backend := newBackingStore(cfg)
	persistentStore := store.NewPersistentStore(backend, sysLogger, cfg.Store.FlushDebounce)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	publisherService := service.NewPublisherService(eventTopic, pubSub)

	// Event audit trail goes to its own file, not the main log.
	eventLogger := logger.NewIsolatedLogger("logs/events.log")
	consumerService := service.NewConsumerService(pubSub, eventTopic, eventLogger)

	// 3. Services
	enrichmentClient := enrichment.NewClient(cfg.Enrichment.BaseURL)
	enrichmentService := service.NewEnrichmentService(
		persistentStore,
		enrichmentClient,
		publisherService,
		sysLogger,
		cfg.Enrichment.PollInterval,
		cfg.Enrichment.MaxPolls,
	)

	sessionService := service.NewSessionService(
		persistentStore,
		enrichmentService, // follows the active document
		publisherService,
		sysLogger,
	)

	settingsService := service.NewSettingsService(persistentStore)

	// 4. Controllers
	return &Container{
		SessionController:    controller.NewSessionController(sessionService),
		EnrichmentController: controller.NewEnrichmentController(enrichmentService),
		SettingsController:   controller.NewSettingsController(settingsService),

		SessionService:  sessionService,
		ConsumerService: consumerService,
		Store:           persistentStore,
	}
}

// newBackingStore selects the durable backend from config. Unknown values and
// connection failures fall back to the in-memory store so the editor still
// works, just without persistence across restarts.
func newBackingStore(cfg *config.Config) contract.BackingStore {
	switch cfg.Store.Backend {
	case "postgres":
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Printf("[WARN] Failed to connect to GORM DB: %v. Falling back to in-memory store", err)
			return memory.NewBackingStore()
		}
		log.Printf("[INFO] Using Store Backend: POSTGRES")
		return implementation.NewGormBackingStore(db)

	case "redis":
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory store", err)
			return memory.NewBackingStore()
		}
		log.Printf("[INFO] Using Store Backend: REDIS")
		return implementation.NewRedisBackingStore(rdb)

	default:
		log.Printf("[INFO] Using Store Backend: MEMORY")
		return memory.NewBackingStore()
	}
}
