package main

import (
	"civicdesk/backend/internal/api/handler"
	"civicdesk/backend/internal/complaint"
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/eventhub"
	"civicdesk/backend/internal/localization"
	"civicdesk/backend/internal/scheduler"
	"civicdesk/backend/internal/storage"
	"civicdesk/backend/internal/telegram"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// backend groups the storage-side dependencies selected by configuration.
type backend struct {
	store    storage.Storage
	officers storage.OfficerDirectory
	locker   storage.Locker
	redis    *redis.Client
}

func setupDependencies(ctx context.Context, cfg *config.Config) backend {
	var b backend

	if cfg.RedisEnabled() {
		rdb, err := storage.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect Redis: %v", err)
		}
		b.redis = rdb
		b.locker = storage.NewRedisLocker(rdb)
	} else {
		log.Println("WARNING: REDIS_URL not set, using in-process complaint locks")
		b.locker = storage.NewLocalLocker()
	}

	switch cfg.StorageDriver {
	case config.DriverMemory:
		log.Println("WARNING: Using in-memory storage, data is lost on restart")
		mem := storage.NewMemoryStore()
		b.store, b.officers = mem, mem
	case config.DriverPostgres:
		db, err := storage.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect PostgreSQL: %v", err)
		}
		svc := storage.NewStorageService(db, b.redis)
		if err := svc.Migrate(); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		b.store, b.officers = svc, svc
	default:
		log.Fatalf("Unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	log.Println("INFO: Storage initialized.")
	return b
}

func setupTelegram(ctx context.Context, cfg *config.Config) complaint.Notifier {
	if !cfg.TelegramEnabled() {
		log.Println("INFO: Telegram notifications disabled.")
		return nil
	}

	localizer, err := localization.NewEmbeddedLocalizer()
	if err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}
	bot, err := telegram.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Printf("ERROR: %v. Continuing without Telegram notifications.", err)
		return nil
	}

	n := telegram.NewNotifier(bot, cfg.TelegramChatID, cfg.NotifyLang, localizer)
	go n.Run(ctx)
	return n
}

func main() {
	log.Println("Starting CivicDesk Backend...")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Storage, locks and the live event hub
	b := setupDependencies(ctx, cfg)
	hub := eventhub.NewManagerService()
	go hub.Run(ctx)

	notifiers := complaint.MultiNotifier{setupTelegram(ctx, cfg)}
	if b.redis != nil {
		// Every instance publishes to Redis and feeds its own hub from the subscription.
		publisher := storage.NewRedisPublisher(b.redis)
		notifiers = append(notifiers, publisher)
		hub.StartPubSubListener(ctx, publisher.Subscribe(ctx))
	} else {
		notifiers = append(notifiers, hub)
	}

	// 2. Core service
	svc := complaint.NewService(b.store, b.officers, b.locker, notifiers)
	svc.LockTTL = cfg.LockTTL

	// 3. Background escalation
	var sched *scheduler.EscalationScheduler
	if cfg.SchedulerEnabled {
		sched = scheduler.NewEscalationScheduler(svc, cfg.SchedulerInterval)
		go sched.Start(ctx)
	}

	// 4. HTTP
	r := gin.Default()
	var status handler.SchedulerStatus
	if sched != nil {
		status = sched
	}
	h := handler.NewHandler(svc, hub, status)
	h.RegisterRoutes(r, cfg.JWTSecret)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("INFO: Listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("INFO: Shutting down...")
	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Graceful shutdown failed: %v", err)
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.Printf("WARNING: Closing Redis: %v", err)
		}
	}
}
