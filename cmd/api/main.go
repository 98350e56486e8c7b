package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	v1 "textback/cmd/api/router/v1"
	cacheadapter "textback/internal/infrastructure/cache/adapter"
	"textback/internal/infrastructure/database"
	"textback/internal/infrastructure/events"
	queueadapter "textback/internal/infrastructure/queue/adapter"
	"textback/internal/infrastructure/realtime"
	"textback/internal/infrastructure/session"
	"textback/internal/pkg/inbox/application/usecase"
	inboxadapter "textback/internal/pkg/inbox/persistence/repository/adapter"
	inboxhttp "textback/internal/pkg/inbox/presentation/http"
	smsadapter "textback/internal/pkg/sms/adapter"
	"textback/internal/pkg/sms/dispatcher"
	"textback/internal/pkg/sms/ratelimit"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	cache, err := cacheadapter.NewRedisAdapter()
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer cache.Close()

	queueClient, err := queueadapter.NewAsynqClientFromEnv()
	if err != nil {
		log.Fatalf("failed to create queue client: %v", err)
	}
	defer queueClient.Close()

	publisher, err := events.NewFromEnv(logger)
	if err != nil {
		log.Fatalf("failed to connect to event broker: %v", err)
	}
	if publisher != nil {
		defer publisher.Close()
	}

	rtRouter := realtime.NewRouter()
	defer rtRouter.Close()

	repo := inboxadapter.NewPgInboxRepository(pool)
	notifier := usecase.NewNotifier(queueClient, publisher, rtRouter, logger)

	// The SMS dispatcher is optional: without provider credentials the API
	// still serves the inbox, it just cannot auto-reply.
	var d *dispatcher.Dispatcher
	if gateway, err := smsadapter.NewTwilioGatewayFromEnv(); err != nil {
		logger.Warn("sms gateway disabled", slog.Any("error", err))
	} else {
		limiter := ratelimit.NewRedisLimiter(cache, ratelimit.DefaultCooldown)
		recorder := smsadapter.NewPgDeliveryRecorder(pool)
		d = dispatcher.New(gateway, limiter, recorder, logger)
	}

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	v1.RegisterRoutes(r, inboxhttp.Deps{
		Repo:          repo,
		Sessions:      session.NewCacheStore(cache),
		Notifier:      notifier,
		Dispatcher:    d,
		Realtime:      rtRouter,
		Logger:        logger,
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
	})

	// Start HTTP server (blocks until shutdown)
	_ = r.Run()
}
