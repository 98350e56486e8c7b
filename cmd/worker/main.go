package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"textback/internal/infrastructure/database"
	queueadapter "textback/internal/infrastructure/queue/adapter"
	"textback/internal/pkg/inbox/application/task"
	inboxadapter "textback/internal/pkg/inbox/persistence/repository/adapter"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	srv, err := queueadapter.NewAsynqServer()
	if err != nil {
		log.Fatalf("failed to create queue server: %v", err)
	}

	repo := inboxadapter.NewPgInboxRepository(pool)
	task.RegisterNotifyTask(srv, repo, logger)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("worker started")
	if err := srv.Run(runCtx); err != nil {
		log.Fatalf("worker stopped with error: %v", err)
	}
	logger.Info("worker stopped")
}
