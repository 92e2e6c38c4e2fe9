package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"schoolhub/internal/audit"
	"schoolhub/internal/config"
	"schoolhub/internal/queue"
	"schoolhub/internal/store"
)

// Worker drains queued audit messages into the audit_log table so API
// writes never wait on the audit trail.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var audits queue.Queue
	if cfg.QueueBackend == "memory" {
		audits = queue.NewInMemory(64)
	} else {
		audits = queue.NewRedisQueue(redisClient.Client, "schoolhub:audit")
	}

	repo := audit.NewRepository(db.Client)

	msgs, err := audits.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume failed: %v", err)
	}

	log.Println("audit worker started")
	for msg := range msgs {
		if msg.Type != "audit" {
			log.Printf("skipping message of type %q", msg.Type)
			continue
		}
		entry, err := audit.Decode(msg.Body)
		if err != nil {
			log.Printf("bad audit message, dropping: %v", err)
			continue
		}
		if err := repo.Insert(ctx, entry); err != nil {
			log.Printf("audit insert failed for %s on event %s: %v", entry.Action, entry.EventID, err)
			continue
		}
	}
	log.Println("audit worker stopped")
}
