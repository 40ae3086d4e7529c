package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smukkama/agrisense/internal/crop"
	"github.com/smukkama/agrisense/internal/database"
	"github.com/smukkama/agrisense/internal/queue"
	"github.com/smukkama/agrisense/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting Database Writer Service...")
	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("Connected to database")

	if err := db.RunMigrations("migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.UpsertCrops(ctx, crop.All()); err != nil {
		log.Fatalf("Failed to load crop reference table: %v", err)
	}
	fmt.Println("Crop reference table loaded")

	consumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicReadings, "dbwriter-group")
	defer consumer.Close()
	fmt.Println("Kafka consumer created (registering with broker...)")

	batchWriter := queue.NewBatchWriter(consumer, db, 500, 5*time.Second)
	if err := batchWriter.Start(ctx); err != nil {
		log.Fatalf("Failed to start batch writer: %v", err)
	}
	fmt.Println("Batch writer started")

	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := consumer.Stats()
				written := batchWriter.Stats()
				fmt.Printf("Consumer stats: Messages=%d, Errors=%d | Written=%d, Skipped=%d, Failed=%d\n",
					stats.Messages, stats.Errors, written.Written, written.Skipped, written.Failed)
			}
		}
	}()

	fmt.Println("\n✓ Database Writer Service is running")
	fmt.Println("✓ Consuming readings from Kafka and writing to PostgreSQL")
	fmt.Println("✓ Batch size: 500 messages | Flush interval: 5 seconds")
	fmt.Println("✓ Press Ctrl+C to stop")
	fmt.Println("\nWaiting for messages...")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
	batchWriter.Stop()
	fmt.Println("Database Writer Service stopped")
}
