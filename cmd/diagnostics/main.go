package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smukkama/agrisense/internal/database"
	"github.com/smukkama/agrisense/internal/diagnosis"
	"github.com/smukkama/agrisense/internal/protocol"
	"github.com/smukkama/agrisense/internal/queue"
	"github.com/smukkama/agrisense/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting Diagnostics Service...")

	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("Connected to database")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	fmt.Println("Connected to Redis")

	stateManager := diagnosis.NewStateManager(redisClient)

	alertProducer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts)
	defer alertProducer.Close()
	fmt.Println("Alert notification producer initialized")

	evaluator := diagnosis.NewEvaluator(stateManager, db, alertProducer, cfg.Diagnosis.Confirmations)

	consumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicReadings, "diagnostics-group")
	defer consumer.Close()
	fmt.Println("Kafka consumer initialized")

	fmt.Println("\n✓ Diagnostics Service is running")
	fmt.Printf("✓ Alerts raised after %d consecutive breaching readings\n", cfg.Diagnosis.Confirmations)
	fmt.Println("✓ Press Ctrl+C to stop")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			msg, err := consumer.Consume(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Failed to consume message: %v\n", err)
				continue
			}

			readingMsg, err := protocol.DecodeReadingMessage(msg.Value)
			if err != nil {
				log.Printf("Failed to decode message: %v\n", err)
				consumer.Commit(ctx, msg)
				continue
			}

			if err := evaluator.Evaluate(ctx, readingMsg); err != nil {
				log.Printf("Failed to evaluate reading: %v\n", err)
			}

			if err := consumer.Commit(ctx, msg); err != nil {
				log.Printf("Failed to commit offset: %v\n", err)
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				report, err := diagnosis.BuildReport(ctx, stateManager)
				if err != nil {
					log.Printf("Failed to build state report: %v\n", err)
					continue
				}
				fmt.Printf("Alert states: %d tracked, %d pending, %d subjects alerting\n",
					report.Tracked, report.Pending, len(report.Alerting))
				for _, a := range report.Alerting {
					fmt.Printf("  %s: %v%s\n", a.Subject, a.Conditions, latestLine(a.Latest))
				}
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
	cancel()
	<-done
}

// latestLine describes the latest diagnosis of an alerting subject
func latestLine(s *diagnosis.Summary) string {
	switch {
	case s == nil:
		return ""
	case s.Health != nil:
		return fmt.Sprintf(" (latest %s: health %.1f %s, deficiency %s)", s.ReadingTime, s.Health.Score, s.Health.Category, s.Deficiency)
	case s.Grade != "":
		return fmt.Sprintf(" (latest %s: grade %s)", s.ReadingTime, s.Grade)
	}
	return ""
}
