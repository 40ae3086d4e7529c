package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smukkama/agrisense/internal/aggregation"
	"github.com/smukkama/agrisense/internal/database"
	"github.com/smukkama/agrisense/internal/schedule"
	"github.com/smukkama/agrisense/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting Aggregation Service...")

	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("Connected to database")

	dailyAgg := aggregation.NewDailyAggregator(db)
	monthlyAgg := aggregation.NewMonthlyAggregator(db)

	// readings carry simulated timestamps, so rollups cover the whole
	// stored span rather than the previous wall-clock day
	rollup := func(ctx context.Context) error {
		from, to, ok, err := db.ReadingSpan(ctx)
		if err != nil {
			return fmt.Errorf("failed to read reading span: %w", err)
		}
		if !ok {
			fmt.Println("No readings stored yet, skipping aggregation")
			return nil
		}
		to = aggregation.Day(to).AddDate(0, 0, 1)
		if _, err := dailyAgg.AggregateRange(ctx, from, to); err != nil {
			return err
		}
		_, err = monthlyAgg.AggregateRange(ctx, from, to)
		return err
	}

	scheduler := schedule.New()

	if err := scheduler.Every("rollup", time.Now(), cfg.Aggregation.Interval, rollup); err != nil {
		log.Fatalf("Failed to schedule rollup: %v", err)
	}
	fmt.Printf("Rollup scheduled every %s\n", cfg.Aggregation.Interval)

	nextDaily, err := aggregation.NextRunTime(time.Now(), cfg.Aggregation.DailyTime)
	if err != nil {
		log.Fatalf("Failed to calculate daily run time: %v", err)
	}
	report := func(ctx context.Context) error {
		if err := rollup(ctx); err != nil {
			return err
		}
		from, to, ok, err := db.ReadingSpan(ctx)
		if err != nil || !ok {
			return err
		}
		days, err := db.GetDailyWeather(ctx, from, to)
		if err != nil {
			return fmt.Errorf("failed to read daily weather: %w", err)
		}
		var rain float64
		for _, d := range days {
			rain += d.TotalRainfall
		}
		fmt.Printf("Daily report: %d days from %s to %s, total rainfall %.1f mm\n",
			len(days), from.Format(time.DateOnly), to.Format(time.DateOnly), rain)
		return nil
	}
	if err := scheduler.Every("daily", nextDaily, 24*time.Hour, report); err != nil {
		log.Fatalf("Failed to schedule daily report: %v", err)
	}
	fmt.Printf("Next daily report scheduled for: %s\n", nextDaily.Format("2006-01-02 15:04:05"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	fmt.Println("\n✓ Aggregation Service is running")
	fmt.Println("✓ Press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
	cancel()
	<-done
}
