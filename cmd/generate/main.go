package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/smukkama/agrisense/internal/crop"
	"github.com/smukkama/agrisense/internal/export"
	"github.com/smukkama/agrisense/internal/protocol"
	"github.com/smukkama/agrisense/internal/queue"
	"github.com/smukkama/agrisense/internal/simulator"
	"github.com/smukkama/agrisense/internal/zone"
	"github.com/smukkama/agrisense/pkg/config"
)

func main() {
	publish := flag.Bool("publish", false, "publish the generated readings to Kafka")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting AgriSense Data Generator...")
	fmt.Printf("Seed: %d | Workers: %d | Start: %s\n",
		cfg.Simulation.Seed, cfg.Simulation.Workers, cfg.Simulation.Start.Format(time.DateOnly))

	sim, err := simulator.New(simulator.Options{
		Seed:    cfg.Simulation.Seed,
		Workers: cfg.Simulation.Workers,
		Start:   cfg.Simulation.Start,
	})
	if err != nil {
		log.Fatalf("Failed to create simulator: %v", err)
	}

	ctx := context.Background()
	started := time.Now()

	soil, err := sim.Soil().Generate(ctx, cfg.Simulation.SoilRecords)
	if err != nil {
		log.Fatalf("Failed to generate soil data: %v", err)
	}
	water, err := sim.Water().Generate(ctx, cfg.Simulation.WaterRecords)
	if err != nil {
		log.Fatalf("Failed to generate water data: %v", err)
	}
	weather, err := sim.Weather().Generate(ctx, cfg.Simulation.WeatherRecords)
	if err != nil {
		log.Fatalf("Failed to generate weather data: %v", err)
	}
	crops := crop.All()
	fmt.Printf("Generated tables in %s\n", time.Since(started).Round(time.Millisecond))

	tables := &export.RawTables{Soil: soil, Water: water, Weather: weather, Crops: crops}
	if err := export.WriteRaw(cfg.Export.RawDir, tables); err != nil {
		log.Fatalf("Failed to write raw tables: %v", err)
	}

	fmt.Println("\n✓ Data generated successfully")
	fmt.Printf("✓ Soil sensors:  %d records -> %s/%s\n", len(soil), cfg.Export.RawDir, export.SoilFile)
	fmt.Printf("✓ Water quality: %d records -> %s/%s\n", len(water), cfg.Export.RawDir, export.WaterFile)
	fmt.Printf("✓ Weather data:  %d records -> %s/%s\n", len(weather), cfg.Export.RawDir, export.WeatherFile)
	fmt.Printf("✓ Crop database: %d records -> %s/%s\n", len(crops), cfg.Export.RawDir, export.CropFile)

	if !*publish {
		return
	}

	if err := queue.CreateTopic(cfg.Kafka.Brokers, cfg.Kafka.TopicReadings, cfg.Kafka.NumPartitions, 1); err != nil {
		log.Fatalf("Failed to create topic: %v", err)
	}

	producer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicReadings)
	defer producer.Close()

	runID := uuid.New()
	msgs := make([]*protocol.ReadingMessage, 0, len(soil)+len(water)+len(weather))
	for i, r := range soil {
		msgs = append(msgs, protocol.NewSoilMessage(runID, i, r))
	}
	for i, r := range water {
		msgs = append(msgs, protocol.NewWaterMessage(runID, i, r))
	}
	for i, r := range weather {
		msgs = append(msgs, protocol.NewWeatherMessage(runID, i, r))
	}

	if err := producer.PublishReadings(ctx, msgs, cfg.Kafka.PublishBatchSize); err != nil {
		log.Fatalf("Failed to publish readings: %v", err)
	}

	fmt.Printf("\n✓ Published %d readings to %s (run %s)\n", len(msgs), cfg.Kafka.TopicReadings, runID)
	for _, id := range zone.IDs() {
		fmt.Printf("  %s -> partition %d\n", id, queue.PartitionForKey(string(id), cfg.Kafka.NumPartitions))
	}
}
