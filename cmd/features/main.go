package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/smukkama/agrisense/internal/crop"
	"github.com/smukkama/agrisense/internal/export"
	"github.com/smukkama/agrisense/internal/features"
	"github.com/smukkama/agrisense/internal/simulator"
	"github.com/smukkama/agrisense/pkg/config"
)

func main() {
	regenerate := flag.Bool("regenerate", false, "regenerate the raw tables from the seed instead of reading the CSVs")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting AgriSense Feature Pipeline...")

	sim, err := simulator.New(simulator.Options{
		Seed:    cfg.Simulation.Seed,
		Workers: cfg.Simulation.Workers,
		Start:   cfg.Simulation.Start,
	})
	if err != nil {
		log.Fatalf("Failed to create simulator: %v", err)
	}

	var raw *export.RawTables
	if *regenerate {
		raw, err = generate(context.Background(), sim, cfg.Simulation)
	} else {
		raw, err = export.ReadRaw(cfg.Export.RawDir)
	}
	if err != nil {
		log.Fatalf("Failed to load raw tables: %v", err)
	}
	fmt.Printf("Loaded %d soil, %d water and %d weather readings\n", len(raw.Soil), len(raw.Water), len(raw.Weather))

	pipeline, err := features.NewPipeline(sim.Source(), raw.Crops)
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}
	ds, err := pipeline.Run(raw.Soil, raw.Water, raw.Weather)
	if err != nil {
		log.Fatalf("Feature pipeline failed: %v", err)
	}

	if err := export.WriteDataset(cfg.Export.ProcessedDir, cfg.Export.Workbook, ds, raw.Crops); err != nil {
		log.Fatalf("Failed to write features: %v", err)
	}

	fmt.Println("\n✓ Feature pipeline completed")
	fmt.Printf("✓ Irrigation dataset: %d rows\n", len(ds.Irrigation))
	fmt.Printf("✓ Yield dataset:      %d rows\n", len(ds.Yield))
	fmt.Printf("✓ Workbook:           %s\n", filepath.Join(cfg.Export.ProcessedDir, cfg.Export.Workbook))
	fmt.Println("\nZone summary:")
	for _, z := range ds.Zones {
		fmt.Printf("  %-7s health=%5.1f deficient=%5.1f%% irrigation=%-8s (%s) best crop=%s\n",
			z.Zone, z.AvgHealthScore, z.DeficiencyRate*100, z.Priority, z.Priority.Frequency(), z.RecommendedCrop)
	}
}

func generate(ctx context.Context, sim *simulator.Simulator, cfg config.SimulationConfig) (*export.RawTables, error) {
	soil, err := sim.Soil().Generate(ctx, cfg.SoilRecords)
	if err != nil {
		return nil, err
	}
	water, err := sim.Water().Generate(ctx, cfg.WaterRecords)
	if err != nil {
		return nil, err
	}
	weather, err := sim.Weather().Generate(ctx, cfg.WeatherRecords)
	if err != nil {
		return nil, err
	}
	return &export.RawTables{Soil: soil, Water: water, Weather: weather, Crops: crop.All()}, nil
}
