package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/smukkama/agrisense/internal/crop"
	"github.com/smukkama/agrisense/internal/features"
	"github.com/smukkama/agrisense/internal/reading"
	"github.com/smukkama/agrisense/internal/simulator"
	"github.com/smukkama/agrisense/internal/zone"
)

func generate(t *testing.T) ([]reading.SoilReading, []reading.WaterReading, []reading.WeatherReading) {
	t.Helper()
	sim, err := simulator.New(simulator.Options{Seed: 42, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	soil, _ := sim.Soil().Generate(ctx, 500)
	water, _ := sim.Water().Generate(ctx, 500)
	weather, _ := sim.Weather().Generate(ctx, 200)
	return soil, water, weather
}

func TestWriteCSV_MissingAsEmpty(t *testing.T) {
	rows := []reading.SoilReading{{ZoneID: "Zone_1", SoilType: "Loamy", Potassium: 60, PH: 6.5}}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, reading.SoilColumns, rows); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected header and one row, got %d lines", len(records))
	}
	if diff := cmp.Diff(reading.SoilColumns, records[0]); diff != "" {
		t.Errorf("Header mismatch:\n%s", diff)
	}
	if records[1][3] != "" || records[1][10] != "" {
		t.Errorf("Missing values should be empty cells, got %q and %q", records[1][3], records[1][10])
	}
	if records[1][5] != "60" {
		t.Errorf("Expected potassium 60, got %q", records[1][5])
	}
}

func TestWriteCSV_RejectsShortRows(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []string{"a", "b"}, crop.All())
	if err == nil || !strings.Contains(err.Error(), "values") {
		t.Errorf("Expected a column count error, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	soil, water, weather := generate(t)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, reading.SoilColumns, soil); err != nil {
		t.Fatal(err)
	}
	gotSoil, err := ReadSoil(&buf)
	if err != nil {
		t.Fatalf("ReadSoil failed: %v", err)
	}
	if diff := cmp.Diff(soil, gotSoil); diff != "" {
		t.Errorf("Soil round trip differs:\n%s", diff)
	}

	buf.Reset()
	if err := WriteCSV(&buf, reading.WaterColumns, water); err != nil {
		t.Fatal(err)
	}
	gotWater, err := ReadWater(&buf)
	if err != nil {
		t.Fatalf("ReadWater failed: %v", err)
	}
	if diff := cmp.Diff(water, gotWater); diff != "" {
		t.Errorf("Water round trip differs:\n%s", diff)
	}

	buf.Reset()
	if err := WriteCSV(&buf, reading.WeatherColumns, weather); err != nil {
		t.Fatal(err)
	}
	gotWeather, err := ReadWeather(&buf)
	if err != nil {
		t.Fatalf("ReadWeather failed: %v", err)
	}
	if diff := cmp.Diff(weather, gotWeather); diff != "" {
		t.Errorf("Weather round trip differs:\n%s", diff)
	}
}

func TestRead_Errors(t *testing.T) {
	if _, err := ReadWeather(strings.NewReader("when,temp\n")); !errors.Is(err, ErrHeaderMismatch) {
		t.Errorf("Expected ErrHeaderMismatch, got %v", err)
	}

	wide := strings.Join(append(reading.WeatherColumns, "extra"), ",") + "\n"
	if _, err := ReadWeather(strings.NewReader(wide)); !errors.Is(err, ErrHeaderMismatch) {
		t.Errorf("Expected ErrHeaderMismatch for an extra column, got %v", err)
	}

	bad := strings.Join(reading.SoilColumns, ",") + "\n2024-01-01 00:00:00,Zone_9,Loamy,1,1,1,1,1,1,1,1\n"
	if _, err := ReadSoil(strings.NewReader(bad)); err == nil {
		t.Error("Expected an error for an unknown zone")
	}

	short := strings.Join(reading.SoilColumns, ",") + "\n2024-01-01 00:00:00,Zone_1,Loamy,1\n"
	if _, err := ReadSoil(strings.NewReader(short)); err == nil {
		t.Error("Expected an error for a short record")
	}

	water := strings.Join(reading.WaterColumns, ",") + "\n2024-01-01 00:00:00,River,7,300,3,7,100,50,40,5,20,Z\n"
	if _, err := ReadWater(strings.NewReader(water)); !errors.Is(err, reading.ErrUnknownGrade) {
		t.Errorf("Expected ErrUnknownGrade, got %v", err)
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.xlsx")
	err := WriteWorkbook(path,
		SheetOf("crops", crop.Columns, crop.All()),
		Sheet{Name: "notes", Header: []string{"key", "value"}, Rows: [][]string{{"seed", "42"}}},
	)
	if err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}

	x, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer x.Close()

	if diff := cmp.Diff([]string{"crops", "notes"}, x.GetSheetList()); diff != "" {
		t.Errorf("Sheet list mismatch:\n%s", diff)
	}
	rows, err := x.GetRows("crops")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(crop.All())+1 {
		t.Fatalf("Expected %d rows, got %d", len(crop.All())+1, len(rows))
	}
	if rows[1][0] != "Rice" || rows[1][12] != "Kharif" {
		t.Errorf("Unexpected first crop row %v", rows[1])
	}

	if err := WriteWorkbook(path); err == nil {
		t.Error("Expected an error for a workbook without sheets")
	}
}

func TestRawTables_RoundTrip(t *testing.T) {
	soil, water, weather := generate(t)
	dir := t.TempDir()

	if err := WriteRaw(dir, &RawTables{Soil: soil, Water: water, Weather: weather, Crops: crop.All()}); err != nil {
		t.Fatalf("WriteRaw failed: %v", err)
	}
	got, err := ReadRaw(dir)
	if err != nil {
		t.Fatalf("ReadRaw failed: %v", err)
	}
	if diff := cmp.Diff(soil, got.Soil); diff != "" {
		t.Errorf("Soil differs:\n%s", diff)
	}
	if len(got.Water) != len(water) || len(got.Weather) != len(weather) {
		t.Errorf("Expected %d/%d rows, got %d/%d", len(water), len(weather), len(got.Water), len(got.Weather))
	}

	if _, err := ReadRaw(t.TempDir()); err == nil {
		t.Error("Expected an error for a directory without tables")
	}
}

func TestWriteDataset(t *testing.T) {
	soil, water, weather := generate(t)
	sim, _ := simulator.New(simulator.Options{Seed: 42, Workers: 2})
	p, err := features.NewPipeline(sim.Source(), crop.All())
	if err != nil {
		t.Fatal(err)
	}
	ds, err := p.Run(soil, water, weather)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := WriteDataset(dir, "features.xlsx", ds, crop.All()); err != nil {
		t.Fatalf("WriteDataset failed: %v", err)
	}

	zones, err := os.ReadFile(filepath.Join(dir, "zone_summary.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(zones), "\n"); lines != zone.Count+1 {
		t.Errorf("Expected %d zone summary lines, got %d", zone.Count+1, lines)
	}

	x, err := excelize.OpenFile(filepath.Join(dir, "features.xlsx"))
	if err != nil {
		t.Fatal(err)
	}
	defer x.Close()
	rows, err := x.GetRows("assignments")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != zone.Count+1 || rows[1][0] != "Zone_1" || rows[1][1] == "" {
		t.Errorf("Unexpected assignment sheet %v", rows)
	}
}
