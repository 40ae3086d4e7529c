package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/smukkama/agrisense/internal/crop"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Connect establishes a connection to the database
func Connect(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return &DB{db}, nil
}

// RunMigrations executes all SQL migration files in name order
func (db *DB) RunMigrations(migrationsDir string) error {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			sqlFiles = append(sqlFiles, file.Name())
		}
	}
	sort.Strings(sqlFiles)

	for _, filename := range sqlFiles {
		fmt.Printf("Running migration: %s\n", filename)

		content, err := os.ReadFile(filepath.Join(migrationsDir, filename))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}
	}

	fmt.Println("All migrations completed successfully")
	return nil
}

// UpsertCrops writes the crop reference table
func (db *DB) UpsertCrops(ctx context.Context, crops []crop.Tolerance) error {
	query := `
		INSERT INTO crop_reference (
			crop_name, nitrogen_min, nitrogen_max, phosphorus_min, phosphorus_max,
			potassium_min, potassium_max, ph_min, ph_max, water_requirement_mm,
			temperature_min, temperature_max, growing_season, expected_yield
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (crop_name) DO UPDATE
		SET nitrogen_min = EXCLUDED.nitrogen_min,
		    nitrogen_max = EXCLUDED.nitrogen_max,
		    phosphorus_min = EXCLUDED.phosphorus_min,
		    phosphorus_max = EXCLUDED.phosphorus_max,
		    potassium_min = EXCLUDED.potassium_min,
		    potassium_max = EXCLUDED.potassium_max,
		    ph_min = EXCLUDED.ph_min,
		    ph_max = EXCLUDED.ph_max,
		    water_requirement_mm = EXCLUDED.water_requirement_mm,
		    temperature_min = EXCLUDED.temperature_min,
		    temperature_max = EXCLUDED.temperature_max,
		    growing_season = EXCLUDED.growing_season,
		    expected_yield = EXCLUDED.expected_yield,
		    updated_at = CURRENT_TIMESTAMP
	`
	for _, c := range crops {
		_, err := db.ExecContext(ctx, query,
			c.Name, c.NMin, c.NMax, c.PMin, c.PMax, c.KMin, c.KMax,
			c.PHMin, c.PHMax, c.WaterRequirementMM, c.TempMin, c.TempMax,
			string(c.Season), c.ExpectedYieldTonsPerHa,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert crop %s: %w", c.Name, err)
		}
	}
	return nil
}

const (
	insertSoil = `
		INSERT INTO soil_readings (
			run_id, seq, timestamp, zone_id, soil_type, nitrogen, phosphorus,
			potassium, ph, organic_matter, moisture, soil_temperature, ec
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (run_id, seq) DO NOTHING
	`
	insertWater = `
		INSERT INTO water_readings (
			run_id, seq, timestamp, source_type, ph, tds, turbidity, dissolved_oxygen,
			hardness, chloride, sulfate, nitrate, water_temperature, quality_grade
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (run_id, seq) DO NOTHING
	`
	insertWeather = `
		INSERT INTO weather_readings (
			run_id, seq, timestamp, temperature, humidity, rainfall,
			wind_speed, solar_radiation, pressure, uv_index
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id, seq) DO NOTHING
	`
)

// InsertReadings writes a batch in one transaction. Readings already stored
// for the same run and sequence number are skipped, so redelivered
// messages are harmless. It returns the number of new rows.
func (db *DB) InsertReadings(ctx context.Context, batch *ReadingBatch) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var inserted int64
	exec := func(query string, args ...interface{}) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		inserted += n
		return nil
	}

	for _, r := range batch.Soil {
		if err := exec(insertSoil,
			r.RunID, r.Seq, r.Timestamp, string(r.ZoneID), string(r.SoilType),
			r.Nitrogen, r.Phosphorus, r.Potassium, r.PH, r.OrganicMatter,
			r.Moisture, r.SoilTemperature, r.EC,
		); err != nil {
			return 0, fmt.Errorf("failed to insert soil reading %d: %w", r.Seq, err)
		}
	}
	for _, r := range batch.Water {
		if err := exec(insertWater,
			r.RunID, r.Seq, r.Timestamp, string(r.SourceType), r.PH, r.TDS,
			r.Turbidity, r.DissolvedOxygen, r.Hardness, r.Chloride, r.Sulfate,
			r.Nitrate, r.WaterTemperature, string(r.QualityGrade),
		); err != nil {
			return 0, fmt.Errorf("failed to insert water reading %d: %w", r.Seq, err)
		}
	}
	for _, r := range batch.Weather {
		if err := exec(insertWeather,
			r.RunID, r.Seq, r.Timestamp, r.Temperature, r.Humidity, r.Rainfall,
			r.WindSpeed, r.SolarRadiation, r.Pressure, r.UVIndex,
		); err != nil {
			return 0, fmt.Errorf("failed to insert weather reading %d: %w", r.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit readings: %w", err)
	}
	return inserted, nil
}

// ReadingSpan returns the earliest and latest reading time over the soil
// and weather tables; ok is false when both are empty
func (db *DB) ReadingSpan(ctx context.Context) (from, to time.Time, ok bool, err error) {
	query := `
		SELECT MIN(ts), MAX(ts) FROM (
			SELECT timestamp AS ts FROM weather_readings
			UNION ALL
			SELECT timestamp AS ts FROM soil_readings
		) readings
	`

	var lo, hi sql.NullTime
	if err := db.QueryRowContext(ctx, query).Scan(&lo, &hi); err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if !lo.Valid || !hi.Valid {
		return time.Time{}, time.Time{}, false, nil
	}
	return lo.Time, hi.Time, true, nil
}

// GetDailyWeather returns the rollup rows of [from, to] in date order
func (db *DB) GetDailyWeather(ctx context.Context, from, to time.Time) ([]*DailyWeather, error) {
	query := `
		SELECT date, avg_temp, min_temp, max_temp, avg_humidity, total_rainfall,
		       avg_wind, avg_solar, max_uv, sample_count, created_at
		FROM daily_weather
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY date
	`

	rows, err := db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []*DailyWeather
	for rows.Next() {
		var d DailyWeather
		if err := rows.Scan(
			&d.Date,
			&d.AvgTemp,
			&d.MinTemp,
			&d.MaxTemp,
			&d.AvgHumidity,
			&d.TotalRainfall,
			&d.AvgWind,
			&d.AvgSolar,
			&d.MaxUV,
			&d.SampleCount,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		days = append(days, &d)
	}

	return days, rows.Err()
}

// InsertAlertLog inserts a new alert log entry
func (db *DB) InsertAlertLog(ctx context.Context, alert *AlertLog) error {
	query := `
		INSERT INTO alerts_log (
			subject, kind, condition, severity, breach_value, details,
			start_time, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING alert_id
	`

	return db.QueryRowContext(ctx,
		query,
		alert.Subject,
		alert.Kind,
		alert.Condition,
		alert.Severity,
		alert.BreachValue,
		alert.Details,
		alert.StartTime,
		alert.Status,
	).Scan(&alert.AlertID)
}

// UpdateAlertLogCleared updates an alert log to cleared status
func (db *DB) UpdateAlertLogCleared(ctx context.Context, alertID int64, endTime time.Time) error {
	query := `
		UPDATE alerts_log
		SET status = $1, end_time = $2, updated_at = CURRENT_TIMESTAMP
		WHERE alert_id = $3
	`

	_, err := db.ExecContext(ctx, query, AlertStatusCleared, endTime, alertID)
	return err
}
