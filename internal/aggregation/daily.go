// Package aggregation rolls stored readings up into daily and monthly
// tables with INSERT ... SELECT statements.
package aggregation

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Execer runs a statement; *database.DB satisfies it
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// DailyAggregator rolls weather and soil readings up per day
type DailyAggregator struct {
	db Execer
}

// NewDailyAggregator creates a new daily aggregator
func NewDailyAggregator(db Execer) *DailyAggregator {
	return &DailyAggregator{db: db}
}

const dailyWeatherQuery = `
	INSERT INTO daily_weather (
		date, avg_temp, min_temp, max_temp, avg_humidity, total_rainfall,
		avg_wind, avg_solar, max_uv, sample_count
	)
	SELECT
		DATE(timestamp) AS date,
		AVG(temperature),
		MIN(temperature),
		MAX(temperature),
		AVG(humidity),
		SUM(rainfall),
		AVG(wind_speed),
		AVG(solar_radiation),
		MAX(uv_index),
		COUNT(*)
	FROM
		weather_readings
	WHERE
		timestamp >= $1 AND timestamp < $2
	GROUP BY
		DATE(timestamp)
	ON CONFLICT (date) DO UPDATE
	SET
		avg_temp = EXCLUDED.avg_temp,
		min_temp = EXCLUDED.min_temp,
		max_temp = EXCLUDED.max_temp,
		avg_humidity = EXCLUDED.avg_humidity,
		total_rainfall = EXCLUDED.total_rainfall,
		avg_wind = EXCLUDED.avg_wind,
		avg_solar = EXCLUDED.avg_solar,
		max_uv = EXCLUDED.max_uv,
		sample_count = EXCLUDED.sample_count
`

const zoneSoilQuery = `
	INSERT INTO zone_soil_daily (
		zone_id, date, avg_nitrogen, avg_phosphorus, avg_potassium,
		avg_ph, avg_moisture, sample_count
	)
	SELECT
		zone_id,
		DATE(timestamp) AS date,
		AVG(nitrogen),
		AVG(phosphorus),
		AVG(potassium),
		AVG(ph),
		AVG(moisture),
		COUNT(*)
	FROM
		soil_readings
	WHERE
		timestamp >= $1 AND timestamp < $2
	GROUP BY
		zone_id, DATE(timestamp)
	ON CONFLICT (zone_id, date) DO UPDATE
	SET
		avg_nitrogen = EXCLUDED.avg_nitrogen,
		avg_phosphorus = EXCLUDED.avg_phosphorus,
		avg_potassium = EXCLUDED.avg_potassium,
		avg_ph = EXCLUDED.avg_ph,
		avg_moisture = EXCLUDED.avg_moisture,
		sample_count = EXCLUDED.sample_count
`

// Day truncates t to midnight UTC
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AggregateRange rolls up every day in [from, to). Days are recomputed
// from scratch, so rerunning a range is safe.
func (d *DailyAggregator) AggregateRange(ctx context.Context, from, to time.Time) (int64, error) {
	start, end := Day(from), Day(to)
	if !end.After(start) {
		return 0, fmt.Errorf("empty range %s - %s", start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	fmt.Printf("Running daily aggregation for %s - %s\n", start.Format(time.DateOnly), end.Format(time.DateOnly))

	result, err := d.db.ExecContext(ctx, dailyWeatherQuery, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate daily weather: %w", err)
	}
	days, _ := result.RowsAffected()

	result, err = d.db.ExecContext(ctx, zoneSoilQuery, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate zone soil: %w", err)
	}
	zoneDays, _ := result.RowsAffected()

	fmt.Printf("Daily aggregation completed: %d weather days, %d zone days\n", days, zoneDays)
	return days, nil
}

// Aggregate rolls up a single day
func (d *DailyAggregator) Aggregate(ctx context.Context, day time.Time) (int64, error) {
	start := Day(day)
	return d.AggregateRange(ctx, start, start.AddDate(0, 0, 1))
}

// NextRunTime returns the next occurrence of timeOfDay ("HH:MM") after now
func NextRunTime(now time.Time, timeOfDay string) (time.Time, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(timeOfDay, "%d:%d", &hour, &minute); err != nil {
		return time.Time{}, fmt.Errorf("invalid time format: %s (expected HH:MM)", timeOfDay)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("invalid time of day: %s", timeOfDay)
	}

	todayRun := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.After(todayRun) {
		return todayRun.AddDate(0, 0, 1), nil
	}
	return todayRun, nil
}
