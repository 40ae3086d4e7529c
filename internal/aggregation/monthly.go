package aggregation

import (
	"context"
	"fmt"
	"time"
)

// MonthlyAggregator rolls the daily weather table up per month
type MonthlyAggregator struct {
	db Execer
}

// NewMonthlyAggregator creates a new monthly aggregator
func NewMonthlyAggregator(db Execer) *MonthlyAggregator {
	return &MonthlyAggregator{db: db}
}

// Monthly means are taken over days, so a day with few readings weighs
// as much as a full one. Rainfall is the sum of the daily totals.
const monthlyWeatherQuery = `
	INSERT INTO monthly_weather (month, avg_temp, total_rainfall, avg_humidity, day_count)
	SELECT
		DATE_TRUNC('month', date)::date AS month,
		AVG(avg_temp),
		SUM(total_rainfall),
		AVG(avg_humidity),
		COUNT(*)
	FROM
		daily_weather
	WHERE
		date >= $1::date AND date < $2::date
	GROUP BY
		DATE_TRUNC('month', date)
	ON CONFLICT (month) DO UPDATE
	SET
		avg_temp = EXCLUDED.avg_temp,
		total_rainfall = EXCLUDED.total_rainfall,
		avg_humidity = EXCLUDED.avg_humidity,
		day_count = EXCLUDED.day_count
`

// Month truncates t to the first day of its month in UTC
func Month(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// AggregateRange rolls up every month touched by [from, to)
func (m *MonthlyAggregator) AggregateRange(ctx context.Context, from, to time.Time) (int64, error) {
	start := Month(from)
	end := Month(to)
	if !to.Equal(end) {
		end = end.AddDate(0, 1, 0)
	}
	if !end.After(start) {
		return 0, fmt.Errorf("empty range %s - %s", start.Format("2006-01"), end.Format("2006-01"))
	}

	fmt.Printf("Running monthly aggregation for %s - %s\n", start.Format("2006-01"), end.Format("2006-01"))

	result, err := m.db.ExecContext(ctx, monthlyWeatherQuery, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate monthly weather: %w", err)
	}

	months, _ := result.RowsAffected()
	fmt.Printf("Monthly aggregation completed: %d months processed\n", months)
	return months, nil
}
