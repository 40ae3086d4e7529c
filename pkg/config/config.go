package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Simulation  SimulationConfig
	Export      ExportConfig
	Diagnosis   DiagnosisConfig
	Aggregation AggregationConfig
	SMTP        SMTPConfig
}

type DatabaseConfig struct {
	Host     string `validate:"required"`
	Port     int    `validate:"min=1,max=65535"`
	User     string `validate:"required"`
	Password string
	DBName   string `validate:"required"`
	SSLMode  string `validate:"oneof=disable require verify-ca verify-full"`
}

func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `validate:"required,hostname_port"`
	Password string
	DB       int `validate:"min=0"`
}

type KafkaConfig struct {
	Brokers          []string `validate:"min=1,dive,hostname_port"`
	TopicReadings    string   `validate:"required"`
	TopicAlerts      string   `validate:"required"`
	NumPartitions    int      `validate:"min=1"`
	PublishBatchSize int      `validate:"min=1"`
}

// SimulationConfig controls the synthetic data generation run
type SimulationConfig struct {
	Seed           uint64
	SoilRecords    int `validate:"min=0"`
	WaterRecords   int `validate:"min=0"`
	WeatherRecords int `validate:"min=0"`
	Workers        int `validate:"min=1,max=256"`
	Start          time.Time
}

type ExportConfig struct {
	RawDir       string `validate:"required"`
	ProcessedDir string `validate:"required"`
	Workbook     string `validate:"required"`
}

type DiagnosisConfig struct {
	// consecutive breaching readings before an alert is raised
	Confirmations int `validate:"min=1"`
}

type AggregationConfig struct {
	Interval  time.Duration `validate:"min=1s"`
	DailyTime string        `validate:"datetime=15:04"`
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string `validate:"omitempty,email"`
	To       string `validate:"omitempty,email"`
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	start, err := getEnvAsTime("SIM_START", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return nil, err
	}

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "agri_user"),
			Password: getEnv("DB_PASSWORD", "agri_pass"),
			DBName:   getEnv("DB_NAME", "agrisense"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:          strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicReadings:    getEnv("KAFKA_TOPIC_READINGS", "agri.readings.raw"),
			TopicAlerts:      getEnv("KAFKA_TOPIC_ALERTS", "agri.alerts"),
			NumPartitions:    getEnvAsInt("KAFKA_NUM_PARTITIONS", 8),
			PublishBatchSize: getEnvAsInt("KAFKA_PUBLISH_BATCH_SIZE", 500),
		},
		Simulation: SimulationConfig{
			Seed:           getEnvAsUint64("SIM_SEED", 42),
			SoilRecords:    getEnvAsInt("SIM_SOIL_RECORDS", 10000),
			WaterRecords:   getEnvAsInt("SIM_WATER_RECORDS", 10000),
			WeatherRecords: getEnvAsInt("SIM_WEATHER_RECORDS", 5000),
			Workers:        getEnvAsInt("SIM_WORKERS", 4),
			Start:          start,
		},
		Export: ExportConfig{
			RawDir:       getEnv("EXPORT_RAW_DIR", "data/raw"),
			ProcessedDir: getEnv("EXPORT_PROCESSED_DIR", "data/processed"),
			Workbook:     getEnv("EXPORT_WORKBOOK", "agrisense_features.xlsx"),
		},
		Diagnosis: DiagnosisConfig{
			Confirmations: getEnvAsInt("DIAGNOSIS_CONFIRMATIONS", 2),
		},
		Aggregation: AggregationConfig{
			Interval:  getEnvAsDuration("AGGREGATION_INTERVAL", 15*time.Minute),
			DailyTime: getEnv("AGGREGATION_DAILY_TIME", "00:05"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "agrisense@example.com"),
			To:       getEnv("SMTP_TO", "agronomist@example.com"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks every section against its validate tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseUint(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsTime parses a YYYY-MM-DD date in UTC; a malformed value is an error
func getEnvAsTime(key string, defaultValue time.Time) (time.Time, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.Parse(time.DateOnly, valueStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", key, valueStr, err)
	}
	return value, nil
}
