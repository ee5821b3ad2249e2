package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverDocumentDB = "documentdb"
	DriverInfluxDB   = "influxdb"
	DriverSQLite     = "sqlite"
)

// Config holds the application's configuration.
type Config struct {
	Port     string
	LogLevel string

	StoreDriver string

	// Document database (Cosmos DB / DocumentDB Mongo API).
	DBEndpoint   string
	DBAccount    string
	DBPrimaryKey string
	DatabaseID   string
	CollectionID string

	InfluxDBURL    string
	InfluxDBToken  string
	InfluxDBOrg    string
	InfluxDBBucket string

	SQLitePath string

	IoTHubConnection string
	DeviceID         string

	RedisAddr       string
	CommandMinPause time.Duration

	HardwareFile string
	CORSOrigins  []string
}

// LoadConfig loads the configuration from environment variables, falling back
// to hardcoded defaults for anything unset.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system environment variables")
	}

	minPause, err := time.ParseDuration(getEnv("COMMAND_MIN_PAUSE", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid COMMAND_MIN_PAUSE: %w", err)
	}

	cfg := Config{
		Port:     getEnv("PORT", "8000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverDocumentDB)),

		DBEndpoint:   getEnv("DB_ENDPOINT", "mongodb://localhost:27017"),
		DBAccount:    os.Getenv("DB_ACCOUNT"),
		DBPrimaryKey: os.Getenv("DB_PRIMARY_KEY"),
		DatabaseID:   getEnv("DB_DATABASE_ID", "iotDB"),
		CollectionID: getEnv("DB_COLLECTION_ID", "iotMessages"),

		InfluxDBURL:    getEnv("INFLUXDB_URL", "http://localhost:8086"),
		InfluxDBToken:  os.Getenv("INFLUXDB_TOKEN"),
		InfluxDBOrg:    os.Getenv("INFLUXDB_ORG"),
		InfluxDBBucket: getEnv("INFLUXDB_BUCKET", "iotMessages"),

		SQLitePath: getEnv("SQLITE_PATH", "iot.db"),

		IoTHubConnection: os.Getenv("IOTHUB_CONNECTION"),
		DeviceID:         getEnv("DEVICE_ID", "Huvudsta"),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		CommandMinPause: minPause,

		HardwareFile: getEnv("HARDWARE_FILE", "hardware.yaml"),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected store driver has what it needs.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverDocumentDB:
		if c.DBEndpoint == "" {
			return fmt.Errorf("DB_ENDPOINT must be set for the %s store", DriverDocumentDB)
		}
	case DriverInfluxDB:
		if c.InfluxDBURL == "" || c.InfluxDBToken == "" || c.InfluxDBOrg == "" {
			return fmt.Errorf("InfluxDB configuration is incomplete. Please set INFLUXDB_URL, INFLUXDB_TOKEN, and INFLUXDB_ORG environment variables")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must be set for the %s store", DriverSQLite)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.CommandMinPause < 0 {
		return fmt.Errorf("COMMAND_MIN_PAUSE must not be negative")
	}
	return nil
}

// ServerAddress is the listen address for the HTTP server.
func (c Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
