// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"laptopcatalog/internal/apperr"
)

// Store drivers.
const (
	DriverMongo    = "mongodb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds every setting of the API server and the web frontend.
type Config struct {
	AppPort string

	StoreDriver           string
	MongoURI              string
	MongoDatabase         string
	DatabaseDSN           string
	StoreConnectTimeout   time.Duration
	StoreOperationTimeout time.Duration

	RabbitMQURL string

	LogLevel  string
	LogFormat string
	Debug     bool

	CORSOrigins string

	WebPort string
	APIURL  string
}

// Load reads the .env file at envFile when it exists, then the environment.
// An empty envFile skips the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	v := viper.New()
	v.SetDefault("APP_PORT", ":4000")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("MONGODB_URI", "")
	v.SetDefault("MONGODB_DATABASE", "laptops")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("STORE_CONNECT_TIMEOUT", "10s")
	v.SetDefault("STORE_OPERATION_TIMEOUT", "5s")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DEBUG", false)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("WEB_PORT", ":3000")
	v.SetDefault("API_URL", "http://localhost:4000/graphql")
	v.AutomaticEnv()

	return &Config{
		AppPort:               v.GetString("APP_PORT"),
		StoreDriver:           strings.ToLower(v.GetString("STORE_DRIVER")),
		MongoURI:              v.GetString("MONGODB_URI"),
		MongoDatabase:         v.GetString("MONGODB_DATABASE"),
		DatabaseDSN:           v.GetString("DATABASE_DSN"),
		StoreConnectTimeout:   v.GetDuration("STORE_CONNECT_TIMEOUT"),
		StoreOperationTimeout: v.GetDuration("STORE_OPERATION_TIMEOUT"),
		RabbitMQURL:           v.GetString("RABBITMQ_URL"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		LogFormat:             v.GetString("LOG_FORMAT"),
		Debug:                 v.GetBool("DEBUG"),
		CORSOrigins:           v.GetString("CORS_ORIGINS"),
		WebPort:               v.GetString("WEB_PORT"),
		APIURL:                v.GetString("API_URL"),
	}, nil
}

// ValidateStore checks that the selected driver has what it needs to connect.
func (c *Config) ValidateStore() error {
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return apperr.New(apperr.KindConnection, "MONGODB_URI is not defined in environment variables")
		}
	case DriverPostgres, DriverSQLite:
		if c.DatabaseDSN == "" {
			return apperr.New(apperr.KindConnection, "DATABASE_DSN is not defined in environment variables")
		}
	case DriverMemory:
	default:
		return apperr.New(apperr.KindConnection, "unsupported STORE_DRIVER "+c.StoreDriver)
	}
	return nil
}
