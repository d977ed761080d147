// Package config collects the environment variables the game server reads
// at startup, the way the teacher's main.go reads GAME_SERVER_PORT
// directly but gathered into one struct for the rest of the ambient stack
// (database, analytics, broker) this module adds.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds every environment-sourced setting the server needs to boot.
type Config struct {
	DatabaseURL    string
	ClickHouseHost string
	ClickHousePort string
	ClickHouseDB   string
	ClickHouseUser string
	ClickHousePass string
	KafkaBrokers   []string
	GameServerPort string
	JWTSigningKey  string
}

// Load reads Config from the environment, applying the teacher's defaults
// where a variable is optional.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ClickHouseHost: getEnvDefault("CLICKHOUSE_HOST", "localhost"),
		ClickHousePort: getEnvDefault("CLICKHOUSE_PORT", "9000"),
		ClickHouseDB:   getEnvDefault("CLICKHOUSE_DATABASE", "poker_analytics"),
		ClickHouseUser: getEnvDefault("CLICKHOUSE_USER", "default"),
		ClickHousePass: os.Getenv("CLICKHOUSE_PASSWORD"),
		GameServerPort: getEnvDefault("GAME_SERVER_PORT", "3002"),
		JWTSigningKey:  os.Getenv("JWT_SIGNING_KEY"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("config: DATABASE_URL is required")
	}
	return cfg, nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
