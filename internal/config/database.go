package config

import (
	"time"

	"ecowaste/pkg/database"
)

type DatabaseConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	MaxPoolSize    int           `yaml:"max_pool_size"`
	MinPoolSize    int           `yaml:"min_pool_size"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	SocketTimeout  time.Duration `yaml:"socket_timeout"`
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		Database:       getEnv("MONGODB_DATABASE", "ecowaste"),
		MaxPoolSize:    getEnvAsInt("MONGODB_MAX_POOL_SIZE", 50),
		MinPoolSize:    getEnvAsInt("MONGODB_MIN_POOL_SIZE", 2),
		ConnectTimeout: getEnvAsDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
		SocketTimeout:  getEnvAsDuration("MONGODB_SOCKET_TIMEOUT", 30*time.Second),
	}
}

func (d *DatabaseConfig) ToDatabaseConfig() *database.DatabaseConfig {
	return &database.DatabaseConfig{
		URI:            d.URI,
		Database:       d.Database,
		MaxPoolSize:    d.MaxPoolSize,
		MinPoolSize:    d.MinPoolSize,
		ConnectTimeout: d.ConnectTimeout,
		SocketTimeout:  d.SocketTimeout,
	}
}
