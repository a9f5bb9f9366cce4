package config

import (
	"time"

	"ecowaste/pkg/cache"
)

type RedisConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	PoolSize       int           `yaml:"pool_size"`
	MinIdleConns   int           `yaml:"min_idle_conns"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	UserTTL        time.Duration `yaml:"user_ttl"`
	TestimonialTTL time.Duration `yaml:"testimonial_ttl"`
}

func loadRedisConfig() *RedisConfig {
	return &RedisConfig{
		Enabled:        getEnvAsBool("REDIS_ENABLED", false),
		Host:           getEnv("REDIS_HOST", "localhost"),
		Port:           getEnvAsInt("REDIS_PORT", 6379),
		Password:       getEnv("REDIS_PASSWORD", ""),
		DB:             getEnvAsInt("REDIS_DB", 0),
		PoolSize:       getEnvAsInt("REDIS_POOL_SIZE", 10),
		MinIdleConns:   getEnvAsInt("REDIS_MIN_IDLE_CONNS", 3),
		DialTimeout:    getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:    getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout:   getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		UserTTL:        getEnvAsDuration("REDIS_USER_TTL", 10*time.Minute),
		TestimonialTTL: getEnvAsDuration("REDIS_TESTIMONIAL_TTL", 5*time.Minute),
	}
}

func (r *RedisConfig) ToCacheConfig() *cache.RedisConfig {
	return &cache.RedisConfig{
		Host:         r.Host,
		Port:         r.Port,
		Password:     r.Password,
		DB:           r.DB,
		PoolSize:     r.PoolSize,
		MinIdleConns: r.MinIdleConns,
		DialTimeout:  r.DialTimeout,
		ReadTimeout:  r.ReadTimeout,
		WriteTimeout: r.WriteTimeout,
	}
}
