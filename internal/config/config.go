package config

import (
	"errors"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream lookup services.
	AddressAPIURL string
	WeatherAPIURL string
	LookupTimeout time.Duration

	// Lookup event sink.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	lookupTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("LOOKUP_TIMEOUT", "5s"))
	if err != nil || lookupTimeout <= 0 {
		return nil, errors.New("invalid LOOKUP_TIMEOUT")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		AddressAPIURL: sharedcfg.EnvOrDefault("ADDRESS_API_URL", "https://cep.awesomeapi.com.br"),
		WeatherAPIURL: sharedcfg.EnvOrDefault("WEATHER_API_URL", "https://api.open-meteo.com"),
		LookupTimeout: lookupTimeout,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "cep-lookups"),
	}

	if cfg.AddressAPIURL == "" {
		return nil, errors.New("ADDRESS_API_URL is required")
	}
	if cfg.WeatherAPIURL == "" {
		return nil, errors.New("WEATHER_API_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}
