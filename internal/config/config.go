package config

import (
	"time"

	"github.com/caarlos0/env"
)

type Config struct {
	ProxyPort                string        `env:"PROXY_PORT" envDefault:"8002"`
	ProxyTimeout             time.Duration `env:"PROXY_TIMEOUT" envDefault:"10m"`
	GoogleApiKey             string        `env:"GOOGLE_API_KEY"`
	GoogleUrl                string        `env:"GOOGLE_URL"`
	Codes                    []string      `env:"CODE" envSeparator:","`
	HideUserApiKey           bool          `env:"HIDE_USER_API_KEY" envDefault:"false"`
	StrippedBodyFields       []string      `env:"STRIPPED_BODY_FIELDS" envSeparator:"," envDefault:"provider,path"`
	MaxBodyBytes             int64         `env:"MAX_BODY_BYTES" envDefault:"33554432"`
	SettingsFile             string        `env:"SETTINGS_FILE"`
	TelemetryProvider        string        `env:"TELEMETRY_PROVIDER" envDefault:"statsd"`
	StatsEnabled             bool          `env:"STATS_ENABLED" envDefault:"false"`
	StatsAddress             string        `env:"STATS_ADDRESS" envDefault:"127.0.0.1:8125"`
	PrometheusEnabled        bool          `env:"PROMETHEUS_ENABLED" envDefault:"false"`
	PrometheusPort           string        `env:"PROMETHEUS_PORT" envDefault:"2112"`
	OpenTelemetryEnabled     bool          `env:"OTEL_ENABLED" envDefault:"false"`
	OpenTelemetryEndpoint    string        `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OpenTelemetrySampleRatio float64       `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`
}

func ParseEnvVariables() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) TelemetryEnabled() bool {
	return c.StatsEnabled || c.PrometheusEnabled
}
