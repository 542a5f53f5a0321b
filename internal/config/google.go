package config

import (
	"github.com/caarlos0/env"
)

// GoogleConfig holds the server side Gemini credentials.
type GoogleConfig struct {
	ApiKey  string `env:"GOOGLE_API_KEY"`
	BaseUrl string `env:"GOOGLE_URL"`
}

// EnvProvider reads GoogleConfig from the process environment on every call,
// so a rotated key is picked up by the next request.
type EnvProvider struct{}

func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

func (ep *EnvProvider) GetGoogleConfig() (*GoogleConfig, error) {
	cfg := &GoogleConfig{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

type StaticProvider struct {
	cfg GoogleConfig
}

func NewStaticProvider(apiKey, baseUrl string) *StaticProvider {
	return &StaticProvider{
		cfg: GoogleConfig{
			ApiKey:  apiKey,
			BaseUrl: baseUrl,
		},
	}
}

func (sp *StaticProvider) GetGoogleConfig() (*GoogleConfig, error) {
	copied := sp.cfg
	return &copied, nil
}
