package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Settings is the optional JSON file layered on top of the environment.
// Unset fields leave the environment value in place.
type Settings struct {
	StrippedBodyFields []string `koanf:"strippedBodyFields"`
	Codes              []string `koanf:"codes"`
	HideUserApiKey     *bool    `koanf:"hideUserApiKey"`
}

func LoadSettings(path string) (*Settings, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return nil, fmt.Errorf("unable to load settings file with path %s: %w", path, err)
	}

	s := &Settings{}
	if err := k.Unmarshal("", s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings file with path %s: %w", path, err)
	}

	return s, nil
}

func (c *Config) ApplySettings(s *Settings) {
	if s == nil {
		return
	}

	if len(s.StrippedBodyFields) != 0 {
		c.StrippedBodyFields = s.StrippedBodyFields
	}

	if len(s.Codes) != 0 {
		c.Codes = append(c.Codes, s.Codes...)
	}

	if s.HideUserApiKey != nil {
		c.HideUserApiKey = *s.HideUserApiKey
	}
}
