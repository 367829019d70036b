package credentials

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix is stripped from environment variables during credential
// loading (e.g., WARCRAFTLOGS_CLIENT_ID → client_id).
const envPrefix = "WARCRAFTLOGS_"

// LoadOption configures Load.
type LoadOption func(*loadConfig)

// loadConfig holds the source selection for Load.
type loadConfig struct {
	filePath    string
	values      map[string]any
	environFunc func() []string
}

// WithFile reads credentials from a TOML file before applying environment
// variables.
func WithFile(path string) LoadOption {
	return func(c *loadConfig) {
		c.filePath = path
	}
}

// WithValues applies explicit values with the highest precedence. Keys match
// the credential field tags (e.g., "client_id", "token_url").
func WithValues(values map[string]any) LoadOption {
	return func(c *loadConfig) {
		c.values = values
	}
}

// WithEnviron overrides the environment lookup, mainly for tests.
func WithEnviron(environFunc func() []string) LoadOption {
	return func(c *loadConfig) {
		c.environFunc = environFunc
	}
}

// Load assembles credentials from the configured sources with precedence:
// config file → environment variables → explicit values. Unset endpoints
// fall back to the Warcraft Logs defaults.
func Load(opts ...LoadOption) (*Credentials, error) {
	cfg := &loadConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	k := koanf.New(".")

	// 1. Load from config file if provided
	if cfg.filePath != "" {
		if err := k.Load(file.Provider(cfg.filePath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading credentials file: %w", err)
		}
	}

	// 2. Load from environment variables
	envProvider := env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, envPrefix)), value
		},
		EnvironFunc: cfg.environFunc,
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	// 3. Explicit values win over both
	if len(cfg.values) > 0 {
		if err := k.Load(confmap.Provider(cfg.values, "."), nil); err != nil {
			return nil, fmt.Errorf("loading credential overrides: %w", err)
		}
	}

	creds := &Credentials{}
	if err := k.UnmarshalWithConf("", creds, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("unmarshaling credentials: %w", err)
	}

	creds.ApplyDefaults()

	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}

	return creds, nil
}
