// Package config provides configuration management for the pythsui client
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"github.com/sljivkov/pythsui/domain"
)

// Config holds the client configuration
type Config struct {
	RpcUrl          string        `envconfig:"RPC_URL" required:"true"`           // Sui JSON-RPC endpoint
	PythStateID     string        `envconfig:"PYTH_STATE_ID" required:"true"`     // Deployed price-feed contract state
	WormholeStateID string        `envconfig:"WORMHOLE_STATE_ID" required:"true"` // Deployed verification contract state
	FeedIDs         string        `envconfig:"FEED_IDS"`                          // Comma-separated hex feed identifiers
	UpdateData      string        `envconfig:"UPDATE_DATA"`                       // Comma-separated 0x-prefixed update blobs
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
}

// Option is a function that modifies Config
type Option func(*Config) error

// WithEnvFile loads configuration from a .env file and re-reads the
// environment so the file's values are picked up.
func WithEnvFile(path string) Option {
	return func(c *Config) error {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
		if err := envconfig.Process("", c); err != nil {
			return fmt.Errorf("failed to process config: %w", err)
		}
		return nil
	}
}

// WithLogLevel overrides the configured log level
func WithLogLevel(level string) Option {
	return func(c *Config) error {
		c.LogLevel = level
		return nil
	}
}

// validate performs validation on the config values
func (c *Config) validate() error {
	if _, err := url.ParseRequestURI(c.RpcUrl); err != nil {
		return fmt.Errorf("invalid RPC URL: %s", c.RpcUrl)
	}

	for name, id := range map[string]string{
		"price-feed state":   c.PythStateID,
		"verification state": c.WormholeStateID,
	} {
		if !domain.ObjectID(id).Valid() {
			return fmt.Errorf("invalid %s object id: %s", name, id)
		}
	}

	for _, feedID := range c.FeedIDList() {
		if _, err := domain.FeedIDBytes(feedID); err != nil {
			return fmt.Errorf("invalid feed id %s: %w", feedID, err)
		}
	}

	if _, err := c.UpdateBlobs(); err != nil {
		return err
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// NewConfig creates a new validated Config instance
func NewConfig(opts ...Option) (*Config, error) {
	var cfg Config

	// Process environment variables first
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	// Apply user options last so they take precedence
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	// Validate the configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// FeedIDList returns the configured feed identifiers as a slice
func (c *Config) FeedIDList() []string {
	if c.FeedIDs == "" {
		return nil
	}

	feeds := strings.Split(c.FeedIDs, ",")
	for i := range feeds {
		feeds[i] = strings.TrimSpace(feeds[i])
	}

	return feeds
}

// UpdateBlobs decodes the configured update data
func (c *Config) UpdateBlobs() ([][]byte, error) {
	if c.UpdateData == "" {
		return nil, nil
	}

	parts := strings.Split(c.UpdateData, ",")
	blobs := make([][]byte, 0, len(parts))

	for _, part := range parts {
		blob, err := hexutil.Decode(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid update data %q: %w", part, err)
		}

		blobs = append(blobs, blob)
	}

	return blobs, nil
}
