package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration for the chat service client.
type Config struct {
	BaseURL                 string `toml:"base_url" mapstructure:"base_url"`
	Token                   string `toml:"token" mapstructure:"token"` // optional bearer token, supports $VAR expansion
	UserID                  string `toml:"user_id" mapstructure:"user_id"`
	TimeoutSeconds          int    `toml:"timeout_seconds" mapstructure:"timeout_seconds"`
	TypingEffect            bool   `toml:"typing_effect" mapstructure:"typing_effect"` // use the pre-chunked endpoint
	SessionMessageThreshold int    `toml:"session_message_threshold" mapstructure:"session_message_threshold"` // 0 = disabled
	SessionRetentionDays    int    `toml:"session_retention_days" mapstructure:"session_retention_days"`
}

// GetBaseURL returns the service base URL.
func (c *Config) GetBaseURL() string {
	return c.BaseURL
}

// GetToken returns the bearer token, empty when the service needs none.
func (c *Config) GetToken() string {
	return c.Token
}

// GetUserID returns the optional user identifier sent with each request.
func (c *Config) GetUserID() string {
	return c.UserID
}

// GetTimeout returns the request timeout.
func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NewDefaultConfig returns a new Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		BaseURL:                 "http://localhost:8000",
		Token:                   "$MINICHAT_TOKEN", // Default to env var
		UserID:                  "",
		TimeoutSeconds:          60,
		TypingEffect:            true,
		SessionMessageThreshold: 50, // Default threshold (0 = disabled)
		SessionRetentionDays:    30, // Default: delete sessions older than 30 days
	}
}

// LoadConfig loads configuration from viper.
func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}

	// Expand environment variable references in the token
	token, err := expandEnvVar(config.Token)
	if err != nil {
		return nil, fmt.Errorf("error resolving token: %v", err)
	}
	config.Token = token

	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = 60
	}

	return config, nil
}
