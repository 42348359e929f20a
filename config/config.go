// Package config loads the tutorctl YAML configuration.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	convpolicy "github.com/cyberFlowTech/zapry-convpolicy-go"
)

type Config struct {
	Engine convpolicy.EngineConfig `yaml:"engine"`
	Store  Store                   `yaml:"store"`
	Log    Log                     `yaml:"log"`
	// Optional YAML file overriding the built-in persona styles
	PersonaCatalog string `yaml:"persona_catalog" example:"personas.yaml"`
}

type Store struct {
	// Persistence backend
	Driver string `yaml:"driver" example:"sqlite" validate:"oneof=memory file redis sqlite"`
	// Directory for the file driver, database path for the sqlite driver
	Path string `yaml:"path" example:"data/profiles.db" validate:"required_if=Driver file,required_if=Driver sqlite"`
	// Redis settings for the redis driver
	Redis Redis `yaml:"redis"`
}

type Redis struct {
	// Redis address
	Addr string `yaml:"addr" example:"localhost:6379"`
	// Redis password
	Password string `yaml:"password"`
	// Redis database number
	DB int `yaml:"db" example:"0" validate:"min=0"`
	// Key prefix
	Prefix string `yaml:"prefix" example:"convpolicy"`
}

type Log struct {
	// Minimum level: debug, info, warn, error
	Level string `yaml:"level" example:"info" validate:"oneof=debug info warn error"`
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890" validate:"required_with=Token"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Engine: convpolicy.DefaultEngineConfig(),
		Store:  Store{Driver: "memory"},
		Log:    Log{Level: "info"},
	}
}

// Load reads path, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var result Config
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.Store.Driver == "" {
		result.Store.Driver = "memory"
	}
	if result.Store.Driver == "redis" && result.Store.Redis.Addr == "" {
		result.Store.Redis.Addr = "localhost:6379"
	}
	if result.Log.Level == "" {
		result.Log.Level = "info"
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	result.Engine = result.Engine.Normalize()
	return &result, nil
}
