package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/CIDgravity/snakelet"
	"github.com/joho/godotenv"
)

// config structure
type Config struct {
	API       APIConfig       `mapstructure:"API"`
	Github    GithubConfig    `mapstructure:"GITHUB"`
	Generator GeneratorConfig `mapstructure:"GENERATOR"`
	RateLimit RateLimitConfig `mapstructure:"RATELIMIT"`
	Tasks     TasksConfig     `mapstructure:"TASKS"`
	Logs      LogsConfig      `mapstructure:"LOGS"`
}

type APIConfig struct {
	ListenPort     string   `mapstructure:"ListenPort"`
	AllowedOrigins []string `mapstructure:"AllowedOrigins"`
}

type GithubConfig struct {
	Token string `mapstructure:"Token"`
}

type GeneratorConfig struct {
	APIKey  string `mapstructure:"APIKey"`
	BaseURL string `mapstructure:"BaseURL"`
	Model   string `mapstructure:"Model"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"MaxRequests"`
	WindowMinutes int `mapstructure:"WindowMinutes"`
}

type TasksConfig struct {
	MaxParallelTasksAllowed int `mapstructure:"MaxParallelTasksAllowed"`
}

type LogsConfig struct {
	Level            string `mapstructure:"Level"` // error | warn | info | debug - case insensitive
	OutputLogsAsJson bool   `mapstructure:"OutputLogsAsJson"`
}

// Load
func Load() (*Config, error) {

	// secrets can come from a .env file or from the environment directly
	// missing .env file is fine
	_ = godotenv.Load()

	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))

	if err != nil {
		return nil, err
	}

	// check config file exists
	configFilePath := dir + "/config/config.toml"

	if _, err := os.Stat(dir + "/config/config.toml"); errors.Is(err, os.ErrNotExist) {
		if _, err := os.Stat("config/config.toml"); errors.Is(err, os.ErrNotExist) {
			return nil, err
		} else {
			configFilePath = "config/config.toml"
		}
	}

	// load default and config file content
	cfg := GetDefault()
	_, err = snakelet.InitAndLoad(cfg, configFilePath)

	if err != nil {
		return nil, err
	}

	// environment always wins for credentials, so tokens never end up in the config file
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.Github.Token = token
	}

	if apiKey := os.Getenv("GENERATOR_API_KEY"); apiKey != "" {
		cfg.Generator.APIKey = apiKey
	}

	return cfg, nil
}

// GetDefault
func GetDefault() *Config {
	return &Config{
		API: APIConfig{
			ListenPort:     "3000",
			AllowedOrigins: []string{"*"},
		},
		Generator: GeneratorConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		RateLimit: RateLimitConfig{
			MaxRequests:   100,
			WindowMinutes: 60,
		},
		Tasks: TasksConfig{
			MaxParallelTasksAllowed: 8,
		},
		Logs: LogsConfig{
			Level:            "debug",
			OutputLogsAsJson: false,
		},
	}
}
