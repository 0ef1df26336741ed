package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	Backend        string        `mapstructure:"backend"`
	Style          string        `mapstructure:"style"`
	PromptTemplate string        `mapstructure:"prompt_template"`
	MergeTarget    string        `mapstructure:"merge_target"`
	Remote         string        `mapstructure:"remote"`
	Timeout        time.Duration `mapstructure:"timeout"`
	LogLevel       string        `mapstructure:"log_level"`
	Ollama         OllamaConfig  `mapstructure:"ollama"`
	OpenAI         OpenAIConfig  `mapstructure:"openai"`
}

// OllamaConfig holds settings for the local inference server.
type OllamaConfig struct {
	URL   string `mapstructure:"url"`
	Model string `mapstructure:"model"`
}

// OpenAIConfig holds settings for the hosted chat-completion API.
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	APIBase     string  `mapstructure:"api_base"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

const (
	DefaultStyle          = "concise and clear"
	DefaultPromptTemplate = "default"
	DefaultMergeTarget    = "develop"
	DefaultRemote         = "origin"
	DefaultLogLevel       = "warn"
	DefaultOllamaURL      = "http://localhost:11434/api/generate"
	DefaultOllamaModel    = "llama3.2:1b"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultTemperature    = 0.5

	DefaultConfigName = "config"
	DefaultConfigDir  = "commitmate"
	EnvPrefix         = "COMMITMATE"
)

var defaults = map[string]any{
	"backend":            "",
	"style":              DefaultStyle,
	"prompt_template":    DefaultPromptTemplate,
	"merge_target":       DefaultMergeTarget,
	"remote":             DefaultRemote,
	"timeout":            time.Duration(0),
	"log_level":          DefaultLogLevel,
	"ollama.url":         DefaultOllamaURL,
	"ollama.model":       DefaultOllamaModel,
	"openai.api_key":     "",
	"openai.api_base":    "",
	"openai.model":       DefaultOpenAIModel,
	"openai.temperature": DefaultTemperature,
}

var suggestedModels = map[string][]string{
	"ollama": {"llama3.2:1b", "llama3.2:3b", "qwen2.5-coder:7b"},
	"openai": {"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini"},
}

// InitConfig wires viper to the config file, defaults and environment.
// A missing config file is not an error; the file is only written by SaveConfig.
func InitConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		path, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		viper.SetConfigFile(path)
	}

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.BindEnv("openai.api_key", EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return fmt.Errorf("failed to bind API key environment: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read configuration file: %w", err)
	}
	return nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/commitmate/config.yaml,
// falling back to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultConfigPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot find home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, DefaultConfigDir, DefaultConfigName+".yaml"), nil
}

// GetConfig decodes the current viper state.
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return cfg, nil
}

// Defaults returns a Config populated with built-in values only.
func Defaults() *Config {
	return &Config{
		Style:          DefaultStyle,
		PromptTemplate: DefaultPromptTemplate,
		MergeTarget:    DefaultMergeTarget,
		Remote:         DefaultRemote,
		LogLevel:       DefaultLogLevel,
		Ollama: OllamaConfig{
			URL:   DefaultOllamaURL,
			Model: DefaultOllamaModel,
		},
		OpenAI: OpenAIConfig{
			Model:       DefaultOpenAIModel,
			Temperature: DefaultTemperature,
		},
	}
}

// ValidKeys lists every key accepted by SetValue, sorted.
func ValidKeys() []string {
	keys := make([]string, 0, len(defaults))
	for key := range defaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// IsValidKey reports whether key is a known configuration key.
func IsValidKey(key string) bool {
	_, ok := defaults[key]
	return ok
}

// SetValue stores a value for a known key in memory. Call SaveConfig to persist it.
func SetValue(key string, value any) error {
	if !IsValidKey(key) {
		return fmt.Errorf("unknown configuration key %q (valid keys: %s)", key, strings.Join(ValidKeys(), ", "))
	}
	viper.Set(key, value)
	return nil
}

// SaveConfig writes the configuration to the active config file with 0600 permissions.
func SaveConfig() error {
	path := viper.ConfigFileUsed()
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}
	return nil
}

// GetSuggestedModels returns well-known model names for a backend.
func GetSuggestedModels(backend string) []string {
	return suggestedModels[backend]
}
