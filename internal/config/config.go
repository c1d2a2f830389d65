package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Values come from (in order of
// increasing precedence) built-in defaults, the YAML config file, LIVESCRIBE_*
// environment variables, and command-line flags.
type Config struct {
	// Model is the whisper model size (tiny, base, small, medium, large-v3, ...).
	Model string `yaml:"model" env:"LIVESCRIBE_MODEL"`
	// ModelPath, when set, points at a ggml model file directly and skips
	// size-based resolution and download.
	ModelPath string `yaml:"model_path" env:"LIVESCRIBE_MODEL_PATH"`
	// InputDevice selects the capture device: a numeric index, a partial
	// device name, or "list" to enumerate devices and exit.
	InputDevice string `yaml:"input_device" env:"LIVESCRIBE_INPUT_DEVICE"`
	// EnergyThreshold is the starting RMS energy gate for speech detection.
	// Ambient calibration at startup replaces it with a measured value.
	EnergyThreshold int `yaml:"energy_threshold" env:"LIVESCRIBE_ENERGY_THRESHOLD"`
	// RecordTimeout is the duration in seconds of each captured audio chunk.
	RecordTimeout float64 `yaml:"record_timeout" env:"LIVESCRIBE_RECORD_TIMEOUT"`
	// PhraseTimeout is the silence gap in seconds that starts a new phrase.
	PhraseTimeout float64 `yaml:"phrase_timeout" env:"LIVESCRIBE_PHRASE_TIMEOUT"`
	// SaveName is the output base filename, without extension or timestamp.
	SaveName string `yaml:"save_name" env:"LIVESCRIBE_SAVE_NAME"`
	// SaveFormat selects the persisted transcript format: "plain" or "subtitle".
	SaveFormat string `yaml:"save_format" env:"LIVESCRIBE_SAVE_FORMAT"`
	// GPU requests hardware acceleration from the whisper backend.
	GPU bool `yaml:"gpu" env:"LIVESCRIBE_GPU"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "livescribe")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultModelsDir returns the directory where downloaded models are stored.
func DefaultModelsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "models"
	}
	return filepath.Join(home, ".local", "share", "livescribe", "models")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Model:           "base",
		EnergyThreshold: 1000,
		RecordTimeout:   4,
		PhraseTimeout:   6,
		SaveName:        "transcription",
		SaveFormat:      "plain",
	}
}

// Load builds a Config from defaults, an optional YAML file, and LIVESCRIBE_*
// environment variables. An empty path skips the file layer. Tilde (~) in
// model_path is expanded to the user's home directory.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.ModelPath = expandTilde(cfg.ModelPath)

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Model == "" && c.ModelPath == "" {
		return fmt.Errorf("model or model_path must be set")
	}

	if c.EnergyThreshold < 0 {
		return fmt.Errorf("energy_threshold must be >= 0, got %d", c.EnergyThreshold)
	}

	if c.RecordTimeout <= 0 {
		return fmt.Errorf("record_timeout must be > 0, got %g", c.RecordTimeout)
	}

	if c.PhraseTimeout <= 0 {
		return fmt.Errorf("phrase_timeout must be > 0, got %g", c.PhraseTimeout)
	}

	if c.SaveName == "" {
		return fmt.Errorf("save_name must not be empty")
	}

	switch c.SaveFormat {
	case "plain", "subtitle":
	default:
		return fmt.Errorf("save_format must be \"plain\" or \"subtitle\", got %q", c.SaveFormat)
	}

	return nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
