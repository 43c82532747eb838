package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for joinplanner.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys) must only come from environment variables.
type Config struct {
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Relationship graph artifacts
	Graph GraphConfig `yaml:"graph"`

	// Join planning bounds
	Planner PlannerConfig `yaml:"planner"`

	// Error correction pipeline bounds
	Correction CorrectionConfig `yaml:"correction"`

	// External reasoning service
	Reasoner ReasonerConfig `yaml:"reasoner"`
}

// GraphConfig locates the relationship graph documents on disk.
type GraphConfig struct {
	// BasePath is the base graph document produced by schema analysis.
	BasePath string `yaml:"base_path" env:"GRAPH_BASE_PATH" env-default:"graph.json"`

	// OverlayPathsStr is a comma-separated list of overlay document paths
	// applied on top of the base graph, in order.
	OverlayPathsStr string `yaml:"overlay_paths" env:"GRAPH_OVERLAY_PATHS" env-default:""`

	// OverlayPaths is the parsed form of OverlayPathsStr (not from config file).
	OverlayPaths []string `yaml:"-"`

	// ExclusionsPath points at the manual bridge-exclusion file. Optional;
	// a missing file means no exclusions.
	ExclusionsPath string `yaml:"exclusions_path" env:"GRAPH_EXCLUSIONS_PATH" env-default:""`
}

// PlannerConfig bounds join-path discovery.
type PlannerConfig struct {
	// MaxHops caps the number of relationship edges a discovered join path
	// may traverse.
	MaxHops int `yaml:"max_hops" env:"PLANNER_MAX_HOPS" env-default:"4"`
}

// CorrectionConfig bounds the SQL error correction pipeline.
type CorrectionConfig struct {
	// MaxAttempts is the correction budget per originating query.
	MaxAttempts int `yaml:"max_attempts" env:"CORRECTION_MAX_ATTEMPTS" env-default:"3"`

	// EscalationTimeoutSeconds caps how long a single reasoner call may take.
	EscalationTimeoutSeconds int `yaml:"escalation_timeout_seconds" env:"CORRECTION_ESCALATION_TIMEOUT_SECONDS" env-default:"30"`
}

// EscalationTimeout returns the escalation timeout as a duration.
func (c *CorrectionConfig) EscalationTimeout() time.Duration {
	return time.Duration(c.EscalationTimeoutSeconds) * time.Second
}

// ReasonerConfig holds the external reasoning service settings.
type ReasonerConfig struct {
	// Provider selects the reasoner implementation: "openai" or "anthropic".
	Provider string `yaml:"provider" env:"REASONER_PROVIDER" env-default:"openai"`

	// Endpoint overrides the provider's default API base URL. Empty uses
	// the provider default.
	Endpoint string `yaml:"endpoint" env:"REASONER_ENDPOINT" env-default:""`

	Model string `yaml:"model" env:"REASONER_MODEL" env-default:"gpt-4o"`

	// APIKey authenticates against the provider. Secret - not in YAML.
	APIKey string `yaml:"-" env:"REASONER_API_KEY"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. If config.yaml does not exist, environment variables alone are
// used. The version parameter is injected at build time and set on the
// returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		// No config file: environment variables alone.
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read configuration from environment: %w", err)
		}
	}

	cfg.parseComplexFields()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// parseComplexFields handles fields that need post-processing after loading.
func (c *Config) parseComplexFields() {
	c.Graph.OverlayPaths = parseOverlayPaths(c.Graph.OverlayPathsStr)
}

func (c *Config) validate() error {
	if c.Planner.MaxHops < 1 {
		return fmt.Errorf("planner.max_hops must be at least 1, got %d", c.Planner.MaxHops)
	}
	if c.Correction.MaxAttempts < 1 {
		return fmt.Errorf("correction.max_attempts must be at least 1, got %d", c.Correction.MaxAttempts)
	}
	if c.Correction.EscalationTimeoutSeconds < 1 {
		return fmt.Errorf("correction.escalation_timeout_seconds must be at least 1, got %d", c.Correction.EscalationTimeoutSeconds)
	}
	switch c.Reasoner.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("reasoner.provider must be openai or anthropic, got %q", c.Reasoner.Provider)
	}
	return nil
}

// parseOverlayPaths splits the comma-separated overlay list, dropping empty
// entries.
func parseOverlayPaths(value string) []string {
	if value == "" {
		return nil
	}

	var paths []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	return paths
}
