package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is the root configuration for Concierge.
type Config struct {
	General     GeneralConfig     `json:"general"`
	Engine      EngineConfig      `json:"engine"`
	Checkpoints CheckpointsConfig `json:"checkpoints"`
	Server      ServerConfig      `json:"server"`
	Router      RouterConfig      `json:"router"`
	Metrics     MetricsConfig     `json:"metrics"`
}

type GeneralConfig struct {
	DomainsDir     string `json:"domainsDir"`           // directory of domain spec YAML files
	LogLevel       string `json:"logLevel"`             // "debug" | "info" | "warn" | "error"
	LogFile        string `json:"logFile,omitempty"`    // optional log file path
	MaxIterations  int    `json:"maxIterations"`        // reasoning loop budget per worker run
	InvokeTimeoutS int    `json:"invokeTimeoutSeconds"` // per-capability invocation timeout
}

// EngineConfig configures the OpenAI-compatible completion backend.
type EngineConfig struct {
	APIBase     string  `json:"apiBase"`
	APIKey      string  `json:"apiKey,omitempty"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature"`
	TimeoutS    int     `json:"timeoutSeconds"`
}

// CheckpointsConfig configures suspend/resume checkpoint persistence.
type CheckpointsConfig struct {
	DBPath              string `json:"dbPath"`   // empty = in-memory store
	TTLHours            int    `json:"ttlHours"` // unresolved checkpoints expire after this
	SweepIntervalMin    int    `json:"sweepIntervalMinutes"`
	RetainResolvedHours int    `json:"retainResolvedHours"` // resolved rows kept for replay detection
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// RouterConfig configures domain classification.
type RouterConfig struct {
	Strategy      string `json:"strategy"`      // "keyword" | "llm" | "hybrid"
	DefaultDomain string `json:"defaultDomain"` // fallback when classification fails; empty = degraded generalist
}

type MetricsConfig struct {
	Enabled  bool   `json:"enabled"`
	Endpoint string `json:"endpoint"`
}

// DefaultConfigDir returns the default config directory (~/.concierge).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".concierge"
	}
	return filepath.Join(home, ".concierge")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.General.DomainsDir = ExpandPath(cfg.General.DomainsDir)
	cfg.General.LogFile = ExpandPath(cfg.General.LogFile)
	cfg.Checkpoints.DBPath = ExpandPath(cfg.Checkpoints.DBPath)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// ExpandEnvVars resolves ${VAR} references against the environment. A
// ${VAR:-fallback} form yields the fallback when VAR is unset or empty; a
// bare ${VAR} with no value stays verbatim so the validation error points at
// the missing variable.
func ExpandEnvVars(input string) string {
	return os.Expand(input, func(ref string) string {
		name, fallback, hasFallback := strings.Cut(ref, ":-")
		if v := os.Getenv(name); v != "" {
			return v
		}
		if hasFallback {
			return fallback
		}
		return "${" + ref + "}"
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate reports every out-of-range or missing setting at once, so a
// broken config file surfaces as one actionable error.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.General.MaxIterations < 1 || cfg.General.MaxIterations > 200 {
		errs = append(errs, "general.maxIterations must be between 1 and 200")
	}
	if cfg.General.InvokeTimeoutS < 1 {
		errs = append(errs, "general.invokeTimeoutSeconds must be >= 1")
	}
	switch cfg.General.LogLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	if cfg.Engine.APIBase == "" {
		errs = append(errs, "engine.apiBase is required")
	}
	if cfg.Engine.Model == "" {
		errs = append(errs, "engine.model is required")
	}
	if cfg.Engine.TimeoutS < 1 {
		errs = append(errs, "engine.timeoutSeconds must be >= 1")
	}

	if cfg.Checkpoints.TTLHours < 1 {
		errs = append(errs, "checkpoints.ttlHours must be >= 1")
	}
	if cfg.Checkpoints.SweepIntervalMin < 1 {
		errs = append(errs, "checkpoints.sweepIntervalMinutes must be >= 1")
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 0 and 65535")
	}

	switch cfg.Router.Strategy {
	case "keyword", "llm", "hybrid":
		// valid
	default:
		errs = append(errs, "router.strategy must be one of: keyword, llm, hybrid")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
