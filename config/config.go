package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/civica-dev/civica/internal/constants"
)

// DefaultServer is the base URL used when neither the config file nor the
// CIVICA_SERVER environment variable names one.
const DefaultServer = "http://localhost:8000"

// Config represents the application configuration
type Config struct {
	Server        string `yaml:"server,omitempty"`
	DefaultFormat string `yaml:"default_format,omitempty"`
	District      string `yaml:"district,omitempty"`

	// Top-level config sections
	Timeouts *TimeoutOverrides  `yaml:"timeouts,omitempty"`
	Push     *PushOverrides     `yaml:"push,omitempty"`
	Severity *SeverityOverrides `yaml:"severity,omitempty"`
}

// TimeoutOverrides allows customizing HTTP timeouts per request class
type TimeoutOverrides struct {
	RequestSeconds *int `yaml:"request_seconds,omitempty"`
	UploadSeconds  *int `yaml:"upload_seconds,omitempty"`
	HealthSeconds  *int `yaml:"health_seconds,omitempty"`
}

// PushOverrides - push listener reconnect settings
type PushOverrides struct {
	ReconnectInitialSeconds *int `yaml:"reconnect_initial_seconds,omitempty"`
	ReconnectMaxSeconds     *int `yaml:"reconnect_max_seconds,omitempty"`
}

// SeverityOverrides allows tuning hotspot severity scoring
type SeverityOverrides struct {
	CountWeight       *int     `yaml:"count_weight,omitempty"`
	PriorityWeight    *int     `yaml:"priority_weight,omitempty"`
	HighThreshold     *int     `yaml:"high_threshold,omitempty"`
	ElevatedThreshold *int     `yaml:"elevated_threshold,omitempty"`
	UrgentPriority    *float64 `yaml:"urgent_priority,omitempty"`
	MinHighCount      *int     `yaml:"min_high_count,omitempty"`
}

// Timeouts is the resolved set of HTTP timeouts
type Timeouts struct {
	Request time.Duration // plain JSON requests
	Upload  time.Duration // multipart uploads (report photos, proof files)
	Health  time.Duration // server reachability probe
}

// PushSettings is the resolved push listener reconnect policy
type PushSettings struct {
	ReconnectInitial time.Duration
	ReconnectMax     time.Duration
}

// SeverityWeights defines the complete set of hotspot scoring weights.
// Cluster score = issue count * CountWeight + avg priority * PriorityWeight,
// bucketed by the thresholds below. The service reports priority on a 0-10
// scale (density of nearby reports blended with category urgency).
type SeverityWeights struct {
	CountWeight       int     // points per open issue in a cluster
	PriorityWeight    int     // points per unit of average priority
	HighThreshold     int     // score at or above which a cluster ranks High
	ElevatedThreshold int     // score at or above which a cluster ranks Elevated
	UrgentPriority    float64 // avg priority that promotes a cluster to High outright
	MinHighCount      int     // clusters below this size never rank High
}

// DefaultTimeouts returns the default HTTP timeouts
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Request: constants.RequestTimeout,
		Upload:  constants.UploadTimeout,
		Health:  constants.HealthTimeout,
	}
}

// DefaultPushSettings returns the default push reconnect policy
func DefaultPushSettings() PushSettings {
	return PushSettings{
		ReconnectInitial: constants.PushBackoffInitial,
		ReconnectMax:     constants.PushBackoffMax,
	}
}

// DefaultSeverityWeights returns the default hotspot scoring weights
func DefaultSeverityWeights() SeverityWeights {
	return SeverityWeights{
		CountWeight:       4,
		PriorityWeight:    6,
		HighThreshold:     80,
		ElevatedThreshold: 45,
		UrgentPriority:    8.5,
		MinHighCount:      2,
	}
}

// GetTimeouts returns HTTP timeouts with user overrides merged with defaults
func (c *Config) GetTimeouts() Timeouts {
	timeouts := DefaultTimeouts()

	if c.Timeouts != nil {
		t := c.Timeouts
		if t.RequestSeconds != nil {
			timeouts.Request = time.Duration(*t.RequestSeconds) * time.Second
		}
		if t.UploadSeconds != nil {
			timeouts.Upload = time.Duration(*t.UploadSeconds) * time.Second
		}
		if t.HealthSeconds != nil {
			timeouts.Health = time.Duration(*t.HealthSeconds) * time.Second
		}
	}

	return timeouts
}

// GetPushSettings returns the push reconnect policy with user overrides merged
// with defaults
func (c *Config) GetPushSettings() PushSettings {
	settings := DefaultPushSettings()

	if c.Push != nil {
		p := c.Push
		if p.ReconnectInitialSeconds != nil {
			settings.ReconnectInitial = time.Duration(*p.ReconnectInitialSeconds) * time.Second
		}
		if p.ReconnectMaxSeconds != nil {
			settings.ReconnectMax = time.Duration(*p.ReconnectMaxSeconds) * time.Second
		}
	}

	return settings
}

// GetSeverityWeights returns hotspot scoring weights with user overrides
// merged with defaults
func (c *Config) GetSeverityWeights() SeverityWeights {
	weights := DefaultSeverityWeights()

	if c.Severity != nil {
		s := c.Severity
		if s.CountWeight != nil {
			weights.CountWeight = *s.CountWeight
		}
		if s.PriorityWeight != nil {
			weights.PriorityWeight = *s.PriorityWeight
		}
		if s.HighThreshold != nil {
			weights.HighThreshold = *s.HighThreshold
		}
		if s.ElevatedThreshold != nil {
			weights.ElevatedThreshold = *s.ElevatedThreshold
		}
		if s.UrgentPriority != nil {
			weights.UrgentPriority = *s.UrgentPriority
		}
		if s.MinHighCount != nil {
			weights.MinHighCount = *s.MinHighCount
		}
	}

	return weights
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".civica"
	}
	return filepath.Join(configDir, "civica")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".civica.yaml"
}

// ConfigFileExists returns true if the config file exists on disk
func ConfigFileExists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Load loads the configuration from disk.
// It first loads the global config from XDG config directory, then merges
// any local .civica.yaml config on top (local values take precedence).
// A missing file is not an error; defaults are returned.
func Load() (*Config, error) {
	// Start with defaults
	cfg := &Config{
		Server:        DefaultServer,
		DefaultFormat: "table",
	}

	// Load global config if it exists
	globalPath := ConfigPath()
	if _, err := os.Stat(globalPath); err == nil {
		data, err := os.ReadFile(globalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read global config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse global config file: %w", err)
		}
	}

	// Load local config if it exists and merge on top
	localPath := LocalConfigPath()
	if _, err := os.Stat(localPath); err == nil {
		data, err := os.ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read local config file: %w", err)
		}

		var localCfg Config
		if err := yaml.Unmarshal(data, &localCfg); err != nil {
			return nil, fmt.Errorf("failed to parse local config file: %w", err)
		}

		cfg = mergeConfig(cfg, &localCfg)
	}

	// Set defaults if still empty
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "table"
	}

	return cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := &Config{}

	// Merge simple fields (local wins if set)
	if local.Server != "" {
		result.Server = local.Server
	} else {
		result.Server = global.Server
	}

	if local.DefaultFormat != "" {
		result.DefaultFormat = local.DefaultFormat
	} else {
		result.DefaultFormat = global.DefaultFormat
	}

	if local.District != "" {
		result.District = local.District
	} else {
		result.District = global.District
	}

	// Merge Timeouts
	result.Timeouts = mergeTimeouts(global.Timeouts, local.Timeouts)

	// Merge Push
	result.Push = mergePush(global.Push, local.Push)

	// Merge Severity
	result.Severity = mergeSeverity(global.Severity, local.Severity)

	return result
}

func mergeTimeouts(global, local *TimeoutOverrides) *TimeoutOverrides {
	if global == nil && local == nil {
		return nil
	}
	result := &TimeoutOverrides{}

	if global != nil {
		result.RequestSeconds = global.RequestSeconds
		result.UploadSeconds = global.UploadSeconds
		result.HealthSeconds = global.HealthSeconds
	}

	if local != nil {
		if local.RequestSeconds != nil {
			result.RequestSeconds = local.RequestSeconds
		}
		if local.UploadSeconds != nil {
			result.UploadSeconds = local.UploadSeconds
		}
		if local.HealthSeconds != nil {
			result.HealthSeconds = local.HealthSeconds
		}
	}

	// Return nil if all fields are nil
	if result.RequestSeconds == nil && result.UploadSeconds == nil && result.HealthSeconds == nil {
		return nil
	}

	return result
}

func mergePush(global, local *PushOverrides) *PushOverrides {
	if global == nil && local == nil {
		return nil
	}
	result := &PushOverrides{}

	if global != nil {
		result.ReconnectInitialSeconds = global.ReconnectInitialSeconds
		result.ReconnectMaxSeconds = global.ReconnectMaxSeconds
	}

	if local != nil {
		if local.ReconnectInitialSeconds != nil {
			result.ReconnectInitialSeconds = local.ReconnectInitialSeconds
		}
		if local.ReconnectMaxSeconds != nil {
			result.ReconnectMaxSeconds = local.ReconnectMaxSeconds
		}
	}

	// Return nil if all fields are nil
	if result.ReconnectInitialSeconds == nil && result.ReconnectMaxSeconds == nil {
		return nil
	}

	return result
}

func mergeSeverity(global, local *SeverityOverrides) *SeverityOverrides {
	if global == nil && local == nil {
		return nil
	}
	result := &SeverityOverrides{}

	if global != nil {
		result.CountWeight = global.CountWeight
		result.PriorityWeight = global.PriorityWeight
		result.HighThreshold = global.HighThreshold
		result.ElevatedThreshold = global.ElevatedThreshold
		result.UrgentPriority = global.UrgentPriority
		result.MinHighCount = global.MinHighCount
	}

	if local != nil {
		if local.CountWeight != nil {
			result.CountWeight = local.CountWeight
		}
		if local.PriorityWeight != nil {
			result.PriorityWeight = local.PriorityWeight
		}
		if local.HighThreshold != nil {
			result.HighThreshold = local.HighThreshold
		}
		if local.ElevatedThreshold != nil {
			result.ElevatedThreshold = local.ElevatedThreshold
		}
		if local.UrgentPriority != nil {
			result.UrgentPriority = local.UrgentPriority
		}
		if local.MinHighCount != nil {
			result.MinHighCount = local.MinHighCount
		}
	}

	return result
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	configDir := DefaultConfigDir()

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := ConfigPath()
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ServerURL returns the effective server base URL. The CIVICA_SERVER
// environment variable wins over the config file; the config file wins over
// the built-in default.
func (c *Config) ServerURL() string {
	if env := os.Getenv("CIVICA_SERVER"); env != "" {
		return env
	}
	if c.Server != "" {
		return c.Server
	}
	return DefaultServer
}

// TokenFromEnv returns the CIVICA_TOKEN environment variable, if set.
// Tokens never live in the config file; outside of the credential store the
// environment is the only source.
func (c *Config) TokenFromEnv() string {
	return os.Getenv("CIVICA_TOKEN")
}

// SetDefaultFormat sets the default output format and saves
func (c *Config) SetDefaultFormat(format string) error {
	c.DefaultFormat = format
	return c.Save()
}

// SetServer sets the server base URL and saves
func (c *Config) SetServer(server string) error {
	c.Server = server
	return c.Save()
}

// SetDistrict sets the default district filter and saves
func (c *Config) SetDistrict(district string) error {
	c.District = district
	return c.Save()
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	timeouts := DefaultTimeouts()
	push := DefaultPushSettings()
	severity := DefaultSeverityWeights()

	requestSeconds := int(timeouts.Request / time.Second)
	uploadSeconds := int(timeouts.Upload / time.Second)
	healthSeconds := int(timeouts.Health / time.Second)
	reconnectInitial := int(push.ReconnectInitial / time.Second)
	reconnectMax := int(push.ReconnectMax / time.Second)

	return &Config{
		Server:        DefaultServer,
		DefaultFormat: "table",
		District:      "",
		Timeouts: &TimeoutOverrides{
			RequestSeconds: &requestSeconds,
			UploadSeconds:  &uploadSeconds,
			HealthSeconds:  &healthSeconds,
		},
		Push: &PushOverrides{
			ReconnectInitialSeconds: &reconnectInitial,
			ReconnectMaxSeconds:     &reconnectMax,
		},
		Severity: &SeverityOverrides{
			CountWeight:       &severity.CountWeight,
			PriorityWeight:    &severity.PriorityWeight,
			HighThreshold:     &severity.HighThreshold,
			ElevatedThreshold: &severity.ElevatedThreshold,
			UrgentPriority:    &severity.UrgentPriority,
			MinHighCount:      &severity.MinHighCount,
		},
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	// Get absolute path for local config
	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# Civica configuration file
# See: civica config defaults  (for all available options)

# Server base URL (CIVICA_SERVER environment variable overrides this)
server: ` + DefaultServer + `

# Output format: table or json
default_format: table

# Default district for dashboards and filters (optional)
# district: Riverbend

# HTTP timeouts in seconds (optional)
# timeouts:
#   request_seconds: 30
#   upload_seconds: 120

# See README.md for full configuration options
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
