package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	derrors "github.com/Aman-CERP/docsyn/internal/errors"
	"github.com/Aman-CERP/docsyn/internal/stem"
	"github.com/Aman-CERP/docsyn/pkg/query"
)

const (
	// ProjectConfigFile is the per-project configuration file name.
	ProjectConfigFile = ".docsyn.yaml"
	// projectConfigFileAlt is accepted when ProjectConfigFile is absent.
	projectConfigFileAlt = ".docsyn.yml"
)

// Config represents the complete docsyn configuration.
type Config struct {
	Version      int                `yaml:"version" json:"version"`
	Synonyms     SynonymsConfig     `yaml:"synonyms" json:"synonyms"`
	Dictionaries DictionariesConfig `yaml:"dictionaries" json:"dictionaries"`
	Stemming     StemmingConfig     `yaml:"stemming" json:"stemming"`
	Store        StoreConfig        `yaml:"store" json:"store"`
	Telemetry    TelemetryConfig    `yaml:"telemetry" json:"telemetry"`
	Server       ServerConfig       `yaml:"server" json:"server"`
}

// SynonymsConfig configures the synonym plugin.
// Leaving Dictionary unset disables synonym expansion.
type SynonymsConfig struct {
	// Dictionary is a dictionary name or an inline word -> synonyms mapping.
	Dictionary DictionaryRef `yaml:"dictionary,omitempty" json:"dictionary,omitempty"`
	// DictionaryName is the cache identity for an inline dictionary.
	DictionaryName string `yaml:"dictionary_name,omitempty" json:"dictionary_name,omitempty"`
	// Fields are the condition paths to expand. Default: ["$text.$search"].
	Fields []string `yaml:"fields" json:"fields"`
	// Stem stores and looks up stemmed keys.
	Stem bool `yaml:"stem" json:"stem"`
	// KeyOnly expands every term to its entry's canonical word only.
	KeyOnly bool `yaml:"key_only" json:"key_only"`
	// QuoteMatch wraps the canonical word in quotes (with KeyOnly).
	QuoteMatch bool `yaml:"quote_match" json:"quote_match"`
}

// Enabled reports whether a dictionary is configured.
func (s SynonymsConfig) Enabled() bool {
	return !s.Dictionary.IsZero()
}

// DictionariesConfig configures where named dictionaries are loaded from.
type DictionariesConfig struct {
	// Paths are searched in order, then the user dictionary directory, then
	// the bundled dictionaries. Relative paths resolve against the project.
	Paths []string `yaml:"paths" json:"paths"`
	// Watch reloads dictionaries when their files change (serve only).
	Watch bool `yaml:"watch" json:"watch"`
	// WatchDebounce coalesces bursts of file events (default: 300ms).
	WatchDebounce string `yaml:"watch_debounce" json:"watch_debounce"`
}

// StemmingConfig configures the stemmer used when synonyms.stem is set.
type StemmingConfig struct {
	Algorithm string `yaml:"algorithm" json:"algorithm"`
	CacheSize int    `yaml:"cache_size" json:"cache_size"`
}

// StoreConfig configures the in-memory document store.
type StoreConfig struct {
	// TextFields are the document fields covered by $text searches.
	TextFields []string `yaml:"text_fields" json:"text_fields"`
}

// TelemetryConfig configures rewrite metrics.
type TelemetryConfig struct {
	Enabled           bool `yaml:"enabled" json:"enabled"`
	UnmatchedCapacity int  `yaml:"unmatched_capacity" json:"unmatched_capacity"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Synonyms: SynonymsConfig{
			Fields: []string{query.TextSearchPath},
		},
		Dictionaries: DictionariesConfig{
			Watch:         true,
			WatchDebounce: "300ms",
		},
		Stemming: StemmingConfig{
			Algorithm: stem.DefaultAlgorithm,
			CacheSize: stem.DefaultCacheSize,
		},
		Store: StoreConfig{
			TextFields: []string{"title", "description"},
		},
		Telemetry: TelemetryConfig{
			Enabled:           true,
			UnmatchedCapacity: 100,
		},
		Server: ServerConfig{
			LogLevel: "info",
		},
	}
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/docsyn/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/docsyn/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "docsyn", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "docsyn", "config.yaml")
	}
	return filepath.Join(home, ".config", "docsyn", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// GetUserDictionaryDir returns the directory `dict import` writes to.
func GetUserDictionaryDir() string {
	return filepath.Join(GetUserConfigDir(), "dictionaries")
}

// SearchPaths returns the dictionary directories in lookup order.
func (d DictionariesConfig) SearchPaths() []string {
	paths := append([]string(nil), d.Paths...)
	return append(paths, GetUserDictionaryDir())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load loads configuration for the project in dir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/docsyn/config.yaml)
//  3. Project config (.docsyn.yaml in dir)
//  4. Environment variables (DOCSYN_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	cfg.resolvePaths(dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile loads .docsyn.yaml or .docsyn.yml from dir when present.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{ProjectConfigFile, projectConfigFileAlt} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return c.loadYAML(path)
		}
	}
	return nil
}

// loadYAML decodes a YAML file over the current values, so only keys present
// in the file override earlier layers.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		code := derrors.ErrCodeConfigNotFound
		if os.IsPermission(err) {
			code = derrors.ErrCodeConfigPermission
		}
		return derrors.New(code, fmt.Sprintf("failed to read config file %s", path), err).
			WithDetail("path", path)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return derrors.ConfigError(fmt.Sprintf("failed to parse config file %s: %v", path, err), err).
			WithDetail("path", path).
			WithSuggestion("Run 'docsyn config init --force' to regenerate a valid file")
	}
	return nil
}

// applyEnvOverrides applies DOCSYN_* environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("DOCSYN_DICTIONARY"); v != "" {
		c.Synonyms.Dictionary = DictionaryRef{Name: v}
	}
	if v := os.Getenv("DOCSYN_DICTIONARY_NAME"); v != "" {
		c.Synonyms.DictionaryName = v
	}
	if v := os.Getenv("DOCSYN_FIELDS"); v != "" {
		c.Synonyms.Fields = splitList(v, ",")
	}
	if v := os.Getenv("DOCSYN_DICTIONARY_PATHS"); v != "" {
		c.Dictionaries.Paths = splitList(v, string(os.PathListSeparator))
	}
	if v := os.Getenv("DOCSYN_STEMMER"); v != "" {
		c.Stemming.Algorithm = v
	}
	if v := os.Getenv("DOCSYN_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}

	bools := []struct {
		env string
		dst *bool
	}{
		{"DOCSYN_STEM", &c.Synonyms.Stem},
		{"DOCSYN_KEY_ONLY", &c.Synonyms.KeyOnly},
		{"DOCSYN_QUOTE_MATCH", &c.Synonyms.QuoteMatch},
		{"DOCSYN_WATCH", &c.Dictionaries.Watch},
		{"DOCSYN_TELEMETRY", &c.Telemetry.Enabled},
	}
	for _, b := range bools {
		v := os.Getenv(b.env)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return derrors.ConfigError(fmt.Sprintf("%s must be a boolean, got %q", b.env, v), err).
				WithDetail("env", b.env)
		}
		*b.dst = parsed
	}
	return nil
}

// resolvePaths makes relative dictionary paths absolute against dir.
func (c *Config) resolvePaths(dir string) {
	for i, p := range c.Dictionaries.Paths {
		if strings.HasPrefix(p, "~"+string(filepath.Separator)) || p == "~" {
			if home, err := os.UserHomeDir(); err == nil {
				p = filepath.Join(home, strings.TrimPrefix(p, "~"))
			}
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		c.Dictionaries.Paths[i] = filepath.Clean(p)
	}
}

func splitList(v, sep string) []string {
	var out []string
	for _, part := range strings.Split(v, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// FindProjectRoot walks up from startDir looking for a .git directory or a
// project config file. It returns startDir when neither is found.
func FindProjectRoot(startDir string) (string, error) {
	if startDir == "" {
		var err error
		if startDir, err = os.Getwd(); err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
	}
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("directory does not exist: %w", err)
	}

	for dir := abs; ; {
		if dirExists(filepath.Join(dir, ".git")) ||
			fileExists(filepath.Join(dir, ProjectConfigFile)) ||
			fileExists(filepath.Join(dir, projectConfigFileAlt)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	for i, f := range c.Synonyms.Fields {
		if strings.TrimSpace(f) == "" {
			return derrors.New(derrors.ErrCodeInvalidFields,
				fmt.Sprintf("synonyms.fields[%d] is empty", i), nil)
		}
	}

	if _, err := stem.New(c.Stemming.Algorithm); err != nil {
		return err
	}
	if c.Stemming.CacheSize < 0 {
		return derrors.ConfigError(fmt.Sprintf("stemming.cache_size must be non-negative, got %d", c.Stemming.CacheSize), nil)
	}
	if c.Telemetry.UnmatchedCapacity < 0 {
		return derrors.ConfigError(fmt.Sprintf("telemetry.unmatched_capacity must be non-negative, got %d", c.Telemetry.UnmatchedCapacity), nil)
	}
	if _, err := c.Dictionaries.Debounce(); err != nil {
		return err
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return derrors.ConfigError(fmt.Sprintf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel), nil)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return derrors.InternalError("failed to marshal config", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return derrors.New(derrors.ErrCodeConfigPermission, fmt.Sprintf("failed to write config file %s", path), err)
	}
	return nil
}
