package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsonedit/internal/formatter"
	"github.com/mcncl/jsonedit/internal/infer"
	"github.com/mcncl/jsonedit/internal/parser"
	"github.com/mcncl/jsonedit/internal/tree"
)

// Config represents the complete configuration for jsonedit
type Config struct {
	Editor   EditorConfig   `yaml:"editor"`
	InfoCard InfoCardConfig `yaml:"info_card"`
	Drafts   DraftsConfig   `yaml:"drafts"`
	Theme    ThemeConfig    `yaml:"theme"`
	Dev      DevConfig      `yaml:"dev"`
}

// EditorConfig controls how the tree is edited
type EditorConfig struct {
	// DefaultKey is the base key of entries added to objects. It is
	// normalised to snake_case.
	DefaultKey string `yaml:"default_key"`
	// DefaultValue is the JSON text stored by a new entry.
	DefaultValue              string `yaml:"default_value"`
	EnterAppendsInObjects     bool   `yaml:"enter_appends_in_objects"`
	BackspaceRemovesInObjects bool   `yaml:"backspace_removes_in_objects"`
	// Indent is the number of spaces per level when saving.
	Indent int `yaml:"indent"`
}

// InfoCardConfig names the members of an info structure
type InfoCardConfig struct {
	Message     string `yaml:"message"`
	Description string `yaml:"description"`
	Args        string `yaml:"args"`
}

// DraftsConfig controls recovery drafts
type DraftsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Dir defaults to a jsonedit directory under the user cache dir.
	Dir string        `yaml:"dir"`
	TTL time.Duration `yaml:"ttl"`
}

// ThemeConfig holds lipgloss colours (ANSI numbers or hex)
type ThemeConfig struct {
	Accent   string `yaml:"accent"`
	Key      string `yaml:"key"`
	Muted    string `yaml:"muted"`
	Error    string `yaml:"error"`
	Selected string `yaml:"selected"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
	// Verify runs a full tree consistency check after every edit.
	Verify  bool   `yaml:"verify"`
	LogFile string `yaml:"log_file"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Editor: EditorConfig{
			DefaultKey:                "key",
			DefaultValue:              `""`,
			EnterAppendsInObjects:     true,
			BackspaceRemovesInObjects: true,
			Indent:                    2,
		},
		InfoCard: InfoCardConfig{
			Message:     infer.DefaultInfoFields.Message,
			Description: infer.DefaultInfoFields.Description,
			Args:        infer.DefaultInfoFields.Args,
		},
		Drafts: DraftsConfig{
			Enabled: true,
			TTL:     7 * 24 * time.Hour,
		},
		Theme: ThemeConfig{
			Accent:   "205",
			Key:      "39",
			Muted:    "241",
			Error:    "196",
			Selected: "57",
		},
		Dev: DevConfig{
			Debug:  false,
			Verify: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonedit.yml", ".jsonedit.yaml", "jsonedit.yml", "jsonedit.yaml"}

	// Start from current directory
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		// Move up one directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// normalize validates the config and brings keys into canonical form
func (c *Config) normalize() error {
	c.Editor.DefaultKey = strcase.ToSnake(strings.TrimSpace(c.Editor.DefaultKey))
	if c.Editor.DefaultKey == "" {
		return fmt.Errorf("editor.default_key must not be empty")
	}
	if _, err := parser.ParseString(c.Editor.DefaultValue); err != nil {
		return fmt.Errorf("editor.default_value %q is not JSON: %w", c.Editor.DefaultValue, err)
	}
	if c.Editor.Indent < 0 || c.Editor.Indent > 8 {
		return fmt.Errorf("editor.indent must be between 0 and 8, got %d", c.Editor.Indent)
	}

	f := c.InfoCard
	if f.Message == "" || f.Description == "" || f.Args == "" {
		return fmt.Errorf("info_card fields must not be empty")
	}
	if f.Message == f.Description || f.Message == f.Args || f.Description == f.Args {
		return fmt.Errorf("info_card fields must be distinct")
	}

	if c.Drafts.TTL < 0 {
		return fmt.Errorf("drafts.ttl must not be negative")
	}
	return nil
}

// InfoFields returns the info structure member names
func (c *Config) InfoFields() infer.InfoFields {
	return infer.InfoFields{
		Message:     c.InfoCard.Message,
		Description: c.InfoCard.Description,
		Args:        c.InfoCard.Args,
	}
}

// TreeOptions translates the editor settings into tree options
func (c *Config) TreeOptions(log *zap.Logger) ([]tree.Option, error) {
	def, err := parser.ParseString(c.Editor.DefaultValue)
	if err != nil {
		return nil, fmt.Errorf("editor.default_value: %w", err)
	}
	return []tree.Option{
		tree.WithDefaultKey(c.Editor.DefaultKey),
		tree.WithDefaultValue(def),
		tree.WithObjectChords(c.Editor.EnterAppendsInObjects, c.Editor.BackspaceRemovesInObjects),
		tree.WithInfoFields(c.InfoFields()),
		tree.WithVerify(c.Dev.Verify),
		tree.WithLogger(log),
	}, nil
}

// Formatter returns the formatter used when saving
func (c *Config) Formatter() *formatter.Formatter {
	return formatter.NewFormatterWithIndent(strings.Repeat(" ", c.Editor.Indent))
}

// DraftDir returns the directory drafts are stored in
func (c *Config) DraftDir() (string, error) {
	if c.Drafts.Dir != "" {
		return c.Drafts.Dir, nil
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate cache directory: %w", err)
	}
	return filepath.Join(cache, "jsonedit", "drafts"), nil
}

// Overrides holds the settings given on the command line
type Overrides struct {
	Debug    bool
	Verify   bool
	NoDrafts bool
	LogFile  string
	DraftDir string
}

// MergeOverrides applies CLI overrides on top of cfg.
// Flags can only switch options on, so unset flags leave the file's value.
func MergeOverrides(cfg *Config, o Overrides) *Config {
	merged := *cfg

	if o.Debug {
		merged.Dev.Debug = true
	}
	if o.Verify {
		merged.Dev.Verify = true
	}
	if o.NoDrafts {
		merged.Drafts.Enabled = false
	}
	if o.LogFile != "" {
		merged.Dev.LogFile = o.LogFile
	}
	if o.DraftDir != "" {
		merged.Drafts.Dir = o.DraftDir
	}

	return &merged
}

// LoadConfigWithCLI loads config with CLI argument precedence. An empty
// configPath uses the defaults.
func LoadConfigWithCLI(configPath string, o Overrides) (*Config, error) {
	// Start with defaults
	cfg := NewConfig()

	// Load config file if provided
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	return MergeOverrides(cfg, o), nil
}
