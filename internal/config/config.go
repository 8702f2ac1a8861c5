package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/gerunddev/mdxbridge/internal/converter"
	"github.com/gerunddev/mdxbridge/internal/metatag"
	"github.com/gerunddev/mdxbridge/internal/parser"
)

var tagNamePattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$.]*$`)

// Config represents the mdxbridge configuration
type Config struct {
	SrcDir             string             `json:"src_dir"`
	OutDir             string             `json:"out_dir"`
	LogFile            string             `json:"log_file"`
	TagName            string             `json:"tag_name"`
	ImportPackage      string             `json:"import_package"`
	MetadataDelimiters []parser.Delimiter `json:"metadata_delimiters"`
	TightLists         bool               `json:"tight_lists"`
	EmitMetaTag        bool               `json:"emit_meta_tag"`
	ExcludePatterns    []string           `json:"exclude_patterns,omitempty"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	delims := make([]parser.Delimiter, len(parser.DefaultDelimiters))
	copy(delims, parser.DefaultDelimiters)
	return &Config{
		SrcDir:             filepath.Join(home, "docs"),
		OutDir:             filepath.Join(home, "docs", ".mdxbridge"),
		LogFile:            "/tmp/mdxbridge.log",
		TagName:            metatag.DefaultTagName,
		ImportPackage:      metatag.DefaultImportPackage,
		MetadataDelimiters: delims,
		EmitMetaTag:        true,
		ExcludePatterns:    []string{"node_modules/**"},
	}
}

// ConfigPath returns the path to the config file
// Uses ~/.config on all platforms for consistency
// Can be overridden for testing
var ConfigPath = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(xdg.ConfigHome, "mdxbridge", "config.json")
	}
	return filepath.Join(home, ".config", "mdxbridge", "config.json")
}

// StateFilePath returns the path to the build state file
// Can be overridden for testing
var StateFilePath = func() string {
	return filepath.Join(xdg.DataHome, "mdxbridge", "state.json")
}

// Load reads configuration from the config directory. Fields missing from
// the file keep their defaults.
func Load() (*Config, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.ExcludePatterns == nil {
		cfg.ExcludePatterns = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}
	return cfg, nil
}

// Save writes configuration to the config directory
func (c *Config) Save() error {
	configPath := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SrcDir, validation.Required),
		validation.Field(&c.OutDir, validation.Required, validation.By(c.outsideSource)),
		validation.Field(&c.LogFile, validation.Required),
		validation.Field(&c.TagName, validation.Required, validation.Match(tagNamePattern).Error("must be a component name")),
		validation.Field(&c.ImportPackage, validation.Required),
		validation.Field(&c.MetadataDelimiters, validation.Each(validation.By(validDelimiter))),
		validation.Field(&c.ExcludePatterns, validation.Each(validation.By(validPattern))),
	)
}

// outsideSource rejects an output directory equal to the source directory,
// which would make every build rescan its own output
func (c *Config) outsideSource(value any) error {
	out, _ := value.(string)
	if out != "" && filepath.Clean(out) == filepath.Clean(c.SrcDir) {
		return validation.NewError("validation_out_dir_is_src", "must differ from src_dir")
	}
	return nil
}

func validDelimiter(value any) error {
	d, _ := value.(parser.Delimiter)
	if strings.TrimSpace(d.Start) == "" || strings.TrimSpace(d.End) == "" {
		return validation.NewError("validation_delimiter_blank", "start and end fences are required")
	}
	return nil
}

func validPattern(value any) error {
	pattern, _ := value.(string)
	if _, err := filepath.Match(pattern, ""); err != nil {
		return validation.NewError("validation_bad_pattern", fmt.Sprintf("bad pattern %q", pattern))
	}
	return nil
}

// ExpandPaths expands any ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	var err error

	c.SrcDir, err = expandPath(c.SrcDir)
	if err != nil {
		return fmt.Errorf("failed to expand src_dir: %w", err)
	}

	c.OutDir, err = expandPath(c.OutDir)
	if err != nil {
		return fmt.Errorf("failed to expand out_dir: %w", err)
	}

	c.LogFile, err = expandPath(c.LogFile)
	if err != nil {
		return fmt.Errorf("failed to expand log_file: %w", err)
	}

	return nil
}

// ConverterOptions returns the pipeline options this configuration selects
func (c *Config) ConverterOptions() converter.Options {
	opts := converter.DefaultOptions()
	opts.Parser.MetadataBlocks = c.MetadataDelimiters
	opts.EmitMetaTag = c.EmitMetaTag
	opts.MetaTag = metatag.Options{TagName: c.TagName, ImportPackage: c.ImportPackage}
	opts.Serialize.TightLists = c.TightLists
	return opts
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return absPath, nil
}
