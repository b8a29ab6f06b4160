// Package config provides configuration loading and discovery for typelint.
//
// Configuration is loaded from multiple sources with the following priority
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (TYPELINT_* prefix)
//  3. Config file (closest .typelint.toml or typelint.toml)
//  4. Built-in defaults
//
// Config file discovery starts from the target file's directory and walks
// up the filesystem until a config file is found. The closest config wins
// (no merging).
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigFileNames defines the config file names to search for, in priority order.
var ConfigFileNames = []string{".typelint.toml", "typelint.toml"}

// EnvPrefix is the prefix for environment variables.
const EnvPrefix = "TYPELINT_"

// Config represents the complete typelint configuration.
type Config struct {
	// Rules contains configuration for individual linting rules.
	Rules RulesConfig `json:"rules" koanf:"rules"`

	// Output configures output format and destination.
	Output OutputConfig `json:"output" koanf:"output"`

	// InlineDirectives controls inline suppression directives.
	InlineDirectives InlineDirectivesConfig `json:"inline-directives" koanf:"inline-directives"`

	// Files configures which files are linted.
	Files FilesConfig `json:"files" koanf:"files"`

	// Fix configures fix application.
	Fix FixConfig `json:"fix" koanf:"fix"`

	// ConfigFile is the path to the config file that was loaded (if any).
	// This is metadata, not loaded from config.
	ConfigFile string `json:"-" koanf:"-"`
}

// OutputConfig configures output formatting and behavior.
type OutputConfig struct {
	// Format specifies the output format: text, json, sarif, github-actions.
	Format string `json:"format,omitempty" koanf:"format"`

	// Path specifies where to write output: stdout, stderr or a file path.
	Path string `json:"path,omitempty" koanf:"path"`

	// ShowSource enables code frames and diffs in text output.
	ShowSource bool `json:"show-source,omitempty" koanf:"show-source"`

	// FailLevel sets the minimum severity level that causes a non-zero exit code.
	FailLevel string `json:"fail-level,omitempty" koanf:"fail-level"`

	// TabWidth is the display width of a tab in code frames when no
	// .editorconfig tab_width applies.
	TabWidth int `json:"tab-width,omitempty" koanf:"tab-width"`
}

// InlineDirectivesConfig controls inline suppression directives.
// Supports // typelint-ignore <rule> and // typelint-ignore-all <rule>.
//
// Example TOML configuration:
//
//	[inline-directives]
//	enabled = true
//	warn-unused = false
//	validate-rules = true
//	require-reason = false
type InlineDirectivesConfig struct {
	// Enabled controls whether inline directives are processed.
	Enabled bool `json:"enabled,omitempty" koanf:"enabled"`

	// WarnUnused reports warnings for directives that don't suppress any diagnostics.
	WarnUnused bool `json:"warn-unused,omitempty" koanf:"warn-unused"`

	// ValidateRules reports warnings for unknown rule codes in directives.
	ValidateRules bool `json:"validate-rules,omitempty" koanf:"validate-rules"`

	// RequireReason reports warnings for directives without a ": reason" explanation.
	RequireReason bool `json:"require-reason,omitempty" koanf:"require-reason"`
}

// FilesConfig configures file discovery.
//
// Example TOML configuration:
//
//	[files]
//	include = ["**/*.ts", "**/*.mts"]
//	exclude = ["**/generated/**"]
//	max-file-size = 1048576
type FilesConfig struct {
	// Include lists glob patterns for files linted when a directory is given.
	Include []string `json:"include,omitempty" koanf:"include"`

	// Exclude lists glob patterns for files that are never linted.
	Exclude []string `json:"exclude,omitempty" koanf:"exclude"`

	// MaxFileSize is the maximum file size in bytes (0 = unlimited).
	MaxFileSize int64 `json:"max-file-size,omitempty" koanf:"max-file-size"`
}

// FixConfig configures fix application.
type FixConfig struct {
	// Verify re-parses fixed files with the tree-sitter TypeScript grammar in
	// addition to the built-in parser.
	Verify bool `json:"verify,omitempty" koanf:"verify"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format:     "text",
			Path:       "stdout",
			ShowSource: true,
			FailLevel:  "info", // Any diagnostic causes exit code 1
			TabWidth:   2,
		},
		Rules: RulesConfig{}, // Empty - defaults come from rules
		InlineDirectives: InlineDirectivesConfig{
			Enabled:       true,
			WarnUnused:    false,
			ValidateRules: false,
			RequireReason: false,
		},
		Files: FilesConfig{
			Include:     []string{"**/*.ts", "**/*.mts", "**/*.cts", "**/*.tsx"},
			Exclude:     []string{"**/node_modules/**", "**/.git/**"},
			MaxFileSize: 1024 * 1024, // 1 MiB
		},
	}
}

// Load loads configuration for a target file path.
// It discovers the closest config file, loads it, and applies
// environment variable overrides.
func Load(targetPath string) (*Config, error) {
	return loadWithConfigPath(Discover(targetPath), nil)
}

// LoadFromFile loads configuration from a specific config file path.
// Unlike Load, it does not perform config discovery.
func LoadFromFile(configPath string) (*Config, error) {
	return loadWithConfigPath(configPath, nil)
}

// loadWithConfigPath loads defaults, the config file (if any), environment
// variables and finally overrides.
func loadWithConfigPath(configPath string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, err
	}

	// 2. Load config file if provided
	if err := loadConfigFile(k, configPath); err != nil {
		return nil, err
	}

	// 3. Load environment variables (TYPELINT_* prefix)
	// TYPELINT_OUTPUT_FAIL_LEVEL -> output.fail-level
	if err := loadEnv(k); err != nil {
		return nil, err
	}

	// 4. CLI overrides
	if err := loadOverrides(k, overrides); err != nil {
		return nil, err
	}

	// 5. Validate merged raw config and decode.
	cfg, err := decodeConfig(k.Raw())
	if err != nil {
		return nil, err
	}

	cfg.ConfigFile = configPath
	return cfg, nil
}

func loadConfigFile(k *koanf.Koanf, configPath string) error {
	if configPath == "" {
		return nil
	}
	fk := koanf.New(".")
	if err := fk.Load(file.Provider(configPath), toml.Parser()); err != nil {
		return err
	}
	// Shorthand keys are resolved against the file alone so defaults in
	// [output] do not shadow them.
	raw := fk.Raw()
	normalizeOutputAliases(raw)
	return k.Load(confmap.Provider(raw, "."), nil)
}

func loadEnv(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKeyTransform,
	}), nil)
}

// knownHyphenatedKeys maps dot-separated patterns to their hyphenated equivalents.
// Add new entries here when adding config keys with hyphens.
var knownHyphenatedKeys = map[string]string{
	"inline.directives": "inline-directives",
	"warn.unused":       "warn-unused",
	"validate.rules":    "validate-rules",
	"require.reason":    "require-reason",
	"show.source":       "show-source",
	"fail.level":        "fail-level",
	"tab.width":         "tab-width",
	"max.file.size":     "max-file-size",
}

var allowedEnvTopLevelKeys = map[string]struct{}{
	"rules":             {},
	"output":            {},
	"inline-directives": {},
	"files":             {},
	"fix":               {},
}

// envKeyTransform converts environment variable names to config keys.
// TYPELINT_OUTPUT_FORMAT -> output.format
// TYPELINT_INLINE_DIRECTIVES_WARN_UNUSED -> inline-directives.warn-unused
func envKeyTransform(k, v string) (string, any) {
	s := strings.TrimPrefix(k, EnvPrefix)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", ".")
	for pattern, replacement := range knownHyphenatedKeys {
		s = strings.ReplaceAll(s, pattern, replacement)
	}

	topLevel := s
	if before, _, ok := strings.Cut(s, "."); ok {
		topLevel = before
	}
	if _, ok := allowedEnvTopLevelKeys[topLevel]; !ok {
		return "", nil
	}

	return s, v
}

// Discover finds the closest config file for a target file path.
// It walks up the directory tree from the target's directory,
// checking for config files at each level.
// Returns empty string if no config file is found.
func Discover(targetPath string) string {
	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return ""
	}

	dir := absPath
	if info, err := os.Stat(absPath); err != nil || !info.IsDir() {
		dir = filepath.Dir(absPath)
	}

	for {
		for _, name := range ConfigFileNames {
			configPath := filepath.Join(dir, name)
			if fileExists(configPath) {
				return configPath
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return ""
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
