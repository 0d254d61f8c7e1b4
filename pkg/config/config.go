/*
Package config manages TOML config for wordsplit.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/wordsplit/internal/utils"
	"github.com/bastiangx/wordsplit/pkg/corpus"
	"github.com/bastiangx/wordsplit/pkg/segment"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Segment SegmentConfig `toml:"segment"`
	Corpus  CorpusConfig  `toml:"corpus"`
	Server  ServerConfig  `toml:"server"`
	CLI     CliConfig     `toml:"cli"`
}

// SegmentConfig has search options. Zero budgets mean unlimited.
type SegmentConfig struct {
	Limit       int    `toml:"limit"`
	StartMarker string `toml:"start_marker"`
	MaxSteps    int    `toml:"max_steps"`
	TimeoutMs   int    `toml:"timeout_ms"`
	MaxInput    int    `toml:"max_input"`
}

// CorpusConfig names the corpus resources.
type CorpusConfig struct {
	DataDir  string `toml:"data_dir"`
	Unigrams string `toml:"unigrams"`
	Bigrams  string `toml:"bigrams"`
	Snapshot string `toml:"snapshot"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxInput  int `toml:"max_input"`
	CacheSize int `toml:"cache_size"`
}

// CliConfig holds cli options.
type CliConfig struct {
	ShowScore bool `toml:"show_score"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/wordsplit
// 2. ~/Library/Application Support/wordsplit (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "wordsplit")
	if utils.WritableDir(primaryPath) {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "wordsplit")
	if utils.WritableDir(macOSPath) {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: [UserConfigDir]/wordsplit/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	files := corpus.DefaultFiles()
	return &Config{
		Segment: SegmentConfig{
			Limit:       segment.DefaultLimit,
			StartMarker: segment.DefaultStartMarker,
		},
		Corpus: CorpusConfig{
			DataDir:  "data/",
			Unigrams: files.Unigrams,
			Bigrams:  files.Bigrams,
			Snapshot: files.Snapshot,
		},
		Server: ServerConfig{
			MaxInput:  4096,
			CacheSize: 1024,
		},
		CLI: CliConfig{
			ShowScore: false,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse keeps every well-typed value of a TOML file that failed
// to decode into Config
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "segment"); ok {
		extractSegmentConfig(section, &config.Segment)
	}
	if section, ok := utils.ExtractSection(tempConfig, "corpus"); ok {
		extractCorpusConfig(section, &config.Corpus)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		if val, ok := utils.Extract[bool](section, "show_score"); ok {
			config.CLI.ShowScore = val
		}
	}
	return config, nil
}

func extractSegmentConfig(data map[string]any, seg *SegmentConfig) {
	if val, ok := utils.ExtractInt(data, "limit"); ok {
		seg.Limit = val
	}
	if val, ok := utils.Extract[string](data, "start_marker"); ok {
		seg.StartMarker = val
	}
	if val, ok := utils.ExtractInt(data, "max_steps"); ok {
		seg.MaxSteps = val
	}
	if val, ok := utils.ExtractInt(data, "timeout_ms"); ok {
		seg.TimeoutMs = val
	}
	if val, ok := utils.ExtractInt(data, "max_input"); ok {
		seg.MaxInput = val
	}
}

func extractCorpusConfig(data map[string]any, c *CorpusConfig) {
	if val, ok := utils.Extract[string](data, "data_dir"); ok {
		c.DataDir = val
	}
	if val, ok := utils.Extract[string](data, "unigrams"); ok {
		c.Unigrams = val
	}
	if val, ok := utils.Extract[string](data, "bigrams"); ok {
		c.Bigrams = val
	}
	if val, ok := utils.Extract[string](data, "snapshot"); ok {
		c.Snapshot = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt(data, "max_input"); ok {
		server.MaxInput = val
	}
	if val, ok := utils.ExtractInt(data, "cache_size"); ok {
		server.CacheSize = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SegmentOptions converts the [segment] section into segmenter options.
func (c *Config) SegmentOptions() []segment.Option {
	return []segment.Option{
		segment.WithLimit(c.Segment.Limit),
		segment.WithStartMarker(c.Segment.StartMarker),
		segment.WithMaxSteps(c.Segment.MaxSteps),
		segment.WithTimeout(time.Duration(c.Segment.TimeoutMs) * time.Millisecond),
		segment.WithMaxInput(c.Segment.MaxInput),
	}
}

// CorpusFiles returns the resource names of the [corpus] section.
func (c *Config) CorpusFiles() corpus.Files {
	return corpus.Files{
		Unigrams: c.Corpus.Unigrams,
		Bigrams:  c.Corpus.Bigrams,
		Snapshot: c.Corpus.Snapshot,
	}
}
