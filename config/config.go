package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultThreshold     = 0.5
	defaultMaxResults    = 1000
	defaultVocabularyDir = "/usr/share/dict/words"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
)

type Config struct {
	config *viper.Viper
}

func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	viperConfig.SetDefault("search.threshold", defaultThreshold)
	viperConfig.SetDefault("search.max_results", defaultMaxResults)
	viperConfig.SetDefault("search.expand_workers", runtime.NumCPU())
	viperConfig.SetDefault("vocabulary.path", defaultVocabularyDir)
	viperConfig.SetDefault("server.port", defaultPort)
	viperConfig.SetDefault("log.level", defaultLogLevel)

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

// GetSearchRoot returns the directory searched when none is given on the command line.
func (c *Config) GetSearchRoot() string {
	root := c.config.GetString("SEARCH_ROOT")
	if len(root) == 0 {
		root = c.config.GetString("search.root")
	}

	return root
}

func (c *Config) GetSearchContents() bool {
	if c.config.IsSet("SEARCH_CONTENTS") {
		return c.config.GetBool("SEARCH_CONTENTS")
	}

	return c.config.GetBool("search.contents")
}

func (c *Config) GetThreshold() float64 {
	if c.config.IsSet("SEARCH_THRESHOLD") {
		return c.config.GetFloat64("SEARCH_THRESHOLD")
	}

	return c.config.GetFloat64("search.threshold")
}

func (c *Config) GetMaxResults() int {
	maxResults := c.config.GetInt("SEARCH_MAX_RESULTS")
	if maxResults <= 0 {
		maxResults = c.config.GetInt("search.max_results")
	}

	return maxResults
}

func (c *Config) GetSortEntries() bool {
	if c.config.IsSet("SEARCH_SORT_ENTRIES") {
		return c.config.GetBool("SEARCH_SORT_ENTRIES")
	}

	return c.config.GetBool("search.sort_entries")
}

func (c *Config) GetExpandWorkers() int {
	workers := c.config.GetInt("EXPAND_WORKERS")
	if workers <= 0 {
		workers = c.config.GetInt("search.expand_workers")
	}

	return max(1, workers)
}

func (c *Config) GetVocabularyPath() string {
	vocabularyPath := c.config.GetString("VOCABULARY_PATH")
	if len(vocabularyPath) == 0 {
		vocabularyPath = c.config.GetString("vocabulary.path")
	}

	return expandHome(vocabularyPath)
}

// GetReportPath defaults to ~/Downloads/search.txt.
func (c *Config) GetReportPath() string {
	reportPath := c.config.GetString("REPORT_PATH")
	if len(reportPath) == 0 {
		reportPath = c.config.GetString("report.path")
	}
	if len(reportPath) == 0 {
		reportPath = filepath.Join("~", "Downloads", "search.txt")
	}

	return expandHome(reportPath)
}

func (c *Config) GetReportOpen() bool {
	if c.config.IsSet("REPORT_OPEN") {
		return c.config.GetBool("REPORT_OPEN")
	}

	return c.config.GetBool("report.open")
}

func (c *Config) GetPort() string {
	port := c.config.GetString("PORT")
	if len(port) == 0 {
		port = c.config.GetString("server.port")
	}

	return port
}

func (c *Config) GetKVDBPath() string {
	kvdbPath := c.config.GetString("KVDB_PATH")
	if len(kvdbPath) == 0 {
		kvdbPath = c.config.GetString("database.kvdb_path")
	}
	if len(kvdbPath) == 0 {
		kvdbPath = filepath.Join(os.TempDir(), "fuzzyfind", "requests.db")
	}

	return expandHome(kvdbPath)
}

func (c *Config) GetLogLevel() slog.Level {
	level := c.config.GetString("LOG_LEVEL")
	if len(level) == 0 {
		level = c.config.GetString("log.level")
	}

	var slogLevel slog.Level
	if err := slogLevel.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}

	return slogLevel
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		slog.Warn("failed to resolve home directory", "err", err.Error())
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
