/*
Package config manages TOML config for addrserve services.
*/
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/bastiangx/addrserve/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Environment overrides, read after .env is loaded.
const (
	EnvCatalog   = "ADDRSERVE_CATALOG"
	EnvPGDSN     = "ADDRSERVE_PG_DSN"
	EnvRedisAddr = "ADDRSERVE_REDIS_ADDR"
	EnvRedisPass = "ADDRSERVE_REDIS_PASSWORD"
	EnvRedisDB   = "ADDRSERVE_REDIS_DB"
)

// Catalog source kinds.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds the entire config structure
type Config struct {
	Parser  ParserConfig  `toml:"parser"`
	Catalog CatalogConfig `toml:"catalog"`
	Server  ServerConfig  `toml:"server"`
	Batch   BatchConfig   `toml:"batch"`
	Cache   CacheConfig   `toml:"cache"`
	Log     LogConfig     `toml:"log"`
}

// ParserConfig has address parsing options.
type ParserConfig struct {
	MaxLength int      `toml:"max_length"`
	StopWords []string `toml:"stop_words"`
}

// CatalogConfig selects where regions are loaded from.
type CatalogConfig struct {
	Source string `toml:"source"`
	Path   string `toml:"path"`
	DSN    string `toml:"dsn"`
	Table  string `toml:"table"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxBatch int `toml:"max_batch"`
}

// BatchConfig holds bulk parsing options.
type BatchConfig struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

// CacheConfig holds parse result cache options.
type CacheConfig struct {
	Enabled       bool   `toml:"enabled"`
	Backend       string `toml:"backend"`
	Size          int    `toml:"size"`
	TTLSeconds    int    `toml:"ttl_seconds"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Formatter string `toml:"formatter"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/addrserve
// 2. ~/Library/Application Support/addrserve (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		log.Errorf("Failed to resolve paths: %v", err)
		return "", err
	}
	if result := utils.CheckDirStatus(pr.GetConfigDir()); result.Writable {
		return pr.GetConfigDir(), nil
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		// Not conventional, fallback from ~/.config if not writable
		macOSPath := filepath.Join(homeDir, "Library", "Application Support", "addrserve")
		if result := utils.CheckDirStatus(macOSPath); result.Writable {
			return macOSPath, nil
		}
	}
	return pr.GetExecutableDir(), nil
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
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/addrserve/config.toml
// 3. Builtin defaults
//
// Environment overrides are applied on top in every case.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				config.ApplyEnv()
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		config := DefaultConfig()
		config.ApplyEnv()
		return config, "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		config = DefaultConfig()
		defaultPath = ""
	} else {
		log.Debugf("Loaded config from default path: %s", defaultPath)
	}
	config.ApplyEnv()
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Parser: ParserConfig{
			MaxLength: 150,
			StopWords: []string{"中国", "中华人民共和国"},
		},
		Catalog: CatalogConfig{
			Source: SourceFile,
			Path:   "data/regions.tsv",
			Table:  "regions",
		},
		Server: ServerConfig{
			MaxBatch: 1000,
		},
		Batch: BatchConfig{
			Workers:   0,
			QueueSize: 256,
		},
		Cache: CacheConfig{
			Enabled:    false,
			Backend:    CacheMemory,
			Size:       10000,
			TTLSeconds: 3600,
			RedisAddr:  "localhost:6379",
		},
		Log: LogConfig{
			Formatter: "text",
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

// tryPartialParse keeps every field that decodes with the right type and
// leaves the rest at their defaults.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "parser"); ok {
		extractParserConfig(section, &config.Parser)
	}
	if section, ok := utils.ExtractSection(tempConfig, "catalog"); ok {
		extractCatalogConfig(section, &config.Catalog)
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		if val, ok := utils.ExtractInt64(section, "max_batch"); ok {
			config.Server.MaxBatch = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "batch"); ok {
		if val, ok := utils.ExtractInt64(section, "workers"); ok {
			config.Batch.Workers = val
		}
		if val, ok := utils.ExtractInt64(section, "queue_size"); ok {
			config.Batch.QueueSize = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "cache"); ok {
		extractCacheConfig(section, &config.Cache)
	}
	if section, ok := utils.ExtractSection(tempConfig, "log"); ok {
		if val, ok := utils.ExtractString(section, "formatter"); ok {
			config.Log.Formatter = val
		}
	}
	return config, nil
}

func extractParserConfig(data map[string]any, parser *ParserConfig) {
	if val, ok := utils.ExtractInt64(data, "max_length"); ok {
		parser.MaxLength = val
	}
	if val, ok := utils.ExtractStrings(data, "stop_words"); ok {
		parser.StopWords = val
	}
}

func extractCatalogConfig(data map[string]any, catalog *CatalogConfig) {
	if val, ok := utils.ExtractString(data, "source"); ok {
		catalog.Source = val
	}
	if val, ok := utils.ExtractString(data, "path"); ok {
		catalog.Path = val
	}
	if val, ok := utils.ExtractString(data, "dsn"); ok {
		catalog.DSN = val
	}
	if val, ok := utils.ExtractString(data, "table"); ok {
		catalog.Table = val
	}
}

func extractCacheConfig(data map[string]any, cache *CacheConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		cache.Enabled = val
	}
	if val, ok := utils.ExtractString(data, "backend"); ok {
		cache.Backend = val
	}
	if val, ok := utils.ExtractInt64(data, "size"); ok {
		cache.Size = val
	}
	if val, ok := utils.ExtractInt64(data, "ttl_seconds"); ok {
		cache.TTLSeconds = val
	}
	if val, ok := utils.ExtractString(data, "redis_addr"); ok {
		cache.RedisAddr = val
	}
	if val, ok := utils.ExtractString(data, "redis_password"); ok {
		cache.RedisPassword = val
	}
	if val, ok := utils.ExtractInt64(data, "redis_db"); ok {
		cache.RedisDB = val
	}
}

// LoadEnvFile loads .env from the working directory if there is one.
// Variables already set in the environment win.
func LoadEnvFile(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if !utils.FileExists(p) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Warnf("Failed to load env file %s: %v", p, err)
		}
	}
}

// ApplyEnv loads .env and overrides file settings with ADDRSERVE_* variables.
// A DSN switches the catalog source to Postgres, a Redis address switches the
// cache to Redis.
func (c *Config) ApplyEnv() {
	LoadEnvFile()

	if v := os.Getenv(EnvCatalog); v != "" {
		c.Catalog.Source = SourceFile
		c.Catalog.Path = v
	}
	if v := os.Getenv(EnvPGDSN); v != "" {
		c.Catalog.Source = SourcePostgres
		c.Catalog.DSN = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.Enabled = true
		c.Cache.Backend = CacheRedis
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv(EnvRedisPass); v != "" {
		c.Cache.RedisPassword = v
	}
	if v := os.Getenv(EnvRedisDB); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.RedisDB = n
		} else {
			log.Warnf("Ignoring %s=%q: %v", EnvRedisDB, v, err)
		}
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
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

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the parser values and saves to file
func (c *Config) Update(configPath string, maxLength *int, stopWords []string) error {
	if maxLength != nil {
		c.Parser.MaxLength = *maxLength
	}
	if stopWords != nil {
		c.Parser.StopWords = stopWords
	}
	return SaveConfig(c, configPath)
}
