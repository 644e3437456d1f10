package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/supplymap/pkg/constants"
	"github.com/agentstation/supplymap/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Engine configuration
	DatabaseURL    string
	RedisURL       string
	SuppliersFile  string
	CanonicalTable string
	MetricsPort    string
	LockTTL        time.Duration
	SyncInterval   time.Duration

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.supplymap.yaml or ./.supplymap.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	bindEnv()
	setDefaults()

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "cannot read "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".supplymap")
		// A missing default config file is fine.
		_ = viper.ReadInConfig()
	}

	return fromViper(), nil
}

// ReadFile merges the config file at path over the current configuration.
// Flag values already applied are kept.
func (c *Config) ReadFile(path string) error {
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return errors.NewConfigError("config", "cannot read "+path, err)
	}
	fresh := fromViper()
	fresh.UpdateFromFlags(c.Verbose, c.Quiet, c.NoColor, c.Format, c.LogLevel)
	*c = *fresh
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// envKeys are read from SUPPLYMAP_<KEY> first and then from the bare <KEY>.
var envKeys = []string{
	"database_url",
	"redis_url",
	"suppliers_file",
	"canonical_table",
	"metrics_port",
	"lock_ttl",
	"sync_interval",
	"log_level",
	"log_format",
	"log_output",
}

func bindEnv() {
	for _, key := range envKeys {
		name := strings.ToUpper(key)
		if err := viper.BindEnv(key, constants.EnvPrefix+"_"+name, name); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind environment variable %s: %v\n", name, err)
		}
	}
}

func setDefaults() {
	viper.SetDefault("canonical_table", constants.DefaultCanonicalTable)
	viper.SetDefault("lock_ttl", constants.LockTTL)
	viper.SetDefault("log_format", "auto")
	viper.SetDefault("log_output", "stderr")
}

func fromViper() *Config {
	return &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no_color"),
		Format:  viper.GetString("format"),

		ConfigFile: viper.ConfigFileUsed(),

		DatabaseURL:    viper.GetString("database_url"),
		RedisURL:       viper.GetString("redis_url"),
		SuppliersFile:  viper.GetString("suppliers_file"),
		CanonicalTable: viper.GetString("canonical_table"),
		MetricsPort:    viper.GetString("metrics_port"),
		LockTTL:        viper.GetDuration("lock_ttl"),
		SyncInterval:   viper.GetDuration("sync_interval"),

		LogLevel:  viper.GetString("log_level"),
		LogFormat: viper.GetString("log_format"),
		LogOutput: viper.GetString("log_output"),
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded first because godotenv never overrides a set variable.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
