package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hairizuanbinnoorazman/ui-autotest/database"
	"github.com/hairizuanbinnoorazman/ui-autotest/executor"
	"github.com/hairizuanbinnoorazman/ui-autotest/provider"
)

// Config holds all application configuration.
type Config struct {
	Provider  provider.Config
	Browser   executor.RodConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Artifacts ArtifactConfig
	Log       LogConfig
}

// StorageConfig holds blob storage configuration.
type StorageConfig struct {
	Type            string        // "local" or "s3"
	BaseDir         string        // For local: "./outputs"
	S3Bucket        string        // For S3: bucket name
	S3Region        string        // For S3: AWS region
	S3Prefix        string        // For S3: key prefix
	S3PresignExpiry time.Duration // Presigned URL expiration
}

// DatabaseConfig holds run history database configuration. History is not
// recorded when Enabled is false.
type DatabaseConfig struct {
	Enabled bool
	database.Config
}

// ArtifactConfig holds the storage layout and merge behaviour.
type ArtifactConfig struct {
	ScriptsDir     string
	ReportsDir     string
	PromptsDir     string
	ScreenshotsDir string
	MergePolicy    string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("AUTOTEST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("provider.vendor", string(provider.VendorClaude))
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.model", "")
	v.SetDefault("provider.max_tokens", provider.DefaultMaxTokens)
	v.SetDefault("provider.timeout", provider.DefaultTimeout.String())

	browser := executor.DefaultRodConfig()
	v.SetDefault("browser.control_url", "")
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.headless", browser.Headless)
	v.SetDefault("browser.timeout", browser.Timeout.String())
	v.SetDefault("browser.settle", browser.Settle.String())
	v.SetDefault("browser.viewport_width", browser.ViewportWidth)
	v.SetDefault("browser.viewport_height", browser.ViewportHeight)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.base_dir", "./outputs")
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.s3_region", "us-east-1")
	v.SetDefault("storage.s3_prefix", "")
	v.SetDefault("storage.s3_presign_expiry", "15m")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", database.DriverSQLite)
	v.SetDefault("database.path", "./outputs/autotest.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "ui_autotest")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("artifacts.scripts_dir", "scripts")
	v.SetDefault("artifacts.reports_dir", "reports")
	v.SetDefault("artifacts.prompts_dir", "prompts")
	v.SetDefault("artifacts.screenshots_dir", "screenshots")
	v.SetDefault("merge.policy", "keep-existing")

	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config

	config.Provider.VendorID = provider.VendorID(strings.ToLower(v.GetString("provider.vendor")))
	config.Provider.Credential = v.GetString("provider.api_key")
	config.Provider.Endpoint = v.GetString("provider.base_url")
	config.Provider.ModelName = v.GetString("provider.model")
	config.Provider.MaxTokens = v.GetInt("provider.max_tokens")
	config.Provider.Timeout = v.GetDuration("provider.timeout")
	applyVendorEnv(&config.Provider)

	config.Browser.ControlURL = v.GetString("browser.control_url")
	config.Browser.Bin = v.GetString("browser.bin")
	config.Browser.Headless = v.GetBool("browser.headless")
	config.Browser.Timeout = v.GetDuration("browser.timeout")
	config.Browser.Settle = v.GetDuration("browser.settle")
	config.Browser.ViewportWidth = v.GetInt("browser.viewport_width")
	config.Browser.ViewportHeight = v.GetInt("browser.viewport_height")

	config.Storage.Type = v.GetString("storage.type")
	config.Storage.BaseDir = v.GetString("storage.base_dir")
	config.Storage.S3Bucket = v.GetString("storage.s3_bucket")
	config.Storage.S3Region = v.GetString("storage.s3_region")
	config.Storage.S3Prefix = v.GetString("storage.s3_prefix")
	config.Storage.S3PresignExpiry = v.GetDuration("storage.s3_presign_expiry")

	config.Database.Enabled = v.GetBool("database.enabled")
	config.Database.Driver = v.GetString("database.driver")
	config.Database.Path = v.GetString("database.path")
	config.Database.Host = v.GetString("database.host")
	config.Database.Port = v.GetInt("database.port")
	config.Database.User = v.GetString("database.user")
	config.Database.Password = v.GetString("database.password")
	config.Database.Database = v.GetString("database.database")
	config.Database.MaxOpenConns = v.GetInt("database.max_open_conns")
	config.Database.MaxIdleConns = v.GetInt("database.max_idle_conns")

	config.Artifacts.ScriptsDir = v.GetString("artifacts.scripts_dir")
	config.Artifacts.ReportsDir = v.GetString("artifacts.reports_dir")
	config.Artifacts.PromptsDir = v.GetString("artifacts.prompts_dir")
	config.Artifacts.ScreenshotsDir = v.GetString("artifacts.screenshots_dir")
	config.Artifacts.MergePolicy = v.GetString("merge.policy")

	config.Log.Level = v.GetString("log.level")

	return &config, nil
}

// applyVendorEnv fills provider settings left empty from <VENDOR>_API_KEY,
// <VENDOR>_BASE_URL and <VENDOR>_MODEL.
func applyVendorEnv(cfg *provider.Config) {
	prefix := strings.ToUpper(string(cfg.VendorID))
	if prefix == "" {
		return
	}
	if cfg.Credential == "" {
		cfg.Credential = os.Getenv(prefix + "_API_KEY")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = os.Getenv(prefix + "_BASE_URL")
	}
	if cfg.ModelName == "" {
		cfg.ModelName = os.Getenv(prefix + "_MODEL")
	}
}

// storageSettings converts the storage section for storage.NewBlobStorage.
func (c StorageConfig) storageSettings() map[string]interface{} {
	return map[string]interface{}{
		"base_dir":       c.BaseDir,
		"bucket":         c.S3Bucket,
		"region":         c.S3Region,
		"prefix":         c.S3Prefix,
		"presign_expiry": c.S3PresignExpiry,
	}
}
