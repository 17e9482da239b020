// Package config provides unified configuration for the filehook service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultUploadExpirySeconds is the default validity of an upload authorization.
const DefaultUploadExpirySeconds = 60

// Config holds the unified configuration for the filehook service.
type Config struct {
	// DataDir is the base directory for local data files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// HTTP configuration
	HTTP HTTPConfig `json:"http" yaml:"http"`

	// Item record store configuration
	Items ItemsConfig `json:"items" yaml:"items"`

	// Upload authorization configuration
	Upload UploadConfig `json:"upload" yaml:"upload"`

	// Storage configuration
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	// ListenAddr is the address of the API server
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`

	// MetricsAddr is the address of the Prometheus metrics server
	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr"`

	// ReadTimeout is the HTTP read timeout
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the HTTP write timeout
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the HTTP idle timeout
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
}

// ItemsConfig holds item record store configuration.
type ItemsConfig struct {
	// DBPath is the path to the item database
	DBPath string `json:"db_path" yaml:"db_path"`
}

// UploadConfig holds upload authorization configuration.
type UploadConfig struct {
	// ExpirySeconds is the validity window of a presigned upload URL
	ExpirySeconds int `json:"expiry_seconds" yaml:"expiry_seconds"`
}

// Expiry returns the upload authorization validity as a duration.
func (u UploadConfig) Expiry() time.Duration {
	return time.Duration(u.ExpirySeconds) * time.Second
}

// StorageConfig holds object storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage path (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 object storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// AccessKeyID and SecretAccessKey are static credentials.
	// When empty, the default AWS credential chain is used.
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`

	// UseAccelerate enables the transfer-accelerated endpoint
	UseAccelerate bool `json:"use_accelerate" yaml:"use_accelerate"`

	// UsePathStyle enables path-style addressing (required for MinIO)
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`

	// CacheControl is attached to uploaded and copied objects when set.
	// No default is applied.
	CacheControl string `json:"cache_control" yaml:"cache_control"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/filehook",
		HTTP: HTTPConfig{
			ListenAddr:   ":8080",
			MetricsAddr:  ":9091",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Upload: UploadConfig{
			ExpirySeconds: DefaultUploadExpirySeconds,
		},
		Storage: StorageConfig{
			Type: "local",
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/filehook"
	}

	if c.Items.DBPath == "" {
		c.Items.DBPath = filepath.Join(c.DataDir, "items.db")
	}

	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "objects")
	}

	if c.Upload.ExpirySeconds == 0 {
		c.Upload.ExpirySeconds = DefaultUploadExpirySeconds
	}
}

// Validate validates the configuration. A missing store location is a fatal
// configuration error: the service must not start without one.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return fmt.Errorf("invalid storage type: %s (must be local or s3)", c.Storage.Type)
	}

	if c.Storage.Type == "s3" {
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("s3.bucket is required when storage type is s3")
		}
		if (c.Storage.S3.AccessKeyID == "") != (c.Storage.S3.SecretAccessKey == "") {
			return fmt.Errorf("s3.access_key_id and s3.secret_access_key must be set together")
		}
	}

	if c.Upload.ExpirySeconds < 1 {
		return fmt.Errorf("upload.expiry_seconds must be positive, got %d", c.Upload.ExpirySeconds)
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the FILEHOOK_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("FILEHOOK_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// HTTP configuration
	if v := os.Getenv("FILEHOOK_HTTP_LISTEN_ADDR"); v != "" {
		cfg.HTTP.ListenAddr = v
	}
	if v := os.Getenv("FILEHOOK_HTTP_METRICS_ADDR"); v != "" {
		cfg.HTTP.MetricsAddr = v
	}

	// Item store configuration
	if v := os.Getenv("FILEHOOK_ITEMS_DB_PATH"); v != "" {
		cfg.Items.DBPath = v
	}

	// Upload configuration
	if v := os.Getenv("FILEHOOK_UPLOAD_EXPIRY_SECONDS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Upload.ExpirySeconds)
	}

	// Storage configuration
	if v := os.Getenv("FILEHOOK_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("FILEHOOK_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("FILEHOOK_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("FILEHOOK_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("FILEHOOK_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
	if v := os.Getenv("FILEHOOK_S3_ACCESS_KEY_ID"); v != "" {
		cfg.Storage.S3.AccessKeyID = v
	}
	if v := os.Getenv("FILEHOOK_S3_SECRET_ACCESS_KEY"); v != "" {
		cfg.Storage.S3.SecretAccessKey = v
	}
	if v := os.Getenv("FILEHOOK_S3_USE_ACCELERATE"); v != "" {
		cfg.Storage.S3.UseAccelerate = v == "true" || v == "1"
	}
	if v := os.Getenv("FILEHOOK_S3_CACHE_CONTROL"); v != "" {
		cfg.Storage.S3.CacheControl = v
	}
}

// EnsureDirectories creates all required local directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir}
	if c.Storage.Type == "local" {
		dirs = append(dirs, c.Storage.Path)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
