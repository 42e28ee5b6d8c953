// Package config loads settings from a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/template"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultYouTubeAPIURL  = "https://www.googleapis.com/youtube/v3/"
	DefaultConnectTimeout = 5 * time.Second
	DefaultCallTimeout    = 10 * time.Second
	DefaultExportDir      = "."
	DefaultNameTemplate   = "{{.VideoID}}"
	DefaultPresignExpiry  = 15 * time.Minute
	DefaultServerAddr     = ":8080"
	DefaultRegion         = "us-east-1"
)

type Config struct {
	YouTube YouTubeConfig
	HTTP    HTTPConfig
	Assets  AssetsConfig
	Export  ExportConfig
	S3      S3Config
	Server  ServerConfig
	// LogLevel is the minimum level logged by binaries.
	LogLevel zapcore.Level
}

type YouTubeConfig struct {
	// APIKey for the YouTube Data API. Without one, metadata comes from the keyless innertube client.
	APIKey string
	APIURL string
}

type HTTPConfig struct {
	ConnectTimeout time.Duration
	CallTimeout    time.Duration
}

type AssetsConfig struct {
	// LogoPath optionally replaces the built-in logo with a PNG file.
	LogoPath string
}

type ExportConfig struct {
	Dir string
	// NameTemplate is a text/template executed with the target and video info to name exported cards.
	NameTemplate string
}

type S3Config struct {
	Bucket string
	Region string
	// EndpointURL points at an S3-compatible service instead of AWS, with path-style addressing.
	EndpointURL string
	// Static credentials. If unset, the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
	PresignExpiry   time.Duration
}

type ServerConfig struct {
	Addr string
}

func Default() *Config {
	return &Config{
		YouTube:  YouTubeConfig{APIURL: DefaultYouTubeAPIURL},
		HTTP:     HTTPConfig{ConnectTimeout: DefaultConnectTimeout, CallTimeout: DefaultCallTimeout},
		Export:   ExportConfig{Dir: DefaultExportDir, NameTemplate: DefaultNameTemplate},
		S3:       S3Config{Region: DefaultRegion, PresignExpiry: DefaultPresignExpiry},
		Server:   ServerConfig{Addr: DefaultServerAddr},
		LogLevel: zapcore.InfoLevel,
	}
}

// Load reads the given .env files (default ".env") into the environment, without overriding variables that are
// already set, then builds a Config from the environment on top of Default. Missing .env files are not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
		zap.S().Named("config").Debugw("no env file found, using environment variables", "files", envFiles)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a variable lookup function, reporting every malformed value at once.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	var result error
	getString := func(key string, dest *string) {
		if value, ok := lookup(key); ok && value != "" {
			*dest = value
		}
	}
	getDuration := func(key string, dest *time.Duration) {
		value, ok := lookup(key)
		if !ok || value == "" {
			return
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*dest = d
	}

	getString("YOUTUBE_API_KEY", &cfg.YouTube.APIKey)
	getString("YOUTUBE_API_URL", &cfg.YouTube.APIURL)
	getDuration("HTTP_CONNECT_TIMEOUT", &cfg.HTTP.ConnectTimeout)
	getDuration("HTTP_CALL_TIMEOUT", &cfg.HTTP.CallTimeout)
	getString("LOGO_PATH", &cfg.Assets.LogoPath)
	getString("EXPORT_DIR", &cfg.Export.Dir)
	getString("EXPORT_NAME_TEMPLATE", &cfg.Export.NameTemplate)
	getString("S3_BUCKET", &cfg.S3.Bucket)
	getString("AWS_REGION", &cfg.S3.Region)
	getString("AWS_ENDPOINT_URL", &cfg.S3.EndpointURL)
	getString("AWS_ACCESS_KEY_ID", &cfg.S3.AccessKeyID)
	getString("AWS_SECRET_ACCESS_KEY", &cfg.S3.SecretAccessKey)
	getDuration("S3_PRESIGN_EXPIRY", &cfg.S3.PresignExpiry)
	getString("SERVER_ADDR", &cfg.Server.Addr)
	if value, ok := lookup("LOG_LEVEL"); ok && value != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(value)); err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid LOG_LEVEL: %w", err))
		}
	}

	if result != nil {
		return nil, result
	}
	return cfg, nil
}

// Validate checks the whole Config, returning every problem found.
func (c *Config) Validate() error {
	var result error
	if c.YouTube.APIURL == "" {
		result = multierror.Append(result, errors.New("YouTube API URL must be set"))
	}
	if c.HTTP.ConnectTimeout <= 0 {
		result = multierror.Append(result, errors.New("HTTP connect timeout must be positive"))
	}
	if c.HTTP.CallTimeout <= 0 {
		result = multierror.Append(result, errors.New("HTTP call timeout must be positive"))
	}
	if c.Assets.LogoPath != "" {
		if _, err := os.Stat(c.Assets.LogoPath); err != nil {
			result = multierror.Append(result, fmt.Errorf("logo: %w", err))
		}
	}
	if c.Export.Dir == "" {
		result = multierror.Append(result, errors.New("export directory must be set"))
	}
	if _, err := template.New("name").Parse(c.Export.NameTemplate); err != nil {
		result = multierror.Append(result, fmt.Errorf("export name template: %w", err))
	}
	if c.S3.PresignExpiry <= 0 {
		result = multierror.Append(result, errors.New("S3 presign expiry must be positive"))
	}
	return result
}

// ValidateS3 checks the settings needed to export to S3.
func (c *Config) ValidateS3() error {
	var result error
	if c.S3.Bucket == "" {
		result = multierror.Append(result, errors.New("S3 bucket must be set"))
	}
	if c.S3.Region == "" {
		result = multierror.Append(result, errors.New("AWS region must be set"))
	}
	if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
		result = multierror.Append(result, errors.New("AWS access key ID and secret access key must be set together"))
	}
	return result
}
