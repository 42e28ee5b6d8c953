package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	assert_ "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	assert := assert_.New(t)
	cfg, err := FromEnv(lookupMap(nil))
	require.NoError(t, err)
	assert.Equal(Default(), cfg)
	assert.Equal(5*time.Second, cfg.HTTP.ConnectTimeout)
	assert.Equal(10*time.Second, cfg.HTTP.CallTimeout)
	assert.NoError(cfg.Validate())
	assert.Error(cfg.ValidateS3())
}

func TestFromEnv(t *testing.T) {
	assert := assert_.New(t)
	cfg, err := FromEnv(lookupMap(map[string]string{
		"YOUTUBE_API_KEY":      "key",
		"YOUTUBE_API_URL":      "http://localhost:1234/",
		"HTTP_CONNECT_TIMEOUT": "1s",
		"HTTP_CALL_TIMEOUT":    "2500ms",
		"EXPORT_DIR":           "/tmp/cards",
		"EXPORT_NAME_TEMPLATE": "{{.VideoID}}-{{.Title}}",
		"S3_BUCKET":            "bucket",
		"AWS_REGION":           "eu-west-1",
		"S3_PRESIGN_EXPIRY":    "1h",
		"SERVER_ADDR":          "127.0.0.1:9000",
		"LOG_LEVEL":            "debug",
	}))
	require.NoError(t, err)
	assert.Equal("key", cfg.YouTube.APIKey)
	assert.Equal("http://localhost:1234/", cfg.YouTube.APIURL)
	assert.Equal(time.Second, cfg.HTTP.ConnectTimeout)
	assert.Equal(2500*time.Millisecond, cfg.HTTP.CallTimeout)
	assert.Equal("/tmp/cards", cfg.Export.Dir)
	assert.Equal("bucket", cfg.S3.Bucket)
	assert.Equal("eu-west-1", cfg.S3.Region)
	assert.Equal(time.Hour, cfg.S3.PresignExpiry)
	assert.Equal("127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(zapcore.DebugLevel, cfg.LogLevel)
	assert.NoError(cfg.Validate())
	assert.NoError(cfg.ValidateS3())

	cfg.S3.AccessKeyID = "AKIDEXAMPLE"
	assert.Error(cfg.ValidateS3())
	cfg.S3.SecretAccessKey = "secret"
	assert.NoError(cfg.ValidateS3())
}

func TestFromEnv_Invalid(t *testing.T) {
	assert := assert_.New(t)
	_, err := FromEnv(lookupMap(map[string]string{
		"HTTP_CONNECT_TIMEOUT": "soon",
		"S3_PRESIGN_EXPIRY":    "forever",
		"LOG_LEVEL":            "loud",
	}))
	require.Error(t, err)
	assert.Contains(err.Error(), "HTTP_CONNECT_TIMEOUT")
	assert.Contains(err.Error(), "S3_PRESIGN_EXPIRY")
	assert.Contains(err.Error(), "LOG_LEVEL")
}

func TestValidate(t *testing.T) {
	assert := assert_.New(t)
	cfg := Default()
	cfg.HTTP.CallTimeout = 0
	cfg.Export.NameTemplate = "{{.Broken"
	cfg.Assets.LogoPath = filepath.Join(t.TempDir(), "missing.png")
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(err.Error(), "call timeout")
	assert.Contains(err.Error(), "name template")
	assert.Contains(err.Error(), "logo")
}

func TestLoad_EnvFile(t *testing.T) {
	assert := assert_.New(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("YT2IG_TEST_ONLY=1\nEXPORT_DIR=/from/file\n"), 0o644))
	t.Setenv("EXPORT_DIR", "/from/env")
	t.Cleanup(func() { _ = os.Unsetenv("YT2IG_TEST_ONLY") })

	cfg, err := Load(path)
	require.NoError(t, err)
	// Variables already in the environment win over the file
	assert.Equal("/from/env", cfg.Export.Dir)
	assert.Equal("1", os.Getenv("YT2IG_TEST_ONLY"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(err)
}
