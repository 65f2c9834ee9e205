package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadConfig_DefaultsOnly(t *testing.T) {
	c, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), c))
	assert.Equal(t, LedgerFile, c.LedgerBackend)
	assert.Equal(t, "data/platespremium.json", c.LedgerPath)
	assert.Equal(t, "*", c.AllowedOrigin)
}

func TestParseFlags(t *testing.T) {
	c := defaults()
	args := []string{
		"-a", "127.0.0.1:9090", "-s", "secret", "-k", "/srv/plates.json",
		"-l", "pebble", "-f", "/srv/ledger.json", "-x", "/srv/pebble", "-d", "dsn",
		"-q", "kafka:9092", "-w", "topic", "-o", "https://app.example.com", "-t", "3",
		"-u", "user", "-p", "password", "-b", "bucket", "-g", "eu-north-1", "-e", "http://minio:9000",
		"-unrelated", "ignored",
	}
	require.NoError(t, parseFlags(c, args))

	want := &Config{
		EndpointAddr:    "127.0.0.1:9090",
		SecretKey:       "secret",
		CatalogPath:     "/srv/plates.json",
		LedgerBackend:   "pebble",
		LedgerPath:      "/srv/ledger.json",
		PebbleDir:       "/srv/pebble",
		DatabaseDSN:     "dsn",
		KafkaBrokers:    "kafka:9092",
		KafkaTopic:      "topic",
		AllowedOrigin:   "https://app.example.com",
		ShutdownTimeout: 3 * time.Second,
		S3RootUser:      "user",
		S3RootPassword:  "password",
		S3Bucket:        "bucket",
		S3Region:        "eu-north-1",
		S3BaseEndpoint:  "http://minio:9000",
	}
	assert.Empty(t, cmp.Diff(want, c))
}

func TestParseFlags_BadValue(t *testing.T) {
	c := defaults()
	require.Error(t, parseFlags(c, []string{"-t", "soon"}))
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseJson_OverlaysPresentKeys(t *testing.T) {
	path := writeConfig(t, `{"endpoint_addr":":7070","ledger_backend":"postgres","shutdown_timeout":"30s","s3_bucket":"exports"}`)

	c := defaults()
	require.NoError(t, parseJson(c, []string{"-c", path}))

	assert.Equal(t, ":7070", c.EndpointAddr)
	assert.Equal(t, LedgerPostgres, c.LedgerBackend)
	assert.Equal(t, 30*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "exports", c.S3Bucket)
	assert.Equal(t, "data/plates.json", c.CatalogPath, "absent keys keep defaults")
}

func TestParseJson_Errors(t *testing.T) {
	c := defaults()
	require.Error(t, parseJson(c, []string{"-config", filepath.Join(t.TempDir(), "missing.json")}))

	bad := writeConfig(t, `{"endpoint_addr":`)
	require.Error(t, parseJson(c, []string{"-c", bad}))
}

func TestLoadConfig_FlagsWinOverJson(t *testing.T) {
	path := writeConfig(t, `{"endpoint_addr":":7070","kafka_topic":"from-json"}`)

	c, err := LoadConfig([]string{"-c", path, "-a", ":6060"})
	require.NoError(t, err)
	assert.Equal(t, ":6060", c.EndpointAddr)
	assert.Equal(t, "from-json", c.KafkaTopic)
}

func TestLoadConfig_RejectsUnknownBackend(t *testing.T) {
	_, err := LoadConfig([]string{"-l", "redis"})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := defaults()
	require.NoError(t, c.Validate())

	c.SecretKey = ""
	require.Error(t, c.Validate())

	c = defaults()
	c.ShutdownTimeout = 0
	require.Error(t, c.Validate())
}
