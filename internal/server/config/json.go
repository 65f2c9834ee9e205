package config

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/premiumkeeper/internal/flagx"
	"github.com/dmitrijs2005/premiumkeeper/internal/timex"
	json "github.com/goccy/go-json"
)

// JsonConfig mirrors Config for file input. Durations accept "15s" or
// nanoseconds. Absent keys leave the current value alone.
type JsonConfig struct {
	EndpointAddr    string         `json:"endpoint_addr"`
	SecretKey       string         `json:"secret_key"`
	CatalogPath     string         `json:"catalog_path"`
	LedgerBackend   string         `json:"ledger_backend"`
	LedgerPath      string         `json:"ledger_path"`
	PebbleDir       string         `json:"pebble_dir"`
	DatabaseDSN     string         `json:"database_dsn"`
	KafkaBrokers    string         `json:"kafka_brokers"`
	KafkaTopic      string         `json:"kafka_topic"`
	AllowedOrigin   string         `json:"allowed_origin"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
	S3RootUser      string         `json:"s3_root_user"`
	S3RootPassword  string         `json:"s3_root_password"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
}

func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.CatalogPath, c.CatalogPath)
	setString(&config.LedgerBackend, c.LedgerBackend)
	setString(&config.LedgerPath, c.LedgerPath)
	setString(&config.PebbleDir, c.PebbleDir)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.KafkaBrokers, c.KafkaBrokers)
	setString(&config.KafkaTopic, c.KafkaTopic)
	setString(&config.AllowedOrigin, c.AllowedOrigin)
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
