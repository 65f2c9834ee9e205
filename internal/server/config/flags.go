package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/premiumkeeper/internal/flagx"
)

var flagNames = []string{
	"-a", "-s", "-k", "-l", "-f", "-x", "-d", "-q", "-w", "-o", "-t",
	"-u", "-p", "-b", "-g", "-e",
}

// parseFlags overlays the short flags onto config. -t is in seconds.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to listen on")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token secret key")
	fs.StringVar(&config.CatalogPath, "k", config.CatalogPath, "plate catalog file")
	fs.StringVar(&config.LedgerBackend, "l", config.LedgerBackend, "ledger backend: file, pebble or postgres")
	fs.StringVar(&config.LedgerPath, "f", config.LedgerPath, "ledger file (file backend)")
	fs.StringVar(&config.PebbleDir, "x", config.PebbleDir, "ledger directory (pebble backend)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN (postgres backend)")
	fs.StringVar(&config.KafkaBrokers, "q", config.KafkaBrokers, "comma-separated kafka brokers")
	fs.StringVar(&config.KafkaTopic, "w", config.KafkaTopic, "kafka topic for submitted premiums")
	fs.StringVar(&config.AllowedOrigin, "o", config.AllowedOrigin, "CORS allowed origin")
	shutdown := fs.Int("t", int(config.ShutdownTimeout.Seconds()), "graceful shutdown timeout (in seconds)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 export bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(flagx.FilterArgs(args, flagNames)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	config.ShutdownTimeout = time.Duration(*shutdown) * time.Second
	return nil
}
