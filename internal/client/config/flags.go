package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/premiumkeeper/internal/flagx"
)

func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("cli", flag.ContinueOnError)

	fs.StringVar(&config.ServerEndpointAddr, "a", config.ServerEndpointAddr, "server base URL")
	fs.StringVar(&config.DatabasePath, "d", config.DatabasePath, "local override database")
	timeout := fs.Int("i", int(config.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.BoolVar(&config.UseForm, "m", config.UseForm, "submit through the hosted form endpoint")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-a", "-d", "-i", "-m"})); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	config.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
