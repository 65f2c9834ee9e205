// Package config loads the CLI settings: defaults, then an optional JSON file
// (-c/-config), then short flags.
//
//	-a string   server base URL
//	-d string   local override database file
//	-i int      request timeout (seconds)
//	-m          submit through the hosted form endpoint
package config

import "time"

type Config struct {
	ServerEndpointAddr string
	DatabasePath       string
	RequestTimeout     time.Duration
	UseForm            bool
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.DatabasePath = "overrides.db"
	c.RequestTimeout = 10 * time.Second
	c.UseForm = false
}

// LoadConfig builds the configuration from args (normally os.Args[1:]).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
