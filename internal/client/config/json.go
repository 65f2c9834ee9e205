package config

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/premiumkeeper/internal/flagx"
	"github.com/dmitrijs2005/premiumkeeper/internal/timex"
	json "github.com/goccy/go-json"
)

// JsonConfig is the file form of Config:
//
//	{
//	  "server_endpoint_addr": "https://premiums.example.com",
//	  "database_path": "/home/me/.premiumkeeper/overrides.db",
//	  "request_timeout": "5s",
//	  "use_form": true
//	}
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	DatabasePath       string         `json:"database_path"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	UseForm            *bool          `json:"use_form"`
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

	if c.ServerEndpointAddr != "" {
		config.ServerEndpointAddr = c.ServerEndpointAddr
	}
	if c.DatabasePath != "" {
		config.DatabasePath = c.DatabasePath
	}
	if c.RequestTimeout.Duration > 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.UseForm != nil {
		config.UseForm = *c.UseForm
	}
	return nil
}
