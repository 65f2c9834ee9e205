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

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerEndpointAddr)
	assert.Equal(t, "overrides.db", c.DatabasePath)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.False(t, c.UseForm)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://srv:9090", "-d", "/tmp/o.db", "-i", "3", "-m"},
			expected: &Config{
				ServerEndpointAddr: "http://srv:9090",
				DatabasePath:       "/tmp/o.db",
				RequestTimeout:     3 * time.Second,
				UseForm:            true,
			},
		},
		{
			name:    "bad timeout",
			args:    []string{"-i", "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			c.LoadDefaults()
			err := parseFlags(c, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, c))
		})
	}
}

func TestLoadConfig_JsonThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_endpoint_addr":"https://premiums.example.com","request_timeout":"5s","use_form":true}`), 0o600))

	c, err := LoadConfig([]string{"-config", path, "-d", "local.db"})
	require.NoError(t, err)

	assert.Equal(t, "https://premiums.example.com", c.ServerEndpointAddr)
	assert.Equal(t, 5*time.Second, c.RequestTimeout)
	assert.True(t, c.UseForm)
	assert.Equal(t, "local.db", c.DatabasePath)
}

func TestLoadConfig_BadJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.json")
	require.NoError(t, os.WriteFile(path, []byte(`[`), 0o600))

	_, err := LoadConfig([]string{"-c", path})
	require.Error(t, err)
}
